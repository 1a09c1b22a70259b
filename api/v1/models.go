package v1

import (
	"encoding/json"
	"net/http"

	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/database"
)

// Error is the JSON error body shared by every endpoint.
type Error struct {
	Message string `json:"Message"`
}

type errorEnvelope struct {
	Error *Error `json:"Error"`
}

type versionsEnvelope struct {
	Versions []catalog.Version `json:"versions"`
}

type manifestEnvelope struct {
	Manifest database.AssetManifest `json:"manifest"`
}

type jarEnvelope struct {
	URL string `json:"url"`
}

type overlayEnvelope struct {
	OverlaySupport bool `json:"overlaySupport"`
}

type pregenerateEnvelope struct {
	Started bool `json:"started"`
}

type purgeEnvelope struct {
	Purged int64 `json:"purged"`
}

func writeResponse(w http.ResponseWriter, status int, resp interface{}) {
	header := w.Header()
	header.Set("Content-Type", "application/json;charset=utf-8")
	header.Set("Server", "mctools")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeResponse(w, status, errorEnvelope{Error: &Error{Message: message}})
}
