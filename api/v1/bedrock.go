package v1

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/mullak99/MCTools/catalog"
)

func getBedrockVersions(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	versions, err := ctx.Catalog.BedrockVersions()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return "getBedrockVersions", http.StatusBadGateway
	}

	writeResponse(w, http.StatusOK, versionsEnvelope{Versions: versions})
	return "getBedrockVersions", http.StatusOK
}

func getBedrockManifest(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	supported, err := ctx.Catalog.BedrockVersions()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return "getBedrockManifest", http.StatusBadGateway
	}

	manifest, err := ctx.Extractor.GetOrCreateManifest(p.ByName("mcVersion"), catalog.EditionBedrock, supported)
	if err != nil {
		status, message := manifestErrorStatus(err)
		writeError(w, status, message)
		return "getBedrockManifest", status
	}

	writeResponse(w, http.StatusOK, manifestEnvelope{Manifest: manifest})
	return "getBedrockManifest", http.StatusOK
}

func postBedrockPregenerate(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	return pregenerate(w, r, ctx, catalog.EditionBedrock, "postBedrockPregenerate")
}
