package v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/extractor"
)

// authorized checks the caller's API token. Admin endpoints are disabled
// entirely when no token is configured.
func authorized(ctx *context, r *http.Request) bool {
	if ctx.AdminToken == "" {
		return false
	}
	token := r.Header.Get("X-API-Key")
	return subtle.ConstantTimeCompare([]byte(token), []byte(ctx.AdminToken)) == 1
}

// deleteUnsupportedManifests purges every stored manifest that no longer
// corresponds to a currently-supported version of either edition.
func deleteUnsupportedManifests(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	if !authorized(ctx, r) {
		writeError(w, http.StatusUnauthorized, "a valid API token is required")
		return "deleteUnsupportedManifests", http.StatusUnauthorized
	}

	javaVersions, err := ctx.Catalog.JavaVersions(false)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return "deleteUnsupportedManifests", http.StatusBadGateway
	}
	bedrockVersions, err := ctx.Catalog.BedrockVersions()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return "deleteUnsupportedManifests", http.StatusBadGateway
	}

	supported := make([]string, 0, len(javaVersions)+len(bedrockVersions))
	for _, v := range append(javaVersions, bedrockVersions...) {
		supported = append(supported, v.ID)
	}

	purged, err := ctx.Store.PurgeUnsupported(supported, extractor.SchemaVersion)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return "deleteUnsupportedManifests", http.StatusInternalServerError
	}

	log.WithField("purged", purged).Info("purged unsupported manifests")
	writeResponse(w, http.StatusOK, purgeEnvelope{Purged: purged})
	return "deleteUnsupportedManifests", http.StatusOK
}

func deleteAllManifests(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	if !authorized(ctx, r) {
		writeError(w, http.StatusUnauthorized, "a valid API token is required")
		return "deleteAllManifests", http.StatusUnauthorized
	}

	purged, err := ctx.Store.PurgeAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return "deleteAllManifests", http.StatusInternalServerError
	}

	log.WithField("purged", purged).Info("purged all manifests")
	writeResponse(w, http.StatusOK, purgeEnvelope{Purged: purged})
	return "deleteAllManifests", http.StatusOK
}

// deleteOutdatedManifests purges manifests generated under an older schema.
func deleteOutdatedManifests(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	if !authorized(ctx, r) {
		writeError(w, http.StatusUnauthorized, "a valid API token is required")
		return "deleteOutdatedManifests", http.StatusUnauthorized
	}

	purged, err := ctx.Store.PurgeBySchema(extractor.SchemaVersion)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return "deleteOutdatedManifests", http.StatusInternalServerError
	}

	log.WithField("purged", purged).Info("purged outdated manifests")
	writeResponse(w, http.StatusOK, purgeEnvelope{Purged: purged})
	return "deleteOutdatedManifests", http.StatusOK
}

// deleteCachedManifests drops the in-memory cache without touching the
// durable store.
func deleteCachedManifests(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	if !authorized(ctx, r) {
		writeError(w, http.StatusUnauthorized, "a valid API token is required")
		return "deleteCachedManifests", http.StatusUnauthorized
	}

	ctx.Store.PurgeCache()

	writeResponse(w, http.StatusOK, purgeEnvelope{Purged: 0})
	return "deleteCachedManifests", http.StatusOK
}
