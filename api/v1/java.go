package v1

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/common/commonerr"
)

func getJavaVersions(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	bypassLimit := r.URL.Query().Get("bypass") == "true"

	versions, err := ctx.Catalog.JavaVersions(bypassLimit)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return "getJavaVersions", http.StatusBadGateway
	}

	writeResponse(w, http.StatusOK, versionsEnvelope{Versions: versions})
	return "getJavaVersions", http.StatusOK
}

func getJavaManifest(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	supported, err := ctx.Catalog.JavaVersions(false)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return "getJavaManifest", http.StatusBadGateway
	}

	manifest, err := ctx.Extractor.GetOrCreateManifest(p.ByName("mcVersion"), catalog.EditionJava, supported)
	if err != nil {
		status, message := manifestErrorStatus(err)
		writeError(w, status, message)
		return "getJavaManifest", status
	}

	writeResponse(w, http.StatusOK, manifestEnvelope{Manifest: manifest})
	return "getJavaManifest", http.StatusOK
}

func getJavaJar(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	supported, err := ctx.Catalog.JavaVersions(false)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return "getJavaJar", http.StatusBadGateway
	}

	url, err := ctx.Extractor.JarDownloadURL(p.ByName("mcVersion"), supported)
	if err != nil {
		status, message := manifestErrorStatus(err)
		writeError(w, status, message)
		return "getJavaJar", status
	}

	writeResponse(w, http.StatusOK, jarEnvelope{URL: url})
	return "getJavaJar", http.StatusOK
}

func getJavaOverlaySupport(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	supported, err := ctx.Catalog.JavaVersions(false)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return "getJavaOverlaySupport", http.StatusBadGateway
	}

	overlay, err := ctx.Extractor.OverlaySupport(p.ByName("mcVersion"), catalog.EditionJava, supported)
	if err != nil {
		status, message := manifestErrorStatus(err)
		writeError(w, status, message)
		return "getJavaOverlaySupport", status
	}

	writeResponse(w, http.StatusOK, overlayEnvelope{OverlaySupport: overlay})
	return "getJavaOverlaySupport", http.StatusOK
}

func postJavaPregenerate(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	return pregenerate(w, r, ctx, catalog.EditionJava, "postJavaPregenerate")
}

// pregenerate kicks off a bulk manifest warm in the background and reports
// per-version progress over the websocket feed.
func pregenerate(w http.ResponseWriter, r *http.Request, ctx *context, edition, route string) (string, int) {
	if !authorized(ctx, r) {
		writeError(w, http.StatusUnauthorized, "a valid API token is required")
		return route, http.StatusUnauthorized
	}

	versions, err := ctx.Catalog.Versions(edition, false)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return route, http.StatusBadGateway
	}

	go ctx.Extractor.Pregenerate(versions, ctx.Progress.Broadcast)

	writeResponse(w, http.StatusAccepted, pregenerateEnvelope{Started: true})
	return route, http.StatusAccepted
}

func manifestErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, commonerr.ErrNotFound):
		return http.StatusNotFound, "the requested version is not supported"
	case errors.Is(err, commonerr.ErrUpstreamUnreachable):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func getMetrics(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	promhttp.Handler().ServeHTTP(w, r)
	return "getMetrics", 0
}
