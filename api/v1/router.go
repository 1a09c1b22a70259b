// Package v1 implements the first version of the MCTools API.
package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/extractor"
	"github.com/mullak99/MCTools/store"
)

var (
	promResponseDurationMilliseconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mctools_api_response_duration_milliseconds",
		Help:    "The duration of time it takes to receieve and write a response to an API request",
		Buckets: prometheus.ExponentialBuckets(9.375, 2, 10),
	}, []string{"route", "code"})
)

func init() {
	prometheus.MustRegister(promResponseDurationMilliseconds)
}

// Env bundles the services the handlers operate on.
type Env struct {
	Store     *store.ManifestStore
	Catalog   *catalog.Catalog
	Extractor *extractor.Extractor
	Progress  *ProgressHub
}

type handler func(http.ResponseWriter, *http.Request, httprouter.Params, *context) (route string, status int)

func httpHandler(h handler, ctx *context) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		start := time.Now()
		route, status := h(w, r, p, ctx)
		statusStr := strconv.Itoa(status)
		if status == 0 {
			statusStr = "???"
		}

		promResponseDurationMilliseconds.
			WithLabelValues(route, statusStr).
			Observe(float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond))

		log.WithFields(log.Fields{"remote addr": r.RemoteAddr, "method": r.Method, "request uri": r.RequestURI, "status": statusStr, "elapsed time": time.Since(start)}).Info("Handled HTTP request")
	}
}

type context struct {
	*Env
	AdminToken string
}

// NewRouter creates an HTTP router for version 1 of the MCTools API.
func NewRouter(env *Env, adminToken string) *httprouter.Router {
	router := httprouter.New()
	ctx := &context{Env: env, AdminToken: adminToken}

	// Java
	router.GET("/java/versions", httpHandler(getJavaVersions, ctx))
	router.GET("/java/version/:mcVersion", httpHandler(getJavaManifest, ctx))
	router.GET("/java/version/:mcVersion/jar", httpHandler(getJavaJar, ctx))
	router.GET("/java/version/:mcVersion/overlay", httpHandler(getJavaOverlaySupport, ctx))
	router.POST("/java/pregenerate", httpHandler(postJavaPregenerate, ctx))

	// Bedrock
	router.GET("/bedrock/versions", httpHandler(getBedrockVersions, ctx))
	router.GET("/bedrock/version/:mcVersion", httpHandler(getBedrockManifest, ctx))
	router.POST("/bedrock/pregenerate", httpHandler(postBedrockPregenerate, ctx))

	// Admin
	router.DELETE("/admin/purge", httpHandler(deleteUnsupportedManifests, ctx))
	router.DELETE("/admin/purge/all", httpHandler(deleteAllManifests, ctx))
	router.DELETE("/admin/purge/schema", httpHandler(deleteOutdatedManifests, ctx))
	router.DELETE("/admin/purge/cache", httpHandler(deleteCachedManifests, ctx))
	router.GET("/admin/pregenerate/progress", httpHandler(getPregenerateProgress, ctx))

	// Metrics
	router.GET("/metrics", httpHandler(getMetrics, ctx))

	return router
}
