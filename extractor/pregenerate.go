package extractor

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/common/throttle"
)

// ProgressEvent reports the completion of one version during a bulk
// pregeneration pass.
type ProgressEvent struct {
	Version string `json:"version"`
	Edition string `json:"edition"`
	Done    int    `json:"done"`
	Total   int    `json:"total"`
	Error   string `json:"error,omitempty"`
}

// Pregenerate warms the manifest store for every given version, with at most
// throttle.DefaultLimit generations in flight. Failures are reported per
// version and do not abort the pass; the return value is false when any
// version failed. report may be nil.
func (e *Extractor) Pregenerate(versions []catalog.Version, report func(ProgressEvent)) bool {
	total := len(versions)
	var done, failed int64

	fns := make([]func(), 0, total)
	for _, version := range versions {
		version := version
		fns = append(fns, func() {
			_, err := e.GetOrCreateManifest(version.ID, version.Edition, versions)

			event := ProgressEvent{
				Version: version.ID,
				Edition: version.Edition,
				Done:    int(atomic.AddInt64(&done, 1)),
				Total:   total,
			}
			if err != nil {
				event.Error = err.Error()
				atomic.AddInt64(&failed, 1)
				log.WithField("version", version.ID).WithError(err).Error("pregeneration failed")
			}
			if report != nil {
				report(event)
			}
		})
	}
	throttle.Run(throttle.DefaultLimit, fns)

	return atomic.LoadInt64(&failed) == 0
}
