package versiondiff

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/common/commonerr"
)

// WithMcMetas widens an asset path list with the animation metadata files
// that can sit beside every png. The augmented paths are only candidates;
// extraction silently skips the ones the archive does not contain.
func WithMcMetas(paths []string) []string {
	out := make([]string, 0, 2*len(paths))
	for _, p := range paths {
		out = append(out, p)
		if strings.HasSuffix(p, ".png") {
			out = append(out, p+".mcmeta")
		}
	}
	return out
}

// ExtractAssets pulls the wanted entries out of an in-memory zip into a
// path -> bytes map. Paths absent from the archive are skipped.
func ExtractAssets(zipData []byte, wanted []string) (map[string][]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, commonerr.ErrCorruptArchive
	}

	wantedSet := make(map[string]struct{}, len(wanted))
	for _, p := range wanted {
		wantedSet[p] = struct{}{}
	}

	assets := make(map[string][]byte)
	for _, f := range r.File {
		if _, ok := wantedSet[f.Name]; !ok {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, commonerr.ErrCorruptArchive
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, commonerr.ErrCorruptArchive
		}
		assets[f.Name] = data
	}
	return assets, nil
}

// Engine downloads two versions' archives and extracts the asset bytes the
// deep comparison needs. It bypasses the manifest store on purpose: the
// store only keeps file names, not contents.
type Engine struct {
	client *http.Client
}

func NewEngine(client *http.Client) *Engine {
	if client == nil {
		client = http.DefaultClient
	}
	return &Engine{client: client}
}

// FetchAssets downloads an archive and extracts the wanted entries.
func (e *Engine) FetchAssets(ctx context.Context, url string, wanted []string) (map[string][]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		log.WithError(err).WithField("url", url).Error("could not download version archive")
		return nil, commonerr.ErrCouldNotDownload
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.WithField("url", url).WithField("status", resp.StatusCode).Error("could not download version archive")
		return nil, commonerr.ErrCouldNotDownload
	}

	zipData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, commonerr.ErrCouldNotDownload
	}

	assets, err := ExtractAssets(zipData, wanted)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, commonerr.ErrGenerationFailed
	}
	return assets, nil
}

// FetchPair downloads and extracts both sides of a comparison concurrently.
func (e *Engine) FetchPair(ctx context.Context, fromURL, toURL string, fromWanted, toWanted []string) (from, to map[string][]byte, err error) {
	var wg sync.WaitGroup
	var fromErr, toErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		from, fromErr = e.FetchAssets(ctx, fromURL, fromWanted)
	}()
	go func() {
		defer wg.Done()
		to, toErr = e.FetchAssets(ctx, toURL, toWanted)
	}()
	wg.Wait()

	if fromErr != nil {
		return nil, nil, fromErr
	}
	if toErr != nil {
		return nil, nil, toErr
	}
	return from, to, nil
}
