// Package extractor turns an upstream version into an asset manifest: it
// downloads the version's distributable archive, extracts the texture and
// mcmeta listing, and persists the result through the manifest store.
package extractor

import (
	"archive/zip"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/common/commonerr"
	"github.com/mullak99/MCTools/database"
	"github.com/mullak99/MCTools/store"
)

// SchemaVersion is bumped whenever the derived manifest content or the
// extraction rules change; stored manifests with any other value are treated
// as absent and regenerated.
const SchemaVersion = 3

// bedrockPackRe identifies the resource_pack root inside a bedrock-samples
// zipball, whose contents are wrapped under a commit-qualified folder name.
var bedrockPackRe = regexp.MustCompile(`Mojang-bedrock-samples-[a-zA-Z0-9]+/resource_pack`)

// overlayCutoff is the release time of 23w31a (1.20.2), after which Java
// supports split resource-pack overlays.
var overlayCutoff = time.Date(2023, 8, 1, 10, 3, 13, 0, time.UTC)

type Extractor struct {
	store      *store.ManifestStore
	client     *http.Client
	scratchDir string
}

// New returns an extractor that downloads into scratchDir (the system temp
// directory if empty).
func New(st *store.ManifestStore, client *http.Client, scratchDir string) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &Extractor{store: st, client: client, scratchDir: scratchDir}
}

// GetOrCreateManifest resolves the manifest for one version of one edition.
// Versions outside the supported set may still be served from the store (a
// client-side cache work-around; stale entries are wiped by the next purge).
func (e *Extractor) GetOrCreateManifest(versionID, edition string, supportedVersions []catalog.Version) (database.AssetManifest, error) {
	var mcVer *catalog.Version
	for i := range supportedVersions {
		if supportedVersions[i].ID == versionID && supportedVersions[i].Edition == edition {
			mcVer = &supportedVersions[i]
			break
		}
	}

	manifest, ok, err := e.store.Get(versionID, edition, SchemaVersion)
	if err != nil {
		return database.AssetManifest{}, err
	}
	if ok {
		return manifest, nil
	}

	if mcVer == nil {
		return database.AssetManifest{}, commonerr.ErrNotFound
	}
	return e.generate(*mcVer, edition)
}

// JarDownloadURL resolves the client jar location for a Java version without
// downloading it.
func (e *Extractor) JarDownloadURL(versionID string, supportedVersions []catalog.Version) (string, error) {
	for _, v := range supportedVersions {
		if v.ID == versionID && v.Edition == catalog.EditionJava {
			return e.resolveClientJarURL(v)
		}
	}
	return "", commonerr.ErrNotFound
}

// OverlaySupport reports whether the given Java version supports resource
// pack overlays. Bedrock never does.
func (e *Extractor) OverlaySupport(versionID, edition string, supportedVersions []catalog.Version) (bool, error) {
	if edition != catalog.EditionJava {
		return false, nil
	}
	manifest, err := e.GetOrCreateManifest(versionID, edition, supportedVersions)
	if err != nil {
		return false, err
	}
	return manifest.OverlaySupport, nil
}

func (e *Extractor) generate(version catalog.Version, edition string) (database.AssetManifest, error) {
	path, err := os.MkdirTemp(e.scratchDir, "assetgen-")
	if err != nil {
		log.WithError(err).Error("could not create asset generation directory")
		return database.AssetManifest{}, commonerr.ErrFilesystem
	}
	// The scratch directory is removed whether or not generation succeeds.
	defer os.RemoveAll(path)

	url := version.URL
	if edition == catalog.EditionJava {
		url, err = e.resolveClientJarURL(version)
		if err != nil {
			log.WithField("version", version.ID).WithError(err).Error("failed to resolve client jar url")
			return database.AssetManifest{}, commonerr.ErrGenerationFailed
		}
	}

	file := filepath.Join(path, "temp.zip")
	if err := e.downloadFile(url, file); err != nil {
		log.WithField("version", version.ID).WithError(err).Error("failed to download assets")
		return database.AssetManifest{}, commonerr.ErrGenerationFailed
	}

	var textures, mcMetas []string
	if edition == catalog.EditionJava {
		textures, mcMetas, err = fileListFromJar(file)
	} else {
		textures, mcMetas, err = fileListFromBedrockZip(file)
	}
	if err != nil {
		log.WithField("version", version.ID).WithError(err).Error("failed to read downloaded archive")
		return database.AssetManifest{}, commonerr.ErrGenerationFailed
	}

	if len(textures) == 0 && len(mcMetas) == 0 {
		// An archive with no recognized assets signals a broken download or
		// extraction, not a version without assets.
		log.WithField("version", version.ID).Error("downloaded archive yielded no assets")
		return database.AssetManifest{}, commonerr.ErrGenerationFailed
	}

	manifest := database.AssetManifest{
		Name:          version.ID,
		SchemaVersion: SchemaVersion,
		Edition:       edition,
		CreatedAt:     time.Now().UTC(),
		Minecraft: database.MinecraftInfo{
			Version:     version.ID,
			Type:        version.Type,
			Edition:     edition,
			ReleaseTime: version.ReleaseTime,
		},
		Textures:       textures,
		McMetas:        mcMetas,
		OverlaySupport: !version.ReleaseTime.Before(overlayCutoff),
	}

	if err := e.store.Put(manifest); err != nil {
		return database.AssetManifest{}, err
	}
	return manifest, nil
}

// resolveClientJarURL follows a Java version's metadata URL to the client jar
// location (downloads.client.url in the version JSON).
func (e *Extractor) resolveClientJarURL(version catalog.Version) (string, error) {
	resp, err := e.client.Get(version.URL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", commonerr.ErrCouldNotDownload
	}

	var meta struct {
		Downloads struct {
			Client struct {
				URL string `json:"url"`
			} `json:"client"`
		} `json:"downloads"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return "", err
	}
	if meta.Downloads.Client.URL == "" {
		return "", commonerr.ErrNotFound
	}
	return meta.Downloads.Client.URL, nil
}

func (e *Extractor) downloadFile(url, path string) error {
	resp, err := e.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return commonerr.ErrCouldNotDownload
	}

	f, err := os.Create(path)
	if err != nil {
		return commonerr.ErrFilesystem
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}

// fileListFromJar enumerates a client jar. Entries under data/ are excluded;
// the rest are kept as textures (png) or mcmetas (mcmeta).
func fileListFromJar(jarPath string) (textures, mcMetas []string, err error) {
	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, nil, commonerr.ErrCorruptArchive
	}
	defer zr.Close()

	for _, file := range zr.File {
		if strings.HasPrefix(file.Name, "data") {
			continue
		}
		if strings.HasSuffix(file.Name, "png") {
			textures = append(textures, file.Name)
		}
		if strings.HasSuffix(file.Name, "mcmeta") {
			mcMetas = append(mcMetas, file.Name)
		}
	}
	return textures, mcMetas, nil
}

// fileListFromBedrockZip enumerates a bedrock-samples zipball, keeping png and
// tga entries under the resource_pack root with that prefix stripped. Bedrock
// has no mcmeta files.
func fileListFromBedrockZip(zipPath string) (textures, mcMetas []string, err error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, nil, commonerr.ErrCorruptArchive
	}
	defer zr.Close()

	for _, file := range zr.File {
		if !bedrockPackRe.MatchString(file.Name) {
			continue
		}
		name := strings.TrimLeft(bedrockPackRe.ReplaceAllString(file.Name, ""), "/\\")
		if strings.HasSuffix(name, "png") || strings.HasSuffix(name, "tga") {
			textures = append(textures, name)
		}
	}
	return textures, nil, nil
}
