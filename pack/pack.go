// Package pack parses a user-uploaded resource pack archive into a base asset
// set plus the named overlay sub-packs declared in its pack metadata. Parsing
// has no network dependency.
package pack

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/common/commonerr"
)

// Assets is one named set of texture and mcmeta paths. Overlays start
// enabled; disabling one removes its contents from the effective sets without
// re-parsing the archive.
type Assets struct {
	Name     string   `json:"name"`
	Textures []string `json:"textures"`
	McMetas  []string `json:"mcMetas"`
	Enabled  bool     `json:"enabled"`
}

// ResourcePack is the parsed form of an uploaded archive.
type ResourcePack struct {
	Name       string
	Size       int64
	Edition    string
	BaseAssets Assets
	Overlays   []*Assets
}

// Load validates and parses an uploaded archive. The two-pass structure
// mirrors how packs declare overlays: pack.mcmeta names overlay directories,
// and only directories that actually exist in the archive become overlays.
func Load(name string, data []byte, edition string, maxBytes int64) (*ResourcePack, error) {
	if err := Validate(name, int64(len(data)), edition, maxBytes); err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, commonerr.ErrCorruptArchive
	}

	p := &ResourcePack{
		Name:    name,
		Size:    int64(len(data)),
		Edition: edition,
		BaseAssets: Assets{
			Name:    "Assets",
			Enabled: true,
		},
	}

	if edition == catalog.EditionJava {
		p.Overlays = discoverOverlays(zr)
	}

	for _, file := range zr.File {
		fileName := acceptedFileName(file.Name, edition)
		if fileName == "" {
			continue
		}

		folderName := topLevelDir(file.Name)
		target := &p.BaseAssets
		stripped := fileName
		switch {
		case folderName == "" ||
			(edition == catalog.EditionJava && folderName == "assets") ||
			(edition == catalog.EditionBedrock && folderName == "textures"):
			// Base assets keep their full in-archive path.
		default:
			target = p.overlay(folderName)
			if target == nil {
				// Unrecognized directory; silently dropped.
				continue
			}
			stripped = strings.TrimPrefix(fileName, folderName+"/")
		}

		ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), ".")
		switch ext {
		case "png", "tga":
			target.Textures = append(target.Textures, stripped)
		case "mcmeta":
			target.McMetas = append(target.McMetas, stripped)
		}
	}

	return p, nil
}

// discoverOverlays reads overlays.entries[].directory from a root pack.mcmeta
// and cross-references the declared names against the archive's actual
// top-level directories. A missing or malformed pack.mcmeta simply yields
// zero overlays.
func discoverOverlays(zr *zip.Reader) []*Assets {
	var declared []string
	for _, file := range zr.File {
		if strings.ToLower(file.Name) != "pack.mcmeta" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			break
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			break
		}
		declared = overlaysFromMcMeta(raw)
		break
	}
	if len(declared) == 0 {
		return nil
	}

	present := make(map[string]struct{})
	for _, file := range zr.File {
		if dir := topLevelDir(file.Name); dir != "" {
			present[dir] = struct{}{}
		}
	}

	var overlays []*Assets
	for _, dir := range declared {
		if dir == "assets" {
			continue
		}
		if _, ok := present[dir]; !ok {
			continue
		}
		overlays = append(overlays, &Assets{Name: dir, Enabled: true})
	}
	return overlays
}

func overlaysFromMcMeta(raw []byte) []string {
	var meta struct {
		Overlays struct {
			Entries []struct {
				Directory string `json:"directory"`
			} `json:"entries"`
		} `json:"overlays"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}

	var dirs []string
	for _, entry := range meta.Overlays.Entries {
		if entry.Directory != "" {
			dirs = append(dirs, entry.Directory)
		}
	}
	return dirs
}

// acceptedFileName returns the entry name if its extension is recognized for
// the edition, or "" to drop it. pack.mcmeta itself is never an asset.
func acceptedFileName(fileName, edition string) string {
	switch {
	case strings.HasSuffix(fileName, "png"):
		return fileName
	case edition == catalog.EditionJava && strings.HasSuffix(fileName, "mcmeta") && fileName != "pack.mcmeta":
		return fileName
	case edition == catalog.EditionBedrock && strings.HasSuffix(fileName, "tga"):
		return fileName
	}
	return ""
}

// topLevelDir returns the path segment before the first '/', or "" for
// entries at the archive root.
func topLevelDir(fullPath string) string {
	if i := strings.Index(fullPath, "/"); i > 0 {
		return fullPath[:i]
	}
	return ""
}

func (p *ResourcePack) overlay(name string) *Assets {
	for _, overlay := range p.Overlays {
		if overlay.Name == name {
			return overlay
		}
	}
	return nil
}

// SetOverlayEnabled toggles one overlay by name, reporting whether it exists.
func (p *ResourcePack) SetOverlayEnabled(name string, enabled bool) bool {
	if overlay := p.overlay(name); overlay != nil {
		overlay.Enabled = enabled
		return true
	}
	return false
}

// GetEffectiveTextures returns the union of the base textures and every
// enabled overlay's textures, deduplicated.
func (p *ResourcePack) GetEffectiveTextures() []string {
	return p.effective(func(a *Assets) []string { return a.Textures })
}

// GetEffectiveMcMetas returns the union of the base mcmetas and every enabled
// overlay's mcmetas, deduplicated.
func (p *ResourcePack) GetEffectiveMcMetas() []string {
	return p.effective(func(a *Assets) []string { return a.McMetas })
}

func (p *ResourcePack) effective(pick func(*Assets) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(paths []string) {
		for _, path := range paths {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			out = append(out, path)
		}
	}
	add(pick(&p.BaseAssets))
	for _, overlay := range p.Overlays {
		if overlay.Enabled {
			add(pick(overlay))
		}
	}
	return out
}

// ResolvePath returns the full in-archive path for a relative asset name,
// checking the base assets first and then each enabled overlay.
func (p *ResourcePack) ResolvePath(relativePath string) (string, bool) {
	if contains(p.BaseAssets.Textures, relativePath) || contains(p.BaseAssets.McMetas, relativePath) {
		return relativePath, true
	}
	for _, overlay := range p.Overlays {
		if !overlay.Enabled {
			continue
		}
		if contains(overlay.Textures, relativePath) || contains(overlay.McMetas, relativePath) {
			return overlay.Name + "/" + relativePath, true
		}
	}
	return "", false
}

func contains(paths []string, want string) bool {
	for _, path := range paths {
		if path == want {
			return true
		}
	}
	return false
}
