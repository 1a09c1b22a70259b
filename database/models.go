package database

import "time"

// ID is only meant to be used by database implementations and should never be used for anything else.
type Model struct {
	ID int
}

// ManifestRecord is the stored form of an asset manifest: the manifest itself
// is an opaque JSON document, keyed by (Name, Edition, SchemaVersion).
type ManifestRecord struct {
	Model

	Name          string
	Edition       string
	SchemaVersion int
	JSON          string
	CreatedAt     time.Time
}

// MinecraftInfo identifies the upstream version a manifest was generated from.
type MinecraftInfo struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Edition     string    `json:"edition"`
	ReleaseTime time.Time `json:"releaseTime"`
}

// AssetManifest is the cached list of texture and metadata paths belonging to
// one version+edition. Manifests whose SchemaVersion does not match the
// extractor's current constant are treated as absent and regenerated.
type AssetManifest struct {
	Name           string        `json:"name"`
	SchemaVersion  int           `json:"version"`
	Edition        string        `json:"edition"`
	CreatedAt      time.Time     `json:"createdDate"`
	Minecraft      MinecraftInfo `json:"minecraft"`
	Textures       []string      `json:"textures"`
	McMetas        []string      `json:"mcMetas"`
	OverlaySupport bool          `json:"overlaySupport"`
}

// Valid reports whether the manifest holds any recognized assets. An empty
// manifest signals a failed generation, not a version without assets.
func (m AssetManifest) Valid() bool {
	return len(m.Textures) > 0 || len(m.McMetas) > 0
}
