// Package catalog resolves the list of official Minecraft versions from the
// upstream Mojang feeds and applies the highest-patch limiting policy.
package catalog

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/common/commonerr"
)

const (
	EditionJava    = "java"
	EditionBedrock = "bedrock"

	TypeRelease  = "release"
	TypeSnapshot = "snapshot"
	TypeBeta     = "beta"

	defaultJavaManifestURL    = "https://launchermeta.mojang.com/mc/game/version_manifest.json"
	defaultBedrockReleasesURL = "https://api.github.com/repos/Mojang/bedrock-samples/releases"
)

// Version describes one upstream Minecraft version. Values are produced fresh
// on every catalog fetch and never persisted; identity is (ID, Edition).
type Version struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Edition     string    `json:"edition"`
	URL         string    `json:"url"`
	Time        time.Time `json:"time"`
	ReleaseTime time.Time `json:"releaseTime"`
}

// Config overrides the upstream feed locations. Zero values use the official
// Mojang endpoints.
type Config struct {
	JavaManifestURL    string
	BedrockReleasesURL string
}

type Catalog struct {
	client             *http.Client
	javaManifestURL    string
	bedrockReleasesURL string
}

func New(client *http.Client, cfg Config) *Catalog {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.JavaManifestURL == "" {
		cfg.JavaManifestURL = defaultJavaManifestURL
	}
	if cfg.BedrockReleasesURL == "" {
		cfg.BedrockReleasesURL = defaultBedrockReleasesURL
	}
	return &Catalog{
		client:             client,
		javaManifestURL:    cfg.JavaManifestURL,
		bedrockReleasesURL: cfg.BedrockReleasesURL,
	}
}

type javaManifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []javaManifestVersion `json:"versions"`
}

type javaManifestVersion struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	Time        time.Time `json:"time"`
	ReleaseTime time.Time `json:"releaseTime"`
}

func (v javaManifestVersion) toVersion() Version {
	return Version{
		ID:          v.ID,
		Type:        v.Type,
		Edition:     EditionJava,
		URL:         v.URL,
		Time:        v.Time,
		ReleaseTime: v.ReleaseTime,
	}
}

// JavaVersions fetches the Mojang version manifest and returns the supported
// Java versions, newest first. Every release-type entry is considered, plus
// the tagged latest release and snapshot, up to 3 snapshots newer than the
// latest release and the single snapshot immediately older than it.
func (c *Catalog) JavaVersions(bypassLimit bool) ([]Version, error) {
	var manifest javaManifest
	if err := c.fetchJSON(c.javaManifestURL, &manifest); err != nil {
		log.WithError(err).Error("unable to make request to Mojang")
		return nil, commonerr.ErrUpstreamUnreachable
	}

	var versions []Version
	for _, v := range manifest.Versions {
		if v.Type == TypeRelease || v.ID == manifest.Latest.Release || v.ID == manifest.Latest.Snapshot {
			versions = append(versions, v.toVersion())
		}
	}

	// Surface active development builds around the latest full release.
	var latestRelease *Version
	for i := range versions {
		if versions[i].ID == manifest.Latest.Release {
			latestRelease = &versions[i]
			break
		}
	}
	if latestRelease != nil {
		var newer, older []javaManifestVersion
		for _, v := range manifest.Versions {
			if v.Type != TypeSnapshot {
				continue
			}
			if v.ReleaseTime.After(latestRelease.ReleaseTime) {
				newer = append(newer, v)
			} else if v.ReleaseTime.Before(latestRelease.ReleaseTime) {
				older = append(older, v)
			}
		}
		sort.SliceStable(newer, func(i, j int) bool { return newer[i].Time.After(newer[j].Time) })
		sort.SliceStable(older, func(i, j int) bool { return older[i].ReleaseTime.After(older[j].ReleaseTime) })
		if len(newer) > 3 {
			newer = newer[:3]
		}
		if len(older) > 1 {
			older = older[:1]
		}
		for _, v := range append(newer, older...) {
			if !containsID(versions, v.ID) {
				versions = append(versions, v.toVersion())
			}
		}
	}

	versions = dedupeByID(versions)
	sortByReleaseTimeDesc(versions)
	return LimitVersions(versions, bypassLimit), nil
}

type bedrockRelease struct {
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	Prerelease bool      `json:"prerelease"`
	ZipballURL string    `json:"zipball_url"`
}

// BedrockVersions queries the bedrock-samples release list and returns at most
// two versions: the most recent pre-release and the most recent full release.
func (c *Catalog) BedrockVersions() ([]Version, error) {
	var releases []bedrockRelease
	if err := c.fetchJSON(c.bedrockReleasesURL, &releases); err != nil {
		log.WithError(err).Error("unable to fetch bedrock-samples releases")
		return nil, commonerr.ErrUpstreamUnreachable
	}

	var versions []Version

	preRelease := newestRelease(releases, true)
	if preRelease != nil {
		versions = append(versions, Version{
			ID:          TrimBedrockReleaseID(preRelease.Name),
			ReleaseTime: preRelease.CreatedAt.UTC(),
			Time:        preRelease.CreatedAt.UTC(),
			Type:        TypeBeta,
			Edition:     EditionBedrock,
			URL:         preRelease.ZipballURL,
		})
	}

	release := newestRelease(releases, false)
	if release != nil {
		// The upstream feed lists the preview's timestamp on both entries.
		t := time.Now().UTC()
		if preRelease != nil {
			t = preRelease.CreatedAt.UTC()
		}
		versions = append(versions, Version{
			ID:          TrimBedrockReleaseID(release.Name),
			ReleaseTime: release.CreatedAt.UTC(),
			Time:        t,
			Type:        TypeRelease,
			Edition:     EditionBedrock,
			URL:         release.ZipballURL,
		})
	}

	return versions, nil
}

// Versions returns the supported versions for the given edition.
func (c *Catalog) Versions(edition string, bypassLimit bool) ([]Version, error) {
	if edition == EditionBedrock {
		return c.BedrockVersions()
	}
	return c.JavaVersions(bypassLimit)
}

// TrimBedrockReleaseID normalizes a bedrock-samples release tag into a
// version id: the leading 'v' and any '-preview' suffix are stripped.
func TrimBedrockReleaseID(releaseName string) string {
	return strings.Replace(strings.TrimPrefix(releaseName, "v"), "-preview", "", -1)
}

func (c *Catalog) fetchJSON(url string, v interface{}) error {
	resp, err := c.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return commonerr.ErrCouldNotDownload
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func newestRelease(releases []bedrockRelease, prerelease bool) *bedrockRelease {
	var newest *bedrockRelease
	for i := range releases {
		if releases[i].Prerelease != prerelease {
			continue
		}
		if newest == nil || releases[i].CreatedAt.After(newest.CreatedAt) {
			newest = &releases[i]
		}
	}
	return newest
}

func containsID(versions []Version, id string) bool {
	for _, v := range versions {
		if v.ID == id {
			return true
		}
	}
	return false
}

func dedupeByID(versions []Version) []Version {
	seen := make(map[string]struct{}, len(versions))
	out := versions[:0]
	for _, v := range versions {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	return out
}
