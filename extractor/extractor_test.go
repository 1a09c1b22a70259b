package extractor

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/common/commonerr"
	"github.com/mullak99/MCTools/database"
	"github.com/mullak99/MCTools/store"
)

// memDatastore is the minimal database.Datastore needed by the store.
type memDatastore struct {
	sync.Mutex
	records map[string]database.ManifestRecord
}

func newMemDatastore() *memDatastore {
	return &memDatastore{records: make(map[string]database.ManifestRecord)}
}

func memKey(name, edition string, schemaVersion int) string {
	return fmt.Sprintf("%s|%s|%d", name, edition, schemaVersion)
}

func (m *memDatastore) Close()     {}
func (m *memDatastore) Ping() bool { return true }

func (m *memDatastore) InsertManifest(record database.ManifestRecord) error {
	m.Lock()
	defer m.Unlock()
	m.records[memKey(record.Name, record.Edition, record.SchemaVersion)] = record
	return nil
}

func (m *memDatastore) FindManifest(name, edition string, schemaVersion int) (database.ManifestRecord, error) {
	m.Lock()
	defer m.Unlock()
	record, ok := m.records[memKey(name, edition, schemaVersion)]
	if !ok {
		return database.ManifestRecord{}, commonerr.ErrNotFound
	}
	return record, nil
}

func (m *memDatastore) ListManifests() ([]database.ManifestRecord, error) {
	m.Lock()
	defer m.Unlock()
	out := make([]database.ManifestRecord, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, record)
	}
	return out, nil
}

func (m *memDatastore) DeleteManifest(name, edition string, schemaVersion int) (bool, error) {
	m.Lock()
	defer m.Unlock()
	key := memKey(name, edition, schemaVersion)
	if _, ok := m.records[key]; !ok {
		return false, nil
	}
	delete(m.records, key)
	return true, nil
}

func (m *memDatastore) DeleteManifestsBefore(schemaVersion int) (int64, error) {
	m.Lock()
	defer m.Unlock()
	var n int64
	for key, record := range m.records {
		if record.SchemaVersion < schemaVersion {
			delete(m.records, key)
			n++
		}
	}
	return n, nil
}

func (m *memDatastore) DeleteAllManifests() (int64, error) {
	m.Lock()
	defer m.Unlock()
	n := int64(len(m.records))
	m.records = make(map[string]database.ManifestRecord)
	return n, nil
}

func (m *memDatastore) InsertKeyValue(key, value string) error  { return nil }
func (m *memDatastore) GetKeyValue(key string) (string, error) { return "", nil }

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// upstream wires a fake Mojang: version metadata, client jar, and a
// bedrock-samples zipball.
type upstream struct {
	jarHits  int
	hitsLock sync.Mutex
}

func newUpstream(t *testing.T) (*httptest.Server, *upstream) {
	u := &upstream{}

	clientJar := buildZip(t, map[string]string{
		"assets/minecraft/textures/block/stone.png":         "png-bytes",
		"assets/minecraft/textures/block/fire_0.png.mcmeta": `{"animation":{}}`,
		"pack.mcmeta":              `{"pack":{}}`,
		"data/minecraft/tags.json": "{}",
	})
	emptyJar := buildZip(t, map[string]string{
		"data/minecraft/tags.json": "{}",
	})
	bedrockZip := buildZip(t, map[string]string{
		"Mojang-bedrock-samples-0a1b2c/resource_pack/textures/blocks/stone.png":    "png-bytes",
		"Mojang-bedrock-samples-0a1b2c/resource_pack/textures/entity/cow.tga":      "tga-bytes",
		"Mojang-bedrock-samples-0a1b2c/documentation/README.md":                    "docs",
		"Mojang-bedrock-samples-0a1b2c/behavior_pack/entities/cow.json":            "{}",
		"Mojang-bedrock-samples-0a1b2c/resource_pack/sounds/sound_definitions.json": "{}",
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/1.20.2.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"downloads":{"client":{"url":"http://%s/client.jar"}}}`, r.Host)
	})
	mux.HandleFunc("/empty.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"downloads":{"client":{"url":"http://%s/empty.jar"}}}`, r.Host)
	})
	mux.HandleFunc("/client.jar", func(w http.ResponseWriter, r *http.Request) {
		u.hitsLock.Lock()
		u.jarHits++
		u.hitsLock.Unlock()
		w.Write(clientJar)
	})
	mux.HandleFunc("/empty.jar", func(w http.ResponseWriter, r *http.Request) {
		w.Write(emptyJar)
	})
	mux.HandleFunc("/bedrock.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(bedrockZip)
	})

	srv := httptest.NewServer(mux)
	return srv, u
}

func javaVersion(srvURL, id, meta string, releaseTime time.Time) catalog.Version {
	return catalog.Version{
		ID:          id,
		Type:        catalog.TypeRelease,
		Edition:     catalog.EditionJava,
		URL:         srvURL + "/" + meta,
		Time:        releaseTime,
		ReleaseTime: releaseTime,
	}
}

func TestGetOrCreateManifestJava(t *testing.T) {
	srv, u := newUpstream(t)
	defer srv.Close()

	s := store.New(newMemDatastore())
	e := New(s, srv.Client(), t.TempDir())

	version := javaVersion(srv.URL, "1.20.2", "1.20.2.json", time.Date(2023, 9, 21, 0, 0, 0, 0, time.UTC))
	supported := []catalog.Version{version}

	manifest, err := e.GetOrCreateManifest("1.20.2", catalog.EditionJava, supported)
	if err != nil {
		t.Fatalf("GetOrCreateManifest: %v", err)
	}

	wantTextures := []string{"assets/minecraft/textures/block/stone.png"}
	sort.Strings(manifest.Textures)
	if len(manifest.Textures) != 1 || manifest.Textures[0] != wantTextures[0] {
		t.Errorf("textures = %v, want %v", manifest.Textures, wantTextures)
	}

	sort.Strings(manifest.McMetas)
	wantMcMetas := []string{"assets/minecraft/textures/block/fire_0.png.mcmeta", "pack.mcmeta"}
	if len(manifest.McMetas) != 2 || manifest.McMetas[0] != wantMcMetas[0] || manifest.McMetas[1] != wantMcMetas[1] {
		t.Errorf("mcMetas = %v, want %v", manifest.McMetas, wantMcMetas)
	}

	if manifest.SchemaVersion != SchemaVersion {
		t.Errorf("schemaVersion = %d, want %d", manifest.SchemaVersion, SchemaVersion)
	}
	if !manifest.OverlaySupport {
		t.Error("a post-overlay-cutoff version must report overlay support")
	}

	t.Run("Idempotent", func(t *testing.T) {
		again, err := e.GetOrCreateManifest("1.20.2", catalog.EditionJava, supported)
		if err != nil {
			t.Fatalf("GetOrCreateManifest: %v", err)
		}
		if u.jarHits != 1 {
			t.Errorf("client jar downloaded %d times, want 1", u.jarHits)
		}
		if again.Name != manifest.Name || len(again.Textures) != len(manifest.Textures) {
			t.Error("second read returned a different manifest")
		}
	})
}

func TestGetOrCreateManifestUnsupported(t *testing.T) {
	srv, _ := newUpstream(t)
	defer srv.Close()

	s := store.New(newMemDatastore())
	e := New(s, srv.Client(), t.TempDir())

	_, err := e.GetOrCreateManifest("1.2.5", catalog.EditionJava, nil)
	if !errors.Is(err, commonerr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGetOrCreateManifestUnsupportedButStored(t *testing.T) {
	srv, _ := newUpstream(t)
	defer srv.Close()

	s := store.New(newMemDatastore())
	e := New(s, srv.Client(), t.TempDir())

	// A stored manifest for a no-longer-supported version is still served; the
	// next purge pass is responsible for dropping it.
	stored := database.AssetManifest{
		Name:          "1.19.2",
		SchemaVersion: SchemaVersion,
		Edition:       catalog.EditionJava,
		Textures:      []string{"assets/minecraft/textures/block/dirt.png"},
	}
	if err := s.Put(stored); err != nil {
		t.Fatalf("Put: %v", err)
	}

	manifest, err := e.GetOrCreateManifest("1.19.2", catalog.EditionJava, nil)
	if err != nil {
		t.Fatalf("GetOrCreateManifest: %v", err)
	}
	if len(manifest.Textures) != 1 || manifest.Textures[0] != stored.Textures[0] {
		t.Errorf("textures = %v, want %v", manifest.Textures, stored.Textures)
	}
}

func TestGetOrCreateManifestEmptyArchive(t *testing.T) {
	srv, _ := newUpstream(t)
	defer srv.Close()

	s := store.New(newMemDatastore())
	e := New(s, srv.Client(), t.TempDir())

	version := javaVersion(srv.URL, "1.8.9", "empty.json", time.Date(2015, 12, 9, 0, 0, 0, 0, time.UTC))

	_, err := e.GetOrCreateManifest("1.8.9", catalog.EditionJava, []catalog.Version{version})
	if !errors.Is(err, commonerr.ErrGenerationFailed) {
		t.Fatalf("got %v, want ErrGenerationFailed", err)
	}

	// Nothing may be cached for a failed generation.
	if _, found, _ := s.Get("1.8.9", catalog.EditionJava, SchemaVersion); found {
		t.Fatal("an empty manifest was persisted")
	}
}

func TestGetOrCreateManifestBedrock(t *testing.T) {
	srv, _ := newUpstream(t)
	defer srv.Close()

	s := store.New(newMemDatastore())
	e := New(s, srv.Client(), t.TempDir())

	version := catalog.Version{
		ID:          "1.20.30.2",
		Type:        catalog.TypeRelease,
		Edition:     catalog.EditionBedrock,
		URL:         srv.URL + "/bedrock.zip",
		ReleaseTime: time.Date(2023, 9, 26, 0, 0, 0, 0, time.UTC),
	}

	manifest, err := e.GetOrCreateManifest("1.20.30.2", catalog.EditionBedrock, []catalog.Version{version})
	if err != nil {
		t.Fatalf("GetOrCreateManifest: %v", err)
	}

	sort.Strings(manifest.Textures)
	want := []string{"textures/blocks/stone.png", "textures/entity/cow.tga"}
	if len(manifest.Textures) != 2 || manifest.Textures[0] != want[0] || manifest.Textures[1] != want[1] {
		t.Errorf("textures = %v, want %v", manifest.Textures, want)
	}
	if len(manifest.McMetas) != 0 {
		t.Errorf("bedrock manifest has mcMetas: %v", manifest.McMetas)
	}
}

func TestJarDownloadURL(t *testing.T) {
	srv, u := newUpstream(t)
	defer srv.Close()

	s := store.New(newMemDatastore())
	e := New(s, srv.Client(), t.TempDir())

	version := javaVersion(srv.URL, "1.20.2", "1.20.2.json", time.Date(2023, 9, 21, 0, 0, 0, 0, time.UTC))

	url, err := e.JarDownloadURL("1.20.2", []catalog.Version{version})
	if err != nil {
		t.Fatalf("JarDownloadURL: %v", err)
	}
	if url == "" || u.jarHits != 0 {
		t.Errorf("url = %q, jar downloads = %d (want a url and 0 downloads)", url, u.jarHits)
	}

	if _, err := e.JarDownloadURL("9.9.9", []catalog.Version{version}); !errors.Is(err, commonerr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestOverlaySupport(t *testing.T) {
	srv, _ := newUpstream(t)
	defer srv.Close()

	s := store.New(newMemDatastore())
	e := New(s, srv.Client(), t.TempDir())

	t.Run("BedrockNever", func(t *testing.T) {
		overlay, err := e.OverlaySupport("1.20.30.2", catalog.EditionBedrock, nil)
		if err != nil {
			t.Fatalf("OverlaySupport: %v", err)
		}
		if overlay {
			t.Error("bedrock must not report overlay support")
		}
	})

	t.Run("OldJavaRelease", func(t *testing.T) {
		version := javaVersion(srv.URL, "1.20.2", "1.20.2.json", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
		overlay, err := e.OverlaySupport("1.20.2", catalog.EditionJava, []catalog.Version{version})
		if err != nil {
			t.Fatalf("OverlaySupport: %v", err)
		}
		if overlay {
			t.Error("a pre-cutoff release must not report overlay support")
		}
	})
}

func TestPregenerate(t *testing.T) {
	srv, _ := newUpstream(t)
	defer srv.Close()

	s := store.New(newMemDatastore())
	e := New(s, srv.Client(), t.TempDir())

	good := javaVersion(srv.URL, "1.20.2", "1.20.2.json", time.Date(2023, 9, 21, 0, 0, 0, 0, time.UTC))
	bad := javaVersion(srv.URL, "1.8.9", "empty.json", time.Date(2015, 12, 9, 0, 0, 0, 0, time.UTC))

	var events []ProgressEvent
	var mu sync.Mutex
	ok := e.Pregenerate([]catalog.Version{good, bad}, func(ev ProgressEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	if ok {
		t.Error("Pregenerate reported success despite a failed version")
	}
	if len(events) != 2 {
		t.Fatalf("got %d progress events, want 2", len(events))
	}
	for _, ev := range events {
		if ev.Total != 2 {
			t.Errorf("event total = %d, want 2", ev.Total)
		}
		if ev.Version == "1.8.9" && ev.Error == "" {
			t.Error("failed version reported no error")
		}
		if ev.Version == "1.20.2" && ev.Error != "" {
			t.Errorf("good version reported error %q", ev.Error)
		}
	}

	if _, found, _ := s.Get("1.20.2", catalog.EditionJava, SchemaVersion); !found {
		t.Error("pregeneration did not store the good version")
	}
}
