// Package store provides the two-tier asset manifest store: a TTL-bounded
// in-memory cache in front of the durable datastore.
package store

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/common/commonerr"
	"github.com/mullak99/MCTools/common/throttle"
	"github.com/mullak99/MCTools/database"
)

const (
	cacheTTL = 12 * time.Hour

	// cacheSize bounds the cache entry count. The namespace is tiny (one
	// entry per supported version+edition) so this is never hit in practice.
	cacheSize = 4096
)

// ManifestStore maps (name, edition, schema version) to an AssetManifest.
// Reads hit the in-memory cache first; durable hits populate the cache.
// Writes go straight through to the datastore and are picked up by the cache
// lazily on the next read.
type ManifestStore struct {
	db    database.Datastore
	cache *expirable.LRU[string, database.AssetManifest]
}

func New(db database.Datastore) *ManifestStore {
	return &ManifestStore{
		db:    db,
		cache: expirable.NewLRU[string, database.AssetManifest](cacheSize, nil, cacheTTL),
	}
}

// cacheKey derives the cache id from the composite key. Any deterministic
// fixed-length digest would do; sha1 matches the stored id format clients
// already rely on.
func cacheKey(name, edition string, schemaVersion int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%s:%d", name, edition, schemaVersion)))
	return hex.EncodeToString(sum[:])
}

// Get returns the manifest for the given key, and whether it was found.
func (s *ManifestStore) Get(name, edition string, schemaVersion int) (database.AssetManifest, bool, error) {
	key := cacheKey(name, edition, schemaVersion)
	if manifest, ok := s.cache.Get(key); ok {
		return manifest, true, nil
	}

	record, err := s.db.FindManifest(name, edition, schemaVersion)
	if err == commonerr.ErrNotFound {
		return database.AssetManifest{}, false, nil
	}
	if err != nil {
		return database.AssetManifest{}, false, err
	}

	var manifest database.AssetManifest
	if err := json.Unmarshal([]byte(record.JSON), &manifest); err != nil {
		// A record that cannot be decoded is as good as absent; it will be
		// regenerated and replaced.
		log.WithField("version", name).WithError(err).Warning("stored manifest is not valid JSON")
		return database.AssetManifest{}, false, nil
	}

	s.cache.Add(key, manifest)
	return manifest, true, nil
}

// Put serializes the manifest and writes it through to the datastore.
func (s *ManifestStore) Put(manifest database.AssetManifest) error {
	body, err := json.Marshal(manifest)
	if err != nil {
		return err
	}

	return s.db.InsertManifest(database.ManifestRecord{
		Name:          manifest.Name,
		Edition:       manifest.Edition,
		SchemaVersion: manifest.SchemaVersion,
		JSON:          string(body),
		CreatedAt:     manifest.CreatedAt,
	})
}

// Delete removes the manifest from the datastore and evicts it from the cache.
func (s *ManifestStore) Delete(name, edition string, schemaVersion int) (bool, error) {
	deleted, err := s.db.DeleteManifest(name, edition, schemaVersion)
	if deleted {
		s.cache.Remove(cacheKey(name, edition, schemaVersion))
	}
	return deleted, err
}

// PurgeUnsupported deletes every stored manifest whose name is not in the
// supported id set or whose schema version is stale, returning the number of
// deletions issued. Victims are enumerated fully before any delete is issued;
// individual delete failures are logged and skipped so the bulk operation
// completes.
func (s *ManifestStore) PurgeUnsupported(supportedIDs []string, currentSchemaVersion int) (int64, error) {
	records, err := s.db.ListManifests()
	if err != nil {
		return 0, err
	}

	supported := make(map[string]struct{}, len(supportedIDs))
	for _, id := range supportedIDs {
		supported[id] = struct{}{}
	}

	var victims []database.ManifestRecord
	for _, record := range records {
		if _, ok := supported[record.Name]; !ok || record.SchemaVersion != currentSchemaVersion {
			victims = append(victims, record)
		}
	}

	var count int64
	fns := make([]func(), 0, len(victims))
	for _, victim := range victims {
		victim := victim
		fns = append(fns, func() {
			deleted, err := s.Delete(victim.Name, victim.Edition, victim.SchemaVersion)
			if err != nil {
				log.WithField("version", victim.Name).WithError(err).Error("failed to delete unsupported manifest")
				return
			}
			if deleted {
				atomic.AddInt64(&count, 1)
			}
		})
	}
	throttle.Run(throttle.DefaultLimit, fns)

	return count, nil
}

// PurgeBySchema deletes every stored manifest with a schema version strictly
// older than the given one.
func (s *ManifestStore) PurgeBySchema(currentSchemaVersion int) (int64, error) {
	n, err := s.db.DeleteManifestsBefore(currentSchemaVersion)
	if err != nil {
		return 0, err
	}
	s.cache.Purge()
	return n, nil
}

// PurgeAll wipes the datastore and the cache, returning the number deleted.
func (s *ManifestStore) PurgeAll() (int64, error) {
	n, err := s.db.DeleteAllManifests()
	if err != nil {
		return 0, err
	}
	s.cache.Purge()
	return n, nil
}

// PurgeCache drops the in-memory cache only; the datastore is untouched.
func (s *ManifestStore) PurgeCache() bool {
	s.cache.Purge()
	return true
}
