package database

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendException is an error that occurs when the database backend does
	// not work properly (ie. unreachable).
	ErrBackendException = errors.New("database: an error occured when querying the backend")

	// ErrInconsistent is an error that occurs when a database consistency check
	// fails (i.e. when an entity which is supposed to be unique is detected
	// twice)
	ErrInconsistent = errors.New("database: inconsistent database")
)

// RegistrableComponentConfig is a configuration block that can be used to
// determine which registrable component should be initialized and pass custom
// configuration to it.
type RegistrableComponentConfig struct {
	Type    string
	Options map[string]interface{}
}

var drivers = make(map[string]Driver)

// Driver is a function that opens a Datastore specified by its database driver
// type and specific configuration.
type Driver func(RegistrableComponentConfig) (Datastore, error)

// Register makes a Constructor available by the provided name.
//
// If this function is called twice with the same name or if the Constructor is
// nil, it panics.
func Register(name string, driver Driver) {
	if driver == nil {
		panic("database: could not register nil Driver")
	}
	if _, dup := drivers[name]; dup {
		panic("database: could not register duplicate Driver: " + name)
	}
	drivers[name] = driver
}

// Open opens a Datastore specified by a configuration.
func Open(cfg RegistrableComponentConfig) (Datastore, error) {
	driver, ok := drivers[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("database: unknown Driver %q (forgotten configuration or import?)", cfg.Type)
	}
	return driver(cfg)
}

// Datastore represents the required operations on the persistent store backing
// the asset manifest cache.
type Datastore interface {
	// Close closes the store and releases its resources.
	Close()

	// Ping verifies that the store is accessible.
	Ping() bool

	// InsertManifest stores (or replaces) a serialized manifest keyed by
	// (name, edition, schema version).
	InsertManifest(record ManifestRecord) error

	// FindManifest returns the record for the given key, or
	// commonerr.ErrNotFound if it does not exist.
	FindManifest(name, edition string, schemaVersion int) (ManifestRecord, error)

	// ListManifests returns every stored record. The manifest JSON is not
	// included; this exists for purge enumeration.
	ListManifests() ([]ManifestRecord, error)

	// DeleteManifest removes one record, reporting whether it existed.
	DeleteManifest(name, edition string, schemaVersion int) (bool, error)

	// DeleteManifestsBefore removes every record whose schema version is
	// strictly lower than the given one, returning the number deleted.
	DeleteManifestsBefore(schemaVersion int) (int64, error)

	// DeleteAllManifests wipes the store, returning the number deleted.
	DeleteAllManifests() (int64, error)

	// InsertKeyValue stores (or updates) a single key / value tuple.
	InsertKeyValue(key, value string) error

	// GetKeyValue reads a single key / value tuple and returns an empty
	// string if the key doesn't exist.
	GetKeyValue(key string) (string, error)
}
