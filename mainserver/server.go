package main

import (
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/api"
	v1 "github.com/mullak99/MCTools/api/v1"
	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/common/stopper"
	"github.com/mullak99/MCTools/database"
	_ "github.com/mullak99/MCTools/database/pgsql"
	"github.com/mullak99/MCTools/extractor"
	"github.com/mullak99/MCTools/store"
)

// schemaFlagKey tracks the manifest schema version the stored data was
// generated with.
const schemaFlagKey = "manifestSchemaVersion"

func waitForSignals(signals ...os.Signal) {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, signals...)
	<-interrupts
}

func Boot(config *Config) {
	st := stopper.NewStopper()

	db, err := database.Open(config.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	manifests := store.New(db)
	versions := catalog.New(nil, catalog.Config{
		JavaManifestURL:    config.Upstream.JavaManifestURL,
		BedrockReleasesURL: config.Upstream.BedrockReleasesURL,
	})
	assets := extractor.New(manifests, nil, config.ScratchDir)

	purgeOutdatedManifests(db, manifests)

	env := &v1.Env{
		Store:     manifests,
		Catalog:   versions,
		Extractor: assets,
		Progress:  v1.NewProgressHub(),
	}

	apiConfig := &api.Config{
		Port:       config.API.Port,
		HealthPort: config.API.HealthPort,
		Timeout:    time.Duration(config.API.TimeoutSeconds) * time.Second,
		AdminToken: config.API.AdminToken,
		CertFile:   config.API.CertFile,
		KeyFile:    config.API.KeyFile,
		CAFile:     config.API.CAFile,
	}

	st.Begin()
	go api.Run(apiConfig, env, st)
	st.Begin()
	go api.RunHealth(apiConfig, db, st)

	waitForSignals(syscall.SIGINT, syscall.SIGTERM)
	st.Stop()
}

// purgeOutdatedManifests wipes manifests generated under an older schema the
// first time the process boots after a schema bump.
func purgeOutdatedManifests(db database.Datastore, manifests *store.ManifestStore) {
	current := strconv.Itoa(extractor.SchemaVersion)

	stored, err := db.GetKeyValue(schemaFlagKey)
	if err != nil {
		log.WithError(err).Error("could not read the stored schema version")
		return
	}
	if stored == current {
		return
	}

	purged, err := manifests.PurgeBySchema(extractor.SchemaVersion)
	if err != nil {
		log.WithError(err).Error("could not purge outdated manifests")
		return
	}
	if purged > 0 {
		log.WithField("purged", purged).Info("purged manifests from an older schema")
	}

	if err := db.InsertKeyValue(schemaFlagKey, current); err != nil {
		log.WithError(err).Error("could not record the current schema version")
	}
}

func main() {
	flagConfigPath := flag.String("config", "/etc/mctools/config.yaml", "Load configuration from the specified file.")
	flag.Parse()

	config, err := LoadConfig(*flagConfigPath)
	if err != nil {
		log.WithError(err).Warn("could not load configuration, using defaults")
		defaults := DefaultConfig()
		config = &defaults
	}

	Boot(config)
}
