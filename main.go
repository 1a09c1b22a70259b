// Command mctools-ops runs one-shot maintenance operations against the
// manifest store: bulk pregeneration and the purge family. The long-running
// API server lives in mainserver.
package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/catalog"
	"github.com/mullak99/MCTools/database"
	_ "github.com/mullak99/MCTools/database/pgsql"
	"github.com/mullak99/MCTools/extractor"
	"github.com/mullak99/MCTools/store"
)

func main() {
	flagSource := flag.String("source", "", "postgres connection string of the manifest store")
	flagOp := flag.String("op", "pregenerate", "operation to run (pregenerate, purge, purge-all, purge-schema)")
	flagEdition := flag.String("edition", "all", "edition to operate on (java, bedrock, all)")
	flag.Parse()

	if *flagSource == "" {
		log.Fatal("a -source connection string is required")
	}

	db, err := database.Open(database.RegistrableComponentConfig{
		Type:    "pgsql",
		Options: map[string]interface{}{"source": *flagSource},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	manifests := store.New(db)
	versions := catalog.New(nil, catalog.Config{})

	switch *flagOp {
	case "pregenerate":
		assets := extractor.New(manifests, nil, "")
		list, err := supportedVersions(versions, *flagEdition)
		if err != nil {
			log.Fatal(err)
		}
		ok := assets.Pregenerate(list, func(ev extractor.ProgressEvent) {
			entry := log.WithFields(log.Fields{"version": ev.Version, "edition": ev.Edition, "done": ev.Done, "total": ev.Total})
			if ev.Error != "" {
				entry.WithField("error", ev.Error).Warn("version failed")
			} else {
				entry.Info("version done")
			}
		})
		if !ok {
			log.Fatal("pregeneration finished with errors")
		}

	case "purge":
		list, err := supportedVersions(versions, "all")
		if err != nil {
			log.Fatal(err)
		}
		ids := make([]string, 0, len(list))
		for _, v := range list {
			ids = append(ids, v.ID)
		}
		purged, err := manifests.PurgeUnsupported(ids, extractor.SchemaVersion)
		if err != nil {
			log.Fatal(err)
		}
		log.WithField("purged", purged).Info("purged unsupported manifests")

	case "purge-all":
		purged, err := manifests.PurgeAll()
		if err != nil {
			log.Fatal(err)
		}
		log.WithField("purged", purged).Info("purged all manifests")

	case "purge-schema":
		purged, err := manifests.PurgeBySchema(extractor.SchemaVersion)
		if err != nil {
			log.Fatal(err)
		}
		log.WithField("purged", purged).Info("purged outdated manifests")

	default:
		log.Fatalf("unknown operation %q", *flagOp)
	}
}

func supportedVersions(versions *catalog.Catalog, edition string) ([]catalog.Version, error) {
	switch edition {
	case "all":
		java, err := versions.JavaVersions(false)
		if err != nil {
			return nil, err
		}
		bedrock, err := versions.BedrockVersions()
		if err != nil {
			return nil, err
		}
		return append(java, bedrock...), nil
	default:
		return versions.Versions(edition, false)
	}
}
