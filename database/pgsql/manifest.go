package pgsql

import (
	"time"

	"github.com/guregu/null/zero"
	log "github.com/sirupsen/logrus"

	"github.com/mullak99/MCTools/common/commonerr"
	"github.com/mullak99/MCTools/database"
)

// InsertManifest stores (or replaces) a serialized manifest.
func (pgSQL *pgSQL) InsertManifest(record database.ManifestRecord) error {
	if record.Name == "" || record.Edition == "" || record.JSON == "" {
		log.Warning("could not insert a manifest which has an empty name, edition or body")
		return commonerr.NewBadRequestError("could not insert a manifest which has an empty name, edition or body")
	}

	defer observeQueryTime("InsertManifest", "all", time.Now())

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	for {
		// First, try to update.
		r, err := pgSQL.Exec(updateManifest, record.Name, record.Edition, record.SchemaVersion, record.JSON, createdAt)
		if err != nil {
			return handleError("updateManifest", err)
		}
		if n, _ := r.RowsAffected(); n > 0 {
			// Updated successfully.
			return nil
		}

		// Try to insert the manifest.
		// If someone else inserts the same key concurrently, we could get a unique-key violation error.
		_, err = pgSQL.Exec(insertManifest, record.Name, record.Edition, record.SchemaVersion, record.JSON, createdAt)
		if err != nil {
			if isErrUniqueViolation(err) {
				// Got unique constraint violation, retry.
				continue
			}
			return handleError("insertManifest", err)
		}

		return nil
	}
}

// FindManifest returns the record for (name, edition, schemaVersion), or
// commonerr.ErrNotFound.
func (pgSQL *pgSQL) FindManifest(name, edition string, schemaVersion int) (database.ManifestRecord, error) {
	defer observeQueryTime("FindManifest", "all", time.Now())

	record := database.ManifestRecord{
		Name:          name,
		Edition:       edition,
		SchemaVersion: schemaVersion,
	}

	var createdAt zero.Time
	err := pgSQL.QueryRow(searchManifest, name, edition, schemaVersion).
		Scan(&record.ID, &record.JSON, &createdAt)
	if err != nil {
		return record, handleError("searchManifest", err)
	}
	record.CreatedAt = createdAt.Time

	return record, nil
}

// ListManifests enumerates every stored record without their JSON bodies.
func (pgSQL *pgSQL) ListManifests() ([]database.ManifestRecord, error) {
	defer observeQueryTime("ListManifests", "all", time.Now())

	rows, err := pgSQL.Query(listManifests)
	if err != nil {
		return nil, handleError("listManifests", err)
	}
	defer rows.Close()

	var records []database.ManifestRecord
	for rows.Next() {
		var record database.ManifestRecord
		var createdAt zero.Time
		if err := rows.Scan(&record.ID, &record.Name, &record.Edition, &record.SchemaVersion, &createdAt); err != nil {
			return nil, handleError("listManifests.Scan()", err)
		}
		record.CreatedAt = createdAt.Time
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, handleError("listManifests.Rows()", err)
	}

	return records, nil
}

// DeleteManifest removes one record, reporting whether it existed.
func (pgSQL *pgSQL) DeleteManifest(name, edition string, schemaVersion int) (bool, error) {
	defer observeQueryTime("DeleteManifest", "all", time.Now())

	r, err := pgSQL.Exec(removeManifest, name, edition, schemaVersion)
	if err != nil {
		return false, handleError("removeManifest", err)
	}
	n, _ := r.RowsAffected()
	return n > 0, nil
}

// DeleteManifestsBefore removes every record with a schema version strictly
// lower than the given one.
func (pgSQL *pgSQL) DeleteManifestsBefore(schemaVersion int) (int64, error) {
	defer observeQueryTime("DeleteManifestsBefore", "all", time.Now())

	r, err := pgSQL.Exec(removeManifestsBefore, schemaVersion)
	if err != nil {
		return 0, handleError("removeManifestsBefore", err)
	}
	n, _ := r.RowsAffected()
	return n, nil
}

// DeleteAllManifests wipes the store.
func (pgSQL *pgSQL) DeleteAllManifests() (int64, error) {
	defer observeQueryTime("DeleteAllManifests", "all", time.Now())

	r, err := pgSQL.Exec(removeAllManifests)
	if err != nil {
		return 0, handleError("removeAllManifests", err)
	}
	n, _ := r.RowsAffected()
	return n, nil
}
