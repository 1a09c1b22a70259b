package pgsql

const createSchema = `
	CREATE TABLE IF NOT EXISTS version_assets (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		edition TEXT NOT NULL,
		schema_version INT NOT NULL,
		json TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE,
		UNIQUE (name, edition, schema_version));

	CREATE TABLE IF NOT EXISTS keyvalue (
		id SERIAL PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		value TEXT);`

const (
	insertManifest = `
		INSERT INTO version_assets (name, edition, schema_version, json, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	updateManifest = `
		UPDATE version_assets SET json = $4, created_at = $5
		WHERE name = $1 AND edition = $2 AND schema_version = $3`

	searchManifest = `
		SELECT id, json, created_at FROM version_assets
		WHERE name = $1 AND edition = $2 AND schema_version = $3`

	listManifests = `
		SELECT id, name, edition, schema_version, created_at FROM version_assets`

	removeManifest = `
		DELETE FROM version_assets
		WHERE name = $1 AND edition = $2 AND schema_version = $3`

	removeManifestsBefore = `DELETE FROM version_assets WHERE schema_version < $1`

	removeAllManifests = `DELETE FROM version_assets`

	updateKeyValue = `UPDATE keyvalue SET value = $1 WHERE key = $2`
	insertKeyValue = `INSERT INTO keyvalue (key, value) VALUES ($1, $2)`
	searchKeyValue = `SELECT value FROM keyvalue WHERE key = $1`
)
