package history

import (
	"database/sql"

	"codeberg.org/mutker/perfctl/internal/errors"
)

// initSchema initializes the database schema for session history
func initSchema(db *sql.DB) error {
	errFactory := errors.New()

	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS snapshots (
            timestamp INTEGER PRIMARY KEY,
            fps REAL,
            ram_usage_pct REAL,
            cpu_usage_pct REAL,
            temperature REAL,
            thermal_state TEXT,
            throttle_strength REAL,
            resolution_scale REAL,
            lod_level REAL,
            corrected INTEGER
        )
    `)
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp INTEGER,
            category TEXT,
            magnitude REAL,
            reasons TEXT
        )
    `)
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}
