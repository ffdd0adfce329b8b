package sqlite

import "database/sql"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS turns (
		id          TEXT PRIMARY KEY,
		message     TEXT NOT NULL,
		output      TEXT NOT NULL DEFAULT '',
		error       TEXT NOT NULL DEFAULT '',
		tool_calls  INTEGER NOT NULL DEFAULT 0,
		transcript  TEXT NOT NULL DEFAULT '[]',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_turns_created_at ON turns(created_at DESC)`,
}

func runMigrations(db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
