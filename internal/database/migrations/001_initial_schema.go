package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "initial_schema",
		Up:      initialSchema,
	})
}

func initialSchema(db *sql.DB) error {
	statements := []string{
		// Chat history table. One row per user: each message replaces the
		// previous one, so the model only ever sees the latest exchange.
		`CREATE TABLE IF NOT EXISTS chat_history (
			user_id     TEXT PRIMARY KEY,
			role        TEXT NOT NULL,
			message     TEXT NOT NULL,
			timestamp   DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Local mirror of calendar events created through the bot, kept for
		// audit/history queries independent of calendar availability
		`CREATE TABLE IF NOT EXISTS event_shadows (
			google_event_id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			description TEXT,
			location TEXT,
			recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_event_shadows_user ON event_shadows(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
