package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 2,
		Name:    "multi_turn_history",
		Up:      multiTurnHistory,
	})
}

// multiTurnHistory replaces the single-row-per-user chat_history table with an
// append-only log, so the model gets a real conversation window instead of
// just the last exchange. Surviving rows are carried over.
func multiTurnHistory(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversation_turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('user', 'assistant')),
			message TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_turns_user ON conversation_turns(user_id, timestamp DESC)`,

		`INSERT INTO conversation_turns (user_id, role, message, timestamp)
			SELECT CAST(user_id AS INTEGER), role, message, COALESCE(timestamp, CURRENT_TIMESTAMP)
			FROM chat_history
			WHERE role IN ('user', 'assistant')`,

		`DROP TABLE chat_history`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
