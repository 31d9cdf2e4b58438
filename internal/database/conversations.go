package database

import (
	"fmt"
	"time"
)

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn represents one stored message in a user's conversation
type ConversationTurn struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveTurn appends a turn to the user's conversation log
func (d *DB) SaveTurn(userID int64, role Role, message string, timestamp time.Time) error {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	_, err := d.Exec(`
		INSERT INTO conversation_turns (user_id, role, message, timestamp)
		VALUES (?, ?, ?, ?)
	`, userID, role, message, timestamp)
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// History retrieves the last N turns for a user, newest first. Callers that
// feed the result into a model prompt must reverse it into chronological order.
func (d *DB) History(userID int64, limit int) ([]ConversationTurn, error) {
	rows, err := d.Query(`
		SELECT id, user_id, role, message, timestamp, created_at
		FROM conversation_turns
		WHERE user_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var turns []ConversationTurn
	for rows.Next() {
		var t ConversationTurn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Role, &t.Message, &t.Timestamp, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	return turns, nil
}

// AllHistory retrieves every stored turn across all users, newest first
func (d *DB) AllHistory() ([]ConversationTurn, error) {
	rows, err := d.Query(`
		SELECT id, user_id, role, message, timestamp, created_at
		FROM conversation_turns
		ORDER BY timestamp DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query all history: %w", err)
	}
	defer rows.Close()

	var turns []ConversationTurn
	for rows.Next() {
		var t ConversationTurn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Role, &t.Message, &t.Timestamp, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	return turns, nil
}

// ClearHistory removes all turns for a user
func (d *DB) ClearHistory(userID int64) error {
	_, err := d.Exec(`DELETE FROM conversation_turns WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// ClearAllHistory removes every turn for every user. There is no confirmation
// step here; callers must guard it.
func (d *DB) ClearAllHistory() error {
	_, err := d.Exec(`DELETE FROM conversation_turns`)
	if err != nil {
		return fmt.Errorf("failed to clear all history: %w", err)
	}
	return nil
}
