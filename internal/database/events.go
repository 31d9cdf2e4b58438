package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EventShadow is a local mirror of a Google Calendar event created or updated
// through the bot. It exists for audit/history queries independent of calendar
// availability; the live calendar stays the source of truth.
type EventShadow struct {
	GoogleEventID string    `json:"google_event_id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Description   string    `json:"description,omitempty"`
	Location      string    `json:"location,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// SaveShadowEvent inserts or replaces the mirror record for a calendar event
func (d *DB) SaveShadowEvent(shadow *EventShadow) error {
	_, err := d.Exec(`
		INSERT OR REPLACE INTO event_shadows (
			google_event_id, user_id, title, start_time, end_time, description, location
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, shadow.GoogleEventID, shadow.UserID, shadow.Title, shadow.StartTime, shadow.EndTime,
		shadow.Description, shadow.Location)
	if err != nil {
		return fmt.Errorf("failed to save shadow event: %w", err)
	}
	return nil
}

// GetShadowEvent retrieves the mirror record by Google event ID
func (d *DB) GetShadowEvent(googleEventID string) (*EventShadow, error) {
	var s EventShadow
	var description, location sql.NullString

	err := d.QueryRow(`
		SELECT google_event_id, user_id, title, start_time, end_time, description, location, recorded_at
		FROM event_shadows
		WHERE google_event_id = ?
	`, googleEventID).Scan(
		&s.GoogleEventID, &s.UserID, &s.Title, &s.StartTime, &s.EndTime,
		&description, &location, &s.RecordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shadow event: %w", err)
	}

	s.Description = description.String
	s.Location = location.String
	return &s, nil
}

// ShadowEventsForUser retrieves all mirror records for a user, ordered by start time
func (d *DB) ShadowEventsForUser(userID int64) ([]EventShadow, error) {
	rows, err := d.Query(`
		SELECT google_event_id, user_id, title, start_time, end_time, description, location, recorded_at
		FROM event_shadows
		WHERE user_id = ?
		ORDER BY start_time ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shadow events: %w", err)
	}
	defer rows.Close()

	var shadows []EventShadow
	for rows.Next() {
		var s EventShadow
		var description, location sql.NullString
		if err := rows.Scan(&s.GoogleEventID, &s.UserID, &s.Title, &s.StartTime, &s.EndTime,
			&description, &location, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shadow event: %w", err)
		}
		s.Description = description.String
		s.Location = location.String
		shadows = append(shadows, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shadow events: %w", err)
	}

	return shadows, nil
}

// DeleteShadowEvent removes the mirror record for a deleted calendar event
func (d *DB) DeleteShadowEvent(googleEventID string) error {
	_, err := d.Exec(`DELETE FROM event_shadows WHERE google_event_id = ?`, googleEventID)
	if err != nil {
		return fmt.Errorf("failed to delete shadow event: %w", err)
	}
	return nil
}
