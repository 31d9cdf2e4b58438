package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

var ErrEventNotFound = errors.New("google calendar event not found")

const defaultMaxResults = 250

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	// ReminderMinutes, when set, installs a single popup reminder that many
	// minutes before the event. When nil the default overrides apply:
	// an email a day before and a popup ten minutes before.
	ReminderMinutes *int
}

// EventPatch holds the fields to change on an existing event. Nil fields are
// omitted from the request entirely, so the calendar keeps their current
// values.
type EventPatch struct {
	Summary         *string
	Description     *string
	Location        *string
	StartTime       *time.Time
	EndTime         *time.Time
	ReminderMinutes *int
}

// EventDetails represents a single Google Calendar event.
type EventDetails struct {
	ID          string
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
}

// ListQuery bounds an event listing. Nil bounds mean unbounded on that side.
type ListQuery struct {
	TimeMin    *time.Time
	TimeMax    *time.Time
	MaxResults int64
}

func reminderOverrides(minutes *int) *calendar.EventReminders {
	overrides := []*calendar.EventReminder{
		{Method: "email", Minutes: 24 * 60},
		{Method: "popup", Minutes: 10},
	}
	if minutes != nil {
		overrides = []*calendar.EventReminder{
			{Method: "popup", Minutes: int64(*minutes)},
		}
	}
	return &calendar.EventReminders{
		UseDefault:      false,
		Overrides:       overrides,
		ForceSendFields: []string{"UseDefault"},
	}
}

func parseEventTimes(item *calendar.Event) (time.Time, time.Time, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("event is missing start or end")
	}

	// All-day events use Date instead of DateTime.
	if item.Start.Date != "" {
		startDate, err := time.ParseInLocation("2006-01-02", item.Start.Date, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse all-day start date: %w", err)
		}
		endDate, err := time.ParseInLocation("2006-01-02", item.End.Date, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse all-day end date: %w", err)
		}
		return startDate, endDate, nil
	}

	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("event datetime is missing")
	}

	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse start datetime: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse end datetime: %w", err)
	}

	return startTime, endTime, nil
}

func detailsFromItem(item *calendar.Event) (EventDetails, error) {
	startTime, endTime, err := parseEventTimes(item)
	if err != nil {
		return EventDetails{}, err
	}
	return EventDetails{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		StartTime:   startTime,
		EndTime:     endTime,
	}, nil
}

// CreateEvent creates a new event in the user's primary calendar
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (*EventDetails, error) {
	if c.service == nil {
		return nil, fmt.Errorf("calendar service not initialized")
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime.Format(time.RFC3339),
		},
		Reminders: reminderOverrides(input.ReminderMinutes),
	}

	created, err := c.service.Events.Insert("primary", event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	details, err := detailsFromItem(created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created event: %w", err)
	}
	return &details, nil
}

// ListEvents returns events from the user's primary calendar ordered by start
// time ascending, bounded by the query's time window when provided.
func (c *Client) ListEvents(ctx context.Context, query ListQuery) ([]EventDetails, error) {
	if c.service == nil {
		return nil, fmt.Errorf("calendar service not initialized")
	}
	if query.TimeMin != nil && query.TimeMax != nil && query.TimeMax.Before(*query.TimeMin) {
		return nil, fmt.Errorf("invalid range: time_max is before time_min")
	}

	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	call := c.service.Events.List("primary").
		SingleEvents(true).
		ShowDeleted(false).
		OrderBy("startTime").
		MaxResults(maxResults)
	if query.TimeMin != nil {
		call = call.TimeMin(query.TimeMin.Format(time.RFC3339))
	}
	if query.TimeMax != nil {
		call = call.TimeMax(query.TimeMax.Format(time.RFC3339))
	}

	events, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	result := make([]EventDetails, 0, len(events.Items))
	for _, item := range events.Items {
		if item == nil || item.Status == "cancelled" {
			continue
		}
		details, parseErr := detailsFromItem(item)
		if parseErr != nil {
			// Skip malformed events rather than failing the whole listing.
			continue
		}
		result = append(result, details)
	}

	return result, nil
}

// PatchEvent applies a partial update to an existing event. Only the fields
// set on the patch are sent; everything else keeps its current value.
func (c *Client) PatchEvent(ctx context.Context, eventID string, patch EventPatch) (*EventDetails, error) {
	if c.service == nil {
		return nil, fmt.Errorf("calendar service not initialized")
	}
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}

	event := &calendar.Event{}
	if patch.Summary != nil {
		event.Summary = *patch.Summary
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.StartTime != nil {
		event.Start = &calendar.EventDateTime{DateTime: patch.StartTime.Format(time.RFC3339)}
	}
	if patch.EndTime != nil {
		event.End = &calendar.EventDateTime{DateTime: patch.EndTime.Format(time.RFC3339)}
	}
	if patch.ReminderMinutes != nil {
		event.Reminders = reminderOverrides(patch.ReminderMinutes)
	}

	updated, err := c.service.Events.Patch("primary", eventID, event).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	details, err := detailsFromItem(updated)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated event: %w", err)
	}
	return &details, nil
}

// DeleteEvent deletes an event from the user's primary calendar
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if c.service == nil {
		return fmt.Errorf("calendar service not initialized")
	}
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}

	if err := c.service.Events.Delete("primary", eventID).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

func isNotFound(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && (gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone)
}
