package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShadow(userID int64, eventID string) *EventShadow {
	start := time.Date(2025, 8, 14, 14, 0, 0, 0, time.UTC)
	return &EventShadow{
		GoogleEventID: eventID,
		UserID:        userID,
		Title:         "Meeting with John",
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		Description:   "Discuss project updates",
		Location:      "Office",
	}
}

func TestSaveAndGetShadowEvent(t *testing.T) {
	db := NewTestDB(t)

	require.NoError(t, db.SaveShadowEvent(testShadow(1, "gcal-event-1")))

	got, err := db.GetShadowEvent("gcal-event-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Meeting with John", got.Title)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "Office", got.Location)
	assert.Equal(t, "Discuss project updates", got.Description)
	assert.False(t, got.RecordedAt.IsZero())
}

func TestGetShadowEventMissing(t *testing.T) {
	db := NewTestDB(t)

	got, err := db.GetShadowEvent("no-such-event")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveShadowEventOverwrites(t *testing.T) {
	db := NewTestDB(t)

	shadow := testShadow(1, "gcal-event-1")
	require.NoError(t, db.SaveShadowEvent(shadow))

	shadow.Title = "Meeting with John and Dana"
	shadow.Location = "Cafe"
	require.NoError(t, db.SaveShadowEvent(shadow))

	got, err := db.GetShadowEvent("gcal-event-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Meeting with John and Dana", got.Title)
	assert.Equal(t, "Cafe", got.Location)

	all, err := db.ShadowEventsForUser(1)
	require.NoError(t, err)
	assert.Len(t, all, 1, "save is keyed by event id, not append-only")
}

func TestShadowEventsForUser(t *testing.T) {
	db := NewTestDB(t)

	early := testShadow(1, "event-early")
	early.StartTime = time.Date(2025, 8, 14, 9, 0, 0, 0, time.UTC)
	late := testShadow(1, "event-late")
	late.StartTime = time.Date(2025, 8, 14, 17, 0, 0, 0, time.UTC)
	other := testShadow(2, "event-other")

	require.NoError(t, db.SaveShadowEvent(late))
	require.NoError(t, db.SaveShadowEvent(early))
	require.NoError(t, db.SaveShadowEvent(other))

	shadows, err := db.ShadowEventsForUser(1)
	require.NoError(t, err)
	require.Len(t, shadows, 2)
	assert.Equal(t, "event-early", shadows[0].GoogleEventID, "ordered by start time ascending")
	assert.Equal(t, "event-late", shadows[1].GoogleEventID)
}

func TestDeleteShadowEvent(t *testing.T) {
	db := NewTestDB(t)

	require.NoError(t, db.SaveShadowEvent(testShadow(1, "gcal-event-1")))
	require.NoError(t, db.DeleteShadowEvent("gcal-event-1"))

	got, err := db.GetShadowEvent("gcal-event-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an already-deleted record is not an error
	assert.NoError(t, db.DeleteShadowEvent("gcal-event-1"))
}
