package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeExplicitError(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "bare sentinel", raw: "Error"},
		{name: "surrounding whitespace", raw: "  Error\n"},
		{name: "fenced block", raw: "```\nError\n```"},
		{name: "fenced block with whitespace", raw: "\n```\n  Error  \n```\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode(tt.raw)
			assert.Nil(t, cmd)
			assert.ErrorIs(t, err, ErrUnclear)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty reply", raw: ""},
		{name: "free prose", raw: "Sure, I'd be happy to help with that!"},
		{name: "lowercase error is not the sentinel", raw: "error"},
		{name: "unrecognized action", raw: "Action: remind\nSummary: Dentist"},
		{name: "create without summary", raw: "Action: create\nStart Time: 2025-08-14T14:00:00Z"},
		{name: "create with sentinel summary", raw: "Action: create\nSummary: N/A\nStart Time: 2025-08-14T14:00:00Z"},
		{name: "create without start", raw: "Action: create\nSummary: Meeting"},
		{name: "create with bad start", raw: "Action: create\nSummary: Meeting\nStart Time: tomorrow at noon"},
		{name: "update without summary", raw: "Action: update\nStart Time: 2025-08-14T14:00:00Z"},
		{name: "delete without summary", raw: "Action: delete"},
		{name: "non numeric reminder", raw: "Action: create\nSummary: Meeting\nStart Time: 2025-08-14T14:00:00Z\nReminders: soon"},
		{name: "negative reminder", raw: "Action: create\nSummary: Meeting\nStart Time: 2025-08-14T14:00:00Z\nReminders: -5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode(tt.raw)
			assert.Nil(t, cmd)
			require.Error(t, err)
			assert.True(t, IsMalformed(err), "expected malformed, got %v", err)
			assert.NotErrorIs(t, err, ErrUnclear)
		})
	}
}

func TestDecodeCreate(t *testing.T) {
	raw := "Action: create\n" +
		"Summary: Meeting with John\n" +
		"Location: Office\n" +
		"Description: N/A\n" +
		"Start Time: 2025-08-14T14:00:00Z\n" +
		"End Time: 2025-08-14T15:00:00Z\n" +
		"Reminders: N/A"

	cmd, err := Decode(raw)
	require.NoError(t, err)

	create, ok := cmd.(*CreateCommand)
	require.True(t, ok, "expected CreateCommand, got %T", cmd)
	assert.Equal(t, ActionCreate, cmd.Action())
	assert.Equal(t, "Meeting with John", create.Summary)
	require.NotNil(t, create.Location)
	assert.Equal(t, "Office", *create.Location)
	assert.Nil(t, create.Description)
	assert.Nil(t, create.ReminderMinutes)
	assert.Equal(t, time.Date(2025, 8, 14, 14, 0, 0, 0, time.UTC), create.Start.UTC())
	assert.Equal(t, time.Date(2025, 8, 14, 15, 0, 0, 0, time.UTC), create.End.UTC())
}

func TestDecodeCreateDefaultsEndToStartPlusHour(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "end time absent",
			raw:  "Action: create\nSummary: Standup\nStart Time: 2025-08-14T09:30:00Z",
		},
		{
			name: "end time sentinel",
			raw:  "Action: create\nSummary: Standup\nStart Time: 2025-08-14T09:30:00Z\nEnd Time: N/A",
		},
		{
			name: "end time empty",
			raw:  "Action: create\nSummary: Standup\nStart Time: 2025-08-14T09:30:00Z\nEnd Time:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode(tt.raw)
			require.NoError(t, err)

			create := cmd.(*CreateCommand)
			assert.Equal(t, create.Start.Add(time.Hour), create.End)
		})
	}
}

func TestDecodeCreateVariants(t *testing.T) {
	t.Run("fenced reply", func(t *testing.T) {
		raw := "```\nAction: create\nSummary: Lunch\nStart Time: 2025-08-14T12:00:00Z\nEnd Time: 2025-08-14T13:00:00Z\n```"
		cmd, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "Lunch", cmd.(*CreateCommand).Summary)
	})

	t.Run("stray prose lines are ignored", func(t *testing.T) {
		raw := "Here is the event\nAction: create\nSummary: Lunch\nStart Time: 2025-08-14T12:00:00Z"
		cmd, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "Lunch", cmd.(*CreateCommand).Summary)
	})

	t.Run("quoted values are trimmed", func(t *testing.T) {
		raw := "Action: create\nSummary: \"Lunch\"\nStart Time: 2025-08-14T12:00:00Z"
		cmd, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "Lunch", cmd.(*CreateCommand).Summary)
	})

	t.Run("action is case-insensitive", func(t *testing.T) {
		raw := "Action: CREATE\nSummary: Lunch\nStart Time: 2025-08-14T12:00:00Z"
		cmd, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, ActionCreate, cmd.Action())
	})

	t.Run("zone-less timestamp is read as UTC", func(t *testing.T) {
		raw := "Action: create\nSummary: Lunch\nStart Time: 2025-08-14T12:00:00"
		cmd, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 8, 14, 12, 0, 0, 0, time.UTC), cmd.(*CreateCommand).Start)
	})

	t.Run("numeric reminder", func(t *testing.T) {
		raw := "Action: create\nSummary: Lunch\nStart Time: 2025-08-14T12:00:00Z\nReminders: 30"
		cmd, err := Decode(raw)
		require.NoError(t, err)
		require.NotNil(t, cmd.(*CreateCommand).ReminderMinutes)
		assert.Equal(t, 30, *cmd.(*CreateCommand).ReminderMinutes)
	})
}

func TestDecodeList(t *testing.T) {
	t.Run("bare list has no filters", func(t *testing.T) {
		cmd, err := Decode("Action: list")
		require.NoError(t, err)

		list, ok := cmd.(*ListCommand)
		require.True(t, ok, "expected ListCommand, got %T", cmd)
		assert.Nil(t, list.Location)
		assert.Nil(t, list.Start)
		assert.Nil(t, list.End)
	})

	t.Run("list with window and location", func(t *testing.T) {
		raw := "Action: list\nSummary: N/A\nLocation: Office\nStart Time: 2025-08-11T00:00:00Z\nEnd Time: 2025-08-17T23:59:59Z"
		cmd, err := Decode(raw)
		require.NoError(t, err)

		list := cmd.(*ListCommand)
		require.NotNil(t, list.Location)
		assert.Equal(t, "Office", *list.Location)
		require.NotNil(t, list.Start)
		require.NotNil(t, list.End)
		assert.True(t, list.Start.Before(*list.End))
	})
}

func TestDecodeUpdate(t *testing.T) {
	t.Run("sentinel fields stay absent", func(t *testing.T) {
		raw := "Action: update\n" +
			"Summary: Dentist appointment\n" +
			"Location: N/A\n" +
			"Description: \n" +
			"Start Time: 2025-08-15T15:00:00Z\n" +
			"End Time: N/A\n" +
			"Reminders: N/A"

		cmd, err := Decode(raw)
		require.NoError(t, err)

		update, ok := cmd.(*UpdateCommand)
		require.True(t, ok, "expected UpdateCommand, got %T", cmd)
		assert.Equal(t, "Dentist appointment", update.Summary)
		assert.Nil(t, update.Location, "N/A must not survive decoding")
		assert.Nil(t, update.Description, "empty string must not survive decoding")
		assert.Nil(t, update.End)
		assert.Nil(t, update.ReminderMinutes)
		require.NotNil(t, update.Start)
		assert.Equal(t, time.Date(2025, 8, 15, 15, 0, 0, 0, time.UTC), update.Start.UTC())
	})

	t.Run("no time means no default", func(t *testing.T) {
		cmd, err := Decode("Action: update\nSummary: Dentist appointment\nLocation: Downtown clinic")
		require.NoError(t, err)

		update := cmd.(*UpdateCommand)
		assert.Nil(t, update.Start)
		assert.Nil(t, update.End)
		require.NotNil(t, update.Location)
		assert.Equal(t, "Downtown clinic", *update.Location)
	})
}

func TestDecodeDelete(t *testing.T) {
	raw := "Action: delete\nSummary: Team lunch\nStart Time: 2025-08-14T00:00:00Z\nEnd Time: 2025-08-15T00:00:00Z"
	cmd, err := Decode(raw)
	require.NoError(t, err)

	del, ok := cmd.(*DeleteCommand)
	require.True(t, ok, "expected DeleteCommand, got %T", cmd)
	assert.Equal(t, "Team lunch", del.Summary)
	require.NotNil(t, del.Start)
	require.NotNil(t, del.End)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	office := "Office"
	desc := "Quarterly review"
	reminder := 15
	start := time.Date(2025, 8, 14, 14, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 14, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cmd  Command
	}{
		{
			name: "create with all fields",
			cmd: &CreateCommand{
				Summary:         "Meeting with John",
				Location:        &office,
				Description:     &desc,
				Start:           start,
				End:             end,
				ReminderMinutes: &reminder,
			},
		},
		{
			name: "create with optional fields absent",
			cmd:  &CreateCommand{Summary: "Standup", Start: start, End: end},
		},
		{
			name: "update with partial fields",
			cmd:  &UpdateCommand{Summary: "Dentist appointment", Start: &start},
		},
		{
			name: "delete with window",
			cmd:  &DeleteCommand{Summary: "Team lunch", Start: &start, End: &end},
		},
		{
			name: "list without filters",
			cmd:  &ListCommand{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := Decode(Encode(tt.cmd))
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, decoded)
		})
	}
}
