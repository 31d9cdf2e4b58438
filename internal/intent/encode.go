package intent

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Encode renders a Command back into the wire grammar. The output of
// Decode(Encode(cmd)) is equivalent to cmd, which keeps the two halves of the
// codec honest; the pipeline also uses it to log the command it acted on.
func Encode(cmd Command) string {
	var b strings.Builder

	writeField := func(key, value string) {
		if value == "" {
			value = sentinel
		}
		fmt.Fprintf(&b, "%s: %s\n", key, value)
	}
	str := func(s *string) string {
		if s == nil {
			return sentinel
		}
		return *s
	}
	ts := func(t *time.Time) string {
		if t == nil {
			return sentinel
		}
		return t.Format(time.RFC3339)
	}

	writeField(fieldAction, string(cmd.Action()))

	switch c := cmd.(type) {
	case *CreateCommand:
		writeField(fieldSummary, c.Summary)
		writeField(fieldLocation, str(c.Location))
		writeField(fieldDescription, str(c.Description))
		writeField(fieldStartTime, c.Start.Format(time.RFC3339))
		writeField(fieldEndTime, c.End.Format(time.RFC3339))
		writeField(fieldReminders, reminderValue(c.ReminderMinutes))
	case *ListCommand:
		writeField(fieldSummary, sentinel)
		writeField(fieldLocation, str(c.Location))
		writeField(fieldStartTime, ts(c.Start))
		writeField(fieldEndTime, ts(c.End))
	case *UpdateCommand:
		writeField(fieldSummary, c.Summary)
		writeField(fieldLocation, str(c.Location))
		writeField(fieldDescription, str(c.Description))
		writeField(fieldStartTime, ts(c.Start))
		writeField(fieldEndTime, ts(c.End))
		writeField(fieldReminders, reminderValue(c.ReminderMinutes))
	case *DeleteCommand:
		writeField(fieldSummary, c.Summary)
		writeField(fieldStartTime, ts(c.Start))
		writeField(fieldEndTime, ts(c.End))
	}

	return strings.TrimRight(b.String(), "\n")
}

func reminderValue(minutes *int) string {
	if minutes == nil {
		return sentinel
	}
	return strconv.Itoa(*minutes)
}
