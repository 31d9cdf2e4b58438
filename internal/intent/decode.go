package intent

import (
	"strconv"
	"strings"
	"time"
)

// sentinel is the grammar's explicit marker for "field intentionally not
// provided", distinct from an empty string purely by convention.
const sentinel = "N/A"

// errorSentinel is the literal the model emits when it cannot determine
// the action or summary. Case-sensitive.
const errorSentinel = "Error"

// Field names of the wire grammar. The decoder builds a key/value mapping so
// line order does not matter, but the names themselves are a bit-exact
// contract with the system prompt.
const (
	fieldAction      = "Action"
	fieldSummary     = "Summary"
	fieldLocation    = "Location"
	fieldDescription = "Description"
	fieldStartTime   = "Start Time"
	fieldEndTime     = "End Time"
	fieldReminders   = "Reminders"
)

// Decode parses a raw model reply into a Command. It returns ErrUnclear when
// the model emitted the Error sentinel, and *MalformedError when the reply
// does not match the wire grammar.
func Decode(raw string) (Command, error) {
	text := stripFence(raw)

	if text == errorSentinel {
		return nil, ErrUnclear
	}

	fields := parseFields(text)

	action, ok := fields[fieldAction]
	if !ok {
		return nil, &MalformedError{Raw: raw, Reason: "missing Action field"}
	}

	switch Action(strings.ToLower(action)) {
	case ActionCreate:
		return decodeCreate(raw, fields)
	case ActionList:
		return decodeList(raw, fields)
	case ActionUpdate:
		return decodeUpdate(raw, fields)
	case ActionDelete:
		return decodeDelete(raw, fields)
	default:
		return nil, &MalformedError{Raw: raw, Reason: "unrecognized action " + strconv.Quote(action)}
	}
}

// stripFence extracts the content between the first pair of triple-backtick
// markers when the reply is wrapped in a fenced block, otherwise returns the
// trimmed text as-is. The fence convention is part of the grammar, so it is
// handled here and not by the completion client.
func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.Contains(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = parts[1]
		}
	}
	return strings.TrimSpace(text)
}

// parseFields splits the reply into lines and each line on the first colon.
// Lines without a colon are ignored, tolerating stray prose around the block.
func parseFields(text string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if key != "" {
			fields[key] = value
		}
	}
	return fields
}

// provided reports whether a field value carries information. The sentinel
// and the empty string both mean "not provided".
func provided(value string) bool {
	return value != "" && value != sentinel
}

func optionalString(fields map[string]string, key string) *string {
	if v := fields[key]; provided(v) {
		return &v
	}
	return nil
}

// parseTime accepts RFC 3339 or a zone-less ISO 8601 timestamp (read as UTC),
// the two shapes the system prompt permits.
func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}

func optionalTime(raw string, fields map[string]string, key string) (*time.Time, error) {
	v := fields[key]
	if !provided(v) {
		return nil, nil
	}
	t, err := parseTime(v)
	if err != nil {
		return nil, &MalformedError{Raw: raw, Reason: "invalid " + key + " " + strconv.Quote(v)}
	}
	return &t, nil
}

func optionalReminder(raw string, fields map[string]string) (*int, error) {
	v := fields[fieldReminders]
	if !provided(v) {
		return nil, nil
	}
	minutes, err := strconv.Atoi(v)
	if err != nil || minutes < 0 {
		return nil, &MalformedError{Raw: raw, Reason: "invalid Reminders " + strconv.Quote(v)}
	}
	return &minutes, nil
}

func decodeCreate(raw string, fields map[string]string) (Command, error) {
	summary := fields[fieldSummary]
	if !provided(summary) {
		return nil, &MalformedError{Raw: raw, Reason: "create requires Summary"}
	}

	startVal := fields[fieldStartTime]
	if !provided(startVal) {
		return nil, &MalformedError{Raw: raw, Reason: "create requires Start Time"}
	}
	start, err := parseTime(startVal)
	if err != nil {
		return nil, &MalformedError{Raw: raw, Reason: "invalid Start Time " + strconv.Quote(startVal)}
	}

	// The prompt instructs the model to default a missing end time to one
	// hour after the start; apply the same default here in case it does not.
	var end time.Time
	if endVal := fields[fieldEndTime]; provided(endVal) {
		end, err = parseTime(endVal)
		if err != nil {
			return nil, &MalformedError{Raw: raw, Reason: "invalid End Time " + strconv.Quote(endVal)}
		}
	} else {
		end = start.Add(time.Hour)
	}

	reminder, err := optionalReminder(raw, fields)
	if err != nil {
		return nil, err
	}

	return &CreateCommand{
		Summary:         summary,
		Location:        optionalString(fields, fieldLocation),
		Description:     optionalString(fields, fieldDescription),
		Start:           start,
		End:             end,
		ReminderMinutes: reminder,
	}, nil
}

func decodeList(raw string, fields map[string]string) (Command, error) {
	start, err := optionalTime(raw, fields, fieldStartTime)
	if err != nil {
		return nil, err
	}
	end, err := optionalTime(raw, fields, fieldEndTime)
	if err != nil {
		return nil, err
	}

	return &ListCommand{
		Location: optionalString(fields, fieldLocation),
		Start:    start,
		End:      end,
	}, nil
}

func decodeUpdate(raw string, fields map[string]string) (Command, error) {
	summary := fields[fieldSummary]
	if !provided(summary) {
		return nil, &MalformedError{Raw: raw, Reason: "update requires Summary"}
	}

	start, err := optionalTime(raw, fields, fieldStartTime)
	if err != nil {
		return nil, err
	}
	end, err := optionalTime(raw, fields, fieldEndTime)
	if err != nil {
		return nil, err
	}
	reminder, err := optionalReminder(raw, fields)
	if err != nil {
		return nil, err
	}

	return &UpdateCommand{
		Summary:         summary,
		Location:        optionalString(fields, fieldLocation),
		Description:     optionalString(fields, fieldDescription),
		Start:           start,
		End:             end,
		ReminderMinutes: reminder,
	}, nil
}

func decodeDelete(raw string, fields map[string]string) (Command, error) {
	summary := fields[fieldSummary]
	if !provided(summary) {
		return nil, &MalformedError{Raw: raw, Reason: "delete requires Summary"}
	}

	start, err := optionalTime(raw, fields, fieldStartTime)
	if err != nil {
		return nil, err
	}
	end, err := optionalTime(raw, fields, fieldEndTime)
	if err != nil {
		return nil, err
	}

	return &DeleteCommand{
		Summary: summary,
		Start:   start,
		End:     end,
	}, nil
}
