package intent

import (
	"errors"
	"fmt"
	"time"
)

// Action is the calendar operation requested by the user.
type Action string

const (
	ActionCreate Action = "create"
	ActionList   Action = "list"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ErrUnclear is returned by Decode when the model emitted the Error sentinel,
// i.e. it could not determine an action or summary from the user's message.
// This is a normal outcome, not a grammar defect.
var ErrUnclear = errors.New("model could not determine intent")

// MalformedError is returned by Decode when the model's reply did not match
// the wire grammar. Unlike ErrUnclear this indicates a prompt or grammar
// defect worth monitoring, so callers should log it with the raw reply.
type MalformedError struct {
	Raw    string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed model reply (%s)", e.Reason)
}

// IsMalformed returns true when err is a grammar violation.
func IsMalformed(err error) bool {
	var m *MalformedError
	return errors.As(err, &m)
}

// Command is a structured calendar operation decoded from a model reply.
// Exactly the four command types below implement it; the executor switches
// over them exhaustively.
type Command interface {
	Action() Action
}

// CreateCommand creates a new event. Summary, Start and End are always set
// (End is defaulted to Start + 1 hour during decoding when the model omits it).
type CreateCommand struct {
	Summary         string
	Location        *string
	Description     *string
	Start           time.Time
	End             time.Time
	ReminderMinutes *int
}

func (*CreateCommand) Action() Action { return ActionCreate }

// ListCommand lists events. All fields are optional; a nil time window means
// an effectively unbounded listing.
type ListCommand struct {
	Location *string
	Start    *time.Time
	End      *time.Time
}

func (*ListCommand) Action() Action { return ActionList }

// UpdateCommand modifies an existing event identified by Summary. Nil fields
// mean "do not change"; they are never sent to the calendar.
type UpdateCommand struct {
	Summary         string
	Location        *string
	Description     *string
	Start           *time.Time
	End             *time.Time
	ReminderMinutes *int
}

func (*UpdateCommand) Action() Action { return ActionUpdate }

// DeleteCommand removes an existing event identified by Summary. The optional
// time window narrows the search, it is not a target value.
type DeleteCommand struct {
	Summary string
	Start   *time.Time
	End     *time.Time
}

func (*DeleteCommand) Action() Action { return ActionDelete }
