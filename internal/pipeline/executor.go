package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/omriShneor/calbot/internal/database"
	"github.com/omriShneor/calbot/internal/gcal"
	"github.com/omriShneor/calbot/internal/intent"
)

// execute dispatches a decoded command to the calendar and mirrors the result
// into the local shadow store. The switch is exhaustive over the command
// types; a new action that is not handled here fails to compile.
func (p *Pipeline) execute(ctx context.Context, cal Calendar, userID int64, cmd intent.Command) []string {
	switch c := cmd.(type) {
	case *intent.CreateCommand:
		return p.executeCreate(ctx, cal, userID, c)
	case *intent.ListCommand:
		return p.executeList(ctx, cal, c)
	case *intent.UpdateCommand:
		return p.executeUpdate(ctx, cal, userID, c)
	case *intent.DeleteCommand:
		return p.executeDelete(ctx, cal, c)
	default:
		// Unreachable: Decode only produces the four types above.
		fmt.Printf("Pipeline: unhandled command type %T\n", cmd)
		return []string{replyUnclear}
	}
}

func (p *Pipeline) executeCreate(ctx context.Context, cal Calendar, userID int64, cmd *intent.CreateCommand) []string {
	input := gcal.EventInput{
		Summary:         cmd.Summary,
		StartTime:       cmd.Start,
		EndTime:         cmd.End,
		ReminderMinutes: cmd.ReminderMinutes,
	}
	if cmd.Location != nil {
		input.Location = *cmd.Location
	}
	if cmd.Description != nil {
		input.Description = *cmd.Description
	}

	created, err := cal.CreateEvent(ctx, input)
	if err != nil {
		// No shadow record on failure: the mirror never holds an event the
		// calendar does not.
		fmt.Printf("Pipeline: create failed for user %d: %v\n", userID, err)
		return []string{replyCalTrouble}
	}

	if err := p.db.SaveShadowEvent(shadowFromDetails(userID, created)); err != nil {
		// The remote create already succeeded; the missed mirror write is an
		// accepted inconsistency.
		fmt.Printf("Pipeline: failed to shadow created event %s: %v\n", created.ID, err)
	}

	return []string{fmt.Sprintf("Created %q on %s.", created.Summary, formatWindow(created.StartTime, created.EndTime))}
}

func (p *Pipeline) executeList(ctx context.Context, cal Calendar, cmd *intent.ListCommand) []string {
	query := gcal.ListQuery{TimeMin: cmd.Start, TimeMax: cmd.End}

	events, err := cal.ListEvents(ctx, query)
	if err != nil {
		fmt.Printf("Pipeline: list failed: %v\n", err)
		return []string{replyCalTrouble}
	}

	// The provider has no location filter, so it is applied over the listing.
	if cmd.Location != nil {
		filtered := events[:0]
		for _, e := range events {
			if e.Location == *cmd.Location {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if len(events) == 0 {
		return []string{replyNothingFound}
	}

	// One reply per event keeps each within a single message's display limits.
	replies := make([]string, 0, len(events))
	for _, e := range events {
		replies = append(replies, formatEventBlock(e))
	}
	return replies
}

func (p *Pipeline) executeUpdate(ctx context.Context, cal Calendar, userID int64, cmd *intent.UpdateCommand) []string {
	target, err := resolveEvent(ctx, cal, cmd.Summary, cmd.Start, cmd.End)
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return []string{replyNoMatch}
		}
		fmt.Printf("Pipeline: update reconciliation failed for user %d: %v\n", userID, err)
		return []string{replyCalTrouble}
	}

	patch := gcal.EventPatch{
		Location:        cmd.Location,
		Description:     cmd.Description,
		StartTime:       cmd.Start,
		EndTime:         cmd.End,
		ReminderMinutes: cmd.ReminderMinutes,
	}

	updated, err := cal.PatchEvent(ctx, target.ID, patch)
	if err != nil {
		fmt.Printf("Pipeline: update failed for user %d event %s: %v\n", userID, target.ID, err)
		return []string{replyCalTrouble}
	}

	if err := p.db.SaveShadowEvent(shadowFromDetails(userID, updated)); err != nil {
		fmt.Printf("Pipeline: failed to shadow updated event %s: %v\n", updated.ID, err)
	}

	return []string{fmt.Sprintf("Updated %q, now on %s.", updated.Summary, formatWindow(updated.StartTime, updated.EndTime))}
}

func (p *Pipeline) executeDelete(ctx context.Context, cal Calendar, cmd *intent.DeleteCommand) []string {
	target, err := resolveEvent(ctx, cal, cmd.Summary, cmd.Start, cmd.End)
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return []string{replyNoMatch}
		}
		fmt.Printf("Pipeline: delete reconciliation failed: %v\n", err)
		return []string{replyCalTrouble}
	}

	if err := cal.DeleteEvent(ctx, target.ID); err != nil {
		fmt.Printf("Pipeline: delete failed for event %s: %v\n", target.ID, err)
		return []string{replyCalTrouble}
	}

	if err := p.db.DeleteShadowEvent(target.ID); err != nil {
		fmt.Printf("Pipeline: failed to remove shadow for event %s: %v\n", target.ID, err)
	}

	return []string{fmt.Sprintf("Deleted %q.", target.Summary)}
}

func shadowFromDetails(userID int64, details *gcal.EventDetails) *database.EventShadow {
	return &database.EventShadow{
		GoogleEventID: details.ID,
		UserID:        userID,
		Title:         details.Summary,
		StartTime:     details.StartTime,
		EndTime:       details.EndTime,
		Description:   details.Description,
		Location:      details.Location,
	}
}

func formatWindow(start, end time.Time) string {
	return fmt.Sprintf("%s - %s",
		start.Format("Mon Jan 2 15:04"),
		end.Format("15:04 MST"),
	)
}

// formatEventBlock renders one event as a line-delimited block
func formatEventBlock(e gcal.EventDetails) string {
	lines := []string{"Summary: " + e.Summary}
	if e.Location != "" {
		lines = append(lines, "Location: "+e.Location)
	}
	if e.Description != "" {
		lines = append(lines, "Description: "+e.Description)
	}
	lines = append(lines,
		"Start: "+e.StartTime.Format(time.RFC3339),
		"End: "+e.EndTime.Format(time.RFC3339),
	)
	return strings.Join(lines, "\n")
}
