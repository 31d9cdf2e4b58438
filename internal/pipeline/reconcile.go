package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omriShneor/calbot/internal/gcal"
)

// ErrNoMatch is returned when no calendar event matches a symbolic reference.
var ErrNoMatch = errors.New("no matching event found")

// resolveEvent resolves a symbolic event reference (summary plus optional
// time window) to a concrete calendar event. Candidates are listed from the
// live calendar, bounded by [start, end] when both bounds are given and
// effectively unbounded otherwise, and the first whose summary is an exact,
// case-sensitive match wins. Ties between events sharing a summary go to the
// chronologically earliest one, which is the provider's listing order; there
// is no disambiguation step, a known weak spot of this heuristic.
func resolveEvent(ctx context.Context, cal Calendar, summary string, start, end *time.Time) (*gcal.EventDetails, error) {
	query := gcal.ListQuery{}
	if start != nil && end != nil {
		query.TimeMin = start
		query.TimeMax = end
	}

	candidates, err := cal.ListEvents(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate events: %w", err)
	}

	for i := range candidates {
		if candidates[i].Summary == summary {
			return &candidates[i], nil
		}
	}

	return nil, ErrNoMatch
}
