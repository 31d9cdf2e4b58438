package pipeline

import (
	"context"
	"fmt"

	"github.com/omriShneor/calbot/internal/database"
	"github.com/omriShneor/calbot/internal/gcal"
)

// fakeCompleter returns a canned reply and records what it was asked.
type fakeCompleter struct {
	reply string
	err   error

	calls            int
	lastSystemPrompt string
	lastHistory      []database.ConversationTurn
	lastUserText     string
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt string, history []database.ConversationTurn, userText string) (string, error) {
	f.calls++
	f.lastSystemPrompt = systemPrompt
	f.lastHistory = history
	f.lastUserText = userText
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type patchCall struct {
	eventID string
	patch   gcal.EventPatch
}

// fakeCalendar records every call and serves events from a fixed slice.
type fakeCalendar struct {
	events []gcal.EventDetails

	listQueries []gcal.ListQuery
	listErr     error

	created   []gcal.EventInput
	createErr error

	patched  []patchCall
	patchErr error

	deleted   []string
	deleteErr error
}

func (f *fakeCalendar) CreateEvent(_ context.Context, input gcal.EventInput) (*gcal.EventDetails, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, input)
	return &gcal.EventDetails{
		ID:          fmt.Sprintf("created-%d", len(f.created)),
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
	}, nil
}

func (f *fakeCalendar) ListEvents(_ context.Context, query gcal.ListQuery) ([]gcal.EventDetails, error) {
	f.listQueries = append(f.listQueries, query)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeCalendar) PatchEvent(_ context.Context, eventID string, patch gcal.EventPatch) (*gcal.EventDetails, error) {
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	f.patched = append(f.patched, patchCall{eventID: eventID, patch: patch})

	for _, e := range f.events {
		if e.ID != eventID {
			continue
		}
		if patch.Summary != nil {
			e.Summary = *patch.Summary
		}
		if patch.Description != nil {
			e.Description = *patch.Description
		}
		if patch.Location != nil {
			e.Location = *patch.Location
		}
		if patch.StartTime != nil {
			e.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			e.EndTime = *patch.EndTime
		}
		return &e, nil
	}
	return nil, gcal.ErrEventNotFound
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, eventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, eventID)
	return nil
}

// fakeProvider hands out a single calendar for every user.
type fakeProvider struct {
	cal Calendar
	err error
}

func (f *fakeProvider) ForUser(_ context.Context, _ int64) (Calendar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cal, nil
}
