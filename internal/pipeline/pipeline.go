package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/omriShneor/calbot/internal/database"
	"github.com/omriShneor/calbot/internal/gcal"
	"github.com/omriShneor/calbot/internal/intent"
)

const (
	defaultHistorySize = 25
	defaultTimeout     = 60 * time.Second
)

// User-visible replies for the pipeline's terminal states. Every processed
// message produces at least one of these or an action-specific reply.
const (
	replyStoreTrouble = "Sorry, I'm having trouble accessing your conversation history right now. Please try again."
	replyLLMTrouble   = "Sorry, I'm having trouble processing your request right now."
	replyUnclear      = "I couldn't understand that. Please tell me what you'd like to do with your calendar."
	replyNotConnected = "Your Google Calendar isn't connected yet. Use /connect to link it."
	replyCalTrouble   = "Sorry, something went wrong talking to your calendar. Please try again."
	replyNoMatch      = "I couldn't find a matching event in your calendar."
	replyNothingFound = "No events found."
)

// Completer produces a raw model reply for one user turn.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []database.ConversationTurn, userText string) (string, error)
}

// Calendar is the per-user calendar capability consumed by the executor.
type Calendar interface {
	CreateEvent(ctx context.Context, input gcal.EventInput) (*gcal.EventDetails, error)
	ListEvents(ctx context.Context, query gcal.ListQuery) ([]gcal.EventDetails, error)
	PatchEvent(ctx context.Context, eventID string, patch gcal.EventPatch) (*gcal.EventDetails, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// CalendarProvider hands out the calendar capability for a user.
type CalendarProvider interface {
	ForUser(ctx context.Context, userID int64) (Calendar, error)
}

// Pipeline turns a free-text chat message into a calendar operation:
// history -> completion -> decode -> reconcile -> execute -> persist turns.
type Pipeline struct {
	db          *database.DB
	completer   Completer
	calendars   CalendarProvider
	historySize int
	timeout     time.Duration
	now         func() time.Time

	// Per-user locks: turns from the same user must be processed in arrival
	// order because each reads the full prior history before appending.
	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// Config holds pipeline configuration
type Config struct {
	HistorySize int
	Timeout     time.Duration
}

// New creates a message pipeline. The completion and calendar capabilities
// are injected here once and threaded through; nothing touches them as
// ambient state.
func New(db *database.DB, completer Completer, calendars CalendarProvider, cfg Config) *Pipeline {
	historySize := cfg.HistorySize
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Pipeline{
		db:          db,
		completer:   completer,
		calendars:   calendars,
		historySize: historySize,
		timeout:     timeout,
		now:         time.Now,
		userLocks:   make(map[int64]*sync.Mutex),
	}
}

// HandleMessage processes one incoming chat message and returns the replies
// to send back, at least one. Messages from the same user are serialized;
// different users proceed independently.
func (p *Pipeline) HandleMessage(ctx context.Context, userID int64, text string) []string {
	lock := p.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	history, err := p.db.History(userID, p.historySize)
	if err != nil {
		fmt.Printf("Pipeline: failed to read history for user %d: %v\n", userID, err)
		return []string{replyStoreTrouble}
	}

	// History comes back newest-first; the model wants chronological order.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	systemPrompt := intent.BuildSystemPrompt(p.now())

	raw, err := p.completer.Complete(ctx, systemPrompt, history, text)
	if err != nil {
		// One call, no retry: a silent retry risks duplicate calendar
		// mutations and double-written history for the same turn.
		fmt.Printf("Pipeline: completion failed for user %d: %v\n", userID, err)
		return []string{replyLLMTrouble}
	}

	// Both turns are persisted as soon as the completion succeeds, whatever
	// the decode outcome, so the conversation context stays faithful.
	now := p.now()
	if err := p.db.SaveTurn(userID, database.RoleUser, text, now); err != nil {
		fmt.Printf("Pipeline: failed to save user turn for user %d: %v\n", userID, err)
		return []string{replyStoreTrouble}
	}
	if err := p.db.SaveTurn(userID, database.RoleAssistant, raw, now); err != nil {
		fmt.Printf("Pipeline: failed to save assistant turn for user %d: %v\n", userID, err)
		return []string{replyStoreTrouble}
	}

	cmd, err := intent.Decode(raw)
	if err != nil {
		if errors.Is(err, intent.ErrUnclear) {
			return []string{replyUnclear}
		}
		// A grammar violation points at a prompt defect, so it is logged
		// loudly; the user gets the raw reply rather than a dead end.
		fmt.Printf("Pipeline: malformed reply for user %d: %v\nraw reply:\n%s\n", userID, err, raw)
		return []string{raw}
	}

	cal, err := p.calendars.ForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gcal.ErrNotAuthenticated) {
			return []string{replyNotConnected}
		}
		fmt.Printf("Pipeline: calendar unavailable for user %d: %v\n", userID, err)
		return []string{replyCalTrouble}
	}

	fmt.Printf("Pipeline: executing for user %d:\n%s\n", userID, intent.Encode(cmd))
	return p.execute(ctx, cal, userID, cmd)
}

func (p *Pipeline) userLock(userID int64) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		p.userLocks[userID] = lock
	}
	return lock
}
