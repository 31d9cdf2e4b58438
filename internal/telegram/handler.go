package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/tg"

	"github.com/omriShneor/calbot/internal/database"
	"github.com/omriShneor/calbot/internal/gcal"
	"github.com/omriShneor/calbot/internal/pipeline"
)

const welcomeText = `Hello! I'm your calendar assistant.

Tell me things like "schedule lunch with Dana tomorrow at noon" and I'll keep your Google Calendar up to date.

Use /help to see available commands.`

const helpText = `Available Commands:

/start - Start the bot and see the welcome message
/help - Show this help message
/clear - Clear your message history
/connect - Connect your Google Calendar account

How to use:
Just describe what you want in plain language, for example:
- "Schedule a meeting with John tomorrow at 2 PM at the office"
- "What's on my calendar next week?"
- "Move my dentist appointment to 3 PM"
- "Cancel the team lunch"`

// Handler processes incoming Telegram updates: bot commands directly, plain
// text through the message pipeline.
type Handler struct {
	db       *database.DB
	pipeline *pipeline.Pipeline
	gcalMgr  *gcal.Manager
	sender   *Client
	users    map[int64]*tg.User // Cache of user info for access hashes
}

// NewHandler creates a new Telegram update handler
func NewHandler(db *database.DB, p *pipeline.Pipeline, gcalMgr *gcal.Manager) *Handler {
	return &Handler{
		db:       db,
		pipeline: p,
		gcalMgr:  gcalMgr,
		users:    make(map[int64]*tg.User),
	}
}

// BindSender attaches the client used for replies. Set after the client is
// constructed since the client also holds the handler.
func (h *Handler) BindSender(c *Client) {
	h.sender = c
}

// HandleUpdate processes a Telegram update
func (h *Handler) HandleUpdate(ctx context.Context, update tg.UpdatesClass) {
	switch u := update.(type) {
	case *tg.Updates:
		h.cacheEntities(u.Users)
		for _, upd := range u.Updates {
			h.handleSingleUpdate(ctx, upd)
		}
	case *tg.UpdatesCombined:
		h.cacheEntities(u.Users)
		for _, upd := range u.Updates {
			h.handleSingleUpdate(ctx, upd)
		}
	case *tg.UpdateShort:
		h.handleSingleUpdate(ctx, u.Update)
	}
}

// cacheEntities caches user information for peer access hashes
func (h *Handler) cacheEntities(users []tg.UserClass) {
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			h.users[user.ID] = user
		}
	}
}

func (h *Handler) handleSingleUpdate(ctx context.Context, update tg.UpdateClass) {
	msg, ok := update.(*tg.UpdateNewMessage)
	if !ok {
		return
	}
	h.handleNewMessage(ctx, msg.Message)
}

// handleNewMessage processes a new direct message to the bot
func (h *Handler) handleNewMessage(ctx context.Context, msg tg.MessageClass) {
	message, ok := msg.(*tg.Message)
	if !ok || message.Out {
		return
	}

	text := strings.TrimSpace(message.Message)
	if text == "" {
		return
	}

	// Bots only get direct messages from users here; skip anything else
	peerUser, ok := message.PeerID.(*tg.PeerUser)
	if !ok {
		return
	}

	user, ok := h.users[peerUser.UserID]
	if !ok {
		fmt.Printf("Telegram: no cached entity for user %d, dropping message\n", peerUser.UserID)
		return
	}
	peer := &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}

	fmt.Printf("[Telegram: %s] %s\n", displayName(user), truncateText(text, 100))

	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, user.ID, peer, text)
		return
	}

	h.sender.SendTyping(ctx, peer)
	for _, reply := range h.pipeline.HandleMessage(ctx, user.ID, text) {
		h.reply(ctx, peer, reply)
	}
}

// handleCommand routes the bot commands
func (h *Handler) handleCommand(ctx context.Context, userID int64, peer tg.InputPeerClass, text string) {
	command, _, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")

	switch command {
	case "/start":
		h.reply(ctx, peer, welcomeText)
	case "/help":
		h.reply(ctx, peer, helpText)
	case "/clear":
		if err := h.db.ClearHistory(userID); err != nil {
			fmt.Printf("Telegram: failed to clear history for user %d: %v\n", userID, err)
			h.reply(ctx, peer, "Sorry, I couldn't clear your history. Please try again.")
			return
		}
		h.reply(ctx, peer, "Your message history has been cleared.")
	case "/connect":
		if h.gcalMgr.IsAuthenticated(userID) {
			h.reply(ctx, peer, "Your Google Calendar is already connected. You can create, list, update, and delete events.")
			return
		}
		h.reply(ctx, peer, "Open this link to connect your Google Calendar:\n"+h.gcalMgr.AuthURL(userID))
	default:
		h.reply(ctx, peer, "Unknown command. Use /help to see what I can do.")
	}
}

func (h *Handler) reply(ctx context.Context, peer tg.InputPeerClass, text string) {
	if err := h.sender.SendMessage(ctx, peer, text); err != nil {
		fmt.Printf("Telegram: failed to send reply: %v\n", err)
	}
}

// displayName returns a display name for a user
func displayName(user *tg.User) string {
	if user.FirstName != "" {
		if user.LastName != "" {
			return user.FirstName + " " + user.LastName
		}
		return user.FirstName
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return fmt.Sprintf("User %d", user.ID)
}

// truncateText shortens text for logging
func truncateText(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
