package telegram

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
)

// Client manages the Telegram bot connection
type Client struct {
	apiID       int
	apiHash     string
	botToken    string
	sessionPath string
	client      *telegram.Client
	api         *tg.Client
	handler     *Handler
	connected   bool
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	updatesChan chan tg.UpdatesClass
}

// ClientConfig holds configuration for the Telegram client
type ClientConfig struct {
	APIID       int
	APIHash     string
	BotToken    string
	SessionPath string
	Handler     *Handler
}

// NewClient creates a new Telegram bot client
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return nil, fmt.Errorf("Telegram API ID and API Hash are required")
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("Telegram bot token is required")
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		apiID:       cfg.APIID,
		apiHash:     cfg.APIHash,
		botToken:    cfg.BotToken,
		sessionPath: cfg.SessionPath,
		handler:     cfg.Handler,
		ctx:         ctx,
		cancel:      cancel,
		updatesChan: make(chan tg.UpdatesClass, 100),
	}

	return c, nil
}

// Connect initializes the Telegram client and authorizes as the bot
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.connected || c.api != nil {
		c.mu.Unlock()
		return nil
	}

	sessionStorage := &FileSessionStorage{Path: c.sessionPath}

	client := telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
		SessionStorage: sessionStorage,
		UpdateHandler:  c,
	})

	c.client = client
	c.mu.Unlock()

	// Run the client in a goroutine; it blocks until the context is cancelled
	go func() {
		if err := client.Run(c.ctx, func(ctx context.Context) error {
			c.mu.Lock()
			c.api = client.API()
			c.mu.Unlock()

			status, err := client.Auth().Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get auth status: %w", err)
			}

			if !status.Authorized {
				if _, err := client.Auth().Bot(ctx, c.botToken); err != nil {
					return fmt.Errorf("bot authorization failed: %w", err)
				}
				fmt.Println("Telegram: Bot authorized")
			} else {
				fmt.Println("Telegram: Restored bot session")
			}

			c.mu.Lock()
			c.connected = true
			c.mu.Unlock()

			<-ctx.Done()
			return ctx.Err()
		}); err != nil && err != context.Canceled {
			fmt.Printf("Telegram client error: %v\n", err)
		}
	}()

	// Wait for the client to come up with a timeout
	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			return fmt.Errorf("timeout waiting for Telegram client to connect")
		case <-ticker.C:
			c.mu.RLock()
			ready := c.connected
			c.mu.RUnlock()
			if ready {
				fmt.Println("Telegram: Client connected and ready")
				return nil
			}
		}
	}
}

// Disconnect closes the Telegram connection
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.connected = false
}

// IsConnected returns whether the client is connected and authorized
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Handle implements telegram.UpdateHandler
func (c *Client) Handle(ctx context.Context, u tg.UpdatesClass) error {
	select {
	case c.updatesChan <- u:
	default:
		fmt.Println("Telegram: Updates channel full, dropping update")
	}
	return nil
}

// StartUpdateLoop starts processing updates. A single consumer keeps turns
// from the same user in arrival order; the pipeline's per-user lock only
// guards against other entry points.
func (c *Client) StartUpdateLoop() {
	go func() {
		for {
			select {
			case <-c.ctx.Done():
				return
			case update := <-c.updatesChan:
				c.handler.HandleUpdate(c.ctx, update)
			}
		}
	}()
}

// SendMessage sends a text message to the peer
func (c *Client) SendMessage(ctx context.Context, peer tg.InputPeerClass, text string) error {
	api := c.GetAPI()
	if api == nil {
		return fmt.Errorf("client not connected")
	}

	_, err := api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  text,
		RandomID: rand.Int63(),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendTyping shows a typing indicator to the peer. Failures are ignored; the
// indicator is cosmetic.
func (c *Client) SendTyping(ctx context.Context, peer tg.InputPeerClass) {
	api := c.GetAPI()
	if api == nil {
		return
	}

	_, _ = api.MessagesSetTyping(ctx, &tg.MessagesSetTypingRequest{
		Peer:   peer,
		Action: &tg.SendMessageTypingAction{},
	})
}

// GetAPI returns the raw Telegram API client
func (c *Client) GetAPI() *tg.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.api
}
