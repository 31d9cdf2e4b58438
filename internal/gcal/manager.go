package gcal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Manager hands out per-user Google Calendar clients. Each user has their own
// OAuth token stored under tokensDir/<user_id>.json.
type Manager struct {
	config    *oauth2.Config
	tokensDir string

	mu      sync.Mutex
	clients map[int64]*Client
}

// NewManager creates a calendar client manager from a credentials file
func NewManager(credentialsFile, tokensDir string) (*Manager, error) {
	config, err := loadOAuthConfig(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth config: %w", err)
	}

	if err := os.MkdirAll(tokensDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create tokens directory: %w", err)
	}

	return &Manager{
		config:    config,
		tokensDir: tokensDir,
		clients:   make(map[int64]*Client),
	}, nil
}

// ForUser returns an authenticated calendar client for the user, refreshing
// and re-saving the stored token when it has expired. ErrNotAuthenticated is
// returned when the user has no stored token yet.
func (m *Manager) ForUser(ctx context.Context, userID int64) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.clients[userID]; ok {
		return client, nil
	}

	tokenPath := m.tokenPath(userID)
	token, err := loadToken(tokenPath)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	if !token.Valid() && token.RefreshToken != "" {
		newToken, err := m.config.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		token = newToken
		if err := saveToken(tokenPath, token); err != nil {
			fmt.Printf("Warning: could not save refreshed token for user %d: %v\n", userID, err)
		}
	}

	httpClient := m.config.Client(ctx, token)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	client := &Client{service: service}
	m.clients[userID] = client
	return client, nil
}

// IsAuthenticated returns true if the user has a stored token
func (m *Manager) IsAuthenticated(userID int64) bool {
	_, err := loadToken(m.tokenPath(userID))
	return err == nil
}

// AuthURL returns the OAuth authorization URL for the user. The user id rides
// along in the state parameter so the callback can route the code back.
func (m *Manager) AuthURL(userID int64) string {
	return m.config.AuthCodeURL(strconv.FormatInt(userID, 10),
		oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode exchanges an authorization code for a token and saves it for
// the user. The cached client is dropped so the next ForUser rebuilds it with
// the fresh token.
func (m *Manager) ExchangeCode(ctx context.Context, userID int64, code string) error {
	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := saveToken(m.tokenPath(userID), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	m.mu.Lock()
	delete(m.clients, userID)
	m.mu.Unlock()

	return nil
}

func (m *Manager) tokenPath(userID int64) string {
	return filepath.Join(m.tokensDir, fmt.Sprintf("%d.json", userID))
}

// Client wraps the Google Calendar API service for one authenticated user
type Client struct {
	service *calendar.Service
}
