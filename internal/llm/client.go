package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/omriShneor/calbot/internal/database"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "meta-llama/llama-3-8b-instruct"
)

// Client wraps a single chat-completion call against an OpenAI-compatible
// endpoint (OpenRouter by default).
type Client struct {
	client *openai.Client
	model  string
	apiKey string
}

// Config holds configuration for the completion client
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewClient creates a new completion client
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		apiKey: cfg.APIKey,
	}
}

// IsConfigured returns true if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Complete sends [system] + history + [user] to the model and returns the raw
// reply text unmodified; stripping any fenced block is the caller's concern.
// The call is made exactly once: a failure is returned, never retried here,
// since a silent retry would double-write history for the same user turn.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []database.ConversationTurn, userText string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Message,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
