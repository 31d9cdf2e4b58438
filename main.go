package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/omriShneor/calbot/internal/config"
	"github.com/omriShneor/calbot/internal/database"
	"github.com/omriShneor/calbot/internal/gcal"
	"github.com/omriShneor/calbot/internal/llm"
	"github.com/omriShneor/calbot/internal/pipeline"
	"github.com/omriShneor/calbot/internal/telegram"
)

func main() {
	cfg := config.LoadFromEnv()

	if cfg.OpenRouterAPIKey == "" {
		fatal("configuration", fmt.Errorf("OPENROUTER_API_KEY is required"))
	}
	if cfg.TelegramBotToken == "" {
		fatal("configuration", fmt.Errorf("TELEGRAM_BOT_TOKEN is required"))
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		fatal("creating database", err)
	}
	defer db.Close()

	gcalManager, err := gcal.NewManager(cfg.GoogleCredentialsFile, cfg.GoogleTokensDir)
	if err != nil {
		fatal("creating calendar manager", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gcalManager.StartCallbackServer(ctx)

	completer := llm.NewClient(llm.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Model:   cfg.Model,
	})
	fmt.Printf("Completion client configured (model %s)\n", cfg.Model)

	pipe := pipeline.New(db, completer, calendarProvider{gcalManager}, pipeline.Config{
		HistorySize: cfg.HistorySize,
		Timeout:     cfg.MessageTimeout,
	})

	tgClient, err := initTelegram(db, cfg, pipe, gcalManager)
	if err != nil {
		fatal("starting telegram client", err)
	}

	waitForShutdown(tgClient, cancel)
}

// calendarProvider adapts the gcal manager to the pipeline's capability
// interface.
type calendarProvider struct {
	manager *gcal.Manager
}

func (c calendarProvider) ForUser(ctx context.Context, userID int64) (pipeline.Calendar, error) {
	client, err := c.manager.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func initTelegram(db *database.DB, cfg *config.Config, pipe *pipeline.Pipeline, gcalManager *gcal.Manager) (*telegram.Client, error) {
	handler := telegram.NewHandler(db, pipe, gcalManager)

	tgClient, err := telegram.NewClient(telegram.ClientConfig{
		APIID:       cfg.TelegramAPIID,
		APIHash:     cfg.TelegramAPIHash,
		BotToken:    cfg.TelegramBotToken,
		SessionPath: cfg.TelegramSessionPath,
		Handler:     handler,
	})
	if err != nil {
		return nil, err
	}
	handler.BindSender(tgClient)

	if err := tgClient.Connect(); err != nil {
		return nil, err
	}
	tgClient.StartUpdateLoop()

	fmt.Println("Telegram bot initialized")
	return tgClient, nil
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

func waitForShutdown(tgClient *telegram.Client, cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("Shutting down...")

	cancel()
	if tgClient != nil {
		tgClient.Disconnect()
	}
}
