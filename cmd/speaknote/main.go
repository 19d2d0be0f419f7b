package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sailorhq/speaknote/internal/assistant"
	"github.com/sailorhq/speaknote/internal/bot"
	"github.com/sailorhq/speaknote/internal/executor"
	"github.com/sailorhq/speaknote/internal/query"
	"github.com/sailorhq/speaknote/internal/speech"
	"github.com/sailorhq/speaknote/internal/storage"
	"github.com/sailorhq/speaknote/pkg/config"
	"github.com/sailorhq/speaknote/pkg/retry"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	// Initialize storage
	store, err := storage.NewSQLStorage(storage.DatabaseConfig{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	if cfg.Database.SeedSamples {
		if err := store.SeedSampleNotes(); err != nil {
			logger.Warn("Failed to seed sample notes", zap.Error(err))
		}
	}

	// Initialize assistant client
	client, err := assistant.NewClient(assistant.Config{
		APIKey:      cfg.OpenAI.APIKey,
		AssistantID: cfg.OpenAI.AssistantID,
		FetchPolicy: retry.Policy{
			MaxAttempts: cfg.Assistant.FetchRetries,
			Delay:       time.Duration(cfg.Assistant.FetchRetryDelaySeconds) * time.Second,
		},
	}, store, logger)
	if err != nil {
		logger.Fatal("Failed to create assistant client", zap.Error(err))
	}

	// Compose the query pipeline
	exec := executor.New(store.DB(), logger)
	pollInterval := time.Duration(cfg.Assistant.PollIntervalSeconds) * time.Second
	service := query.NewService(client, exec, store, pollInterval, logger)

	if cfg.Telegram.Token != "" {
		logger.Info("Starting Telegram front-end")
		b, err := bot.New(cfg.Telegram.Token, service, store, logger)
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}
		if err := b.Start(); err != nil {
			logger.Fatal("Bot error", zap.Error(err))
		}
		return
	}

	logger.Info("Starting console front-end")
	runConsole(service, logger)
}

// runConsole drives the pipeline from stdin: each line is treated as a final
// transcript and the narration is written back. Utterances are handled one at
// a time; the remote protocol supports only one active run per thread.
func runConsole(service *query.Service, logger *zap.Logger) {
	ctx := context.Background()
	recognizer := speech.NewConsoleRecognizer(os.Stdin)
	speaker := speech.NewConsoleSpeaker(os.Stdout)

	if err := recognizer.StartRecognition(); err != nil {
		logger.Fatal("Failed to start recognition", zap.Error(err))
	}
	defer recognizer.StopRecognition()

	go func() {
		for err := range recognizer.Errors() {
			logger.Error("Recognition error", zap.Error(err))
		}
	}()

	for transcript := range recognizer.Results() {
		if !transcript.Final {
			continue
		}
		narration := service.PerformQuery(ctx, transcript.Text)
		speaker.Speak(narration)
	}
}
