package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calebstern/habitforge/internal/config"
	"github.com/calebstern/habitforge/internal/db"
	"github.com/calebstern/habitforge/internal/llm"
	"github.com/calebstern/habitforge/internal/retry"
	"github.com/calebstern/habitforge/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run only the retry worker, without the HTTP API",
	Long:  "Polls the retry job table and drives pending blueprints to completed or failed. Useful when the API and worker are deployed separately.",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig().WithModel(cfg.Model), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = llmClient.Close() }()

	processor := retry.NewProcessor(llmClient, database, database, logger)
	wrk := worker.New(database, processor, worker.Config{
		PollInterval: cfg.PollInterval(),
		BatchSize:    cfg.BatchSize,
	}, logger)

	if err := wrk.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	wrk.Stop()
	return nil
}
