package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/calebstern/habitforge/internal/config"
	"github.com/calebstern/habitforge/internal/db"
	"github.com/calebstern/habitforge/internal/llm"
	"github.com/calebstern/habitforge/internal/retry"
	"github.com/calebstern/habitforge/internal/server"
	"github.com/calebstern/habitforge/internal/transcript"
	"github.com/calebstern/habitforge/internal/worker"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server with the embedded retry worker",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
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

	srv := server.New(database, transcript.NewClient(cfg.TranscriptAPIKey), server.Config{
		Port:      cfg.Port,
		JWTSecret: cfg.SupabaseJWTSecret,
	}, logger)

	if err := wrk.Start(ctx); err != nil {
		return err
	}
	defer wrk.Stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gCtx) })
	return g.Wait()
}
