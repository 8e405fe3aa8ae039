// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

// Package main is the entry point for the Alpenglow server.
//
// Alpenglow computes and caches the calendar of sun and moon alignments with
// mountain summits as seen from registered landmarks ("diamond" and "pearl"
// events). The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, ALPENGLOW_ env vars (Koanf v2)
//  2. Database: DuckDB event cache, landmark store, and durable job queue
//  3. Core: geodesy, ephemeris provider, alignment search engine, generator
//  4. Services under the supervisor tree: work queue, scheduler, HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, workers release or finish their claimed jobs, and the
// database closes last.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/alpenglow-dev/alpenglow/internal/api"
	"github.com/alpenglow-dev/alpenglow/internal/config"
	"github.com/alpenglow-dev/alpenglow/internal/database"
	"github.com/alpenglow-dev/alpenglow/internal/ephemeris"
	"github.com/alpenglow-dev/alpenglow/internal/generator"
	"github.com/alpenglow-dev/alpenglow/internal/logging"
	"github.com/alpenglow-dev/alpenglow/internal/queue"
	"github.com/alpenglow-dev/alpenglow/internal/scheduler"
	"github.com/alpenglow-dev/alpenglow/internal/search"
	"github.com/alpenglow-dev/alpenglow/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("timezone", cfg.Calendar.Timezone).
		Bool("moon_enabled", cfg.Calendar.MoonEnabled).
		Msg("Starting Alpenglow")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	if cfg.Database.SeedDemoData {
		if err := db.SeedDemoData(context.Background()); err != nil {
			logging.Error().Err(err).Msg("Failed to seed demo landmarks")
		} else {
			logging.Info().Msg("Demo landmarks seeded")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core pipeline: ephemeris -> search engine -> generator -> queue.
	loc := cfg.Location()
	provider := ephemeris.NewBuiltinProvider()
	engine := search.NewEngine(provider, cfg.Search, logging.Logger())
	gen := generator.New(db, engine, cfg.Calendar, loc)
	workQueue := queue.New(db, gen, cfg.Queue)

	handler := api.NewHandler(db, workQueue, cfg.API.DefaultPageSize, cfg.API.MaxPageSize)
	router := api.NewRouter(handler)
	server := api.NewServer(cfg.Server, router.Setup())

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddWorkerService(workQueue)
	if cfg.Scheduler.Enabled && len(cfg.Scheduler.Rules) > 0 {
		tree.AddWorkerService(scheduler.New(cfg.Scheduler.Rules, workQueue, loc))
		logging.Info().Int("rules", len(cfg.Scheduler.Rules)).Msg("Scheduler enabled")
	} else {
		logging.Info().Msg("Scheduler disabled")
	}
	tree.AddAPIService(server)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context cancelled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Alpenglow stopped gracefully")
}
