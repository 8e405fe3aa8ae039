// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package database

import (
	"context"
	"testing"
	"time"

	"github.com/alpenglow-dev/alpenglow/internal/config"
	"github.com/alpenglow-dev/alpenglow/internal/models"
)

// testDBSemaphore serializes test database lifecycles. Concurrent DuckDB
// CGO operations from parallel tests can hang under CI resource pressure,
// so only one test holds an open connection at a time.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates an in-memory test database. The semaphore is held for
// the whole test lifecycle and released via t.Cleanup.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}
	db, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func kawaguchiLandmark() *models.Landmark {
	return &models.Landmark{
		Name:          "Lake Kawaguchi North Shore",
		Latitude:      35.5171,
		Longitude:     138.7519,
		Elevation:     833,
		PeakLatitude:  35.3606,
		PeakLongitude: 138.7274,
		PeakElevation: 3776,
	}
}

func TestNewInitializesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := testCtx(t)

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	// All three tables must be queryable after New.
	for _, table := range []string{"landmarks", "alignment_events", "queue_jobs"} {
		var n int
		if err := db.conn.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}
}

func TestSeedDemoData(t *testing.T) {
	db := setupTestDB(t)
	ctx := testCtx(t)

	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	n, err := db.CountLandmarks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("seeded %d landmarks, want 3", n)
	}

	// Idempotent: a second seed is a no-op.
	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n2, _ := db.CountLandmarks(ctx); n2 != n {
		t.Errorf("second seed changed count from %d to %d", n, n2)
	}
}
