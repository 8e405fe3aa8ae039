// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package database

import (
	"errors"
	"testing"

	"github.com/alpenglow-dev/alpenglow/internal/models"
)

func TestCreateLandmarkDerivesGeometry(t *testing.T) {
	db := setupTestDB(t)
	ctx := testCtx(t)

	l := kawaguchiLandmark()
	if err := db.CreateLandmark(ctx, l); err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.ID == 0 {
		t.Error("create did not assign an ID")
	}
	// Kawaguchi -> Fuji: roughly south, ~17 km, summit a degree or two up.
	if l.AzimuthToPeak < 180 || l.AzimuthToPeak > 195 {
		t.Errorf("azimuth to peak = %.2f, want roughly south", l.AzimuthToPeak)
	}
	if l.DistanceToPeak < 15000 || l.DistanceToPeak > 20000 {
		t.Errorf("distance to peak = %.0f m, want 15-20 km", l.DistanceToPeak)
	}
	if l.ElevationAngle <= 0 || l.ElevationAngle > 15 {
		t.Errorf("elevation angle = %.2f, want a small positive angle", l.ElevationAngle)
	}

	got, err := db.GetLandmark(ctx, l.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != l.Name || got.AzimuthToPeak != l.AzimuthToPeak {
		t.Errorf("round-trip mismatch: %+v vs %+v", got, l)
	}
}

func TestGetLandmarkNotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetLandmark(testCtx(t), 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateLandmarkGeometryRefresh(t *testing.T) {
	db := setupTestDB(t)
	ctx := testCtx(t)

	l := kawaguchiLandmark()
	if err := db.CreateLandmark(ctx, l); err != nil {
		t.Fatal(err)
	}
	originalAzimuth := l.AzimuthToPeak
	originalUpdated := l.GeometryUpdated

	// Rename only: geometry untouched.
	l.Name = "Kawaguchiko Oishi Park"
	changed, err := db.UpdateLandmark(ctx, l)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if changed {
		t.Error("rename reported a geometry change")
	}
	if l.AzimuthToPeak != originalAzimuth || !l.GeometryUpdated.Equal(originalUpdated) {
		t.Error("rename modified derived geometry")
	}

	// Move the observation point: geometry must be rederived.
	l.Longitude += 0.2
	changed, err = db.UpdateLandmark(ctx, l)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !changed {
		t.Error("coordinate change not reported")
	}
	if l.AzimuthToPeak == originalAzimuth {
		t.Error("azimuth unchanged after moving the observation point")
	}

	got, err := db.GetLandmark(ctx, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AzimuthToPeak != l.AzimuthToPeak || got.Name != "Kawaguchiko Oishi Park" {
		t.Errorf("persisted landmark mismatch: %+v", got)
	}
}

func TestDeleteLandmarkCascadesEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := testCtx(t)

	l := kawaguchiLandmark()
	if err := db.CreateLandmark(ctx, l); err != nil {
		t.Fatal(err)
	}
	events := []models.AlignmentEvent{
		makeEvent(l.ID, date(2026, 2, 20), models.PhenomenonSunSetting),
		makeEvent(l.ID, date(2026, 10, 22), models.PhenomenonSunRising),
	}
	if err := db.ReplaceEventsForYear(ctx, 2026, events); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteLandmark(ctx, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetLandmark(ctx, l.ID); !errors.Is(err, ErrNotFound) {
		t.Error("landmark still present after delete")
	}
	n, err := db.CountEventsForYear(ctx, 2026)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("%d events survived the cascade", n)
	}

	if err := db.DeleteLandmark(ctx, l.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestListLandmarksOrdering(t *testing.T) {
	db := setupTestDB(t)
	ctx := testCtx(t)

	names := []string{"Zao Ridge", "Aokigahara Edge", "Mitsutoge Summit"}
	for _, name := range names {
		l := kawaguchiLandmark()
		l.Name = name
		if err := db.CreateLandmark(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	list, err := db.ListLandmarks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d landmarks, want 3", len(list))
	}
	want := []string{"Aokigahara Edge", "Mitsutoge Summit", "Zao Ridge"}
	for i, name := range want {
		if list[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, list[i].Name, name)
		}
	}
}
