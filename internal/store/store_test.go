package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/verte-zerg/retype/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "retype.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return st
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := model.SessionRecord{
			Path:         "/tmp/main.go",
			StartedAt:    base.Add(time.Duration(i) * time.Hour),
			EndedAt:      base.Add(time.Duration(i)*time.Hour + 5*time.Minute),
			CorrectChars: 100 + i,
			TypedChars:   110 + i,
			DurationMs:   60000,
			TotalLines:   40,
		}
		if _, err := st.InsertSession(ctx, rec); err != nil {
			t.Fatalf("failed to insert session: %v", err)
		}
	}

	sessions, err := st.ListSessions(ctx, model.StatsConfig{Path: "/tmp/main.go"})
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(sessions))
	}
	if sessions[0].CorrectChars != 100 || sessions[2].CorrectChars != 102 {
		t.Fatalf("sessions should come back oldest first: %+v", sessions)
	}

	since := base.Add(90 * time.Minute)
	sessions, err = st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("failed to list sessions with since: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions after since filter, want 1", len(sessions))
	}

	sessions, err = st.ListSessions(ctx, model.StatsConfig{Path: "/other"})
	if err != nil {
		t.Fatalf("failed to list sessions for other path: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("got %d sessions for unknown path, want 0", len(sessions))
	}
}

func TestProgressRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p := model.Progress{
		Path:          "/tmp/main.go",
		TargetLines:   []string{"package main", "", "func main() {}"},
		TypedLines:    []string{"package main", "", ""},
		Cursor:        model.Position{Line: 3, Col: 0},
		AccumulatedMs: 42000,
		UpdatedAt:     time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	if err := st.SaveProgress(ctx, p); err != nil {
		t.Fatalf("failed to save progress: %v", err)
	}

	got, err := st.LoadProgress(ctx, p.Path)
	if err != nil {
		t.Fatalf("failed to load progress: %v", err)
	}
	if got == nil {
		t.Fatalf("expected progress, got nil")
	}
	if !reflect.DeepEqual(got.TargetLines, p.TargetLines) || !reflect.DeepEqual(got.TypedLines, p.TypedLines) {
		t.Fatalf("lines did not round-trip: %+v", got)
	}
	if got.Cursor != p.Cursor || got.AccumulatedMs != p.AccumulatedMs {
		t.Fatalf("cursor/time did not round-trip: %+v", got)
	}
}

func TestProgressUpsert(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p := model.Progress{
		Path:        "/tmp/a.txt",
		TargetLines: []string{"x"},
		TypedLines:  []string{""},
		Cursor:      model.Position{Line: 1, Col: 0},
		UpdatedAt:   time.Now().UTC(),
	}
	if err := st.SaveProgress(ctx, p); err != nil {
		t.Fatalf("failed to save progress: %v", err)
	}
	p.TypedLines = []string{"x"}
	p.Cursor.Col = 1
	if err := st.SaveProgress(ctx, p); err != nil {
		t.Fatalf("failed to update progress: %v", err)
	}

	got, err := st.LoadProgress(ctx, p.Path)
	if err != nil {
		t.Fatalf("failed to load progress: %v", err)
	}
	if got.TypedLines[0] != "x" || got.Cursor.Col != 1 {
		t.Fatalf("upsert did not overwrite: %+v", got)
	}
}

func TestLoadProgressMissing(t *testing.T) {
	st := openTestStore(t)
	got, err := st.LoadProgress(context.Background(), "/nope")
	if err != nil {
		t.Fatalf("missing progress should not error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil progress, got %+v", got)
	}
}

func TestDeleteProgress(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p := model.Progress{
		Path:        "/tmp/a.txt",
		TargetLines: []string{"x"},
		TypedLines:  []string{""},
		Cursor:      model.Position{Line: 1, Col: 0},
		UpdatedAt:   time.Now().UTC(),
	}
	if err := st.SaveProgress(ctx, p); err != nil {
		t.Fatalf("failed to save progress: %v", err)
	}
	if err := st.DeleteProgress(ctx, p.Path); err != nil {
		t.Fatalf("failed to delete progress: %v", err)
	}
	got, err := st.LoadProgress(ctx, p.Path)
	if err != nil {
		t.Fatalf("failed to load after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after delete, got %+v", got)
	}
	// Deleting again is fine.
	if err := st.DeleteProgress(ctx, p.Path); err != nil {
		t.Fatalf("double delete should not error: %v", err)
	}
}
