package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"coachpath/internal/metrics"
	"coachpath/internal/models"
)

func TestFallbackProgressReader(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newMemoryStore()
	store.progress["u1"] = models.UserProgress{UserID: "u1", Pathway: models.PathwayBoost, StartedAt: start}
	store.completions["u1"] = map[int]time.Time{1: start}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	reader := NewFallbackProgressReader(store, m)
	reader.now = fixedClock(start.Add(time.Hour))
	ctx := context.Background()

	fresh, err := reader.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if fresh.Stale || fresh.Progress == nil || len(fresh.Completions) != 1 {
		t.Fatalf("Read() = %+v", fresh)
	}

	store.setDown(true)

	cached, err := reader.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() with store down error = %v", err)
	}
	if !cached.Stale {
		t.Error("cached snapshot not marked stale")
	}
	if !cached.FetchedAt.Equal(fresh.FetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", cached.FetchedAt, fresh.FetchedAt)
	}

	if _, err := reader.Read(ctx, "u2"); !errors.Is(err, errStoreDown) {
		t.Errorf("Read() uncached error = %v, want %v", err, errStoreDown)
	}

	reader.Forget("u1")
	if _, err := reader.Read(ctx, "u1"); !errors.Is(err, errStoreDown) {
		t.Errorf("Read() after Forget error = %v, want %v", err, errStoreDown)
	}

	wantHits := `
# HELP coachpath_progress_fallback_reads_total Progress reads served from the last-known-good cache
# TYPE coachpath_progress_fallback_reads_total counter
coachpath_progress_fallback_reads_total{result="hit"} 1
coachpath_progress_fallback_reads_total{result="miss"} 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(wantHits), "coachpath_progress_fallback_reads_total"); err != nil {
		t.Error(err)
	}
}

func TestFallbackProgressReader_NoProgressIsNotFabricated(t *testing.T) {
	store := newMemoryStore()
	reader := NewFallbackProgressReader(store, nil)
	ctx := context.Background()

	snap, err := reader.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	store.setDown(true)

	snap, err = reader.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() with store down error = %v", err)
	}
	if snap.Progress != nil || !snap.Stale {
		t.Errorf("Read() = %+v, want stale snapshot without progress", snap)
	}
}
