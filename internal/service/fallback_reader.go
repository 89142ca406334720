package service

import (
	"context"
	"log"
	"sync"
	"time"

	"coachpath/internal/metrics"
	"coachpath/internal/models"
)

// ProgressReader is the read side of the progress store
type ProgressReader interface {
	GetProgress(ctx context.Context, userID string) (*models.UserProgress, error)
	ListCompletions(ctx context.Context, userID string) ([]models.CompletionRecord, error)
}

// Snapshot is a user's enrollment and completions as read at FetchedAt.
// Stale is set when the store failed and the value came from cache.
type Snapshot struct {
	Progress    *models.UserProgress
	Completions []models.CompletionRecord
	FetchedAt   time.Time
	Stale       bool
}

// FallbackProgressReader reads from the store and keeps the last good
// snapshot per user to answer with when the store is unavailable.
type FallbackProgressReader struct {
	store   ProgressReader
	metrics *metrics.Metrics
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]Snapshot
}

// NewFallbackProgressReader creates a reader over store. m may be nil.
func NewFallbackProgressReader(store ProgressReader, m *metrics.Metrics) *FallbackProgressReader {
	return &FallbackProgressReader{
		store:   store,
		metrics: m,
		now:     time.Now,
		cache:   make(map[string]Snapshot),
	}
}

// Read returns a fresh snapshot, or the cached one marked Stale if the store fails.
// With nothing cached the store error is returned as is.
func (r *FallbackProgressReader) Read(ctx context.Context, userID string) (Snapshot, error) {
	snap, err := r.fetch(ctx, userID)
	if err == nil {
		r.mu.Lock()
		r.cache[userID] = snap
		r.mu.Unlock()
		return snap, nil
	}

	r.mu.RLock()
	cached, ok := r.cache[userID]
	r.mu.RUnlock()

	if !ok {
		r.metrics.FallbackRead("miss")
		return Snapshot{}, err
	}

	log.Printf("Progress store read failed for user %s, serving snapshot from %s: %v", userID, cached.FetchedAt.Format(time.RFC3339), err)
	r.metrics.FallbackRead("hit")
	cached.Stale = true
	cached.Completions = append([]models.CompletionRecord(nil), cached.Completions...)
	return cached, nil
}

// Forget drops the cached snapshot of a user
func (r *FallbackProgressReader) Forget(userID string) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}

func (r *FallbackProgressReader) fetch(ctx context.Context, userID string) (Snapshot, error) {
	progress, err := r.store.GetProgress(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	var completions []models.CompletionRecord
	if progress != nil {
		completions, err = r.store.ListCompletions(ctx, userID)
		if err != nil {
			return Snapshot{}, err
		}
	}

	return Snapshot{
		Progress:    progress,
		Completions: completions,
		FetchedAt:   r.now(),
	}, nil
}
