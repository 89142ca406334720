package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"coachpath/internal/coaching"
	"coachpath/internal/content"
	"coachpath/internal/database"
	"coachpath/internal/models"
	"coachpath/internal/repository"
	"coachpath/migrations"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func testCatalog(t *testing.T) *coaching.Catalog {
	t.Helper()
	catalog, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default() error = %v", err)
	}
	return catalog
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var errStoreDown = errors.New("store unavailable")

// memoryStore is an in-memory ProgressStore that can be switched off
type memoryStore struct {
	mu          sync.Mutex
	progress    map[string]models.UserProgress
	completions map[string]map[int]time.Time
	down        bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		progress:    make(map[string]models.UserProgress),
		completions: make(map[string]map[int]time.Time),
	}
}

func (m *memoryStore) setDown(down bool) {
	m.mu.Lock()
	m.down = down
	m.mu.Unlock()
}

func (m *memoryStore) GetProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errStoreDown
	}
	p, ok := m.progress[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memoryStore) ListCompletions(ctx context.Context, userID string) ([]models.CompletionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errStoreDown
	}
	var out []models.CompletionRecord
	for day := 1; day <= models.ProgramDays; day++ {
		if at, ok := m.completions[userID][day]; ok {
			out = append(out, models.CompletionRecord{UserID: userID, DayNumber: day, CompletedAt: at})
		}
	}
	return out, nil
}

func (m *memoryStore) UpsertProgress(ctx context.Context, p models.UserProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errStoreDown
	}
	m.progress[p.UserID] = p
	return nil
}

func (m *memoryStore) CompleteLesson(ctx context.Context, userID string, day int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errStoreDown
	}
	p, ok := m.progress[userID]
	if !ok {
		return repository.ErrNoProgress
	}
	p.LastActivityAt = &at
	p.CurrentDay = day
	m.progress[userID] = p
	if m.completions[userID] == nil {
		m.completions[userID] = make(map[int]time.Time)
	}
	m.completions[userID][day] = at
	return nil
}

// fakeSES records every message it is asked to send
type fakeSES struct {
	mu    sync.Mutex
	sent  []*sesv2.SendEmailInput
	fail  map[string]bool
	calls int
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[params.Destination.ToAddresses[0]] {
		return nil, errors.New("ses rejected message")
	}
	f.sent = append(f.sent, params)
	return &sesv2.SendEmailOutput{}, nil
}

func (f *fakeSES) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, in := range f.sent {
		out = append(out, in.Destination.ToAddresses[0])
	}
	return out
}
