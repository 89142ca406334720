package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"coachpath/internal/database"
	"coachpath/internal/models"
	"coachpath/migrations"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createUser(t *testing.T, repo *UserRepository, email string) *models.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), email, "hash", "Test "+email)
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", email, err)
	}
	return u
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := createUser(t, repo, " Alex@Example.com ")
	if u.ID == "" || u.Email != "alex@example.com" || !u.RemindersEnabled {
		t.Fatalf("CreateUser() = %+v", u)
	}

	if _, err := repo.CreateUser(ctx, "alex@example.com", "hash", "Again"); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrDuplicateEmail", err)
	}

	got, err := repo.GetUserByEmail(ctx, "ALEX@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetUserByEmail() = %v, %v", got, err)
	}
	if got.ID != u.ID || got.CreatedAt.IsZero() {
		t.Errorf("GetUserByEmail() = %+v", got)
	}

	missing, err := repo.GetUserByID(ctx, "does-not-exist")
	if err != nil || missing != nil {
		t.Errorf("GetUserByID(missing) = %v, %v; want nil, nil", missing, err)
	}

	if err := repo.SetRemindersEnabled(ctx, u.ID, false); err != nil {
		t.Fatalf("SetRemindersEnabled() error = %v", err)
	}
	got, _ = repo.GetUserByID(ctx, u.ID)
	if got.RemindersEnabled {
		t.Error("RemindersEnabled still true")
	}

	if err := repo.LinkOAuthProvider(ctx, u.ID, "google", "sub-1"); err != nil {
		t.Fatalf("LinkOAuthProvider() error = %v", err)
	}
	if err := repo.LinkOAuthProvider(ctx, u.ID, "google", "sub-2"); err == nil {
		t.Error("second LinkOAuthProvider() expected error")
	}
	byOAuth, err := repo.GetUserByOAuth(ctx, "google", "sub-1")
	if err != nil || byOAuth == nil || byOAuth.ID != u.ID {
		t.Errorf("GetUserByOAuth() = %v, %v", byOAuth, err)
	}

	createUser(t, repo, "sam@example.com")
	profiles, err := repo.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Errorf("ListProfiles() = %d profiles, want 2", len(profiles))
	}
}

func TestSessions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := createUser(t, repo, "s@example.com")

	now := time.Now().UTC()
	if _, err := repo.CreateSession(ctx, "live", u.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := repo.CreateSession(ctx, "old", u.ID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	s, err := repo.GetSession(ctx, "live")
	if err != nil || s == nil {
		t.Fatalf("GetSession() = %v, %v", s, err)
	}
	if s.UserID != u.ID || s.IsExpired() {
		t.Errorf("GetSession() = %+v", s)
	}

	n, err := repo.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteExpiredSessions() removed %d, want 1", n)
	}

	if err := repo.DeleteSession(ctx, "live"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if s, _ := repo.GetSession(ctx, "live"); s != nil {
		t.Errorf("session still present after delete: %+v", s)
	}
}

func TestProgressUpsert(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewProgressRepository(db)
	ctx := context.Background()
	u := createUser(t, users, "p@example.com")

	if p, err := repo.GetProgress(ctx, u.ID); err != nil || p != nil {
		t.Fatalf("GetProgress() before quiz = %v, %v", p, err)
	}

	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	if err := repo.UpsertProgress(ctx, models.UserProgress{UserID: u.ID, Pathway: models.PathwayBoost, CurrentDay: 1, StartedAt: start}); err != nil {
		t.Fatalf("UpsertProgress() error = %v", err)
	}
	restart := start.Add(48 * time.Hour)
	if err := repo.UpsertProgress(ctx, models.UserProgress{UserID: u.ID, Pathway: models.PathwayRelax, CurrentDay: 1, StartedAt: restart}); err != nil {
		t.Fatalf("second UpsertProgress() error = %v", err)
	}

	all, err := repo.ListProgress(ctx, "")
	if err != nil {
		t.Fatalf("ListProgress() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ListProgress() = %d rows, want 1", len(all))
	}
	if all[0].Pathway != models.PathwayRelax || !all[0].StartedAt.Equal(restart) || all[0].LastActivityAt != nil {
		t.Errorf("progress = %+v", all[0])
	}
}

func TestCompletionIdempotent(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewProgressRepository(db)
	ctx := context.Background()
	u := createUser(t, users, "c@example.com")
	other := createUser(t, users, "o@example.com")

	start := time.Now().UTC().Add(-time.Hour)
	if err := repo.UpsertProgress(ctx, models.UserProgress{UserID: u.ID, Pathway: models.PathwayBoost, CurrentDay: 1, StartedAt: start}); err != nil {
		t.Fatalf("UpsertProgress() error = %v", err)
	}

	first := start.Add(10 * time.Minute)
	second := start.Add(20 * time.Minute)
	for _, at := range []time.Time{first, second} {
		if err := repo.CompleteLesson(ctx, u.ID, 1, at); err != nil {
			t.Fatalf("CompleteLesson() error = %v", err)
		}
	}
	if err := repo.UpsertCompletion(ctx, models.CompletionRecord{UserID: u.ID, DayNumber: 2, CompletedAt: second}); err != nil {
		t.Fatalf("UpsertCompletion() error = %v", err)
	}

	comps, err := repo.ListCompletions(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListCompletions() error = %v", err)
	}
	if len(comps) != 2 {
		t.Fatalf("ListCompletions() = %d rows, want 2", len(comps))
	}
	if comps[0].DayNumber != 1 || !comps[0].CompletedAt.Equal(second) {
		t.Errorf("day 1 completion = %+v, want refreshed completed_at", comps[0])
	}

	p, _ := repo.GetProgress(ctx, u.ID)
	if p.LastActivityAt == nil || !p.LastActivityAt.Equal(second) {
		t.Errorf("LastActivityAt = %v, want %v", p.LastActivityAt, second)
	}

	if err := repo.CompleteLesson(ctx, other.ID, 1, second); !errors.Is(err, ErrNoProgress) {
		t.Errorf("CompleteLesson() without progress error = %v, want ErrNoProgress", err)
	}
	if comps, _ := repo.ListCompletions(ctx, other.ID); len(comps) != 0 {
		t.Errorf("completion stored for user without progress: %+v", comps)
	}
}

func TestMalformedTimestampsAreZero(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewProgressRepository(db)
	ctx := context.Background()
	u := createUser(t, users, "m@example.com")

	if _, err := db.ExecContext(ctx, "INSERT INTO user_progress (user_id, pathway, current_day, started_at) VALUES (?, ?, ?, ?)", u.ID, "boost", 1, "garbage"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO lesson_completions (user_id, day_number, completed_at) VALUES (?, ?, ?)", u.ID, 1, "garbage"); err != nil {
		t.Fatal(err)
	}

	progress, err := repo.ListProgress(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListProgress() error = %v", err)
	}
	if len(progress) != 1 || !progress[0].StartedAt.IsZero() || progress[0].Pathway != models.PathwayBoost {
		t.Errorf("progress = %+v, want zero StartedAt and normalized pathway", progress)
	}

	comps, err := repo.ListCompletions(ctx, "")
	if err != nil {
		t.Fatalf("ListCompletions() error = %v", err)
	}
	if len(comps) != 1 || !comps[0].CompletedAt.IsZero() {
		t.Errorf("completions = %+v, want zero CompletedAt", comps)
	}
}

func TestReminderMarkSent(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewReminderRepository(db)
	ctx := context.Background()
	u := createUser(t, users, "r@example.com")

	first, err := repo.MarkSent(ctx, u.ID, "2026-05-01")
	if err != nil || !first {
		t.Fatalf("MarkSent() = %v, %v; want true", first, err)
	}
	again, err := repo.MarkSent(ctx, u.ID, "2026-05-01")
	if err != nil || again {
		t.Errorf("repeated MarkSent() = %v, %v; want false", again, err)
	}

	if err := repo.Unmark(ctx, u.ID, "2026-05-01"); err != nil {
		t.Fatalf("Unmark() error = %v", err)
	}
	if ok, _ := repo.MarkSent(ctx, u.ID, "2026-05-01"); !ok {
		t.Error("MarkSent() after Unmark should record again")
	}
}
