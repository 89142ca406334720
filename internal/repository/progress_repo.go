package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coachpath/internal/database"
	"coachpath/internal/models"
)

// ErrNoProgress is returned when a lesson is completed by a user that never took the quiz
var ErrNoProgress = errors.New("no pathway assigned")

// ProgressRepository handles pathway enrollment and lesson completion rows
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func scanProgress(row rowScanner) (models.UserProgress, error) {
	var p models.UserProgress
	var pathway string
	var startedAt, lastActivity database.Timestamp
	if err := row.Scan(&p.UserID, &pathway, &p.CurrentDay, &startedAt, &lastActivity); err != nil {
		return p, err
	}
	// unknown labels are kept as-is so the aggregator can report them
	if parsed, ok := models.ParsePathway(pathway); ok {
		p.Pathway = parsed
	} else {
		p.Pathway = models.Pathway(pathway)
	}
	p.StartedAt = startedAt.OrZero()
	p.LastActivityAt = lastActivity.Ptr()
	return p, nil
}

// GetProgress returns the enrollment of a user, or nil when the quiz was never taken
func (r *ProgressRepository) GetProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	query := `
		SELECT user_id, pathway, current_day, started_at, last_activity_at
		FROM user_progress
		WHERE user_id = ?
	`
	p, err := scanProgress(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &p, nil
}

// ListProgress returns enrollment rows, all of them when userID is empty
func (r *ProgressRepository) ListProgress(ctx context.Context, userID string) ([]models.UserProgress, error) {
	query := `SELECT user_id, pathway, current_day, started_at, last_activity_at FROM user_progress`
	var args []interface{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var out []models.UserProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress: %w", err)
	}
	return out, nil
}

// ListCompletions returns completion rows, all of them when userID is empty
func (r *ProgressRepository) ListCompletions(ctx context.Context, userID string) ([]models.CompletionRecord, error) {
	query := `SELECT user_id, day_number, completed_at FROM lesson_completions`
	var args []interface{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY user_id, day_number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var out []models.CompletionRecord
	for rows.Next() {
		var c models.CompletionRecord
		var completedAt database.Timestamp
		if err := rows.Scan(&c.UserID, &c.DayNumber, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		c.CompletedAt = completedAt.OrZero()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completions: %w", err)
	}
	return out, nil
}

// UpsertProgress creates or replaces the enrollment of a user
func (r *ProgressRepository) UpsertProgress(ctx context.Context, p models.UserProgress) error {
	return upsertProgress(ctx, r.db, p)
}

func upsertProgress(ctx context.Context, q database.DBTX, p models.UserProgress) error {
	query := q.GetDialect().UpsertQuery("user_progress",
		[]string{"user_id", "pathway", "current_day", "started_at", "last_activity_at"},
		[]string{"user_id"},
		[]string{"pathway", "current_day", "started_at", "last_activity_at"},
	)
	_, err := q.ExecContext(ctx, query,
		p.UserID, string(p.Pathway), p.CurrentDay,
		database.NewTimestamp(p.StartedAt), database.NullableTime(p.LastActivityAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}
	return nil
}

// UpsertCompletion records a completed day; repeating it only refreshes completed_at
func (r *ProgressRepository) UpsertCompletion(ctx context.Context, c models.CompletionRecord) error {
	return upsertCompletion(ctx, r.db, c)
}

func upsertCompletion(ctx context.Context, q database.DBTX, c models.CompletionRecord) error {
	query := q.GetDialect().UpsertQuery("lesson_completions",
		[]string{"user_id", "day_number", "completed_at"},
		[]string{"user_id", "day_number"},
		[]string{"completed_at"},
	)
	if _, err := q.ExecContext(ctx, query, c.UserID, c.DayNumber, database.NewTimestamp(c.CompletedAt)); err != nil {
		return fmt.Errorf("failed to upsert completion: %w", err)
	}
	return nil
}

// CompleteLesson upserts the completion of day and bumps the activity of the enrollment in one transaction
func (r *ProgressRepository) CompleteLesson(ctx context.Context, userID string, day int, at time.Time) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		var enrolled int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_progress WHERE user_id = ?", userID).Scan(&enrolled); err != nil {
			return fmt.Errorf("failed to check progress: %w", err)
		}
		if enrolled == 0 {
			return ErrNoProgress
		}

		query := `
			UPDATE user_progress
			SET last_activity_at = ?, current_day = ?
			WHERE user_id = ?
		`
		if _, err := tx.ExecContext(ctx, query, database.NewTimestamp(at), day, userID); err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}

		return upsertCompletion(ctx, tx, models.CompletionRecord{UserID: userID, DayNumber: day, CompletedAt: at})
	})
}
