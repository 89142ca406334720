package repository

import (
	"context"
	"fmt"

	"coachpath/internal/database"
)

// ReminderRepository tracks which daily reminder emails were already sent
type ReminderRepository struct {
	db *database.DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// MarkSent records the reminder of userID for the date (YYYY-MM-DD).
// It reports false when one was already recorded for that date.
func (r *ReminderRepository) MarkSent(ctx context.Context, userID, date string) (bool, error) {
	query := r.db.Dialect.UpsertQuery("reminder_log",
		[]string{"user_id", "sent_on"},
		[]string{"user_id", "sent_on"},
		nil,
	)
	result, err := r.db.ExecContext(ctx, query, userID, date)
	if err != nil {
		return false, fmt.Errorf("failed to record reminder: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read reminder result: %w", err)
	}
	return n > 0, nil
}

// Unmark removes a reminder record so a failed send can be retried
func (r *ReminderRepository) Unmark(ctx context.Context, userID, date string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM reminder_log WHERE user_id = ? AND sent_on = ?", userID, date)
	if err != nil {
		return fmt.Errorf("failed to remove reminder record: %w", err)
	}
	return nil
}
