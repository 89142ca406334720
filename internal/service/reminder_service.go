package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"coachpath/internal/coaching"
	"coachpath/internal/metrics"
	"coachpath/internal/models"
	"coachpath/internal/repository"
	"coachpath/internal/security"
)

const reminderDateLayout = "2006-01-02"

// ReminderReport summarizes one reminder run
type ReminderReport struct {
	Sent    int
	Skipped int
	Failed  int
}

// ReminderService sends the daily lesson reminder to opted-in users
type ReminderService struct {
	users     *repository.UserRepository
	progress  *repository.ProgressRepository
	reminders *repository.ReminderRepository
	email     *EmailService
	catalog   *coaching.Catalog
	signer    *security.TokenSigner
	metrics   *metrics.Metrics
	baseURL   string
	hour      int
}

// NewReminderService creates a new reminder service. A negative hour disables the scheduler.
func NewReminderService(
	users *repository.UserRepository,
	progress *repository.ProgressRepository,
	reminders *repository.ReminderRepository,
	email *EmailService,
	catalog *coaching.Catalog,
	signer *security.TokenSigner,
	m *metrics.Metrics,
	baseURL string,
	hour int,
) *ReminderService {
	return &ReminderService{
		users:     users,
		progress:  progress,
		reminders: reminders,
		email:     email,
		catalog:   catalog,
		signer:    signer,
		metrics:   m,
		baseURL:   baseURL,
		hour:      hour,
	}
}

// RunOnce sends today's reminder to every opted-in user whose current day is not completed.
// A user gets at most one reminder per calendar date.
func (s *ReminderService) RunOnce(ctx context.Context, now time.Time) (ReminderReport, error) {
	var report ReminderReport

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return report, err
	}
	progresses, err := s.progress.ListProgress(ctx, "")
	if err != nil {
		return report, err
	}
	completions, err := s.progress.ListCompletions(ctx, "")
	if err != nil {
		return report, err
	}

	byUser := make(map[string]models.UserProgress, len(progresses))
	for _, p := range progresses {
		byUser[p.UserID] = p
	}
	done := make(map[string]map[int]bool)
	for _, c := range completions {
		if done[c.UserID] == nil {
			done[c.UserID] = make(map[int]bool)
		}
		done[c.UserID][c.DayNumber] = true
	}

	date := now.Format(reminderDateLayout)
	for i := range users {
		user := &users[i]
		if !user.RemindersEnabled {
			continue
		}
		p, ok := byUser[user.ID]
		if !ok || !p.Pathway.IsValid() {
			continue
		}
		day, err := coaching.CurrentDay(p.StartedAt, now)
		if err != nil || done[user.ID][day] {
			continue
		}
		lesson, err := s.catalog.Resolve(p.Pathway, day)
		if err != nil {
			continue
		}

		first, err := s.reminders.MarkSent(ctx, user.ID, date)
		if err != nil {
			return report, err
		}
		if !first {
			report.Skipped++
			s.metrics.ReminderSent("duplicate")
			continue
		}

		if err := s.send(ctx, user, lesson, day, now); err != nil {
			log.Printf("Failed to send reminder to %s: %v", user.Email, err)
			report.Failed++
			s.metrics.ReminderSent("failed")
			if err := s.reminders.Unmark(ctx, user.ID, date); err != nil {
				log.Printf("Failed to reset reminder record for %s: %v", user.ID, err)
			}
			continue
		}
		report.Sent++
		s.metrics.ReminderSent("sent")
	}

	return report, nil
}

func (s *ReminderService) send(ctx context.Context, user *models.User, lesson models.Lesson, day int, now time.Time) error {
	token, err := s.signer.UnsubscribeToken(user.ID, now)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reminders/unsubscribe?token=%s", s.baseURL, url.QueryEscape(token))
	return s.email.SendReminderEmail(ctx, user.Email, user.Name, lesson, day, link)
}

// Start runs RunOnce once per day at the configured hour until ctx is done
func (s *ReminderService) Start(ctx context.Context) {
	if s.hour < 0 {
		log.Println("Reminder scheduler disabled")
		return
	}
	if !s.email.IsEnabled() {
		log.Println("Reminder scheduler running without email delivery")
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	lastRun := ""
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			date := now.Format(reminderDateLayout)
			if now.Hour() != s.hour || date == lastRun {
				continue
			}
			lastRun = date
			report, err := s.RunOnce(ctx, now)
			if err != nil {
				log.Printf("Reminder run failed: %v", err)
				continue
			}
			log.Printf("Reminders sent=%d skipped=%d failed=%d", report.Sent, report.Skipped, report.Failed)
		}
	}
}

// SetReminders stores the reminder preference of a user
func (s *ReminderService) SetReminders(ctx context.Context, userID string, enabled bool) error {
	return s.users.SetRemindersEnabled(ctx, userID, enabled)
}

// Unsubscribe turns reminders off for the user named by a signed link token
func (s *ReminderService) Unsubscribe(ctx context.Context, token string) error {
	userID, err := s.signer.ParseUnsubscribeToken(token)
	if err != nil {
		return err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: unknown user", security.ErrInvalidToken)
	}
	return s.users.SetRemindersEnabled(ctx, userID, false)
}
