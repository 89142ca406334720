package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"coachpath/internal/coaching"
	"coachpath/internal/metrics"
	"coachpath/internal/models"
)

// ProfileLister lists every user profile
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
}

// ProgressLister lists enrollment and completion rows; an empty userID means all users
type ProgressLister interface {
	ListProgress(ctx context.Context, userID string) ([]models.UserProgress, error)
	ListCompletions(ctx context.Context, userID string) ([]models.CompletionRecord, error)
}

// AdminService builds the admin overview
type AdminService struct {
	profiles   ProfileLister
	progress   ProgressLister
	aggregator *coaching.Aggregator
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewAdminService creates a new admin service. m may be nil.
func NewAdminService(profiles ProfileLister, progress ProgressLister, aggregator *coaching.Aggregator, m *metrics.Metrics) *AdminService {
	return &AdminService{
		profiles:   profiles,
		progress:   progress,
		aggregator: aggregator,
		metrics:    m,
		now:        time.Now,
	}
}

// Summary aggregates every user and keeps only the member rows matching query.
// Totals always cover every user.
func (s *AdminService) Summary(ctx context.Context, query string) (*coaching.AdminSummary, error) {
	var in coaching.AggregateInput

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profiles, err := s.profiles.ListProfiles(gctx)
		if err != nil {
			return fmt.Errorf("failed to list profiles: %w", err)
		}
		in.Profiles = profiles
		return nil
	})
	g.Go(func() error {
		progresses, err := s.progress.ListProgress(gctx, "")
		if err != nil {
			return fmt.Errorf("failed to list progress: %w", err)
		}
		in.Progresses = progresses
		return nil
	})
	g.Go(func() error {
		completions, err := s.progress.ListCompletions(gctx, "")
		if err != nil {
			return fmt.Errorf("failed to list completions: %w", err)
		}
		in.Completions = completions
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in.Now = s.now()
	summary := s.aggregator.Aggregate(in)

	if len(summary.Skipped) > 0 {
		counts := make(map[string]int)
		for _, rec := range summary.Skipped {
			counts[rec.Kind]++
			log.Printf("Admin summary skipped %s record of user %s: %s", rec.Kind, rec.UserID, rec.Reason)
		}
		for kind, n := range counts {
			s.metrics.RecordsSkipped(kind, n)
		}
	}

	summary.Members = filterMembers(summary.Members, query)
	return &summary, nil
}

// filterMembers keeps rows whose email or name contains q, case-insensitively
func filterMembers(rows []coaching.MemberRow, q string) []coaching.MemberRow {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return rows
	}
	out := make([]coaching.MemberRow, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Email), q) || strings.Contains(strings.ToLower(row.Name), q) {
			out = append(out, row)
		}
	}
	return out
}
