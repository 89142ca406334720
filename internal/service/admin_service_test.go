package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"coachpath/internal/coaching"
	"coachpath/internal/metrics"
	"coachpath/internal/models"
)

type fakeProfiles struct {
	profiles []models.Profile
	err      error
}

func (f *fakeProfiles) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	return f.profiles, f.err
}

type fakeProgressLister struct {
	progress    []models.UserProgress
	completions []models.CompletionRecord
	err         error
}

func (f *fakeProgressLister) ListProgress(ctx context.Context, userID string) ([]models.UserProgress, error) {
	return f.progress, f.err
}

func (f *fakeProgressLister) ListCompletions(ctx context.Context, userID string) ([]models.CompletionRecord, error) {
	return f.completions, nil
}

func TestAdminService_Summary(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)

	profiles := &fakeProfiles{profiles: []models.Profile{
		{UserID: "u1", Email: "alice@example.com", Name: "Alice"},
		{UserID: "u2", Email: "bob@example.com", Name: "Bob"},
		{UserID: "u3", Email: "carol@example.com", Name: "Carol Alison"},
	}}
	progress := &fakeProgressLister{
		progress: []models.UserProgress{
			{UserID: "u1", Pathway: models.PathwayBoost, StartedAt: recent},
			{UserID: "u2", Pathway: models.PathwayRelax, StartedAt: recent},
		},
		completions: []models.CompletionRecord{
			{UserID: "u1", DayNumber: 1, CompletedAt: recent},
			{UserID: "u1", DayNumber: 9, CompletedAt: recent},
		},
	}

	reg := prometheus.NewRegistry()
	svc := NewAdminService(profiles, progress, coaching.NewAggregator(0), metrics.New(reg))
	svc.now = fixedClock(now)

	tests := []struct {
		name      string
		query     string
		wantUsers []string
	}{
		{name: "no filter", query: "", wantUsers: []string{"u1", "u2", "u3"}},
		{name: "name match", query: "ali", wantUsers: []string{"u1", "u3"}},
		{name: "email match case insensitive", query: "BOB@", wantUsers: []string{"u2"}},
		{name: "no match", query: "zed", wantUsers: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := svc.Summary(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Summary() error = %v", err)
			}
			if summary.TotalUsers != 3 || summary.BoostCount != 1 || summary.RelaxCount != 1 {
				t.Errorf("totals = %+v, want 3 users, 1 boost, 1 relax", summary)
			}
			if summary.ActiveThisWeek != 2 {
				t.Errorf("ActiveThisWeek = %d, want 2", summary.ActiveThisWeek)
			}
			if len(summary.Members) != len(tt.wantUsers) {
				t.Fatalf("Members = %+v, want %v", summary.Members, tt.wantUsers)
			}
			for i, id := range tt.wantUsers {
				if summary.Members[i].UserID != id {
					t.Errorf("Members[%d] = %s, want %s", i, summary.Members[i].UserID, id)
				}
			}
		})
	}

	// one out-of-range completion per Summary call
	got, err := testutil.GatherAndCount(reg, "coachpath_aggregate_skipped_records_total")
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("skipped series = %d, want 1", got)
	}
}

func TestAdminService_SummaryError(t *testing.T) {
	boom := errors.New("db gone")
	svc := NewAdminService(&fakeProfiles{}, &fakeProgressLister{err: boom}, coaching.NewAggregator(0), nil)

	if _, err := svc.Summary(context.Background(), ""); !errors.Is(err, boom) {
		t.Errorf("Summary() error = %v, want %v", err, boom)
	}
}

func TestAdminService_Empty(t *testing.T) {
	svc := NewAdminService(&fakeProfiles{}, &fakeProgressLister{}, coaching.NewAggregator(0), nil)

	summary, err := svc.Summary(context.Background(), "")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.TotalUsers != 0 || summary.AvgCompletion != 0 || summary.Members == nil {
		t.Errorf("Summary() = %+v, want zero summary with empty members", summary)
	}
}
