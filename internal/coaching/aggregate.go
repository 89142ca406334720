package coaching

import (
	"fmt"
	"math"
	"time"

	"coachpath/internal/models"
)

// DefaultActivityWindow is how far back a user still counts as active
const DefaultActivityWindow = 7 * 24 * time.Hour

// MemberStatus is the derived lifecycle state of a user
type MemberStatus string

const (
	StatusNew       MemberStatus = "new"
	StatusActive    MemberStatus = "active"
	StatusCompleted MemberStatus = "completed"
)

// MemberRow is the per-user line of the admin summary
type MemberRow struct {
	UserID        string         `json:"user_id"`
	Email         string         `json:"email"`
	Name          string         `json:"name"`
	Pathway       models.Pathway `json:"pathway"`
	ProgressCount int            `json:"progress_count"`
	Status        MemberStatus   `json:"status"`
	LastActive    *time.Time     `json:"last_active,omitempty"`
}

// SkippedRecord describes an input record left out of the summary
type SkippedRecord struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// Record kinds reported in SkippedRecord.Kind
const (
	KindProgress   = "progress"
	KindCompletion = "completion"
)

// AdminSummary is the aggregate view over every user
type AdminSummary struct {
	TotalUsers     int             `json:"total_users"`
	ActiveThisWeek int             `json:"active_this_week"`
	BoostCount     int             `json:"boost_count"`
	RelaxCount     int             `json:"relax_count"`
	AvgCompletion  int             `json:"avg_completion"`
	Members        []MemberRow     `json:"members"`
	Skipped        []SkippedRecord `json:"skipped,omitempty"`
}

// AggregateInput is the already-fetched data the summary is computed from
type AggregateInput struct {
	Profiles    []models.Profile
	Progresses  []models.UserProgress
	Completions []models.CompletionRecord
	Now         time.Time
}

// Aggregator builds admin summaries for a fixed activity window
type Aggregator struct {
	window time.Duration
}

// NewAggregator creates an aggregator; a non-positive window falls back to DefaultActivityWindow
func NewAggregator(window time.Duration) *Aggregator {
	if window <= 0 {
		window = DefaultActivityWindow
	}
	return &Aggregator{window: window}
}

// Window returns the activity window in use
func (a *Aggregator) Window() time.Duration {
	return a.window
}

type memberState struct {
	progress    *models.UserProgress
	days        map[int]bool
	lastActive  time.Time
	hasActivity bool
}

func (m *memberState) touch(t time.Time) {
	if t.IsZero() {
		return
	}
	if !m.hasActivity || t.After(m.lastActive) {
		m.lastActive = t
		m.hasActivity = true
	}
}

// Aggregate joins profiles to their progress and completions.
// Malformed records are listed in Skipped and never fail the summary.
// Members keep the order of the input profiles.
func (a *Aggregator) Aggregate(in AggregateInput) AdminSummary {
	summary := AdminSummary{
		Members: make([]MemberRow, 0, len(in.Profiles)),
	}

	states := make(map[string]*memberState, len(in.Profiles))
	for _, p := range in.Profiles {
		if _, ok := states[p.UserID]; ok {
			continue
		}
		states[p.UserID] = &memberState{days: make(map[int]bool)}
	}

	skip := func(userID, kind, reason string) {
		summary.Skipped = append(summary.Skipped, SkippedRecord{UserID: userID, Kind: kind, Reason: reason})
	}

	for i := range in.Progresses {
		pr := in.Progresses[i]
		st, ok := states[pr.UserID]
		if !ok {
			continue
		}
		if st.progress != nil {
			skip(pr.UserID, KindProgress, "duplicate progress record")
			continue
		}
		if !pr.Pathway.IsValid() {
			skip(pr.UserID, KindProgress, fmt.Sprintf("unknown pathway %q", pr.Pathway))
			continue
		}
		if pr.StartedAt.IsZero() {
			skip(pr.UserID, KindProgress, "unparseable started_at")
		}
		st.progress = &pr
		st.touch(pr.StartedAt)
		if pr.LastActivityAt != nil {
			st.touch(*pr.LastActivityAt)
		}
	}

	for _, c := range in.Completions {
		st, ok := states[c.UserID]
		if !ok {
			continue
		}
		if c.DayNumber < 1 || c.DayNumber > models.ProgramDays {
			skip(c.UserID, KindCompletion, fmt.Sprintf("day %d out of range", c.DayNumber))
			continue
		}
		st.days[c.DayNumber] = true
		if c.CompletedAt.IsZero() {
			skip(c.UserID, KindCompletion, fmt.Sprintf("unparseable completed_at for day %d", c.DayNumber))
			continue
		}
		st.touch(c.CompletedAt)
	}

	cutoff := in.Now.Add(-a.window)
	totalDone := 0
	seen := make(map[string]bool, len(in.Profiles))

	for _, p := range in.Profiles {
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		st := states[p.UserID]

		row := MemberRow{
			UserID:        p.UserID,
			Email:         p.Email,
			Name:          p.Name,
			Pathway:       models.PathwayNotStarted,
			ProgressCount: len(st.days),
		}

		switch {
		case st.progress == nil:
			row.Status = StatusNew
		case row.ProgressCount >= models.ProgramDays:
			row.Status = StatusCompleted
		default:
			row.Status = StatusActive
		}

		if st.progress != nil {
			row.Pathway = st.progress.Pathway
			switch row.Pathway {
			case models.PathwayBoost:
				summary.BoostCount++
			case models.PathwayRelax:
				summary.RelaxCount++
			}
		}

		if st.hasActivity {
			last := st.lastActive
			row.LastActive = &last
			if !last.Before(cutoff) {
				summary.ActiveThisWeek++
			}
		}

		totalDone += row.ProgressCount
		summary.Members = append(summary.Members, row)
	}

	summary.TotalUsers = len(summary.Members)
	summary.AvgCompletion = averageCompletion(totalDone, summary.TotalUsers)

	return summary
}

func averageCompletion(totalDone, totalUsers int) int {
	if totalUsers == 0 {
		return 0
	}
	return int(math.Round(float64(totalDone) / float64(totalUsers*models.ProgramDays) * 100))
}
