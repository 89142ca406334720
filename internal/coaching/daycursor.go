package coaching

import (
	"fmt"
	"time"

	"coachpath/internal/models"
)

const day = 24 * time.Hour

// CurrentDay returns the 1-based lesson day for an enrollment started at startedAt.
// The cursor moves one day per elapsed 24h and stays on the last day forever.
// A start in the future yields day 1.
func CurrentDay(startedAt, now time.Time) (int, error) {
	if startedAt.IsZero() {
		return 0, fmt.Errorf("%w: missing or unparseable start timestamp", ErrInvalidInput)
	}
	if now.IsZero() {
		return 0, fmt.Errorf("%w: missing current timestamp", ErrInvalidInput)
	}

	elapsed := now.Sub(startedAt)
	if elapsed < 0 {
		return 1, nil
	}

	daysElapsed := int64(elapsed / day)
	if daysElapsed >= models.ProgramDays-1 {
		return models.ProgramDays, nil
	}
	return int(daysElapsed) + 1, nil
}

// ProgressPercent is the share of the program completed, 0 to 100
func ProgressPercent(completedDays int) float64 {
	if completedDays <= 0 {
		return 0
	}
	if completedDays > models.ProgramDays {
		completedDays = models.ProgramDays
	}
	return float64(completedDays) / float64(models.ProgramDays) * 100
}

// RoadmapDay is one cell of the four-day roadmap
type RoadmapDay struct {
	Day       int  `json:"day"`
	Completed bool `json:"completed"`
	Current   bool `json:"current"`
	Locked    bool `json:"locked"`
}

// Roadmap lays out every program day relative to the current day.
// Days after the current one are locked; completion is reported independently.
func Roadmap(currentDay int, completedDays []int) []RoadmapDay {
	done := make(map[int]bool, len(completedDays))
	for _, d := range completedDays {
		done[d] = true
	}

	roadmap := make([]RoadmapDay, 0, models.ProgramDays)
	for d := 1; d <= models.ProgramDays; d++ {
		roadmap = append(roadmap, RoadmapDay{
			Day:       d,
			Completed: done[d],
			Current:   d == currentDay,
			Locked:    d > currentDay,
		})
	}
	return roadmap
}
