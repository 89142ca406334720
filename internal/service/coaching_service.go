package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"coachpath/internal/coaching"
	"coachpath/internal/metrics"
	"coachpath/internal/models"
	"coachpath/internal/repository"
)

// ErrQuizRequired is returned when an operation needs an assigned pathway
var ErrQuizRequired = errors.New("quiz required")

// ProgressStore is the persistence the coaching flow needs
type ProgressStore interface {
	ProgressReader
	UpsertProgress(ctx context.Context, p models.UserProgress) error
	CompleteLesson(ctx context.Context, userID string, day int, at time.Time) error
}

// QuizStatus tells the client whether the quiz can be skipped
type QuizStatus struct {
	Completed bool           `json:"completed"`
	Pathway   models.Pathway `json:"pathway,omitempty"`
}

// LessonView is the lesson of the current day for a user
type LessonView struct {
	Pathway    models.Pathway `json:"pathway"`
	CurrentDay int            `json:"current_day"`
	Lesson     models.Lesson  `json:"lesson"`
	Completed  bool           `json:"completed"`
}

// Dashboard is the progress overview of a user
type Dashboard struct {
	Pathway         models.Pathway        `json:"pathway"`
	PathwayName     string                `json:"pathway_name"`
	CurrentDay      int                   `json:"current_day"`
	CompletedDays   []int                 `json:"completed_days"`
	ProgressPercent float64               `json:"progress_percent"`
	TodayCompleted  bool                  `json:"today_completed"`
	Today           models.Lesson         `json:"today"`
	Roadmap         []coaching.RoadmapDay `json:"roadmap"`
	Stale           bool                  `json:"stale,omitempty"`
}

// CoachingService runs the quiz, dashboard and lesson flows
type CoachingService struct {
	catalog *coaching.Catalog
	store   ProgressStore
	reader  *FallbackProgressReader
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewCoachingService creates a new coaching service. m may be nil.
func NewCoachingService(catalog *coaching.Catalog, store ProgressStore, m *metrics.Metrics) *CoachingService {
	return &CoachingService{
		catalog: catalog,
		store:   store,
		reader:  NewFallbackProgressReader(store, m),
		metrics: m,
		now:     time.Now,
	}
}

// Questions returns the quiz in display order
func (s *CoachingService) Questions() []models.QuizQuestion {
	return s.catalog.Questions()
}

// SubmitQuiz scores the answers and (re)starts the user on the resulting pathway.
// Existing completions are kept.
func (s *CoachingService) SubmitQuiz(ctx context.Context, userID string, answers []string) (models.Pathway, error) {
	parsed := make([]models.QuizAnswer, len(answers))
	for i, raw := range answers {
		a, ok := models.ParseQuizAnswer(raw)
		if !ok {
			a = models.QuizAnswer(raw)
		}
		parsed[i] = a
	}

	pathway, err := coaching.Score(parsed)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	progress := models.UserProgress{
		UserID:         userID,
		Pathway:        pathway,
		CurrentDay:     1,
		StartedAt:      now,
		LastActivityAt: &now,
	}
	if err := s.store.UpsertProgress(ctx, progress); err != nil {
		return "", fmt.Errorf("failed to save pathway: %w", err)
	}
	s.reader.Forget(userID)

	s.metrics.QuizScored(string(pathway))
	log.Printf("User %s assigned to pathway %s", userID, pathway)
	return pathway, nil
}

// QuizStatus reports whether the user already has a pathway
func (s *CoachingService) QuizStatus(ctx context.Context, userID string) (QuizStatus, error) {
	progress, err := s.store.GetProgress(ctx, userID)
	if err != nil {
		return QuizStatus{}, fmt.Errorf("failed to get progress: %w", err)
	}
	if progress == nil || !progress.Pathway.IsValid() {
		return QuizStatus{}, nil
	}
	return QuizStatus{Completed: true, Pathway: progress.Pathway}, nil
}

// Dashboard builds the progress overview, served from cache when the store is down
func (s *CoachingService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	snap, err := s.reader.Read(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}

	day, err := s.cursor(snap.Progress)
	if err != nil {
		return nil, err
	}

	pathway, err := s.catalog.Pathway(snap.Progress.Pathway)
	if err != nil {
		return nil, err
	}
	lesson, err := s.catalog.Resolve(pathway.ID, day)
	if err != nil {
		return nil, err
	}

	done := completedDays(snap.Completions)
	return &Dashboard{
		Pathway:         pathway.ID,
		PathwayName:     pathway.Name,
		CurrentDay:      day,
		CompletedDays:   done,
		ProgressPercent: coaching.ProgressPercent(len(done)),
		TodayCompleted:  containsDay(done, day),
		Today:           lesson,
		Roadmap:         coaching.Roadmap(day, done),
		Stale:           snap.Stale,
	}, nil
}

// TodayLesson returns the lesson of the user's current day
func (s *CoachingService) TodayLesson(ctx context.Context, userID string) (*LessonView, error) {
	progress, err := s.store.GetProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	day, err := s.cursor(progress)
	if err != nil {
		return nil, err
	}
	lesson, err := s.catalog.Resolve(progress.Pathway, day)
	if err != nil {
		return nil, err
	}

	completions, err := s.store.ListCompletions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completions: %w", err)
	}

	return &LessonView{
		Pathway:    progress.Pathway,
		CurrentDay: day,
		Lesson:     lesson,
		Completed:  containsDay(completedDays(completions), day),
	}, nil
}

// CompleteLesson marks the user's current day as done. Repeating it is a no-op.
func (s *CoachingService) CompleteLesson(ctx context.Context, userID string) (*LessonView, error) {
	progress, err := s.store.GetProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	day, err := s.cursor(progress)
	if err != nil {
		return nil, err
	}
	lesson, err := s.catalog.Resolve(progress.Pathway, day)
	if err != nil {
		return nil, err
	}

	err = s.store.CompleteLesson(ctx, userID, day, s.now().UTC())
	if errors.Is(err, repository.ErrNoProgress) {
		return nil, ErrQuizRequired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete lesson: %w", err)
	}

	s.metrics.LessonCompleted(string(progress.Pathway), day)
	return &LessonView{
		Pathway:    progress.Pathway,
		CurrentDay: day,
		Lesson:     lesson,
		Completed:  true,
	}, nil
}

// cursor returns the current day of an enrollment. Rows that cannot drive
// the cursor send the user back to the quiz.
func (s *CoachingService) cursor(progress *models.UserProgress) (int, error) {
	if progress == nil {
		return 0, ErrQuizRequired
	}
	if !progress.Pathway.IsValid() {
		return 0, fmt.Errorf("%w: stored pathway %q is unknown", ErrQuizRequired, progress.Pathway)
	}
	day, err := coaching.CurrentDay(progress.StartedAt, s.now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQuizRequired, err)
	}
	return day, nil
}

// completedDays returns the distinct in-range days, ascending
func completedDays(records []models.CompletionRecord) []int {
	seen := make(map[int]bool, len(records))
	days := make([]int, 0, len(records))
	for _, c := range records {
		if c.DayNumber < 1 || c.DayNumber > models.ProgramDays || seen[c.DayNumber] {
			continue
		}
		seen[c.DayNumber] = true
		days = append(days, c.DayNumber)
	}
	sort.Ints(days)
	return days
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
