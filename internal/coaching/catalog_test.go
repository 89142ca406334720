package coaching

import (
	"errors"
	"fmt"
	"testing"

	"coachpath/internal/models"
)

func testPathway(id models.Pathway, days ...int) models.PathwayContent {
	p := models.PathwayContent{ID: id, Name: string(id)}
	for _, d := range days {
		p.Lessons = append(p.Lessons, models.Lesson{
			ID:        fmt.Sprintf("%s-%d", id, d),
			DayNumber: d,
			Title:     fmt.Sprintf("%s day %d", id, d),
		})
	}
	return p
}

func testQuestions(n int) []models.QuizQuestion {
	qs := make([]models.QuizQuestion, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, models.QuizQuestion{
			ID:       i,
			Question: fmt.Sprintf("question %d", i),
			Options: []models.QuizOption{
				{Text: "up", Target: models.AnswerBoost},
				{Text: "down", Target: models.AnswerRelax},
			},
		})
	}
	return qs
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]models.PathwayContent{
		testPathway(models.PathwayBoost, 1, 2, 3, 4),
		testPathway(models.PathwayRelax, 4, 3, 2, 1),
	}, testQuestions(QuizLength))
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return c
}

func TestCatalogResolve(t *testing.T) {
	c := testCatalog(t)

	for _, p := range []models.Pathway{models.PathwayBoost, models.PathwayRelax} {
		for d := 1; d <= models.ProgramDays; d++ {
			l, err := c.Resolve(p, d)
			if err != nil {
				t.Fatalf("Resolve(%s, %d) error = %v", p, d, err)
			}
			if l.DayNumber != d {
				t.Errorf("Resolve(%s, %d).DayNumber = %d", p, d, l.DayNumber)
			}
		}
	}
}

func TestCatalogResolveNotFound(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name    string
		pathway models.Pathway
		day     int
	}{
		{"day zero", models.PathwayBoost, 0},
		{"day five", models.PathwayRelax, 5},
		{"not started", models.PathwayNotStarted, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Resolve(tt.pathway, tt.day); !errors.Is(err, ErrNotFound) {
				t.Errorf("Resolve() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestNewCatalogIncomplete(t *testing.T) {
	full := testPathway(models.PathwayBoost, 1, 2, 3, 4)

	tests := []struct {
		name      string
		pathways  []models.PathwayContent
		questions []models.QuizQuestion
	}{
		{"missing relax", []models.PathwayContent{full}, testQuestions(3)},
		{"gap in days", []models.PathwayContent{full, testPathway(models.PathwayRelax, 1, 2, 4, 5)}, testQuestions(3)},
		{"duplicate day", []models.PathwayContent{full, testPathway(models.PathwayRelax, 1, 2, 2, 3)}, testQuestions(3)},
		{"three lessons", []models.PathwayContent{full, testPathway(models.PathwayRelax, 1, 2, 3)}, testQuestions(3)},
		{"unknown pathway", []models.PathwayContent{full, testPathway("ZEN", 1, 2, 3, 4)}, testQuestions(3)},
		{"pathway twice", []models.PathwayContent{full, full}, testQuestions(3)},
		{"two questions", []models.PathwayContent{full, testPathway(models.PathwayRelax, 1, 2, 3, 4)}, testQuestions(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.pathways, tt.questions); !errors.Is(err, ErrIncompleteContent) {
				t.Errorf("NewCatalog() error = %v, want ErrIncompleteContent", err)
			}
		})
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	c := testCatalog(t)

	p, err := c.Pathway(models.PathwayBoost)
	if err != nil {
		t.Fatalf("Pathway() error = %v", err)
	}
	p.Lessons[0].Title = "changed"

	l, _ := c.Resolve(models.PathwayBoost, 1)
	if l.Title == "changed" {
		t.Error("mutating a returned pathway changed the catalog")
	}
	if n := c.LessonCount(); n != 8 {
		t.Errorf("LessonCount() = %d, want 8", n)
	}
	if got := c.Pathways(); len(got) != 2 || got[0].ID != models.PathwayBoost {
		t.Errorf("Pathways() = %+v", got)
	}
}
