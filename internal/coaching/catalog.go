package coaching

import (
	"fmt"
	"sort"

	"coachpath/internal/models"
)

// Catalog is the immutable content table: both pathways and the quiz questions.
type Catalog struct {
	pathways  map[models.Pathway]models.PathwayContent
	questions []models.QuizQuestion
}

// NewCatalog validates the content and builds a catalog.
// Both pathways must define exactly the days 1..ProgramDays and the quiz must have QuizLength questions.
func NewCatalog(pathways []models.PathwayContent, questions []models.QuizQuestion) (*Catalog, error) {
	c := &Catalog{
		pathways: make(map[models.Pathway]models.PathwayContent, len(pathways)),
	}

	for _, p := range pathways {
		if !p.ID.IsValid() {
			return nil, fmt.Errorf("%w: unknown pathway %q", ErrIncompleteContent, p.ID)
		}
		if _, dup := c.pathways[p.ID]; dup {
			return nil, fmt.Errorf("%w: pathway %s defined twice", ErrIncompleteContent, p.ID)
		}

		lessons := make([]models.Lesson, len(p.Lessons))
		copy(lessons, p.Lessons)
		sort.Slice(lessons, func(i, j int) bool { return lessons[i].DayNumber < lessons[j].DayNumber })

		if len(lessons) != models.ProgramDays {
			return nil, fmt.Errorf("%w: pathway %s has %d lessons, want %d", ErrIncompleteContent, p.ID, len(lessons), models.ProgramDays)
		}
		for i, l := range lessons {
			if l.DayNumber != i+1 {
				return nil, fmt.Errorf("%w: pathway %s is missing day %d", ErrIncompleteContent, p.ID, i+1)
			}
		}

		p.Lessons = lessons
		if p.Name == "" {
			p.Name = string(p.ID)
		}
		c.pathways[p.ID] = p
	}

	for _, id := range []models.Pathway{models.PathwayBoost, models.PathwayRelax} {
		if _, ok := c.pathways[id]; !ok {
			return nil, fmt.Errorf("%w: pathway %s is not defined", ErrIncompleteContent, id)
		}
	}

	if len(questions) != QuizLength {
		return nil, fmt.Errorf("%w: quiz has %d questions, want %d", ErrIncompleteContent, len(questions), QuizLength)
	}
	for _, q := range questions {
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("%w: question %d has no options", ErrIncompleteContent, q.ID)
		}
		for _, o := range q.Options {
			if _, ok := models.ParseQuizAnswer(string(o.Target)); !ok {
				return nil, fmt.Errorf("%w: question %d option targets %q", ErrIncompleteContent, q.ID, o.Target)
			}
		}
	}
	c.questions = append([]models.QuizQuestion(nil), questions...)

	return c, nil
}

// Resolve returns the lesson of a pathway for the given day
func (c *Catalog) Resolve(pathway models.Pathway, day int) (models.Lesson, error) {
	p, ok := c.pathways[pathway]
	if !ok {
		return models.Lesson{}, fmt.Errorf("%w: pathway %q", ErrNotFound, pathway)
	}
	for _, l := range p.Lessons {
		if l.DayNumber == day {
			return l, nil
		}
	}
	return models.Lesson{}, fmt.Errorf("%w: pathway %s has no lesson for day %d", ErrNotFound, pathway, day)
}

// Pathway returns the full definition of a pathway
func (c *Catalog) Pathway(pathway models.Pathway) (models.PathwayContent, error) {
	p, ok := c.pathways[pathway]
	if !ok {
		return models.PathwayContent{}, fmt.Errorf("%w: pathway %q", ErrNotFound, pathway)
	}
	p.Lessons = append([]models.Lesson(nil), p.Lessons...)
	return p, nil
}

// Pathways returns both pathways, BOOST first
func (c *Catalog) Pathways() []models.PathwayContent {
	out := make([]models.PathwayContent, 0, len(c.pathways))
	for _, id := range []models.Pathway{models.PathwayBoost, models.PathwayRelax} {
		p, _ := c.Pathway(id)
		out = append(out, p)
	}
	return out
}

// Questions returns the quiz questions in display order
func (c *Catalog) Questions() []models.QuizQuestion {
	return append([]models.QuizQuestion(nil), c.questions...)
}

// LessonCount is the number of lessons across all pathways
func (c *Catalog) LessonCount() int {
	n := 0
	for _, p := range c.pathways {
		n += len(p.Lessons)
	}
	return n
}
