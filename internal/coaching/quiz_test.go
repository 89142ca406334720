package coaching

import (
	"errors"
	"testing"

	"coachpath/internal/models"
)

func TestScore(t *testing.T) {
	b, r := models.AnswerBoost, models.AnswerRelax

	tests := []struct {
		name    string
		answers []models.QuizAnswer
		want    models.Pathway
	}{
		{name: "all boost", answers: []models.QuizAnswer{b, b, b}, want: models.PathwayBoost},
		{name: "two boost", answers: []models.QuizAnswer{b, r, b}, want: models.PathwayBoost},
		{name: "two boost leading relax", answers: []models.QuizAnswer{r, b, b}, want: models.PathwayBoost},
		{name: "one boost", answers: []models.QuizAnswer{r, r, b}, want: models.PathwayRelax},
		{name: "all relax", answers: []models.QuizAnswer{r, r, r}, want: models.PathwayRelax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.answers)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Score(%v) = %v, want %v", tt.answers, got, tt.want)
			}
		})
	}
}

// Every combination of three answers scores BOOST iff at least two are BOOST.
func TestScoreExhaustive(t *testing.T) {
	labels := []models.QuizAnswer{models.AnswerBoost, models.AnswerRelax}
	for _, a := range labels {
		for _, b := range labels {
			for _, c := range labels {
				answers := []models.QuizAnswer{a, b, c}
				boost := 0
				for _, x := range answers {
					if x == models.AnswerBoost {
						boost++
					}
				}
				want := models.PathwayRelax
				if boost >= 2 {
					want = models.PathwayBoost
				}
				got, err := Score(answers)
				if err != nil || got != want {
					t.Errorf("Score(%v) = %v, %v; want %v", answers, got, err, want)
				}
			}
		}
	}
}

func TestScoreInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		answers []models.QuizAnswer
	}{
		{name: "empty", answers: nil},
		{name: "too few", answers: []models.QuizAnswer{models.AnswerBoost, models.AnswerBoost}},
		{name: "too many", answers: []models.QuizAnswer{models.AnswerBoost, models.AnswerBoost, models.AnswerRelax, models.AnswerRelax}},
		{name: "unknown label", answers: []models.QuizAnswer{models.AnswerBoost, "CALM", models.AnswerRelax}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(tt.answers)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Score() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
