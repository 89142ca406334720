package coaching

import (
	"fmt"

	"coachpath/internal/models"
)

// QuizLength is the number of answers collected per quiz run
const QuizLength = 3

// Score maps quiz answers to a pathway: BOOST when at least two answers are BOOST, RELAX otherwise.
// Order is irrelevant.
func Score(answers []models.QuizAnswer) (models.Pathway, error) {
	if len(answers) != QuizLength {
		return "", fmt.Errorf("%w: expected %d answers, got %d", ErrInvalidInput, QuizLength, len(answers))
	}

	boost := 0
	for i, a := range answers {
		switch a {
		case models.AnswerBoost:
			boost++
		case models.AnswerRelax:
		default:
			return "", fmt.Errorf("%w: answer %d has unknown label %q", ErrInvalidInput, i+1, a)
		}
	}

	if boost >= 2 {
		return models.PathwayBoost, nil
	}
	return models.PathwayRelax, nil
}
