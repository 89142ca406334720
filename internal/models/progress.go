package models

import (
	"strings"
	"time"
)

// QuizAnswer is the pathway an answered quiz option points to
type QuizAnswer string

// Pathway identifies one of the two fixed lesson tracks
type Pathway string

const (
	AnswerBoost QuizAnswer = "BOOST"
	AnswerRelax QuizAnswer = "RELAX"

	PathwayBoost Pathway = "BOOST"
	PathwayRelax Pathway = "RELAX"

	// PathwayNotStarted is reported for users that never finished the quiz
	PathwayNotStarted Pathway = "NOT_STARTED"
)

// ProgramDays is the length of every pathway
const ProgramDays = 4

// ParseQuizAnswer normalizes a raw label into a QuizAnswer
func ParseQuizAnswer(s string) (QuizAnswer, bool) {
	switch QuizAnswer(strings.ToUpper(strings.TrimSpace(s))) {
	case AnswerBoost:
		return AnswerBoost, true
	case AnswerRelax:
		return AnswerRelax, true
	}
	return "", false
}

// ParsePathway normalizes a raw label into a Pathway
func ParsePathway(s string) (Pathway, bool) {
	switch Pathway(strings.ToUpper(strings.TrimSpace(s))) {
	case PathwayBoost:
		return PathwayBoost, true
	case PathwayRelax:
		return PathwayRelax, true
	}
	return "", false
}

// IsValid reports whether p is one of the assignable pathways
func (p Pathway) IsValid() bool {
	return p == PathwayBoost || p == PathwayRelax
}

// UserProgress is the single enrollment row of a user.
// A zero StartedAt means the stored value could not be parsed.
type UserProgress struct {
	UserID         string
	Pathway        Pathway
	CurrentDay     int
	StartedAt      time.Time
	LastActivityAt *time.Time
}

// CompletionRecord marks one day of a pathway as done.
// A zero CompletedAt means the stored value could not be parsed.
type CompletionRecord struct {
	UserID      string
	DayNumber   int
	CompletedAt time.Time
}
