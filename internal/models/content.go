package models

// Lesson is one day of a pathway
type Lesson struct {
	ID        string `json:"id"`
	DayNumber int    `json:"day_number"`
	Title     string `json:"title"`
	Objective string `json:"objective"`
	Thought   string `json:"thought"`
	VideoID   string `json:"youtube_id"`
}

// PathwayContent is the static definition of a pathway and its lessons
type PathwayContent struct {
	ID      Pathway  `json:"id"`
	Name    string   `json:"name"`
	Lessons []Lesson `json:"lessons"`
}

// QuizOption is one selectable answer of a quiz question
type QuizOption struct {
	Text   string     `json:"text"`
	Target QuizAnswer `json:"target"`
}

// QuizQuestion is one question of the orientation quiz
type QuizQuestion struct {
	ID       int          `json:"id"`
	Question string       `json:"question"`
	Options  []QuizOption `json:"options"`
}
