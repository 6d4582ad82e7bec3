package model

import "time"

type QuizPhase string

const (
	QuizPhaseIntro      QuizPhase = "intro"
	QuizPhaseInProgress QuizPhase = "in_progress"
	QuizPhaseResult     QuizPhase = "result"
)

type Question struct {
	Prompt             string   `json:"prompt"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"-"`
}

// QuizResult is emitted once per attempt that reaches the result phase.
type QuizResult struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percent     int       `json:"percent"`
	Answers     []int     `json:"answers"`
	CompletedAt time.Time `json:"completed_at"`
}

type QuizStats struct {
	Attempts       int         `json:"attempts"`
	BestPercent    int         `json:"best_percent"`
	AveragePercent float64     `json:"average_percent"`
	Last           *QuizResult `json:"last,omitempty"`
}
