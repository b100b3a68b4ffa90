package domain

import "time"

// DimensionScores holds the signed weight sum per dimension.
type DimensionScores map[Dimension]int

// Result is the terminal output of a completed session. Immutable once
// produced; a session has at most one result.
type Result struct {
	ID             string          `json:"id"`
	SessionID      string          `json:"session_id"`
	UserID         string          `json:"user_id"`
	Classification Classification  `json:"classification"`
	Scores         DimensionScores `json:"scores"`
	Profile        ContentProfile  `json:"profile"`
	CompletedAt    time.Time       `json:"completed_at"`
	CreatedAt      time.Time       `json:"created_at"`
}
