package domain

import "time"

// Answer records one selection inside a session. The option is referenced
// by its index in the question's option list, which is stable after load.
type Answer struct {
	QuestionID  string `json:"question_id"`
	OptionIndex int    `json:"option_index"`
}

// AssessmentSession is one user's in-progress or completed attempt.
//
// Invariants maintained by the assessment service:
//   - Cursor is in [0, total question count]
//   - Completed is true exactly when Cursor equals the total count
//   - Answers holds exactly the questions strictly before Cursor in
//     canonical order
//
// Version is the optimistic concurrency token checked by the repository on
// every update.
type AssessmentSession struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Cursor      int               `json:"cursor"`
	Answers     map[string]Answer `json:"answers"`
	Completed   bool              `json:"completed"`
	Version     int               `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// AnswerFor returns the recorded answer for a question, if any.
func (s *AssessmentSession) AnswerFor(questionID string) (Answer, bool) {
	a, ok := s.Answers[questionID]
	return a, ok
}
