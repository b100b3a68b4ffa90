package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"personabot/internal/catalog"
	"personabot/internal/domain"
	"personabot/internal/repository"
)

var (
	ErrSessionCompleted    = errors.New("session already completed")
	ErrSessionNotCompleted = errors.New("session not completed")
	ErrQuestionMismatch    = errors.New("answer out of order")
	ErrInvalidOption       = errors.New("option index out of range")
	ErrSessionNotFound     = errors.New("session not found")
	ErrStartRateLimited    = errors.New("assessment start rate limited")
	ErrInvalidUserID       = errors.New("invalid user id")
)

// AssessmentService drives one user's walk through the question bank:
// start (idempotent resume), current question, in-order answer submission,
// completion. Every successful transition is persisted before it is
// reported to the caller; the repository's version check serializes
// concurrent writers on the same session.
type AssessmentService struct {
	logger   *zap.Logger
	sessions repository.SessionRepository
	bank     *catalog.QuestionBank
	limiter  StartRateLimiter
	now      func() time.Time
}

func NewAssessmentService(logger *zap.Logger, sessions repository.SessionRepository, bank *catalog.QuestionBank, limiter StartRateLimiter) *AssessmentService {
	return &AssessmentService{
		logger:   logger,
		sessions: sessions,
		bank:     bank,
		limiter:  limiter,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start returns the user's open session if one exists, otherwise creates
// a fresh session at the first question. Calling it twice without an
// intervening answer yields the same session id.
func (s *AssessmentService) Start(ctx context.Context, userID string) (domain.AssessmentSession, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.AssessmentSession{}, ErrInvalidUserID
	}

	open, err := s.sessions.FindOpenByUser(ctx, userID)
	if err == nil {
		s.logger.Info("resuming open assessment session",
			zap.String("user_id", userID),
			zap.String("session_id", open.ID),
			zap.Int("cursor", open.Cursor),
		)
		return open, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.AssessmentSession{}, fmt.Errorf("find open session: %w", err)
	}

	if s.limiter != nil && !s.limiter.Allow(userID) {
		return domain.AssessmentSession{}, fmt.Errorf("%w: user %s", ErrStartRateLimited, userID)
	}

	session := domain.AssessmentSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Cursor:    0,
		Answers:   make(map[string]domain.Answer),
		Version:   1,
		CreatedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.AssessmentSession{}, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("assessment session started",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
		zap.Int("total_questions", s.bank.TotalCount()),
	)
	return session, nil
}

// CurrentQuestion returns the question at the session's cursor.
func (s *AssessmentService) CurrentQuestion(session domain.AssessmentSession) (domain.Question, error) {
	if session.Completed {
		return domain.Question{}, fmt.Errorf("%w: session %s", ErrSessionCompleted, session.ID)
	}
	question, err := s.bank.Get(session.Cursor)
	if err != nil {
		return domain.Question{}, fmt.Errorf("session %s cursor %d: %w", session.ID, session.Cursor, err)
	}
	return question, nil
}

// CurrentQuestionForUser resolves the user's open session and returns its
// current question alongside it.
func (s *AssessmentService) CurrentQuestionForUser(ctx context.Context, userID string) (domain.AssessmentSession, domain.Question, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.AssessmentSession{}, domain.Question{}, ErrInvalidUserID
	}
	session, err := s.sessions.FindOpenByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.AssessmentSession{}, domain.Question{}, fmt.Errorf("%w: no open session for user %s", ErrSessionNotFound, userID)
	}
	if err != nil {
		return domain.AssessmentSession{}, domain.Question{}, fmt.Errorf("find open session: %w", err)
	}
	question, err := s.CurrentQuestion(session)
	if err != nil {
		return domain.AssessmentSession{}, domain.Question{}, err
	}
	return session, question, nil
}

// SubmitAnswer records the answer for the question at the cursor and
// advances the session, completing it when the last question is answered.
// Submissions must arrive in canonical order; anything else is rejected
// without touching the session.
func (s *AssessmentService) SubmitAnswer(ctx context.Context, sessionID, questionID string, optionIndex int) (domain.AssessmentSession, error) {
	session, err := s.sessions.GetByID(ctx, strings.TrimSpace(sessionID))
	if errors.Is(err, repository.ErrNotFound) {
		return domain.AssessmentSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return domain.AssessmentSession{}, fmt.Errorf("load session: %w", err)
	}
	if session.Completed {
		return domain.AssessmentSession{}, fmt.Errorf("%w: session %s", ErrSessionCompleted, session.ID)
	}

	current, err := s.bank.Get(session.Cursor)
	if err != nil {
		return domain.AssessmentSession{}, fmt.Errorf("session %s cursor %d: %w", session.ID, session.Cursor, err)
	}
	if current.ID != questionID {
		return domain.AssessmentSession{}, fmt.Errorf("%w: session %s expects question %q, got %q",
			ErrQuestionMismatch, session.ID, current.ID, questionID)
	}
	if optionIndex < 0 || optionIndex >= len(current.Options) {
		return domain.AssessmentSession{}, fmt.Errorf("%w: question %q has %d options, got index %d",
			ErrInvalidOption, questionID, len(current.Options), optionIndex)
	}

	// Mutate a copy; the stored session only changes once Update commits.
	updated := session
	updated.Answers = make(map[string]domain.Answer, len(session.Answers)+1)
	for k, v := range session.Answers {
		updated.Answers[k] = v
	}
	updated.Answers[questionID] = domain.Answer{QuestionID: questionID, OptionIndex: optionIndex}
	updated.Cursor++
	if updated.Cursor == s.bank.TotalCount() {
		updated.Completed = true
		completedAt := s.now()
		updated.CompletedAt = &completedAt
	}

	committed, err := s.sessions.Update(ctx, updated)
	if err != nil {
		return domain.AssessmentSession{}, fmt.Errorf("persist answer for session %s: %w", session.ID, err)
	}

	if committed.Completed {
		s.logger.Info("assessment session completed",
			zap.String("user_id", committed.UserID),
			zap.String("session_id", committed.ID),
		)
	}
	return committed, nil
}

// IsComplete is a pure predicate on session state.
func (s *AssessmentService) IsComplete(session domain.AssessmentSession) bool {
	return session.Completed
}

// TotalQuestions exposes the bank size for progress rendering.
func (s *AssessmentService) TotalQuestions() int {
	return s.bank.TotalCount()
}
