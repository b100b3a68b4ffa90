package service

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"personabot/internal/catalog"
	"personabot/internal/domain"
)

// ResultsService turns a completed session into its terminal result:
// score the answers, look up the matching content profile, attach
// provenance. Generation itself is pure; persisting the result is the
// caller's job.
type ResultsService struct {
	logger   *zap.Logger
	bank     *catalog.QuestionBank
	profiles *catalog.ProfileCatalog
}

func NewResultsService(logger *zap.Logger, bank *catalog.QuestionBank, profiles *catalog.ProfileCatalog) *ResultsService {
	return &ResultsService{
		logger:   logger,
		bank:     bank,
		profiles: profiles,
	}
}

// Generate builds the result for a completed session. The result id is
// derived from the session id, so calling Generate twice on the same
// session yields identical results; recomputation is always safe.
func (s *ResultsService) Generate(session domain.AssessmentSession) (domain.Result, error) {
	if !session.Completed || session.CompletedAt == nil {
		return domain.Result{}, fmt.Errorf("%w: session %s", ErrSessionNotCompleted, session.ID)
	}

	scores, classification, err := Score(session.Answers, s.bank)
	if err != nil {
		return domain.Result{}, fmt.Errorf("score session %s: %w", session.ID, err)
	}

	profile, err := s.profiles.Get(classification)
	if err != nil {
		return domain.Result{}, fmt.Errorf("profile for session %s: %w", session.ID, err)
	}

	s.logger.Info("assessment result generated",
		zap.String("session_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.String("classification", string(classification)),
	)

	return domain.Result{
		ID:             uuid.NewSHA1(uuid.NameSpaceOID, []byte("result:"+session.ID)).String(),
		SessionID:      session.ID,
		UserID:         session.UserID,
		Classification: classification,
		Scores:         scores,
		Profile:        profile,
		CompletedAt:    *session.CompletedAt,
		CreatedAt:      *session.CompletedAt,
	}, nil
}
