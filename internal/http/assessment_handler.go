package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"personabot/internal/domain"
	"personabot/internal/repository"
	"personabot/internal/service"
)

// AssessmentHandler exposes the assessment flow: start, current question,
// answer submission, latest result.
type AssessmentHandler struct {
	logger     *zap.Logger
	assessment *service.AssessmentService
	results    *service.ResultsService
	resultRepo repository.ResultRepository
}

func NewAssessmentHandler(
	logger *zap.Logger,
	assessment *service.AssessmentService,
	results *service.ResultsService,
	resultRepo repository.ResultRepository,
) *AssessmentHandler {
	return &AssessmentHandler{
		logger:     logger,
		assessment: assessment,
		results:    results,
		resultRepo: resultRepo,
	}
}

type questionPayload struct {
	Number   int             `json:"number"`
	Total    int             `json:"total"`
	Question domain.Question `json:"question"`
}

// Start handles POST /assessment/start.
func (h *AssessmentHandler) Start(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid start request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.assessment.Start(c.Request.Context(), req.UserID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	question, err := h.assessment.CurrentQuestion(session)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": session,
		"question": questionPayload{
			Number:   session.Cursor + 1,
			Total:    h.assessment.TotalQuestions(),
			Question: question,
		},
	})
}

// CurrentQuestion handles GET /assessment/current?user_id=.
func (h *AssessmentHandler) CurrentQuestion(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	session, question, err := h.assessment.CurrentQuestionForUser(c.Request.Context(), userID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"question": questionPayload{
			Number:   session.Cursor + 1,
			Total:    h.assessment.TotalQuestions(),
			Question: question,
		},
	})
}

// SubmitAnswer handles POST /assessment/answer. When the submission
// completes the session, the generated result is persisted and returned
// in place of a next question.
func (h *AssessmentHandler) SubmitAnswer(c *gin.Context) {
	var req struct {
		SessionID   string `json:"session_id" binding:"required"`
		QuestionID  string `json:"question_id" binding:"required"`
		OptionIndex *int   `json:"option_index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.assessment.SubmitAnswer(c.Request.Context(), req.SessionID, req.QuestionID, *req.OptionIndex)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if !session.Completed {
		question, err := h.assessment.CurrentQuestion(session)
		if err != nil {
			h.renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id": session.ID,
			"completed":  false,
			"question": questionPayload{
				Number:   session.Cursor + 1,
				Total:    h.assessment.TotalQuestions(),
				Question: question,
			},
		})
		return
	}

	result, err := h.results.Generate(session)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if err := h.resultRepo.Create(c.Request.Context(), result); err != nil {
		h.logger.Error("persist result failed",
			zap.Error(err),
			zap.String("session_id", session.ID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store result"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"completed":  true,
		"result":     result,
	})
}

// LatestResult handles GET /results/latest?user_id=.
func (h *AssessmentHandler) LatestResult(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	result, err := h.resultRepo.FindLatestForUser(c.Request.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no result for user"})
		return
	}
	if err != nil {
		h.logger.Error("load latest result failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load result"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// renderError translates domain errors into transport responses. The
// wrapped message already names the offending session/question, so it is
// safe to surface as-is.
func (h *AssessmentHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidUserID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionCompleted),
		errors.Is(err, service.ErrSessionNotCompleted),
		errors.Is(err, service.ErrQuestionMismatch),
		errors.Is(err, service.ErrInvalidOption):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStartRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many assessment starts, try again later"})
	case errors.Is(err, repository.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": "session was modified concurrently, retry the submission"})
	case errors.Is(err, service.ErrInvalidAnswer):
		// Internal consistency defect, not a client error.
		h.logger.Error("answer set inconsistent with question bank", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal scoring error"})
	default:
		h.logger.Error("assessment operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
