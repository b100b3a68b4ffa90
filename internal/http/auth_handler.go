package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"personabot/internal/service"
)

// AuthHandler exchanges the shared mentor key for a bearer token.
type AuthHandler struct {
	logger *zap.Logger
	jwtSvc *service.JWTService
}

func NewAuthHandler(logger *zap.Logger, jwtSvc *service.JWTService) *AuthHandler {
	return &AuthHandler{logger: logger, jwtSvc: jwtSvc}
}

// MentorToken handles POST /auth/mentor.
func (h *AuthHandler) MentorToken(c *gin.Context) {
	var req struct {
		MentorKey string `json:"mentor_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, err := h.jwtSvc.IssueMentorToken(req.MentorKey)
	if errors.Is(err, service.ErrMentorKeyInvalid) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid mentor key"})
		return
	}
	if err != nil {
		h.logger.Error("mentor token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
