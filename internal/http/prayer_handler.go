package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"personabot/internal/service"
)

// PrayerHandler exposes prayer capture, the mentor weekly digest, and
// engagement message generation.
type PrayerHandler struct {
	logger     *zap.Logger
	prayers    *service.PrayerService
	engagement *service.EngagementService
}

func NewPrayerHandler(logger *zap.Logger, prayers *service.PrayerService, engagement *service.EngagementService) *PrayerHandler {
	return &PrayerHandler{
		logger:     logger,
		prayers:    prayers,
		engagement: engagement,
	}
}

// Capture handles POST /prayers. A message with nothing to extract is a
// successful no-op, mirroring how the channel listener treats it.
func (h *PrayerHandler) Capture(c *gin.Context) {
	var req struct {
		MessageID string    `json:"message_id" binding:"required"`
		UserID    string    `json:"user_id" binding:"required"`
		Username  string    `json:"username"`
		ChannelID string    `json:"channel_id"`
		Content   string    `json:"content" binding:"required"`
		PostedAt  time.Time `json:"posted_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid prayer capture request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.PostedAt.IsZero() {
		req.PostedAt = time.Now().UTC()
	}

	prayer, stored, err := h.prayers.Capture(c.Request.Context(), service.CaptureInput{
		MessageID: req.MessageID,
		UserID:    req.UserID,
		Username:  req.Username,
		ChannelID: req.ChannelID,
		Content:   req.Content,
		PostedAt:  req.PostedAt,
	})
	if err != nil {
		h.logger.Error("prayer capture failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store prayer"})
		return
	}
	if !stored {
		c.JSON(http.StatusOK, gin.H{"stored": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stored": true, "prayer": prayer})
}

// WeeklyDigest handles GET /prayers/week (mentor only).
func (h *PrayerHandler) WeeklyDigest(c *gin.Context) {
	prayers, from, to, err := h.prayers.CurrentWeek(c.Request.Context())
	if err != nil {
		h.logger.Error("weekly digest failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load prayers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": from,
		"week_end":   to,
		"count":      len(prayers),
		"prayers":    prayers,
	})
}

// EngagementMessage handles POST /engagement/message (mentor only).
func (h *PrayerHandler) EngagementMessage(c *gin.Context) {
	msg := h.engagement.GenerateMessage(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
