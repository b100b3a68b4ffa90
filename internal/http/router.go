// Package http is the transport glue: a gin JSON API consumed by the
// chat-platform shim. All user-facing formatting lives on the other side
// of this boundary.
package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"personabot/internal/service"
)

// NewRouter wires middlewares and routes.
func NewRouter(
	logger *zap.Logger,
	assessmentH *AssessmentHandler,
	prayerH *PrayerHandler,
	authH *AuthHandler,
	jwtSvc *service.JWTService,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	assessment := r.Group("/assessment")
	assessment.POST("/start", assessmentH.Start)
	assessment.GET("/current", assessmentH.CurrentQuestion)
	assessment.POST("/answer", assessmentH.SubmitAnswer)

	r.GET("/results/latest", assessmentH.LatestResult)

	r.POST("/auth/mentor", authH.MentorToken)

	r.POST("/prayers", prayerH.Capture)

	mentor := r.Group("/", MentorAuthMiddleware(jwtSvc))
	mentor.GET("/prayers/week", prayerH.WeeklyDigest)
	mentor.POST("/engagement/message", prayerH.EngagementMessage)

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
