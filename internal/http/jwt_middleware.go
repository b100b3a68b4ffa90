package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"personabot/internal/service"
)

const mentorClaimsKey = "mentor_claims"

// MentorAuthMiddleware validates the bearer token and requires the mentor
// role before letting the request through.
func MentorAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.ParseMentorToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(mentorClaimsKey, claims)
		c.Next()
	}
}

// GetMentorClaims reads validated mentor claims from the request context.
func GetMentorClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(mentorClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
