package service

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleMentor = "mentor"

// JWTService mints and validates mentor tokens. Mentors exchange the
// configured shared key for a short-lived token that guards the weekly
// digest and engagement routes.
type JWTService struct {
	secret    []byte
	mentorKey string
	ttl       time.Duration
	issuer    string
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid       = errors.New("jwt invalid")
	ErrMentorKeyInvalid = errors.New("mentor key invalid")
)

func NewJWTService(secret, mentorKey string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTService{
		secret:    []byte(secret),
		mentorKey: mentorKey,
		ttl:       ttl,
		issuer:    "personabot",
	}
}

// IssueMentorToken exchanges the shared mentor key for a signed token.
func (s *JWTService) IssueMentorToken(mentorKey string) (string, error) {
	if len(s.secret) == 0 || s.mentorKey == "" {
		return "", ErrJWTInvalid
	}
	supplied := strings.TrimSpace(mentorKey)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.mentorKey)) != 1 {
		return "", ErrMentorKeyInvalid
	}

	now := time.Now().UTC()
	claims := Claims{
		Role: RoleMentor,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseMentorToken validates a token and requires the mentor role.
func (s *JWTService) ParseMentorToken(tokenString string) (Claims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrJWTInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrJWTInvalid
	}
	if claims.Issuer != s.issuer || claims.Role != RoleMentor {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}
