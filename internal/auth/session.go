package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is a signed-in backend identity.
type Session struct {
	UID          string    `json:"uid"`
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Anonymous    bool      `json:"anonymous"`
}

// Expired reports whether the ID token is expired at now, with a minute of slack.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Add(time.Minute).Before(s.ExpiresAt)
}

type idTokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// parseIDToken reads uid and expiry from a backend ID token. The signature is
// not checked here; the backend verifies tokens on every request.
func parseIDToken(token string) (uid string, expiresAt time.Time, err error) {
	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to parse id token: %w", err)
	}
	uid = claims.UserID
	if uid == "" {
		uid = claims.Subject
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return uid, expiresAt, nil
}
