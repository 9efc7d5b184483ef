package client

import (
	"github.com/golang-jwt/jwt/v5"

	"bidmarket-client/internal/models"
)

// sessionFromToken builds the session snapshot for a bearer token. The
// token is decoded without signature verification purely to surface the
// expiry claim for display and restore decisions; the server remains the
// authority on token validity. Opaque (non-JWT) tokens simply carry no
// expiry.
func sessionFromToken(token string, user models.User) models.Session {
	session := models.Session{Token: token, User: user}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return session
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}
	return session
}
