package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Ref-Hub/refhub-cli/internal/api"
	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
)

// Expiry returns the access token's exp claim. The token is decoded,
// not verified; signature checking is the backend's job.
func Expiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.ErrCodeTokenMalformed, "failed to decode access token", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, apperrors.New(apperrors.ErrCodeTokenMalformed, "access token has no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}

// Fresh reports whether the token's expiry is strictly after now.
// Malformed tokens are never fresh.
func Fresh(token string, now time.Time) bool {
	exp, err := Expiry(token)
	if err != nil {
		return false
	}
	return exp.After(now)
}

// userFromToken projects the subject identity claims into a User
// snapshot. Decoded, not verified, like Expiry.
func userFromToken(token string) (*api.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeTokenMalformed, "failed to decode access token", err)
	}

	user := &api.User{}
	if v, ok := claims["id"].(string); ok {
		user.ID = v
	} else if sub, err := claims.GetSubject(); err == nil {
		user.ID = sub
	}
	if v, ok := claims["email"].(string); ok {
		user.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		user.Name = v
	}

	return user, nil
}
