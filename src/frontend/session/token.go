package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
)

// Claims is the payload the backend puts in its tokens.
type Claims struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// DecodeError means a token could not be turned into a Session.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid session token: %s: %v", e.Reason, e.Err)
	}
	return "invalid session token: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode reads the claims of token without checking its signature: the
// backend verifies every request, so the client only needs the identity.
func Decode(token string, now time.Time) (*Session, error) {
	if token == "" {
		return nil, &DecodeError{Reason: "empty token"}
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, &DecodeError{Reason: "malformed", Err: err}
	}
	if claims.Subject == "" {
		return nil, &DecodeError{Reason: "missing subject"}
	}
	if len(claims.Roles) == 0 {
		return nil, &DecodeError{Reason: "no roles"}
	}
	roles, err := model.ParseRoleSet(claims.Roles...)
	if err != nil {
		return nil, &DecodeError{Reason: "roles", Err: err}
	}
	s := &Session{
		Subject: claims.Subject,
		Name:    claims.Name,
		Roles:   roles,
		Token:   token,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
		if !now.Before(s.ExpiresAt) {
			return nil, &DecodeError{Reason: "expired"}
		}
	}
	if s.Name == "" {
		s.Name = s.Subject
	}
	return s, nil
}
