// Package validation provides functionality for validating the webhook subscription handshake.
package validation

import (
	"crypto/subtle"
	"errors"
)

// ModeSubscribe is the only handshake mode accepted.
const ModeSubscribe = "subscribe"

var (
	// ErrMissingParameters is returned when the handshake lacks the mode or the token.
	ErrMissingParameters = errors.New("missing handshake mode or verify token")
	// ErrModeMismatch is returned for any mode other than subscribe.
	ErrModeMismatch = errors.New("unsupported handshake mode")
	// ErrTokenMismatch is returned when the supplied token differs from the configured one.
	ErrTokenMismatch = errors.New("verify token mismatch")
	// ErrNoVerifyToken is returned when no token has been configured.
	ErrNoVerifyToken = errors.New("missing verify token")
)

// VerifyToken represents the secret shared with the messaging platform to authenticate the subscription handshake.
type VerifyToken string

// NewVerifyToken creates a new VerifyToken instance from the provided secret string and returns its address.
func NewVerifyToken(token string) *VerifyToken {
	t := VerifyToken(token)
	return &t
}

// IsEmpty reports whether no token is configured.
func (t *VerifyToken) IsEmpty() bool {
	return t == nil || *t == ""
}

// ValidateHandshake checks the mode and token supplied by the platform. The comparison runs in constant time.
func (t *VerifyToken) ValidateHandshake(mode, token string) error {
	if t.IsEmpty() {
		return ErrNoVerifyToken
	}
	if mode == "" || token == "" {
		return ErrMissingParameters
	}
	if mode != ModeSubscribe {
		return ErrModeMismatch
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(*t)) != 1 {
		return ErrTokenMismatch
	}
	return nil
}
