package validation_test

import (
	"errors"
	"testing"

	"github.com/isometry/messaging-webhook-app/internal/validation"
)

func TestVerifyToken_ValidateHandshake(t *testing.T) {
	testCases := []struct {
		Name          string
		Mode          string
		Token         string
		ExpectedError error
	}{
		{
			Name:          "missing_mode",
			Token:         "key",
			ExpectedError: validation.ErrMissingParameters,
		},
		{
			Name:          "missing_token",
			Mode:          "subscribe",
			ExpectedError: validation.ErrMissingParameters,
		},
		{
			Name:          "invalid_mode",
			Mode:          "unsubscribe",
			Token:         "key",
			ExpectedError: validation.ErrModeMismatch,
		},
		{
			Name:          "invalid_token",
			Mode:          "subscribe",
			Token:         "Key",
			ExpectedError: validation.ErrTokenMismatch,
		},
		{
			Name:          "token_prefix",
			Mode:          "subscribe",
			Token:         "ke",
			ExpectedError: validation.ErrTokenMismatch,
		},
		{
			Name:  "valid_handshake",
			Mode:  "subscribe",
			Token: "key",
		},
	}

	_inst := validation.VerifyToken("key")
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			if err := _inst.ValidateHandshake(tc.Mode, tc.Token); !errors.Is(err, tc.ExpectedError) {
				t.Errorf("VerifyToken.ValidateHandshake() error = %v, expected %v", err, tc.ExpectedError)
			}
		})
	}
}

func TestVerifyToken_Empty(t *testing.T) {
	var unset *validation.VerifyToken
	if !unset.IsEmpty() || !validation.NewVerifyToken("").IsEmpty() {
		t.Fatal("expected unset and empty tokens to be reported as empty")
	}
	if err := unset.ValidateHandshake("subscribe", ""); !errors.Is(err, validation.ErrNoVerifyToken) {
		t.Errorf("expected ErrNoVerifyToken, got %v", err)
	}
}
