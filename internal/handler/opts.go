package handler

import (
	"log/slog"

	"github.com/isometry/messaging-webhook-app/internal/validation"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithVerifyToken sets the shared secret the verification handshake is checked against.
func WithVerifyToken(token string) Option {
	return func(h *Handler) {
		h.verifyToken = validation.NewVerifyToken(token)
	}
}

// WithWebhookPath overrides the route serving the webhook endpoints.
func WithWebhookPath(path string) Option {
	return func(h *Handler) {
		if path != "" {
			h.webhookPath = path
		}
	}
}
