// Package handler implements the messaging webhook endpoints independently of the transport they are served on.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/isometry/messaging-webhook-app/internal/helpers"
	"github.com/isometry/messaging-webhook-app/internal/models"
	"github.com/isometry/messaging-webhook-app/internal/validation"
	"golang.org/x/time/rate"
)

const (
	// PingPath is the health check route.
	PingPath = "/ping"
	// DefaultWebhookPath is the route serving both the verification handshake and notifications.
	DefaultWebhookPath = "/messaging-webhook"

	// PingResponse is the health check body.
	PingResponse = "pong!"
	// PageEventReceived acknowledges a page notification.
	PageEventReceived = "PAGE_EVENT_RECEIVED"

	// ModeSubscribe is the only handshake mode accepted.
	ModeSubscribe = validation.ModeSubscribe

	// ParamMode is the query parameter carrying the handshake mode.
	ParamMode = "hub.mode"
	// ParamVerifyToken is the query parameter carrying the token supplied by the platform.
	ParamVerifyToken = "hub.verify_token"
	// ParamChallenge is the query parameter echoed back on a successful handshake.
	ParamChallenge = "hub.challenge"

	// MaxBodyBytes bounds the size of notification payloads.
	MaxBodyBytes = 1 << 20
)

type Option func(*Handler)

// Handler serves the verification handshake, notification ingestion and liveness routes.
// It is safe for concurrent use.
type Handler struct {
	logger      *slog.Logger
	verifyToken *validation.VerifyToken
	webhookPath string

	unknownPaths *rate.Sometimes
}

// NewWebhookHandler creates a Handler. A verify token is required.
func NewWebhookHandler(options ...Option) (*Handler, error) {
	_inst := &Handler{
		logger:      helpers.NewNoopLogger(),
		webhookPath: DefaultWebhookPath,

		unknownPaths: helpers.NewSampler(time.Minute),
	}
	for _, opt := range options {
		opt(_inst)
	}
	if _inst.verifyToken.IsEmpty() {
		return nil, &MissingVerifyTokenError{}
	}
	_inst.webhookPath = normalisePath(_inst.webhookPath)
	return _inst, nil
}

// WebhookPath returns the route the webhook endpoints are served on.
func (h *Handler) WebhookPath() string {
	return h.webhookPath
}

// Process routes the request to exactly one endpoint.
// A non-nil error is returned alongside the response when the request body could not be handled.
func (h *Handler) Process(req models.Request) (models.Response, error) {
	path := normalisePath(req.Path)
	switch path {
	case PingPath:
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			return h.Ping(), nil
		}
		return methodNotAllowed(http.MethodGet, http.MethodHead), nil
	case h.webhookPath:
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			return h.Verify(req.Query), nil
		case http.MethodPost:
			return h.Notify(req)
		}
		return methodNotAllowed(http.MethodGet, http.MethodHead, http.MethodPost), nil
	default:
		h.unknownPaths.Do(func() {
			h.logger.Warn("rejecting requests for unknown paths", slog.String("path", req.Path))
		})
		h.logger.Debug("rejecting request for unknown path", slog.String("path", req.Path))
		return models.Response{StatusCode: http.StatusNotFound}, nil
	}
}

// Ping answers the health check.
func (h *Handler) Ping() models.Response {
	return models.Response{Body: PingResponse, StatusCode: http.StatusOK}
}

// Verify answers the subscription handshake. The challenge is echoed only when the mode is
// "subscribe" and the supplied token matches the configured one.
func (h *Handler) Verify(query url.Values) models.Response {
	mode := query.Get(ParamMode)
	token := query.Get(ParamVerifyToken)
	challenge := query.Get(ParamChallenge)

	switch err := h.verifyToken.ValidateHandshake(mode, token); {
	case err == nil:
		h.logger.Info("messaging webhook has been verified")
		return models.Response{Body: challenge, StatusCode: http.StatusOK}
	case errors.Is(err, validation.ErrMissingParameters):
		h.logger.Warn("rejecting verification request", "reason", err.Error(),
			slog.Bool("hasMode", mode != ""), slog.Bool("hasToken", token != ""))
		return models.Response{
			Body:       "missing " + ParamMode + " or " + ParamVerifyToken,
			StatusCode: http.StatusBadRequest,
		}
	default:
		h.logger.Warn("failed to verify messaging webhook", "reason", err.Error(), slog.String("mode", mode))
		return models.Response{StatusCode: http.StatusForbidden}
	}
}

// Notify acknowledges page notifications and rejects every other event source.
func (h *Handler) Notify(req models.Request) (models.Response, error) {
	if contentType := req.Header("content-type"); contentType != "" && !isJSON(contentType) {
		h.logger.Warn("rejecting notification", "reason", "unsupported content type", slog.String("contentType", contentType))
		return models.Response{StatusCode: http.StatusUnsupportedMediaType}, &UnsupportedContentTypeError{ContentType: contentType}
	}
	if len(req.Body) > MaxBodyBytes {
		h.logger.Warn("rejecting notification", "reason", "payload too large", slog.Int("size", len(req.Body)))
		return models.Response{StatusCode: http.StatusRequestEntityTooLarge}, &PayloadTooLargeError{Size: len(req.Body)}
	}

	notification, err := models.ParseNotification(req.Body)
	if err != nil {
		h.logger.Warn("rejecting notification", "reason", "malformed payload", slog.Any("error", err))
		return models.Response{StatusCode: http.StatusBadRequest}, &MalformedPayloadError{Err: err}
	}

	h.logger.Info("received webhook",
		slog.String("object", notification.Object),
		slog.Int("entries", notification.EntryCount()),
		payloadAttr(req.Body))

	if !notification.IsPage() {
		h.logger.Info("ignoring notification from unsupported object", slog.String("object", notification.Object))
		return models.Response{StatusCode: http.StatusNotFound}, nil
	}
	return models.Response{Body: PageEventReceived, StatusCode: http.StatusOK}, nil
}

func methodNotAllowed(allowed ...string) models.Response {
	return models.Response{
		StatusCode: http.StatusMethodNotAllowed,
		Headers:    map[string]string{"Allow": strings.Join(allowed, ", ")},
	}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func normalisePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

func payloadAttr(body []byte) slog.Attr {
	if !json.Valid(body) {
		return slog.String("payload", string(body))
	}
	return slog.Any("payload", json.RawMessage(body))
}
