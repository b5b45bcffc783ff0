package runtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/messaging-webhook-app/internal/config"
	"github.com/isometry/messaging-webhook-app/internal/handler"
	"github.com/isometry/messaging-webhook-app/internal/helpers"
	"github.com/isometry/messaging-webhook-app/internal/models"
)

type Option func(*Runtime)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

func WithLambdaPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		r.payloadType = payloadType
	}
}

type Runtime struct {
	*handler.Handler
	logger      *slog.Logger
	payloadType string
}

// NewRuntime creates a new runtime instance
func NewRuntime(handler *handler.Handler, opts ...Option) *Runtime {
	_inst := &Runtime{Handler: handler, payloadType: config.PayloadTypeAPIGatewayV2}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// HandleEvent is the Lambda handler for the runtime. Handled requests, including rejected ones,
// never fail the invocation: the outcome is carried by the response status code.
func (r *Runtime) HandleEvent(_ context.Context, payload json.RawMessage) (response any, err error) {
	r.logger.Debug("received lambda invocation", slog.String("payloadType", r.payloadType))

	switch r.payloadType {
	case config.PayloadTypeAPIGatewayV1:
		var req events.APIGatewayProxyRequest
		if err = json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", r.payloadType, err)
		}
		query := url.Values(req.MultiValueQueryStringParameters)
		if len(query) == 0 {
			query = singleValueQuery(req.QueryStringParameters)
		}
		result := r.process(req.HTTPMethod, req.Path, query, req.Headers, req.Body, req.IsBase64Encoded)
		return events.APIGatewayProxyResponse{
			Body:       lambdaBody(req.HTTPMethod, result),
			Headers:    lambdaHeaders(result),
			StatusCode: result.StatusCode,
		}, nil
	case config.PayloadTypeAPIGatewayV2:
		var req events.APIGatewayV2HTTPRequest
		if err = json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", r.payloadType, err)
		}
		query := rawOrParsedQuery(req.RawQueryString, req.QueryStringParameters)
		path := stripStage(req.RawPath, req.RequestContext.Stage)
		result := r.process(req.RequestContext.HTTP.Method, path, query, req.Headers, req.Body, req.IsBase64Encoded)
		return events.APIGatewayV2HTTPResponse{
			Body:       lambdaBody(req.RequestContext.HTTP.Method, result),
			Headers:    lambdaHeaders(result),
			StatusCode: result.StatusCode,
		}, nil
	case config.PayloadTypeLambdaURL:
		var req events.LambdaFunctionURLRequest
		if err = json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", r.payloadType, err)
		}
		query := rawOrParsedQuery(req.RawQueryString, req.QueryStringParameters)
		result := r.process(req.RequestContext.HTTP.Method, req.RawPath, query, req.Headers, req.Body, req.IsBase64Encoded)
		return events.LambdaFunctionURLResponse{
			Body:       lambdaBody(req.RequestContext.HTTP.Method, result),
			Headers:    lambdaHeaders(result),
			StatusCode: result.StatusCode,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", r.payloadType)
	}
}

func (r *Runtime) process(method, path string, query url.Values, headers map[string]string, body string, isBase64 bool) models.Response {
	lch := make(map[string]string, len(headers))
	for k, v := range headers {
		lch[strings.ToLower(k)] = v
	}

	raw := []byte(body)
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			r.logger.Warn("failed to decode base64 request body", slog.Any("error", err))
			return models.Response{StatusCode: http.StatusBadRequest}
		}
		raw = decoded
	}

	result, err := r.Handler.Process(models.Request{
		Method:  strings.ToUpper(method),
		Path:    path,
		Query:   query,
		Body:    raw,
		Headers: lch,
	})
	r.logOutcome(method, path, result, err)
	return result
}

// ServeHTTP is the HTTP handler for the runtime
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	r.logger.Debug("received HTTP request...", slog.Any("requestor", req.RemoteAddr), slog.Any("method", req.Method), slog.Any("path", req.URL.Path))
	headers := make(map[string]string)
	for k, v := range req.Header {
		headers[strings.ToLower(k)] = v[0]
	}

	body, err := io.ReadAll(http.MaxBytesReader(resp, req.Body, handler.MaxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			r.logger.Warn("rejecting oversized request body", slog.Int64("limit", maxBytesErr.Limit))
			helpers.RespondHTTP(models.Response{StatusCode: http.StatusRequestEntityTooLarge}, resp)
			return
		}
		r.logger.Error("failed to read request body", slog.Any("error", err))
		helpers.RespondHTTP(models.Response{StatusCode: http.StatusBadRequest}, resp)
		return
	}

	result, err := r.Handler.Process(models.Request{
		Method:  req.Method,
		Path:    req.URL.Path,
		Query:   req.URL.Query(),
		Body:    body,
		Headers: headers,
	})
	r.logOutcome(req.Method, req.URL.Path, result, err)
	helpers.RespondHTTP(result, resp)
}

func (r *Runtime) logOutcome(method, path string, result models.Response, err error) {
	if err != nil {
		r.logger.Warn("request rejected", slog.String("method", method), slog.String("path", path),
			slog.Int("status", result.StatusCode), slog.Any("error", err))
		return
	}
	r.logger.Debug("request handled", slog.String("method", method), slog.String("path", path),
		slog.Int("status", result.StatusCode))
}

func rawOrParsedQuery(raw string, parsed map[string]string) url.Values {
	if raw != "" {
		if q, err := url.ParseQuery(raw); err == nil {
			return q
		}
	}
	return singleValueQuery(parsed)
}

func singleValueQuery(params map[string]string) url.Values {
	q := make(url.Values, len(params))
	for k, v := range params {
		q.Set(k, v)
	}
	return q
}

// stripStage removes the stage prefix HTTP APIs add to the raw path of named stages.
func stripStage(path, stage string) string {
	if stage == "" || stage == "$default" {
		return path
	}
	prefix := "/" + stage
	if path == prefix {
		return "/"
	}
	if strings.HasPrefix(path, prefix+"/") {
		return strings.TrimPrefix(path, prefix)
	}
	return path
}

// lambdaBody mirrors net/http, which never writes a body in reply to HEAD.
func lambdaBody(method string, result models.Response) string {
	if strings.EqualFold(method, http.MethodHead) {
		return ""
	}
	return helpers.ResponseBody(result)
}

func lambdaHeaders(result models.Response) map[string]string {
	headers := map[string]string{"Content-Type": "text/plain; charset=utf-8"}
	for k, v := range result.Headers {
		headers[k] = v
	}
	return headers
}
