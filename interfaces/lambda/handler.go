// Package lambda adapts API Gateway proxy events to the action dispatcher.
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"archive-backend/application/actions"
	"archive-backend/application/dispatch"
	"archive-backend/pkg/common"
	pkgerrors "archive-backend/pkg/errors"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// Dispatcher runs one action request
type Dispatcher interface {
	Dispatch(ctx context.Context, body json.RawMessage, token string) dispatch.Response
}

// CORSHeaders are attached to every response
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type, Authorization, X-Request-ID",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

// Handler is the API Gateway entry point
type Handler struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(dispatcher Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle parses the event body and dispatches it. Transport-level failures are reported
// in the response, so the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return respond(http.StatusNoContent, nil), nil
	}
	if req.RequestContext.RequestID != "" {
		ctx = common.WithRequestID(ctx, req.RequestContext.RequestID)
	}

	body, err := requestBody(req)
	if err != nil {
		// a client error, reported as 500 for compatibility with existing callers
		h.logger.Warn("Rejected request body",
			zap.String("request_id", req.RequestContext.RequestID),
			zap.Error(err),
		)
		msg := pkgerrors.Message(err)
		return h.encode(dispatch.Envelope{
			Status:  http.StatusInternalServerError,
			Message: msg,
			Error:   &actions.ResultError{Code: pkgerrors.CodeInternalServerError, Message: msg},
		}), nil
	}

	resp := h.dispatcher.Dispatch(ctx, body, BearerToken(req.Headers))
	return h.encode(resp.Body), nil
}

func (h *Handler) encode(env dispatch.Envelope) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		env = dispatch.Envelope{Status: http.StatusInternalServerError, Message: "failed to encode response"}
		payload, _ = json.Marshal(env)
	}
	return respond(env.Status, payload)
}

func respond(status int, body []byte) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(CORSHeaders)+1)
	for k, v := range CORSHeaders {
		headers[k] = v
	}
	if body != nil {
		headers["Content-Type"] = "application/json"
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

func requestBody(req events.APIGatewayProxyRequest) (json.RawMessage, error) {
	raw := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, pkgerrors.NewInternalError("invalid request body encoding")
		}
		raw = string(decoded)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, pkgerrors.NewInternalError("missing request body")
	}
	if !json.Valid([]byte(raw)) {
		return nil, pkgerrors.NewInternalError("invalid request body")
	}
	return json.RawMessage(raw), nil
}

// BearerToken extracts the token from an Authorization header of either case
func BearerToken(headers map[string]string) string {
	auth, ok := headers["Authorization"]
	if !ok {
		auth = headers["authorization"]
	}
	scheme, token, found := strings.Cut(strings.TrimSpace(auth), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
