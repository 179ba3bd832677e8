// Package dispatch routes {module, action, payload} requests to registered actions.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"archive-backend/application/actions"
	"archive-backend/pkg/common"
	pkgerrors "archive-backend/pkg/errors"
	"archive-backend/pkg/observability"

	"go.uber.org/zap"
)

// SessionVerifier resolves a session token to its user id
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (string, error)
}

// Envelope is the JSON body of every dispatcher response
type Envelope struct {
	Status  int                  `json:"status"`
	Data    any                  `json:"data,omitempty"`
	Message string               `json:"message,omitempty"`
	Error   *actions.ResultError `json:"error,omitempty"`
}

// Response is a status code plus its envelope
type Response struct {
	StatusCode int
	Body       Envelope
}

type request struct {
	Module  json.RawMessage `json:"module"`
	Action  json.RawMessage `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher validates, resolves, authorizes and runs one request
type Dispatcher struct {
	registry *actions.Registry
	verifier SessionVerifier
	policy   AuthorizationPolicy
	logger   *zap.Logger
	tracer   *observability.Tracer
	recorder observability.Recorder
}

// Option customizes a Dispatcher
type Option func(*Dispatcher)

// WithTracer traces each dispatch in its own subsegment
func WithTracer(t *observability.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithRecorder records one observation per dispatch
func WithRecorder(r observability.Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// NewDispatcher creates a dispatcher over a complete registry
func NewDispatcher(registry *actions.Registry, verifier SessionVerifier, policy AuthorizationPolicy, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		verifier: verifier,
		policy:   policy,
		logger:   logger,
		recorder: observability.NopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch handles one request body. token is the bearer token, empty when absent.
func (d *Dispatcher) Dispatch(ctx context.Context, body json.RawMessage, token string) Response {
	start := time.Now()

	var req request
	module, action, ok := parseRequest(body, &req)
	if !ok {
		return d.finish(ctx, start, "", "", errorResponse(http.StatusBadRequest, "Invalid request", nil))
	}

	ctx, end := d.tracer.StartSubsegment(ctx, "dispatch")
	d.tracer.AddAnnotation(ctx, "module", module)
	d.tracer.AddAnnotation(ctx, "action", action)

	resp := d.handle(ctx, module, action, req.Payload, token)
	var traceErr error
	if resp.Body.Error != nil {
		traceErr = errors.New(resp.Body.Error.Code)
	}
	end(traceErr)

	return d.finish(ctx, start, module, action, resp)
}

func (d *Dispatcher) handle(ctx context.Context, module, action string, payload json.RawMessage, token string) Response {
	route, err := d.registry.Resolve(module, action)
	switch {
	case errors.Is(err, actions.ErrModuleNotFound):
		return errorResponse(http.StatusNotFound, "Module not found", nil)
	case err != nil:
		return errorResponse(http.StatusNotFound, "Action not found", nil)
	}

	if !route.SkipAuth {
		userID, resp, ok := d.authorize(ctx, token)
		if !ok {
			return resp
		}
		ctx = common.WithUserID(ctx, userID)
	}

	return d.invoke(ctx, route, payload)
}

func (d *Dispatcher) authorize(ctx context.Context, token string) (string, Response, bool) {
	if token == "" {
		return "", errorResponse(http.StatusUnauthorized, "missing session token",
			&actions.ResultError{Code: pkgerrors.CodeMissingToken, Message: "missing session token"}), false
	}

	userID, err := d.verifier.VerifySession(ctx, token)
	if err != nil {
		if !pkgerrors.IsUnauthorized(err) {
			d.logger.Error("Session verification failed", zap.Error(err))
		}
		return "", errorResponse(http.StatusUnauthorized, "invalid session token",
			&actions.ResultError{Code: pkgerrors.CodeInvalidToken, Message: "invalid session token"}), false
	}

	if !d.policy.IsAuthorized(userID) {
		d.logger.Warn("Unauthorized user", zap.String("userId", userID))
		return "", errorResponse(http.StatusUnauthorized, "invalid user id",
			&actions.ResultError{Code: pkgerrors.CodeInvalidUserID, Message: "invalid user id"}), false
	}
	return userID, Response{}, true
}

// invoke runs the action. A panic becomes INTERNAL_SERVER_ERROR.
func (d *Dispatcher) invoke(ctx context.Context, route actions.Route, payload json.RawMessage) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			d.logger.Error("Action panicked",
				zap.String("action", route.Tag.String()),
				zap.String("panic", msg),
				zap.Stack("stack"),
			)
			resp = errorResponse(http.StatusInternalServerError, msg,
				&actions.ResultError{Code: pkgerrors.CodeInternalServerError, Message: msg})
		}
	}()

	result := route.Action.Run(ctx, payload)
	return Response{
		StatusCode: http.StatusOK,
		Body: Envelope{
			Status:  http.StatusOK,
			Data:    result.Data,
			Message: result.Message,
			Error:   result.Error,
		},
	}
}

func (d *Dispatcher) finish(ctx context.Context, start time.Time, module, action string, resp Response) Response {
	failed := resp.StatusCode != http.StatusOK || resp.Body.Error != nil
	elapsed := time.Since(start)

	fields := []zap.Field{
		zap.String("module", module),
		zap.String("action", action),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
	}
	if requestID, ok := common.GetRequestID(ctx); ok {
		fields = append(fields, zap.String("requestId", requestID))
	}
	if resp.Body.Error != nil {
		fields = append(fields, zap.String("code", resp.Body.Error.Code))
	}
	if failed {
		d.logger.Warn("Action failed", fields...)
	} else {
		d.logger.Info("Action dispatched", fields...)
	}

	d.recorder.RecordDispatch(ctx, observability.Dispatch{
		Module:   module,
		Action:   action,
		Status:   resp.StatusCode,
		Failed:   failed,
		Duration: elapsed,
	})
	return resp
}

// parseRequest requires an object whose module and action are non-empty strings
func parseRequest(body json.RawMessage, req *request) (string, string, bool) {
	if err := json.Unmarshal(body, req); err != nil {
		return "", "", false
	}
	var module, action string
	if json.Unmarshal(req.Module, &module) != nil || json.Unmarshal(req.Action, &action) != nil {
		return "", "", false
	}
	if module == "" || action == "" {
		return "", "", false
	}
	return module, action, true
}

func errorResponse(status int, message string, resultErr *actions.ResultError) Response {
	return Response{
		StatusCode: status,
		Body: Envelope{
			Status:  status,
			Message: message,
			Error:   resultErr,
		},
	}
}
