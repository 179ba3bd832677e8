// Package auth verifies sessions written by the hosted auth provider's DynamoDB adapter.
package auth

import (
	"context"
	"fmt"

	"archive-backend/application/actions"
	"archive-backend/application/ports"
	"archive-backend/domain/session"
	pkgerrors "archive-backend/pkg/errors"
	"archive-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"
)

// DefaultSessionIndex is the adapter's token index
const DefaultSessionIndex = "GSI1"

// Module resolves session tokens. The dispatcher uses it as its session verifier.
type Module struct {
	store  ports.Store
	table  string
	index  string
	clock  utils.Clock
	logger *zap.Logger
}

// NewModule creates the auth module over the session table
func NewModule(store ports.Store, table, index string, logger *zap.Logger, clock utils.Clock) *Module {
	if index == "" {
		index = DefaultSessionIndex
	}
	if clock == nil {
		clock = utils.SystemClock
	}
	return &Module{
		store:  store,
		table:  table,
		index:  index,
		clock:  clock,
		logger: logger,
	}
}

// Actions returns the auth registrations
func (m *Module) Actions() []actions.Registration {
	return []actions.Registration{
		actions.Handle(actions.VerifySession, m.VerifySessionAction),
	}
}

// VerifyPayload carries the token to check
type VerifyPayload struct {
	SessionToken string `json:"sessionToken" validate:"required"`
}

// VerifyResult describes a live session
type VerifyResult struct {
	Valid   bool   `json:"valid"`
	UserID  string `json:"userId"`
	Expires string `json:"expires,omitempty"`
}

// VerifySessionAction is the public verifySession action
func (m *Module) VerifySessionAction(ctx context.Context, p VerifyPayload) (VerifyResult, error) {
	s, err := m.Verify(ctx, p.SessionToken)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Valid: true, UserID: s.UserID, Expires: s.Expires}, nil
}

// Verify looks the token up on the session index. Unknown and expired tokens are INVALID_SESSION_TOKEN.
func (m *Module) Verify(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, pkgerrors.NewUnauthorizedError(pkgerrors.CodeMissingToken, "")
	}

	page, err := m.store.QueryItems(ctx, ports.QueryInput{
		Table:          m.table,
		Index:          m.index,
		PartitionKey:   "GSI1PK",
		PartitionValue: session.IndexKey(token),
		Limit:          1,
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query session", err)
	}
	if len(page.Items) == 0 {
		return nil, invalidToken()
	}

	var s session.Session
	if err := attributevalue.UnmarshalMap(page.Items[0], &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Expired(m.clock()) {
		m.logger.Debug("Session expired", zap.String("userId", s.UserID), zap.String("expires", s.Expires))
		return nil, invalidToken()
	}
	return &s, nil
}

// VerifySession resolves a token to its user id for the dispatcher
func (m *Module) VerifySession(ctx context.Context, token string) (string, error) {
	s, err := m.Verify(ctx, token)
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}

func invalidToken() *pkgerrors.AppError {
	return pkgerrors.NewUnauthorizedError(pkgerrors.CodeInvalidToken, "invalid session token")
}
