package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/dmitrijs2005/kalahboard/internal/logging"
	"github.com/dmitrijs2005/kalahboard/internal/server/auth"
	"github.com/dmitrijs2005/kalahboard/internal/server/metrics"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
	"github.com/dmitrijs2005/kalahboard/internal/server/repositories/repomanager"
)

// SessionGuard resolves a bearer token to the user it was issued for.
type SessionGuard struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	logger      logging.Logger
	metrics     *metrics.Metrics
}

func NewSessionGuard(db *sql.DB, rm repomanager.RepositoryManager, tokens *auth.TokenService,
	logger logging.Logger, m *metrics.Metrics) *SessionGuard {
	return &SessionGuard{
		db:          db,
		repomanager: rm,
		tokens:      tokens,
		logger:      logger.With("module", "session"),
		metrics:     m,
	}
}

// Authenticate returns the current user for token. Every token problem,
// and a subject that no longer exists, is reported as common.ErrUnauthorized;
// the precise cause is only logged. A failing store yields common.ErrInternal.
func (g *SessionGuard) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		g.reject(ctx, "missing token")
		return nil, common.ErrUnauthorized
	}

	subject, err := g.tokens.Validate(token)
	if err != nil {
		g.reject(ctx, "token rejected", "error", err)
		return nil, common.ErrUnauthorized
	}

	user, err := g.repomanager.Users(g.db).GetUserByLogin(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			g.reject(ctx, "token subject not found", "username", subject)
			return nil, common.ErrUnauthorized
		}
		g.logger.Error(ctx, "session lookup failed", "username", subject, "error", err)
		g.metrics.ObserveAuth(metrics.EventAuthenticate, metrics.OutcomeError)
		return nil, common.ErrInternal
	}

	g.metrics.ObserveAuth(metrics.EventAuthenticate, metrics.OutcomeSuccess)
	return user, nil
}

func (g *SessionGuard) reject(ctx context.Context, msg string, args ...any) {
	g.logger.Warn(ctx, msg, args...)
	g.metrics.ObserveAuth(metrics.EventAuthenticate, metrics.OutcomeFailure)
}
