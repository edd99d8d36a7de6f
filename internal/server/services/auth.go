// Package services contains server-side business logic. This file implements
// AuthService, which registers users and exchanges credentials for access
// tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/dmitrijs2005/kalahboard/internal/logging"
	"github.com/dmitrijs2005/kalahboard/internal/server/auth"
	"github.com/dmitrijs2005/kalahboard/internal/server/metrics"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
	"github.com/dmitrijs2005/kalahboard/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// dummyPassword is hashed once at construction. Login compares against that
// hash when the user does not exist so both failure paths cost one bcrypt
// comparison.
const dummyPassword = "kalahboard-dummy-password"

// AuthService provides the authentication flow:
// - Register: create a user with a bcrypt password hash
// - Login: verify credentials and mint an access token
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      *auth.TokenService
	logger      logging.Logger
	metrics     *metrics.Metrics
	dummyHash   string
}

// NewAuthService wires the flow. m may be nil.
func NewAuthService(db *sql.DB, rm repomanager.RepositoryManager, hasher auth.PasswordHasher,
	tokens *auth.TokenService, logger logging.Logger, m *metrics.Metrics) (*AuthService, error) {

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		db:          db,
		repomanager: rm,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger.With("module", "auth"),
		metrics:     m,
		dummyHash:   dummyHash,
	}, nil
}

// Register creates a new user. A username or email that is already taken
// yields common.ErrConflict; the stored record holds only the hash.
func (s *AuthService) Register(ctx context.Context, userName, email, password string) (*models.User, error) {
	if err := validateUserName(userName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	exists, err := repo.ExistsByUserNameOrEmail(ctx, userName, email)
	if err != nil {
		s.logger.Error(ctx, "registration lookup failed", "username", userName, "error", err)
		s.metrics.ObserveAuth(metrics.EventRegister, metrics.OutcomeError)
		return nil, common.ErrInternal
	}
	if exists {
		s.logger.Warn(ctx, "registration rejected, username or email taken", "username", userName)
		s.metrics.ObserveAuth(metrics.EventRegister, metrics.OutcomeFailure)
		return nil, common.ErrConflict
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.metrics.ObserveAuth(metrics.EventRegister, metrics.OutcomeFailure)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrValidation)
		}
		s.logger.Error(ctx, "password hashing failed", "username", userName, "error", err)
		return nil, common.ErrInternal
	}

	user, err := repo.Create(ctx, &models.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			// lost a race against a concurrent registration
			s.logger.Warn(ctx, "registration rejected by unique constraint", "username", userName)
			s.metrics.ObserveAuth(metrics.EventRegister, metrics.OutcomeFailure)
			return nil, common.ErrConflict
		}
		s.logger.Error(ctx, "user insert failed", "username", userName, "error", err)
		s.metrics.ObserveAuth(metrics.EventRegister, metrics.OutcomeError)
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "user registered", "username", userName)
	s.metrics.ObserveAuth(metrics.EventRegister, metrics.OutcomeSuccess)
	return user, nil
}

// Login verifies a username and password and returns a signed access token.
// Unknown users and wrong passwords both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, userName, password string) (string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.logger.Warn(ctx, "login failed", "username", userName)
			s.metrics.ObserveAuth(metrics.EventLogin, metrics.OutcomeFailure)
			return "", common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "login lookup failed", "username", userName, "error", err)
		s.metrics.ObserveAuth(metrics.EventLogin, metrics.OutcomeError)
		return "", common.ErrInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Warn(ctx, "login failed", "username", userName)
		s.metrics.ObserveAuth(metrics.EventLogin, metrics.OutcomeFailure)
		return "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueDefault(user.UserName)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "username", userName, "error", err)
		s.metrics.ObserveAuth(metrics.EventLogin, metrics.OutcomeError)
		return "", common.ErrInternal
	}

	s.logger.Info(ctx, "login succeeded", "username", userName)
	s.metrics.ObserveAuth(metrics.EventLogin, metrics.OutcomeSuccess)
	return token, nil
}
