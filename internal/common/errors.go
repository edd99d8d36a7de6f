// Package common defines shared constants and sentinel errors used across
// the kalahboard server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors surfaced at the API boundary.
	ErrConflict           = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrInternal           = errors.New("internal error")

	// Profile conflicts; both match ErrConflict.
	ErrUserNameTaken = fmt.Errorf("username already exists: %w", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email already exists: %w", ErrConflict)

	// Validation errors (bad request payloads, unsupported uploads).
	ErrValidation = errors.New("validation error")

	// ErrAvatarTooLarge matches ErrValidation too.
	ErrAvatarTooLarge = fmt.Errorf("avatar too large: %w", ErrValidation)

	// Token diagnostics. They never reach the client, SessionGuard folds
	// them into ErrUnauthorized.
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrMalformedToken   = errors.New("malformed token")
	ErrMissingSubject   = errors.New("token has no subject")
)
