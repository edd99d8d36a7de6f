package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/dmitrijs2005/kalahboard/internal/dbx"
	"github.com/dmitrijs2005/kalahboard/internal/logging"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
	"github.com/dmitrijs2005/kalahboard/internal/server/repositories/repomanager"
)

// ProfileService lets an authenticated user change their own profile.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewProfileService(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *ProfileService {
	return &ProfileService{
		db:          db,
		repomanager: rm,
		logger:      logger.With("module", "profile"),
	}
}

// UpdateProfile applies upd to current inside one transaction and returns the
// stored result. A username or email owned by someone else yields
// common.ErrUserNameTaken or common.ErrEmailTaken.
func (s *ProfileService) UpdateProfile(ctx context.Context, current *models.User, upd models.ProfileUpdate) (*models.User, error) {
	if err := validateUserName(upd.UserName); err != nil {
		return nil, err
	}
	if upd.Email != "" {
		if err := validateEmail(upd.Email); err != nil {
			return nil, err
		}
	}

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if upd.UserName != current.UserName {
			taken, err := repo.ExistsByUserName(ctx, upd.UserName)
			if err != nil {
				return err
			}
			if taken {
				return common.ErrUserNameTaken
			}
		}

		if upd.Email != "" && upd.Email != current.Email {
			taken, err := repo.ExistsByEmail(ctx, upd.Email)
			if err != nil {
				return err
			}
			if taken {
				return common.ErrEmailTaken
			}
		}

		if err := repo.UpdateProfile(ctx, current.UserName, upd); err != nil {
			return err
		}

		var err error
		updated, err = repo.GetUserByLogin(ctx, upd.UserName)
		return err
	})

	switch {
	case err == nil:
		s.logger.Info(ctx, "profile updated", "username", current.UserName, "new_username", updated.UserName)
		return updated, nil
	case errors.Is(err, common.ErrConflict):
		s.logger.Warn(ctx, "profile update rejected", "username", current.UserName, "error", err)
		return nil, err
	case errors.Is(err, common.ErrNotFound):
		// the account went away after the token was checked
		return nil, common.ErrUnauthorized
	default:
		s.logger.Error(ctx, "profile update failed", "username", current.UserName, "error", err)
		return nil, common.ErrInternal
	}
}
