package users

import (
	"context"

	"github.com/dmitrijs2005/kalahboard/internal/server/models"
)

// Repository is the credential store. Username and email are each unique;
// writes that would break that return common.ErrConflict.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
	ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error)
	ExistsByUserName(ctx context.Context, userName string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, userName string, upd models.ProfileUpdate) error
	UpdateAvatar(ctx context.Context, userName, avatar string) error
}
