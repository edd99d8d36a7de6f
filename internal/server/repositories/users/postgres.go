package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/dmitrijs2005/kalahboard/internal/dbx"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password_hash, avatar)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.PasswordHash, user.Avatar).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, COALESCE(avatar, ''), created_at FROM users
		 WHERE username = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userName).
		Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash, &user.Avatar, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		userName, email)
}

func (r *PostgresRepository) ExistsByUserName(ctx context.Context, userName string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, userName)
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

// UpdateProfile renames the user and sets email/avatar when they are
// non-empty. The password hash is never touched.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, userName string, upd models.ProfileUpdate) error {
	query :=
		`UPDATE users
		 SET username = $1,
		     email = COALESCE(NULLIF($2, ''), email),
		     avatar = COALESCE(NULLIF($3, ''), avatar)
		 WHERE username = $4
		 `

	res, err := r.db.ExecContext(ctx, query, upd.UserName, upd.Email, upd.Avatar, userName)
	return r.checkUpdate(res, err)
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, userName, avatar string) error {
	query :=
		`UPDATE users SET avatar = $1
		 WHERE username = $2
		 `

	res, err := r.db.ExecContext(ctx, query, avatar, userName)
	return r.checkUpdate(res, err)
}

func (r *PostgresRepository) checkUpdate(res sql.Result, err error) error {
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
