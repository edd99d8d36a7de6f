package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/dmitrijs2005/kalahboard/internal/dbx"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
	"github.com/dmitrijs2005/kalahboard/internal/server/repositories/leaderboard"
	"github.com/dmitrijs2005/kalahboard/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// memUsersRepo is an in-memory users.Repository keyed by username that
// enforces the same uniqueness rules as the database.
type memUsersRepo struct {
	mu    sync.Mutex
	users map[string]*models.User

	existsErr error
	createErr error
	getErr    error
	updateErr error

	existsCalls int
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{users: map[string]*models.User{}}
}

func (r *memUsersRepo) emailTaken(email string) bool {
	for _, u := range r.users {
		if u.Email == email {
			return true
		}
	}
	return false
}

func (r *memUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.users[user.UserName]; ok || r.emailTaken(user.Email) {
		return nil, common.ErrConflict
	}
	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	r.users[user.UserName] = &stored
	out := stored
	return &out, nil
}

func (r *memUsersRepo) GetUserByLogin(_ context.Context, userName string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[userName]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *memUsersRepo) ExistsByUserNameOrEmail(_ context.Context, userName, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existsCalls++
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.users[userName]
	return ok || r.emailTaken(email), nil
}

func (r *memUsersRepo) ExistsByUserName(_ context.Context, userName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.users[userName]
	return ok, nil
}

func (r *memUsersRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.emailTaken(email), nil
}

func (r *memUsersRepo) UpdateProfile(_ context.Context, userName string, upd models.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[userName]
	if !ok {
		return common.ErrNotFound
	}
	delete(r.users, userName)
	u.UserName = upd.UserName
	if upd.Email != "" {
		u.Email = upd.Email
	}
	if upd.Avatar != "" {
		u.Avatar = upd.Avatar
	}
	r.users[u.UserName] = u
	return nil
}

func (r *memUsersRepo) UpdateAvatar(_ context.Context, userName, avatar string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[userName]
	if !ok {
		return common.ErrNotFound
	}
	u.Avatar = avatar
	return nil
}

// put stores a user directly, bypassing Create.
func (r *memUsersRepo) put(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.UserName] = &u
	out := u
	return &out
}

type memLeaderboardRepo struct {
	entries   []models.LeaderboardEntry
	createErr error
	topErr    error
	lastLimit int
}

func (r *memLeaderboardRepo) Create(_ context.Context, e *models.LeaderboardEntry) (*models.LeaderboardEntry, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	e.CreatedAt = time.Now()
	r.entries = append(r.entries, *e)
	return e, nil
}

func (r *memLeaderboardRepo) Top(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	r.lastLimit = limit
	if r.topErr != nil {
		return nil, r.topErr
	}
	if len(r.entries) < limit {
		limit = len(r.entries)
	}
	return r.entries[:limit], nil
}

type fakeRepoManager struct {
	u *memUsersRepo
	l *memLeaderboardRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newMemUsersRepo(), l: &memLeaderboardRepo{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository            { return m.u }
func (m *fakeRepoManager) Leaderboard(dbx.DBTX) leaderboard.Repository {
	return m.l
}
