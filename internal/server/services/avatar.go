package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/dmitrijs2005/kalahboard/internal/logging"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
	"github.com/dmitrijs2005/kalahboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// avatarTypes maps accepted file extensions to their content type.
var avatarTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// AvatarUpload tells the client where the new avatar lives.
type AvatarUpload struct {
	AvatarURL string
	FullURL   string
}

// AvatarService stores uploaded avatars and points the user's profile at them.
type AvatarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       AvatarStore
	baseURL     string
	maxSize     int64
	logger      logging.Logger
}

func NewAvatarService(db *sql.DB, rm repomanager.RepositoryManager, store AvatarStore,
	baseURL string, maxSize int64, logger logging.Logger) *AvatarService {
	return &AvatarService{
		db:          db,
		repomanager: rm,
		store:       store,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxSize:     maxSize,
		logger:      logger.With("module", "avatar"),
	}
}

// Upload saves r as user's avatar. filename only contributes its extension;
// the stored object is named by a fresh UUID.
func (s *AvatarService) Upload(ctx context.Context, user *models.User, filename string, size int64, r io.Reader) (*AvatarUpload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := avatarTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported avatar file type %q", common.ErrValidation, ext)
	}
	if size > s.maxSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", common.ErrAvatarTooLarge, s.maxSize)
	}

	name := uuid.NewString() + ext
	url, err := s.store.Save(ctx, name, contentType, io.LimitReader(r, s.maxSize))
	if err != nil {
		s.logger.Error(ctx, "avatar store failed", "username", user.UserName, "error", err)
		return nil, common.ErrInternal
	}

	if err := s.repomanager.Users(s.db).UpdateAvatar(ctx, user.UserName, url); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		s.logger.Error(ctx, "avatar update failed", "username", user.UserName, "error", err)
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "avatar uploaded", "username", user.UserName, "avatar", url)
	return &AvatarUpload{AvatarURL: url, FullURL: s.fullURL(url)}, nil
}

func (s *AvatarService) fullURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return s.baseURL + url
}
