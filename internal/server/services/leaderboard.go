package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/dmitrijs2005/kalahboard/internal/logging"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
	"github.com/dmitrijs2005/kalahboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// LeaderboardSize is how many entries Top returns.
const LeaderboardSize = 10

// LeaderboardService records finished games and lists the best ones.
type LeaderboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewLeaderboardService(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *LeaderboardService {
	return &LeaderboardService{
		db:          db,
		repomanager: rm,
		logger:      logger.With("module", "leaderboard"),
	}
}

// Top returns the highest scores, best first.
func (s *LeaderboardService) Top(ctx context.Context) ([]models.LeaderboardEntry, error) {
	entries, err := s.repomanager.Leaderboard(s.db).Top(ctx, LeaderboardSize)
	if err != nil {
		s.logger.Error(ctx, "leaderboard fetch failed", "error", err)
		return nil, common.ErrInternal
	}
	s.logger.Debug(ctx, "leaderboard fetched", "count", len(entries))
	return entries, nil
}

// Add stores a finished game. An empty avatar becomes common.DefaultAvatar.
func (s *LeaderboardService) Add(ctx context.Context, entry models.LeaderboardEntry) (*models.LeaderboardEntry, error) {
	if strings.TrimSpace(entry.PlayerName) == "" {
		return nil, fmt.Errorf("%w: playerName is required", common.ErrValidation)
	}
	if entry.Score < 0 || entry.Duration < 0 {
		return nil, fmt.Errorf("%w: score and duration must not be negative", common.ErrValidation)
	}
	if entry.Avatar == "" {
		entry.Avatar = common.DefaultAvatar
	}
	entry.ID = uuid.NewString()

	created, err := s.repomanager.Leaderboard(s.db).Create(ctx, &entry)
	if err != nil {
		s.logger.Error(ctx, "leaderboard insert failed", "player", entry.PlayerName, "error", err)
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "leaderboard entry added", "id", created.ID, "player", created.PlayerName, "score", created.Score)
	return created, nil
}
