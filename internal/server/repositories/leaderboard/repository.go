package leaderboard

import (
	"context"

	"github.com/dmitrijs2005/kalahboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.LeaderboardEntry) (*models.LeaderboardEntry, error)
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}
