// Package leaderboard stores finished game results.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/kalahboard/internal/dbx"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.LeaderboardEntry) (*models.LeaderboardEntry, error) {
	query :=
		`INSERT INTO leaderboard (id, player_name, score, duration, avatar)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		e.ID, e.PlayerName, e.Score, e.Duration, e.Avatar).Scan(&e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

// Top returns up to limit entries, highest score first; ties go to the
// earlier game.
func (r *PostgresRepository) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query :=
		`SELECT id, player_name, score, duration, avatar, created_at FROM leaderboard
		 ORDER BY score DESC, created_at ASC
		 LIMIT $1
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.PlayerName, &e.Score, &e.Duration, &e.Avatar, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}
