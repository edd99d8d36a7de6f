package models

import "time"

// LeaderboardEntry is one finished game. Duration is in seconds.
type LeaderboardEntry struct {
	ID         string
	PlayerName string
	Score      int
	Duration   int
	Avatar     string
	CreatedAt  time.Time
}
