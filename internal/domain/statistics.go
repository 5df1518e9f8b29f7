package domain

import "time"

// Statistics - счётчики игрока
type Statistics struct {
	UserID         UserID     `db:"user_id" json:"user_id"`
	LobbiesMade    int64      `db:"lobbies_made" json:"lobbies_made"`
	GamesPlayed    int64      `db:"games_played" json:"games_played"`
	GamesWon       int64      `db:"games_won" json:"games_won"`
	GamesLost      int64      `db:"games_lost" json:"games_lost"`
	TruthsSelected int64      `db:"truths_selected" json:"truths_selected"`
	DaresSelected  int64      `db:"dares_selected" json:"dares_selected"`
	TruthsAnswered int64      `db:"truths_answered" json:"truths_answered"`
	DaresCompleted int64      `db:"dares_completed" json:"dares_completed"`
	PassesMade     int64      `db:"passes_made" json:"passes_made"`
	PlayTime       int64      `db:"play_time" json:"play_time"` // seconds
	LastPlayedAt   *time.Time `db:"when_last_played" json:"last_played_at,omitempty"`
}
