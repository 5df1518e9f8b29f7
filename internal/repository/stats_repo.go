package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"luna/internal/domain"
	"luna/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrStatisticsNotFound = errors.New("statistics not found")

// counter columns of the statistics table
const (
	colLobbiesMade    = "lobbies_made"
	colGamesPlayed    = "games_played"
	colGamesWon       = "games_won"
	colGamesLost      = "games_lost"
	colTruthsSelected = "truths_selected"
	colDaresSelected  = "dares_selected"
	colTruthsAnswered = "truths_answered"
	colDaresCompleted = "dares_completed"
	colPassesMade     = "passes_made"
)

// StatisticsRepository stores per-user counters and is the production game.Recorder.
type StatisticsRepository struct {
	db *pgxpool.Pool
}

var _ game.Recorder = (*StatisticsRepository)(nil)

func NewStatisticsRepository(db *pgxpool.Pool) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// increment adds one to column for every user, creating missing rows. column is
// always one of the constants above.
func (r *StatisticsRepository) increment(ctx context.Context, column string, users ...domain.UserID) error {
	query := fmt.Sprintf(
		`INSERT INTO statistics (user_id, %[1]s) VALUES ($1, 1)
		 ON CONFLICT (user_id) DO UPDATE SET %[1]s = statistics.%[1]s + 1`,
		column,
	)

	if len(users) == 1 {
		if _, err := r.db.Exec(ctx, query, users[0]); err != nil {
			return fmt.Errorf("increment %s: %w", column, err)
		}
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range users {
		batch.Queue(query, u)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	return nil
}

func (r *StatisticsRepository) RecordLobbyCreated(ctx context.Context, user domain.UserID) error {
	return r.increment(ctx, colLobbiesMade, user)
}

func (r *StatisticsRepository) RecordGameStarted(ctx context.Context, users []domain.UserID) error {
	if len(users) == 0 {
		return nil
	}
	return r.increment(ctx, colGamesPlayed, users...)
}

func (r *StatisticsRepository) RecordCategoryChosen(ctx context.Context, user domain.UserID, category domain.Category) error {
	if category == domain.CategoryDare {
		return r.increment(ctx, colDaresSelected, user)
	}
	return r.increment(ctx, colTruthsSelected, user)
}

func (r *StatisticsRepository) RecordCategoryCompleted(ctx context.Context, user domain.UserID, category domain.Category) error {
	if category == domain.CategoryDare {
		return r.increment(ctx, colDaresCompleted, user)
	}
	return r.increment(ctx, colTruthsAnswered, user)
}

func (r *StatisticsRepository) RecordPass(ctx context.Context, user domain.UserID) error {
	return r.increment(ctx, colPassesMade, user)
}

func (r *StatisticsRepository) RecordElimination(ctx context.Context, user domain.UserID) error {
	return r.increment(ctx, colGamesLost, user)
}

func (r *StatisticsRepository) RecordWin(ctx context.Context, user domain.UserID) error {
	return r.increment(ctx, colGamesWon, user)
}

// RecordGameEnded adds the game duration to every player's play time in one transaction.
func (r *StatisticsRepository) RecordGameEnded(ctx context.Context, users []domain.UserID, endedAt time.Time, duration time.Duration) error {
	seconds := int64(duration / time.Second)
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, u := range users {
			if _, err := tx.Exec(ctx,
				`INSERT INTO statistics (user_id, play_time, when_last_played) VALUES ($1, $2, $3)
				 ON CONFLICT (user_id) DO UPDATE
				 SET play_time = statistics.play_time + EXCLUDED.play_time,
				     when_last_played = EXCLUDED.when_last_played`,
				u, seconds, endedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record game ended: %w", err)
	}
	return nil
}

const statisticsColumns = `user_id, lobbies_made, games_played, games_won, games_lost,
	truths_selected, dares_selected, truths_answered, dares_completed, passes_made,
	play_time, when_last_played`

func scanStatistics(row pgx.Row) (*domain.Statistics, error) {
	var s domain.Statistics
	err := row.Scan(
		&s.UserID,
		&s.LobbiesMade,
		&s.GamesPlayed,
		&s.GamesWon,
		&s.GamesLost,
		&s.TruthsSelected,
		&s.DaresSelected,
		&s.TruthsAnswered,
		&s.DaresCompleted,
		&s.PassesMade,
		&s.PlayTime,
		&s.LastPlayedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StatisticsRepository) Get(ctx context.Context, user domain.UserID) (*domain.Statistics, error) {
	s, err := scanStatistics(r.db.QueryRow(ctx,
		`SELECT `+statisticsColumns+` FROM statistics WHERE user_id = $1`,
		user,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStatisticsNotFound
	}
	return s, err
}

// TopWinners returns up to limit users ordered by games won.
func (r *StatisticsRepository) TopWinners(ctx context.Context, limit int) ([]*domain.Statistics, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+statisticsColumns+`
		 FROM statistics
		 WHERE games_won > 0
		 ORDER BY games_won DESC, games_played ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Statistics
	for rows.Next() {
		s, err := scanStatistics(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
