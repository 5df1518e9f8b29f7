package metrics

import (
	"context"
	"time"

	"luna/internal/domain"
	"luna/internal/game"
)

// Recorder counts every checkpoint before handing it to the wrapped recorder.
type Recorder struct {
	next game.Recorder
}

var _ game.Recorder = (*Recorder)(nil)

func NewRecorder(next game.Recorder) *Recorder {
	if next == nil {
		next = game.NopRecorder{}
	}
	return &Recorder{next: next}
}

func observe(checkpoint string, err error) error {
	if err != nil {
		RecorderErrors.WithLabelValues(checkpoint).Inc()
		return err
	}
	Checkpoints.WithLabelValues(checkpoint).Inc()
	return nil
}

func (r *Recorder) RecordLobbyCreated(ctx context.Context, user domain.UserID) error {
	return observe("lobby_created", r.next.RecordLobbyCreated(ctx, user))
}

func (r *Recorder) RecordGameStarted(ctx context.Context, users []domain.UserID) error {
	return observe("game_started", r.next.RecordGameStarted(ctx, users))
}

func (r *Recorder) RecordCategoryChosen(ctx context.Context, user domain.UserID, category domain.Category) error {
	return observe("category_chosen", r.next.RecordCategoryChosen(ctx, user, category))
}

func (r *Recorder) RecordCategoryCompleted(ctx context.Context, user domain.UserID, category domain.Category) error {
	return observe("category_completed", r.next.RecordCategoryCompleted(ctx, user, category))
}

func (r *Recorder) RecordPass(ctx context.Context, user domain.UserID) error {
	return observe("pass", r.next.RecordPass(ctx, user))
}

func (r *Recorder) RecordElimination(ctx context.Context, user domain.UserID) error {
	return observe("elimination", r.next.RecordElimination(ctx, user))
}

func (r *Recorder) RecordWin(ctx context.Context, user domain.UserID) error {
	return observe("win", r.next.RecordWin(ctx, user))
}

func (r *Recorder) RecordGameEnded(ctx context.Context, users []domain.UserID, endedAt time.Time, duration time.Duration) error {
	err := observe("game_ended", r.next.RecordGameEnded(ctx, users, endedAt, duration))
	if err == nil {
		GameDuration.Observe(duration.Seconds())
		GamePlayers.Observe(float64(len(users)))
	}
	return err
}

// ObserveLobby counts a resolved lobby.
func ObserveLobby(res game.LobbyResult) {
	outcome := res.ExitCode.String()
	switch {
	case res.Cancelled:
		outcome = "cancelled"
	case res.Failed():
		outcome = "failed"
	}
	Lobbies.WithLabelValues(outcome).Inc()
}
