package game

import (
	"context"
	"time"

	"luna/internal/domain"
)

// Recorder receives statistics checkpoints. Calls are synchronous; a returned error
// is fatal to the session that made the call.
type Recorder interface {
	RecordLobbyCreated(ctx context.Context, user domain.UserID) error
	RecordGameStarted(ctx context.Context, users []domain.UserID) error
	RecordCategoryChosen(ctx context.Context, user domain.UserID, category domain.Category) error
	RecordCategoryCompleted(ctx context.Context, user domain.UserID, category domain.Category) error
	RecordPass(ctx context.Context, user domain.UserID) error
	RecordElimination(ctx context.Context, user domain.UserID) error
	RecordWin(ctx context.Context, user domain.UserID) error
	RecordGameEnded(ctx context.Context, users []domain.UserID, endedAt time.Time, duration time.Duration) error
}

// NopRecorder discards every checkpoint.
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func (NopRecorder) RecordLobbyCreated(context.Context, domain.UserID) error { return nil }
func (NopRecorder) RecordGameStarted(context.Context, []domain.UserID) error { return nil }
func (NopRecorder) RecordPass(context.Context, domain.UserID) error { return nil }
func (NopRecorder) RecordElimination(context.Context, domain.UserID) error { return nil }
func (NopRecorder) RecordWin(context.Context, domain.UserID) error { return nil }
func (NopRecorder) RecordCategoryChosen(context.Context, domain.UserID, domain.Category) error {
	return nil
}
func (NopRecorder) RecordCategoryCompleted(context.Context, domain.UserID, domain.Category) error {
	return nil
}
func (NopRecorder) RecordGameEnded(context.Context, []domain.UserID, time.Time, time.Duration) error {
	return nil
}
