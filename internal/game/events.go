package game

import (
	"context"
	"time"

	"luna/internal/domain"
)

// Presenter renders session events. The core only produces data; a returned error
// means the transport could not deliver and is fatal to the session.
type Presenter interface {
	Present(ctx context.Context, ev Event) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, ev Event) error

func (f PresenterFunc) Present(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Event is any value produced for the presentation layer. EventName doubles as the
// WebSocket message type.
type Event interface {
	EventName() string
}

// Standing is a player's remaining lives.
type Standing struct {
	Player domain.UserID `json:"player"`
	Lives  int           `json:"lives"`
}

// FailReason says why a turn cost a life.
type FailReason string

const (
	FailPassed   FailReason = "passed"
	FailTimedOut FailReason = "timed_out"
)

type LobbyUpdated struct {
	Lobby LobbySnapshot `json:"lobby"`
}

type LobbyResolved struct {
	Lobby    LobbySnapshot        `json:"lobby"`
	ExitCode domain.LobbyExitCode `json:"exit_code"`
	Started  bool                 `json:"started"`
	Failed   bool                 `json:"failed"`
}

type CategoryRequested struct {
	Player   domain.UserID `json:"player"`
	Deadline time.Time     `json:"deadline"`
}

type ResponseRequested struct {
	Player    domain.UserID  `json:"player"`
	Prompt    *domain.Prompt `json:"prompt"`
	Lives     int            `json:"lives"`
	MinLength int            `json:"min_length"`
	Deadline  time.Time      `json:"deadline"`
}

type PassConfirmRequested struct {
	Player   domain.UserID `json:"player"`
	Lives    int           `json:"lives"`
	Deadline time.Time     `json:"deadline"`
}

type ResponseRejected struct {
	Player    domain.UserID `json:"player"`
	MinLength int           `json:"min_length"`
}

type PassCancelled struct {
	Player domain.UserID `json:"player"`
}

type TurnAnswered struct {
	Player   domain.UserID  `json:"player"`
	Prompt   *domain.Prompt `json:"prompt"`
	Response string         `json:"response"`
}

type TurnFailed struct {
	Player domain.UserID `json:"player"`
	// Prompt is nil when the category choice itself timed out.
	Prompt    *domain.Prompt `json:"prompt,omitempty"`
	Reason    FailReason     `json:"reason"`
	LivesLeft int            `json:"lives_left"`
}

type NextPlayerRequested struct {
	Player     domain.UserID `json:"player"`
	Candidates []Standing    `json:"candidates"`
	Deadline   time.Time     `json:"deadline"`
}

type NextPlayerChosen struct {
	From   domain.UserID `json:"from"`
	To     domain.UserID `json:"to"`
	Random bool          `json:"random"`
}

type PlayerEliminated struct {
	Player    domain.UserID `json:"player"`
	Remaining int           `json:"remaining"`
}

type GameOver struct {
	Result *Result `json:"result"`
}

type SessionAborted struct {
	LobbyID string `json:"lobby_id"`
	Reason  string `json:"reason"`
}

func (LobbyUpdated) EventName() string { return "lobby_updated" }
func (LobbyResolved) EventName() string { return "lobby_resolved" }
func (CategoryRequested) EventName() string { return "category_requested" }
func (ResponseRequested) EventName() string { return "response_requested" }
func (PassConfirmRequested) EventName() string { return "pass_confirm_requested" }
func (ResponseRejected) EventName() string { return "response_rejected" }
func (PassCancelled) EventName() string { return "pass_cancelled" }
func (TurnAnswered) EventName() string { return "turn_answered" }
func (TurnFailed) EventName() string { return "turn_failed" }
func (NextPlayerRequested) EventName() string { return "next_player_requested" }
func (NextPlayerChosen) EventName() string { return "next_player_chosen" }
func (PlayerEliminated) EventName() string { return "player_eliminated" }
func (GameOver) EventName() string { return "game_over" }
func (SessionAborted) EventName() string { return "session_aborted" }
