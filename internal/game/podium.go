package game

import (
	"slices"
	"time"

	"luna/internal/domain"
)

// Podium ranks a finished game. Later eliminations rank higher.
type Podium struct {
	Winner domain.UserID  `json:"winner"`
	Second *domain.UserID `json:"second,omitempty"`
	Third  *domain.UserID `json:"third,omitempty"`
	// Others are the remaining eliminated players, most recent first.
	Others []domain.UserID `json:"others,omitempty"`
}

// NewPodium builds the ranking from the elimination history, oldest first.
func NewPodium(winner domain.UserID, eliminated []domain.UserID) Podium {
	recent := slices.Clone(eliminated)
	slices.Reverse(recent)

	p := Podium{Winner: winner}
	if len(recent) > 0 {
		p.Second = &recent[0]
	}
	if len(recent) > 1 {
		p.Third = &recent[1]
	}
	if len(recent) > 2 {
		p.Others = recent[2:]
	}
	return p
}

// Result is the final state of a game session.
type Result struct {
	Winner      domain.UserID   `json:"winner"`
	WinnerLives int             `json:"winner_lives"`
	Podium      Podium          `json:"podium"`
	Players     []domain.UserID `json:"players"`
	// Eliminated is the elimination history, oldest first.
	Eliminated []domain.UserID `json:"eliminated"`
	StartedAt  time.Time       `json:"started_at"`
	EndedAt    time.Time       `json:"ended_at"`
	Turns      int             `json:"turns"`
}

func (r *Result) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
