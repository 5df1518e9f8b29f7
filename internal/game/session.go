package game

import (
	"slices"
	"time"

	"luna/internal/domain"
)

// session is the live state of one game. It is only touched by the goroutine
// running Engine.Run.
type session struct {
	players    []domain.UserID // join order, never shrinks
	order      []domain.UserID // still playing, join order
	lives      map[domain.UserID]int
	eliminated []domain.UserID // oldest first
	current    domain.UserID
	startedAt  time.Time
	endedAt    time.Time
	turns      int
}

func newSession(members []domain.UserID, lives int) *session {
	s := &session{lives: make(map[domain.UserID]int, len(members))}
	for _, m := range members {
		if _, dup := s.lives[m]; dup {
			continue
		}
		s.players = append(s.players, m)
		s.order = append(s.order, m)
		s.lives[m] = lives
	}
	return s
}

func (s *session) active() bool {
	return len(s.order) > 1
}

// loseLife takes one life from p and returns what is left. Lives never go below zero.
func (s *session) loseLife(p domain.UserID) int {
	if s.lives[p] > 0 {
		s.lives[p]--
	}
	return s.lives[p]
}

func (s *session) eliminate(p domain.UserID) {
	i := slices.Index(s.order, p)
	if i < 0 {
		return
	}
	s.order = slices.Delete(s.order, i, i+1)
	delete(s.lives, p)
	s.eliminated = append(s.eliminated, p)
}

func (s *session) standings() []Standing {
	out := make([]Standing, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, Standing{Player: p, Lives: s.lives[p]})
	}
	return out
}

func (s *session) others(p domain.UserID) []Standing {
	out := make([]Standing, 0, len(s.order))
	for _, st := range s.standings() {
		if st.Player != p {
			out = append(out, st)
		}
	}
	return out
}
