package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"luna/internal/domain"
)

const (
	alice domain.UserID = 101
	bob   domain.UserID = 102
	carol domain.UserID = 103
	dave  domain.UserID = 104
)

var errBoom = errors.New("boom")

func fastRules() Rules {
	return Rules{
		StartingLives:      3,
		CategoryTimeout:    15 * time.Millisecond,
		ResponseTimeout:    15 * time.Millisecond,
		PassConfirmTimeout: 15 * time.Millisecond,
		NextPlayerTimeout:  15 * time.Millisecond,
		MinResponseLength:  10,
	}
}

// fakeRecorder logs every checkpoint as "method:user" and can fail one method.
type fakeRecorder struct {
	mu     sync.Mutex
	calls  []string
	failOn string
}

func (r *fakeRecorder) record(method string, detail any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("%s:%v", method, detail))
	if method == r.failOn {
		return errBoom
	}
	return nil
}

func (r *fakeRecorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func (r *fakeRecorder) count(prefix string) int {
	return len(filterPrefix(r.Calls(), prefix))
}

func (r *fakeRecorder) RecordLobbyCreated(_ context.Context, user domain.UserID) error {
	return r.record("lobby_created", user)
}

func (r *fakeRecorder) RecordGameStarted(_ context.Context, users []domain.UserID) error {
	return r.record("game_started", users)
}

func (r *fakeRecorder) RecordCategoryChosen(_ context.Context, user domain.UserID, c domain.Category) error {
	return r.record("category_chosen", fmt.Sprintf("%d/%s", user, c))
}

func (r *fakeRecorder) RecordCategoryCompleted(_ context.Context, user domain.UserID, c domain.Category) error {
	return r.record("category_completed", fmt.Sprintf("%d/%s", user, c))
}

func (r *fakeRecorder) RecordPass(_ context.Context, user domain.UserID) error {
	return r.record("pass", user)
}

func (r *fakeRecorder) RecordElimination(_ context.Context, user domain.UserID) error {
	return r.record("elimination", user)
}

func (r *fakeRecorder) RecordWin(_ context.Context, user domain.UserID) error {
	return r.record("win", user)
}

func (r *fakeRecorder) RecordGameEnded(_ context.Context, users []domain.UserID, _ time.Time, _ time.Duration) error {
	return r.record("game_ended", users)
}

// eventLog is a Presenter that keeps every event.
type eventLog struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (l *eventLog) Present(_ context.Context, ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return l.err
}

func (l *eventLog) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.EventName())
	}
	return out
}

func eventsOf[T Event](l *eventLog) []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []T
	for _, ev := range l.events {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// scriptedPrompter answers every request from callbacks. A callback returning
// ok=false leaves the request unanswered so the engine hits its deadline.
type scriptedPrompter struct {
	category func(p domain.UserID) (domain.Category, bool)
	response func(p domain.UserID, prompt *domain.Prompt) []Reply
	confirm  func(p domain.UserID) (bool, bool)
	next     func(p domain.UserID, candidates []Standing) (domain.UserID, bool)
	err      error

	mu    sync.Mutex
	asked []string
}

func (s *scriptedPrompter) log(kind string, p domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, fmt.Sprintf("%s:%d", kind, p))
}

func (s *scriptedPrompter) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.asked)
}

func (s *scriptedPrompter) AskCategory(_ context.Context, req CategoryRequested) (<-chan domain.Category, error) {
	s.log("category", req.Player)
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan domain.Category, 1)
	if s.category != nil {
		if c, ok := s.category(req.Player); ok {
			ch <- c
		}
	}
	return ch, nil
}

func (s *scriptedPrompter) AskResponse(_ context.Context, req ResponseRequested) (<-chan Reply, error) {
	s.log("response", req.Player)
	var replies []Reply
	if s.response != nil {
		replies = s.response(req.Player, req.Prompt)
	}
	ch := make(chan Reply, len(replies))
	for _, r := range replies {
		ch <- r
	}
	return ch, nil
}

func (s *scriptedPrompter) ConfirmPass(_ context.Context, req PassConfirmRequested) (<-chan bool, error) {
	s.log("confirm", req.Player)
	ch := make(chan bool, 1)
	if s.confirm != nil {
		if v, ok := s.confirm(req.Player); ok {
			ch <- v
		}
	}
	return ch, nil
}

func (s *scriptedPrompter) AskNextPlayer(_ context.Context, req NextPlayerRequested) (<-chan domain.UserID, error) {
	s.log("next", req.Player)
	ch := make(chan domain.UserID, 1)
	if s.next != nil {
		if v, ok := s.next(req.Player, req.Candidates); ok {
			ch <- v
		}
	}
	return ch, nil
}

func countOf(list []string, v string) int {
	n := 0
	for _, s := range list {
		if s == v {
			n++
		}
	}
	return n
}

func samplePrompts() *MemoryPrompts {
	return NewMemoryPrompts(nil,
		&domain.Prompt{ID: 1, Category: domain.CategoryTruth, Content: "What is the last lie you told?"},
		&domain.Prompt{ID: 2, Category: domain.CategoryDare, Content: "Sing the chorus of your favourite song."},
	)
}

const goodAnswer = "a perfectly reasonable answer"

func filterPrefix(list []string, prefix string) []string {
	var out []string
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
		}
	}
	return out
}
