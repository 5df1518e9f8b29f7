package game

import (
	"context"
	"slices"
	"sync"

	"luna/internal/domain"
)

// Reply is a participant's answer to a prompt, or a request to pass on it.
type Reply struct {
	Text string `json:"text"`
	Pass bool   `json:"pass"`
}

// Prompter asks a single participant for input. Each call announces the request and
// returns a channel that carries the participant's input for as long as ctx lives.
// An error means the request could not be delivered.
type Prompter interface {
	AskCategory(ctx context.Context, req CategoryRequested) (<-chan domain.Category, error)
	AskResponse(ctx context.Context, req ResponseRequested) (<-chan Reply, error)
	ConfirmPass(ctx context.Context, req PassConfirmRequested) (<-chan bool, error)
	AskNextPlayer(ctx context.Context, req NextPlayerRequested) (<-chan domain.UserID, error)
}

// Router is the Prompter used by the frontends: requests are announced through a
// Presenter and answers come back through the Deliver methods, which only accept
// input from the participant the request is addressed to.
type Router struct {
	presenter Presenter

	categories mailbox[domain.Category]
	replies    mailbox[Reply]
	passes     mailbox[bool]
	next       mailbox[domain.UserID]

	mu         sync.Mutex
	candidates map[domain.UserID]*candidateSet
}

var _ Prompter = (*Router)(nil)

func NewRouter(p Presenter) *Router {
	return &Router{
		presenter:  p,
		categories: newMailbox[domain.Category](),
		replies:    newMailbox[Reply](),
		passes:     newMailbox[bool](),
		next:       newMailbox[domain.UserID](),
		candidates: make(map[domain.UserID]*candidateSet),
	}
}

func (r *Router) AskCategory(ctx context.Context, req CategoryRequested) (<-chan domain.Category, error) {
	ch := r.categories.open(ctx, req.Player)
	if err := r.presenter.Present(ctx, req); err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *Router) AskResponse(ctx context.Context, req ResponseRequested) (<-chan Reply, error) {
	ch := r.replies.open(ctx, req.Player)
	if err := r.presenter.Present(ctx, req); err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *Router) ConfirmPass(ctx context.Context, req PassConfirmRequested) (<-chan bool, error) {
	ch := r.passes.open(ctx, req.Player)
	if err := r.presenter.Present(ctx, req); err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *Router) AskNextPlayer(ctx context.Context, req NextPlayerRequested) (<-chan domain.UserID, error) {
	ids := make([]domain.UserID, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		ids = append(ids, c.Player)
	}

	set := &candidateSet{ids: ids}
	r.mu.Lock()
	r.candidates[req.Player] = set
	r.mu.Unlock()
	context.AfterFunc(ctx, func() {
		r.mu.Lock()
		if r.candidates[req.Player] == set {
			delete(r.candidates, req.Player)
		}
		r.mu.Unlock()
	})

	ch := r.next.open(ctx, req.Player)
	if err := r.presenter.Present(ctx, req); err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *Router) DeliverCategory(user domain.UserID, c domain.Category) error {
	if !c.Valid() {
		return ErrInvalidChoice
	}
	return r.categories.deliver(user, c)
}

func (r *Router) DeliverReply(user domain.UserID, reply Reply) error {
	return r.replies.deliver(user, reply)
}

func (r *Router) DeliverPassConfirmation(user domain.UserID, confirm bool) error {
	return r.passes.deliver(user, confirm)
}

func (r *Router) DeliverNextPlayer(user, next domain.UserID) error {
	r.mu.Lock()
	allowed, ok := r.candidates[user]
	r.mu.Unlock()
	if !ok {
		return ErrNoPendingRequest
	}
	if !slices.Contains(allowed.ids, next) {
		return ErrInvalidChoice
	}
	return r.next.deliver(user, next)
}

// candidateSet is one next-player request's choices.
type candidateSet struct {
	ids []domain.UserID
}

// mailbox holds at most one open request per user.
type mailbox[T any] struct {
	mu    *sync.Mutex
	slots map[domain.UserID]chan T
}

func newMailbox[T any]() mailbox[T] {
	return mailbox[T]{mu: &sync.Mutex{}, slots: make(map[domain.UserID]chan T)}
}

func (m mailbox[T]) open(ctx context.Context, user domain.UserID) <-chan T {
	ch := make(chan T, 1)

	m.mu.Lock()
	m.slots[user] = ch
	m.mu.Unlock()

	context.AfterFunc(ctx, func() {
		m.mu.Lock()
		if m.slots[user] == ch {
			delete(m.slots, user)
		}
		m.mu.Unlock()
	})
	return ch
}

func (m mailbox[T]) deliver(user domain.UserID, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.slots[user]
	if !ok {
		return ErrNoPendingRequest
	}
	select {
	case ch <- v:
		return nil
	default:
		// an earlier answer is still waiting to be read
		return ErrNoPendingRequest
	}
}
