package game

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"luna/internal/domain"

	"github.com/google/uuid"
)

const DefaultLobbyTimeout = 30 * time.Second

type LobbyConfig struct {
	ID       string // generated when empty
	Name     string
	Leader   domain.UserID
	Timeout  time.Duration
	Registry Registry
	Recorder Recorder
}

// Lobby collects participants before a game. The wait window is fixed at creation
// and is not extended by activity.
type Lobby struct {
	id        string
	name      string
	leader    domain.UserID
	createdAt time.Time
	deadline  time.Time
	registry  Registry

	mu         sync.Mutex
	members    []domain.UserID
	exitCode   domain.LobbyExitCode
	closed     bool
	cancelled  bool
	releaseErr error
	done       chan struct{}
}

// LobbySnapshot is a copy of the lobby state for presentation.
type LobbySnapshot struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Leader        domain.UserID   `json:"leader"`
	Members       []domain.UserID `json:"members"`
	Deadline      time.Time       `json:"deadline"`
	CanStartEarly bool            `json:"can_start_early"`
	Closed        bool            `json:"closed"`
}

// LobbyResult describes how a lobby resolved.
type LobbyResult struct {
	ExitCode  domain.LobbyExitCode
	Members   []domain.UserID
	Cancelled bool
}

// Started reports whether the resolved lobby proceeds to a game.
func (r LobbyResult) Started() bool {
	if r.Cancelled {
		return false
	}
	switch r.ExitCode {
	case domain.LobbyLeaderLeft:
		return false
	case domain.LobbyLeaderSkipped:
		return true
	default:
		return len(r.Members) >= 2
	}
}

// Failed reports the "insufficient members" case: the wait ran out with only the
// leader present.
func (r LobbyResult) Failed() bool {
	return !r.Cancelled && r.ExitCode == domain.LobbyNormal && len(r.Members) < 2
}

// NewLobby claims the leader in the registry and records the creation.
func NewLobby(ctx context.Context, cfg LobbyConfig) (*Lobby, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLobbyTimeout
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NopRecorder{}
	}

	ok, err := cfg.Registry.TryAdd(ctx, cfg.Leader, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("claim leader: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyInLobby
	}

	if err := cfg.Recorder.RecordLobbyCreated(ctx, cfg.Leader); err != nil {
		_ = cfg.Registry.Remove(context.WithoutCancel(ctx), cfg.ID, cfg.Leader)
		return nil, fmt.Errorf("record lobby created: %w", err)
	}

	now := time.Now()
	return &Lobby{
		id:        cfg.ID,
		name:      cfg.Name,
		leader:    cfg.Leader,
		createdAt: now,
		deadline:  now.Add(cfg.Timeout),
		registry:  cfg.Registry,
		members:   []domain.UserID{cfg.Leader},
		exitCode:  domain.LobbyNormal,
		done:      make(chan struct{}),
	}, nil
}

func (l *Lobby) ID() string { return l.id }
func (l *Lobby) Name() string { return l.name }
func (l *Lobby) Leader() domain.UserID { return l.leader }
func (l *Lobby) Deadline() time.Time { return l.deadline }
func (l *Lobby) Done() <-chan struct{} { return l.done }

func (l *Lobby) Members() []domain.UserID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.members)
}

func (l *Lobby) Snapshot() LobbySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LobbySnapshot{
		ID:            l.id,
		Name:          l.name,
		Leader:        l.leader,
		Members:       slices.Clone(l.members),
		Deadline:      l.deadline,
		CanStartEarly: !l.closed && len(l.members) >= 2,
		Closed:        l.closed,
	}
}

// Join adds user unless they already sit in this or any other lobby.
func (l *Lobby) Join(ctx context.Context, user domain.UserID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLobbyClosed
	}
	if slices.Contains(l.members, user) {
		return ErrAlreadyJoined
	}

	ok, err := l.registry.TryAdd(ctx, user, l.id)
	if err != nil {
		return fmt.Errorf("claim member: %w", err)
	}
	if !ok {
		return ErrAlreadyInLobby
	}

	l.members = append(l.members, user)
	return nil
}

// Leave removes user. The leader leaving closes the lobby immediately.
func (l *Lobby) Leave(ctx context.Context, user domain.UserID) error {
	if user == l.leader {
		return l.resolve(ctx, domain.LobbyLeaderLeft, false, true)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLobbyClosed
	}
	i := slices.Index(l.members, user)
	if i < 0 {
		return ErrNotInLobby
	}
	if err := l.registry.Remove(ctx, l.id, user); err != nil {
		return fmt.Errorf("release member: %w", err)
	}
	l.members = slices.Delete(l.members, i, i+1)
	return nil
}

// StartEarly ends the wait on the leader's request once two members are present.
func (l *Lobby) StartEarly(ctx context.Context, user domain.UserID) error {
	l.mu.Lock()
	switch {
	case l.closed:
		l.mu.Unlock()
		return ErrLobbyClosed
	case user != l.leader:
		l.mu.Unlock()
		return ErrNotLeader
	case len(l.members) < 2:
		l.mu.Unlock()
		return ErrNotEnoughMembers
	}
	// checked and closed under one lock
	members := l.closeLocked(domain.LobbyLeaderSkipped, false)
	l.mu.Unlock()

	return l.release(ctx, members)
}

// Await blocks until the lobby resolves: the deadline passes, the leader leaves or
// starts early, or ctx is cancelled. All members are released from the registry
// before Await returns.
func (l *Lobby) Await(ctx context.Context) (LobbyResult, error) {
	timer := time.NewTimer(time.Until(l.deadline))
	defer timer.Stop()

	select {
	case <-l.done:
	case <-timer.C:
		_ = l.resolve(ctx, domain.LobbyNormal, false, false)
	case <-ctx.Done():
		_ = l.resolve(context.WithoutCancel(ctx), domain.LobbyNormal, true, false)
	}
	<-l.done

	l.mu.Lock()
	defer l.mu.Unlock()
	return LobbyResult{
		ExitCode:  l.exitCode,
		Members:   slices.Clone(l.members),
		Cancelled: l.cancelled,
	}, l.releaseErr
}

// resolve closes the lobby once. strict makes a second resolution an error
// instead of a no-op.
func (l *Lobby) resolve(ctx context.Context, code domain.LobbyExitCode, cancelled, strict bool) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		if strict {
			return ErrLobbyClosed
		}
		return nil
	}
	members := l.closeLocked(code, cancelled)
	l.mu.Unlock()

	return l.release(ctx, members)
}

// closeLocked marks the lobby resolved and returns the members to release.
// l.mu must be held.
func (l *Lobby) closeLocked(code domain.LobbyExitCode, cancelled bool) []domain.UserID {
	l.closed = true
	l.exitCode = code
	l.cancelled = cancelled
	return slices.Clone(l.members)
}

func (l *Lobby) release(ctx context.Context, members []domain.UserID) error {
	err := l.registry.Remove(ctx, l.id, members...)
	if err != nil {
		err = fmt.Errorf("release lobby members: %w", err)
	}

	l.mu.Lock()
	l.releaseErr = err
	l.mu.Unlock()
	close(l.done)
	return err
}
