package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"luna/internal/domain"
	"luna/internal/game"
	"luna/internal/logger"
	"luna/internal/metrics"
)

const DefaultLobbyName = "Players Waiting"

var (
	ErrLobbyNotFound = errors.New("lobby not found")
	ErrNoPresenter   = errors.New("a presenter is required")
	ErrShuttingDown  = errors.New("party service is shutting down")
)

type PartyConfig struct {
	Registry     game.Registry
	Prompts      game.PromptSource
	Recorder     game.Recorder
	LobbyTimeout time.Duration
	Rules        game.Rules
	// EngineOptions are appended after the rules and recorder, mostly for tests.
	EngineOptions []game.EngineOption
}

type OpenRequest struct {
	Leader    domain.UserID
	Name      string
	Presenter game.Presenter
}

// party is one lobby and the game that follows it.
type party struct {
	lobby     *game.Lobby
	router    *game.Router
	presenter game.Presenter
	log       *slog.Logger

	mu      sync.Mutex
	playing bool
	players []domain.UserID
}

// PartyInfo describes a running party.
type PartyInfo struct {
	Lobby   game.LobbySnapshot `json:"lobby"`
	Playing bool               `json:"playing"`
	Players []domain.UserID    `json:"players,omitempty"`
}

// PartyService runs lobbies and their games, one goroutine per party.
type PartyService struct {
	cfg PartyConfig
	log *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	parties map[string]*party
	closed  bool
}

func NewPartyService(cfg PartyConfig) *PartyService {
	if cfg.Registry == nil {
		cfg.Registry = game.NewMemoryRegistry()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = game.NopRecorder{}
	}
	if cfg.LobbyTimeout <= 0 {
		cfg.LobbyTimeout = game.DefaultLobbyTimeout
	}
	if cfg.Rules == (game.Rules{}) {
		cfg.Rules = game.DefaultRules()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &PartyService{
		cfg:     cfg,
		log:     logger.Component("party"),
		ctx:     ctx,
		cancel:  cancel,
		parties: make(map[string]*party),
	}
}

// Open creates a lobby led by req.Leader and starts waiting for players.
func (s *PartyService) Open(ctx context.Context, req OpenRequest) (game.LobbySnapshot, error) {
	if req.Presenter == nil {
		return game.LobbySnapshot{}, ErrNoPresenter
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return game.LobbySnapshot{}, ErrShuttingDown
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultLobbyName
	}

	lobby, err := game.NewLobby(ctx, game.LobbyConfig{
		Name:     name,
		Leader:   req.Leader,
		Timeout:  s.cfg.LobbyTimeout,
		Registry: s.cfg.Registry,
		Recorder: s.cfg.Recorder,
	})
	if err != nil {
		return game.LobbySnapshot{}, err
	}

	p := &party{
		lobby:     lobby,
		router:    game.NewRouter(req.Presenter),
		presenter: req.Presenter,
		log:       s.log.With("lobby_id", lobby.ID()),
	}

	snap := lobby.Snapshot()
	if err := p.presenter.Present(ctx, game.LobbyUpdated{Lobby: snap}); err != nil {
		_ = lobby.Leave(context.WithoutCancel(ctx), req.Leader)
		return game.LobbySnapshot{}, fmt.Errorf("present lobby: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = lobby.Leave(context.WithoutCancel(ctx), req.Leader)
		return game.LobbySnapshot{}, ErrShuttingDown
	}
	s.parties[lobby.ID()] = p
	s.wg.Add(1)
	s.mu.Unlock()

	p.log.Info("lobby opened", "leader", req.Leader, "name", name)
	go s.run(p)
	return snap, nil
}

func (s *PartyService) run(p *party) {
	defer s.wg.Done()
	defer s.forget(p.lobby.ID())

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	res, err := p.lobby.Await(s.ctx)
	if err != nil {
		p.log.Warn("lobby release failed", "error", err)
	}
	metrics.ObserveLobby(res)

	ctx := s.ctx
	if res.Cancelled {
		ctx = context.WithoutCancel(ctx)
	}
	resolved := game.LobbyResolved{
		Lobby:    p.lobby.Snapshot(),
		ExitCode: res.ExitCode,
		Started:  res.Started(),
		Failed:   res.Failed(),
	}
	if err := p.presenter.Present(ctx, resolved); err != nil {
		p.log.Warn("present lobby result failed", "error", err)
		return
	}
	if !res.Started() {
		p.log.Info("lobby closed without a game", "exit_code", res.ExitCode, "members", len(res.Members))
		return
	}

	p.mu.Lock()
	p.playing = true
	p.players = slices.Clone(res.Members)
	p.mu.Unlock()

	opts := append([]game.EngineOption{
		game.WithRules(s.cfg.Rules),
		game.WithRecorder(s.cfg.Recorder),
		game.WithLogger(p.log),
	}, s.cfg.EngineOptions...)
	engine := game.NewEngine(s.cfg.Prompts, p.router, p.presenter, opts...)

	if _, err := engine.Run(s.ctx, res.Members); err != nil {
		s.abort(p, err)
	}
}

func (s *PartyService) abort(p *party, err error) {
	if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
		p.log.Info("game stopped by shutdown")
	} else {
		p.log.Error("game aborted", "error", err)
		metrics.SessionErrors.Inc()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 5*time.Second)
	defer cancel()
	if perr := p.presenter.Present(ctx, game.SessionAborted{LobbyID: p.lobby.ID(), Reason: err.Error()}); perr != nil {
		p.log.Warn("present abort failed", "error", perr)
	}
}

func (s *PartyService) forget(id string) {
	s.mu.Lock()
	delete(s.parties, id)
	s.mu.Unlock()
}

func (s *PartyService) get(id string) (*party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[id]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return p, nil
}

func (s *PartyService) announce(ctx context.Context, p *party) {
	if err := p.presenter.Present(ctx, game.LobbyUpdated{Lobby: p.lobby.Snapshot()}); err != nil {
		p.log.Warn("present lobby update failed", "error", err)
	}
}

func (s *PartyService) Join(ctx context.Context, lobbyID string, user domain.UserID) error {
	p, err := s.get(lobbyID)
	if err != nil {
		return err
	}
	if err := p.lobby.Join(ctx, user); err != nil {
		return err
	}
	s.announce(ctx, p)
	return nil
}

// Leave removes user; the leader leaving closes the lobby.
func (s *PartyService) Leave(ctx context.Context, lobbyID string, user domain.UserID) error {
	p, err := s.get(lobbyID)
	if err != nil {
		return err
	}
	if err := p.lobby.Leave(ctx, user); err != nil {
		return err
	}
	if user != p.lobby.Leader() {
		s.announce(ctx, p)
	}
	return nil
}

func (s *PartyService) StartEarly(ctx context.Context, lobbyID string, user domain.UserID) error {
	p, err := s.get(lobbyID)
	if err != nil {
		return err
	}
	return p.lobby.StartEarly(ctx, user)
}

// Router returns the input router of a party, for delivering player answers.
func (s *PartyService) Router(lobbyID string) (*game.Router, error) {
	p, err := s.get(lobbyID)
	if err != nil {
		return nil, err
	}
	return p.router, nil
}

func (s *PartyService) Info(lobbyID string) (PartyInfo, error) {
	p, err := s.get(lobbyID)
	if err != nil {
		return PartyInfo{}, err
	}
	return p.info(), nil
}

func (p *party) info() PartyInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PartyInfo{Lobby: p.lobby.Snapshot(), Playing: p.playing, Players: slices.Clone(p.players)}
}

// Lobbies lists running parties, oldest deadline first.
func (s *PartyService) Lobbies() []PartyInfo {
	s.mu.RLock()
	out := make([]PartyInfo, 0, len(s.parties))
	for _, p := range s.parties {
		out = append(out, p.info())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b PartyInfo) int {
		return a.Lobby.Deadline.Compare(b.Lobby.Deadline)
	})
	return out
}

// Shutdown stops every party and waits for them to release their players.
func (s *PartyService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
