package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"luna/internal/domain"
	"luna/internal/logger"
)

// ErrInputClosed is returned when a Prompter closes an input channel while the
// engine is still waiting on it.
var ErrInputClosed = errors.New("input channel closed")

// Rules are the tunable parameters of a game.
type Rules struct {
	StartingLives      int
	CategoryTimeout    time.Duration
	ResponseTimeout    time.Duration
	PassConfirmTimeout time.Duration
	NextPlayerTimeout  time.Duration
	MinResponseLength  int
}

func DefaultRules() Rules {
	return Rules{
		StartingLives:      3,
		CategoryTimeout:    22 * time.Second,
		ResponseTimeout:    46 * time.Second,
		PassConfirmTimeout: 10 * time.Second,
		NextPlayerTimeout:  22 * time.Second,
		MinResponseLength:  10,
	}
}

type EngineOption func(*Engine)

func WithRules(r Rules) EngineOption {
	return func(e *Engine) { e.rules = r }
}

// WithRand makes every random pick come from rng.
func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// Engine runs the turn loop of one game from the lobby's member list to a winner.
// An Engine is not safe for concurrent Run calls.
type Engine struct {
	rules     Rules
	prompts   PromptSource
	prompter  Prompter
	presenter Presenter
	recorder  Recorder
	rng       *rand.Rand
	log       *slog.Logger
}

func NewEngine(prompts PromptSource, prompter Prompter, presenter Presenter, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:     DefaultRules(),
		prompts:   prompts,
		prompter:  prompter,
		presenter: presenter,
		recorder:  NopRecorder{},
		log:       logger.With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

type turnOutcome int

const (
	turnAnswered turnOutcome = iota
	turnPassed
	turnTimedOut
)

type turnResult struct {
	outcome  turnOutcome
	prompt   *domain.Prompt
	response string
}

// Run plays a game with members until one player is left. Timeouts and passes are
// part of the game; any returned error ends the session.
func (e *Engine) Run(ctx context.Context, members []domain.UserID) (*Result, error) {
	s := newSession(members, e.rules.StartingLives)
	if len(s.players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	s.current = s.order[e.rng.IntN(len(s.order))]
	s.startedAt = time.Now()

	if err := e.recorder.RecordGameStarted(ctx, slices.Clone(s.players)); err != nil {
		return nil, fmt.Errorf("record game started: %w", err)
	}
	e.log.Debug("game started", "players", len(s.players), "first", s.current)

	for s.active() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.playTurn(ctx, s); err != nil {
			return nil, err
		}
	}

	return e.finish(ctx, s)
}

func (e *Engine) playTurn(ctx context.Context, s *session) error {
	s.turns++
	player := s.current

	res, err := e.collectResponse(ctx, s, player)
	if err != nil {
		return err
	}

	switch res.outcome {
	case turnPassed:
		return e.penalize(ctx, s, player, res.prompt, FailPassed)
	case turnTimedOut:
		return e.penalize(ctx, s, player, res.prompt, FailTimedOut)
	}

	if err := e.presenter.Present(ctx, TurnAnswered{Player: player, Prompt: res.prompt, Response: res.response}); err != nil {
		return fmt.Errorf("present answer: %w", err)
	}
	if err := e.recorder.RecordCategoryCompleted(ctx, player, res.prompt.Category); err != nil {
		return fmt.Errorf("record category completed: %w", err)
	}

	next, random, err := e.chooseNextPlayer(ctx, s, player)
	if err != nil {
		return err
	}
	if err := e.presenter.Present(ctx, NextPlayerChosen{From: player, To: next, Random: random}); err != nil {
		return fmt.Errorf("present next player: %w", err)
	}
	s.current = next
	return nil
}

// collectResponse asks player for a category, then for an answer or a pass.
func (e *Engine) collectResponse(ctx context.Context, s *session, player domain.UserID) (turnResult, error) {
	category, err := e.askCategory(ctx, player)
	if err != nil {
		return turnResult{}, err
	}
	if category == nil {
		return turnResult{outcome: turnTimedOut}, nil
	}

	if err := e.recorder.RecordCategoryChosen(ctx, player, *category); err != nil {
		return turnResult{}, fmt.Errorf("record category chosen: %w", err)
	}

	prompt, err := e.prompts.RandomPrompt(ctx, *category, player)
	if err != nil {
		return turnResult{}, fmt.Errorf("select %s prompt for %d: %w", category, player, err)
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deadline := time.Now().Add(e.rules.ResponseTimeout)
	replies, err := e.prompter.AskResponse(wctx, ResponseRequested{
		Player:    player,
		Prompt:    prompt,
		Lives:     s.lives[player],
		MinLength: e.rules.MinResponseLength,
		Deadline:  deadline,
	})
	if err != nil {
		return turnResult{}, fmt.Errorf("ask response: %w", err)
	}

	for {
		d := AwaitUntil(ctx, deadline, replies)
		switch d.Outcome {
		case TimedOut:
			return turnResult{outcome: turnTimedOut, prompt: prompt}, nil
		case Cancelled:
			return turnResult{}, waitErr(ctx)
		}

		if d.Value.Pass {
			confirmed, err := e.confirmPass(ctx, s, player)
			if err != nil {
				return turnResult{}, err
			}
			if confirmed {
				return turnResult{outcome: turnPassed, prompt: prompt}, nil
			}
			if err := e.presenter.Present(ctx, PassCancelled{Player: player}); err != nil {
				return turnResult{}, fmt.Errorf("present pass cancelled: %w", err)
			}
			continue
		}

		text := strings.TrimSpace(d.Value.Text)
		if utf8.RuneCountInString(text) < e.rules.MinResponseLength {
			if err := e.presenter.Present(ctx, ResponseRejected{Player: player, MinLength: e.rules.MinResponseLength}); err != nil {
				return turnResult{}, fmt.Errorf("present rejected response: %w", err)
			}
			continue
		}
		return turnResult{outcome: turnAnswered, prompt: prompt, response: text}, nil
	}
}

// askCategory returns nil when the player did not choose in time.
func (e *Engine) askCategory(ctx context.Context, player domain.UserID) (*domain.Category, error) {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deadline := time.Now().Add(e.rules.CategoryTimeout)
	choices, err := e.prompter.AskCategory(wctx, CategoryRequested{Player: player, Deadline: deadline})
	if err != nil {
		return nil, fmt.Errorf("ask category: %w", err)
	}

	for {
		d := AwaitUntil(ctx, deadline, choices)
		switch d.Outcome {
		case TimedOut:
			return nil, nil
		case Cancelled:
			return nil, waitErr(ctx)
		}
		if d.Value.Valid() {
			c := d.Value
			return &c, nil
		}
	}
}

// confirmPass defaults to confirming when the player does not answer in time.
func (e *Engine) confirmPass(ctx context.Context, s *session, player domain.UserID) (bool, error) {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	answers, err := e.prompter.ConfirmPass(wctx, PassConfirmRequested{
		Player:   player,
		Lives:    s.lives[player],
		Deadline: time.Now().Add(e.rules.PassConfirmTimeout),
	})
	if err != nil {
		return false, fmt.Errorf("confirm pass: %w", err)
	}

	d := Await(ctx, e.rules.PassConfirmTimeout, answers)
	switch d.Outcome {
	case TimedOut:
		return true, nil
	case Cancelled:
		return false, waitErr(ctx)
	}
	return d.Value, nil
}

// chooseNextPlayer lets player hand the turn to someone else. On timeout another
// player is picked at random and no life is taken.
func (e *Engine) chooseNextPlayer(ctx context.Context, s *session, player domain.UserID) (domain.UserID, bool, error) {
	candidates := s.others(player)

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deadline := time.Now().Add(e.rules.NextPlayerTimeout)
	choices, err := e.prompter.AskNextPlayer(wctx, NextPlayerRequested{
		Player:     player,
		Candidates: candidates,
		Deadline:   deadline,
	})
	if err != nil {
		return 0, false, fmt.Errorf("ask next player: %w", err)
	}

	for {
		d := AwaitUntil(ctx, deadline, choices)
		switch d.Outcome {
		case TimedOut:
			pick := candidates[e.rng.IntN(len(candidates))].Player
			return pick, true, nil
		case Cancelled:
			return 0, false, waitErr(ctx)
		}
		if slices.ContainsFunc(candidates, func(c Standing) bool { return c.Player == d.Value }) {
			return d.Value, false, nil
		}
	}
}

// penalize takes a life from player, eliminates them at zero and hands the turn to
// a random remaining player.
func (e *Engine) penalize(ctx context.Context, s *session, player domain.UserID, prompt *domain.Prompt, reason FailReason) error {
	left := s.loseLife(player)

	if reason == FailPassed {
		if err := e.recorder.RecordPass(ctx, player); err != nil {
			return fmt.Errorf("record pass: %w", err)
		}
	}
	if err := e.presenter.Present(ctx, TurnFailed{Player: player, Prompt: prompt, Reason: reason, LivesLeft: left}); err != nil {
		return fmt.Errorf("present failed turn: %w", err)
	}
	e.log.Debug("turn failed", "player", player, "reason", reason, "lives", left)

	if left == 0 {
		s.eliminate(player)
		if err := e.recorder.RecordElimination(ctx, player); err != nil {
			return fmt.Errorf("record elimination: %w", err)
		}
		if err := e.presenter.Present(ctx, PlayerEliminated{Player: player, Remaining: len(s.order)}); err != nil {
			return fmt.Errorf("present elimination: %w", err)
		}
		if !s.active() {
			return nil
		}
	}

	s.current = s.order[e.rng.IntN(len(s.order))]
	return nil
}

func (e *Engine) finish(ctx context.Context, s *session) (*Result, error) {
	s.endedAt = time.Now()
	winner := s.order[0]

	res := &Result{
		Winner:      winner,
		WinnerLives: s.lives[winner],
		Podium:      NewPodium(winner, s.eliminated),
		Players:     slices.Clone(s.players),
		Eliminated:  slices.Clone(s.eliminated),
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
		Turns:       s.turns,
	}

	if err := e.recorder.RecordWin(ctx, winner); err != nil {
		return nil, fmt.Errorf("record win: %w", err)
	}
	if err := e.presenter.Present(ctx, GameOver{Result: res}); err != nil {
		return nil, fmt.Errorf("present game over: %w", err)
	}
	if err := e.recorder.RecordGameEnded(ctx, res.Players, res.EndedAt, res.Duration()); err != nil {
		return nil, fmt.Errorf("record game ended: %w", err)
	}

	e.log.Info("game over", "winner", winner, "turns", s.turns, "duration", res.Duration().Round(time.Second))
	return res, nil
}

func waitErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrInputClosed
}
