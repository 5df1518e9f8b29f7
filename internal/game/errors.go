package game

import "errors"

var (
	ErrAlreadyInLobby   = errors.New("user is already in a lobby")
	ErrAlreadyJoined    = errors.New("user already joined this lobby")
	ErrNotInLobby       = errors.New("user is not in this lobby")
	ErrNotLeader        = errors.New("only the lobby leader can do that")
	ErrNotEnoughMembers = errors.New("at least two members are needed to start")
	ErrLobbyClosed      = errors.New("lobby is closed")

	// ErrNoEligiblePrompt ends the session: there is nothing left to ask.
	ErrNoEligiblePrompt = errors.New("no eligible prompt")
	ErrNotEnoughPlayers = errors.New("a game needs at least two players")
	ErrNoPendingRequest = errors.New("no pending request for this user")
	ErrInvalidChoice    = errors.New("invalid choice")
)
