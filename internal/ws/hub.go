package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"luna/internal/domain"
	"luna/internal/game"
	"luna/internal/logger"
	"luna/internal/service"
)

const requestTimeout = 5 * time.Second

var errUnknownMessage = errors.New("unknown message type")

// Hub routes socket messages into the party service and tracks which sockets
// belong to which user.
type Hub struct {
	parties *service.PartyService
	log     *slog.Logger

	mu      sync.RWMutex
	clients map[domain.UserID]map[*Client]struct{}
	rooms   map[string]*Room
}

func NewHub(parties *service.PartyService) *Hub {
	return &Hub{
		parties: parties,
		log:     logger.Component("ws"),
		clients: make(map[domain.UserID]map[*Client]struct{}),
		rooms:   make(map[string]*Room),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
}

// unregister drops the socket. A user whose last socket closes leaves any lobby
// that is still waiting for players.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	set := h.clients[c.UserID]
	delete(set, c)
	last := len(set) == 0
	if last {
		delete(h.clients, c.UserID)
	}
	var rooms []*Room
	if last {
		for _, r := range h.rooms {
			if r.has(c.UserID) {
				rooms = append(rooms, r)
			}
		}
	}
	h.mu.Unlock()

	for _, r := range rooms {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		err := h.parties.Leave(ctx, r.ID(), c.UserID)
		cancel()
		if err == nil {
			h.log.Info("left lobby on disconnect", "user_id", c.UserID, "lobby_id", r.ID())
		}
	}
}

func (h *Hub) sendTo(u domain.UserID, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[u] {
		c.send(msg)
	}
}

func (h *Hub) addRoom(r *Room) {
	h.mu.Lock()
	h.rooms[r.ID()] = r
	h.mu.Unlock()
}

func (h *Hub) room(id string) (*Room, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	if !ok {
		return nil, service.ErrLobbyNotFound
	}
	return r, nil
}

func (h *Hub) dropRoom(r *Room) {
	h.mu.Lock()
	if cur, ok := h.rooms[r.ID()]; ok && cur == r {
		delete(h.rooms, r.ID())
	}
	h.mu.Unlock()
}

// Rooms returns the number of parties with connected sockets.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) handle(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.reply(c, MsgError, ErrorPayload{Message: "malformed message"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := h.dispatch(ctx, c, env); err != nil {
		h.log.Debug("request failed", "user_id", c.UserID, "type", env.Type, "error", err)
		h.reply(c, MsgError, ErrorPayload{Request: env.Type, Message: err.Error()})
	}
}

func (h *Hub) reply(c *Client, msgType string, payload any) {
	msg, err := encode(msgType, payload)
	if err != nil {
		h.log.Error("encode reply", "error", err)
		return
	}
	c.send(msg)
}

func decode[T any](env Envelope) (T, error) {
	var v T
	if len(env.Payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(env.Payload, &v); err != nil {
		return v, fmt.Errorf("invalid %s payload: %w", env.Type, err)
	}
	return v, nil
}

func (h *Hub) dispatch(ctx context.Context, c *Client, env Envelope) error {
	switch env.Type {
	case MsgPing:
		h.reply(c, MsgPong, nil)
		return nil

	case MsgListLobbies:
		h.reply(c, MsgLobbies, LobbiesPayload{Lobbies: h.parties.Lobbies()})
		return nil

	case MsgCreateLobby:
		p, err := decode[CreateLobbyPayload](env)
		if err != nil {
			return err
		}
		r := newRoom(h, c.UserID)
		if _, err := h.parties.Open(ctx, service.OpenRequest{Leader: c.UserID, Name: p.Name, Presenter: r}); err != nil {
			return err
		}
		h.addRoom(r)
		return nil

	case MsgJoinLobby:
		p, err := decode[LobbyPayload](env)
		if err != nil {
			return err
		}
		r, err := h.room(p.LobbyID)
		if err != nil {
			return err
		}
		already := r.has(c.UserID)
		r.add(c.UserID)
		if err := h.parties.Join(ctx, p.LobbyID, c.UserID); err != nil {
			if !already {
				r.remove(c.UserID)
			}
			return err
		}
		return nil

	case MsgLeaveLobby:
		p, err := decode[LobbyPayload](env)
		if err != nil {
			return err
		}
		if err := h.parties.Leave(ctx, p.LobbyID, c.UserID); err != nil {
			return err
		}
		if info, err := h.parties.Info(p.LobbyID); err == nil && info.Lobby.Leader != c.UserID {
			if r, err := h.room(p.LobbyID); err == nil {
				r.remove(c.UserID)
			}
		}
		return nil

	case MsgStartEarly:
		p, err := decode[LobbyPayload](env)
		if err != nil {
			return err
		}
		return h.parties.StartEarly(ctx, p.LobbyID, c.UserID)

	case MsgCategory:
		p, err := decode[CategoryPayload](env)
		if err != nil {
			return err
		}
		category, err := domain.ParseCategory(p.Category)
		if err != nil {
			return err
		}
		return h.deliver(p.LobbyID, func(r *game.Router) error { return r.DeliverCategory(c.UserID, category) })

	case MsgRespond:
		p, err := decode[RespondPayload](env)
		if err != nil {
			return err
		}
		return h.deliver(p.LobbyID, func(r *game.Router) error { return r.DeliverReply(c.UserID, game.Reply{Text: p.Text}) })

	case MsgPass:
		p, err := decode[LobbyPayload](env)
		if err != nil {
			return err
		}
		return h.deliver(p.LobbyID, func(r *game.Router) error { return r.DeliverReply(c.UserID, game.Reply{Pass: true}) })

	case MsgConfirmPass:
		p, err := decode[ConfirmPassPayload](env)
		if err != nil {
			return err
		}
		return h.deliver(p.LobbyID, func(r *game.Router) error { return r.DeliverPassConfirmation(c.UserID, p.Confirm) })

	case MsgNextPlayer:
		p, err := decode[NextPlayerPayload](env)
		if err != nil {
			return err
		}
		return h.deliver(p.LobbyID, func(r *game.Router) error { return r.DeliverNextPlayer(c.UserID, p.Player) })
	}

	return fmt.Errorf("%w: %q", errUnknownMessage, env.Type)
}

func (h *Hub) deliver(lobbyID string, fn func(*game.Router) error) error {
	r, err := h.parties.Router(lobbyID)
	if err != nil {
		return err
	}
	return fn(r)
}
