package ws

import (
	"context"
	"fmt"
	"sync"

	"luna/internal/domain"
	"luna/internal/game"
)

// Room presents one party's events to the sockets of everyone in it.
type Room struct {
	hub *Hub

	mu      sync.RWMutex
	id      string
	members map[domain.UserID]struct{}
}

var _ game.Presenter = (*Room)(nil)

func newRoom(hub *Hub, leader domain.UserID) *Room {
	return &Room{hub: hub, members: map[domain.UserID]struct{}{leader: {}}}
}

func (r *Room) ID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.id
}

func (r *Room) add(u domain.UserID) {
	r.mu.Lock()
	r.members[u] = struct{}{}
	r.mu.Unlock()
}

func (r *Room) remove(u domain.UserID) {
	r.mu.Lock()
	delete(r.members, u)
	r.mu.Unlock()
}

func (r *Room) has(u domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[u]
	return ok
}

func (r *Room) memberList() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.UserID, 0, len(r.members))
	for u := range r.members {
		out = append(out, u)
	}
	return out
}

// Present broadcasts ev. Delivery is best effort per socket: a player with no open
// socket simply runs into the request deadline.
func (r *Room) Present(_ context.Context, ev game.Event) error {
	msg, err := encode(ev.EventName(), ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.EventName(), err)
	}

	switch e := ev.(type) {
	case game.LobbyUpdated:
		r.mu.Lock()
		if r.id == "" {
			r.id = e.Lobby.ID
		}
		r.mu.Unlock()
	case game.LobbyResolved:
		defer func() {
			if !e.Started {
				r.hub.dropRoom(r)
			}
		}()
	case game.GameOver, game.SessionAborted:
		defer r.hub.dropRoom(r)
	}

	for _, u := range r.memberList() {
		r.hub.sendTo(u, msg)
	}
	return nil
}
