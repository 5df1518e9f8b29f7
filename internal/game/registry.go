package game

import (
	"context"
	"sync"

	"luna/internal/domain"
)

// Registry tracks which users currently sit in a lobby. It is the only state shared
// between concurrent lobbies, so every implementation must make TryAdd an atomic
// check-and-add.
type Registry interface {
	// TryAdd claims user for lobbyID. It returns false when the user already
	// belongs to some lobby (including lobbyID itself).
	TryAdd(ctx context.Context, user domain.UserID, lobbyID string) (bool, error)
	// Remove releases the given users, but only claims held by lobbyID.
	Remove(ctx context.Context, lobbyID string, users ...domain.UserID) error
	Contains(ctx context.Context, user domain.UserID) (bool, error)
}

// MemoryRegistry is an in-process Registry.
type MemoryRegistry struct {
	mu      sync.Mutex
	members map[domain.UserID]string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{members: make(map[domain.UserID]string)}
}

func (r *MemoryRegistry) TryAdd(_ context.Context, user domain.UserID, lobbyID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[user]; ok {
		return false, nil
	}
	r.members[user] = lobbyID
	return true, nil
}

func (r *MemoryRegistry) Remove(_ context.Context, lobbyID string, users ...domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range users {
		if r.members[u] == lobbyID {
			delete(r.members, u)
		}
	}
	return nil
}

func (r *MemoryRegistry) Contains(_ context.Context, user domain.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.members[user]
	return ok, nil
}

// LobbyOf returns the lobby currently holding user, if any.
func (r *MemoryRegistry) LobbyOf(user domain.UserID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.members[user]
	return id, ok
}
