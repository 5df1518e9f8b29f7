package game

import (
	"context"
	"math/rand/v2"
	"sync"

	"luna/internal/domain"
)

// PromptSource picks a prompt of the given category that is addressed to anyone or
// to user. It returns ErrNoEligiblePrompt when nothing matches.
type PromptSource interface {
	RandomPrompt(ctx context.Context, category domain.Category, user domain.UserID) (*domain.Prompt, error)
}

// MemoryPrompts is a PromptSource over a fixed slice, used by tests and local runs
// without a database.
type MemoryPrompts struct {
	mu      sync.Mutex
	rng     *rand.Rand
	prompts []*domain.Prompt
}

func NewMemoryPrompts(rng *rand.Rand, prompts ...*domain.Prompt) *MemoryPrompts {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &MemoryPrompts{rng: rng, prompts: prompts}
}

func (m *MemoryPrompts) Add(p *domain.Prompt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, p)
}

func (m *MemoryPrompts) RandomPrompt(_ context.Context, category domain.Category, user domain.UserID) (*domain.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	eligible := make([]*domain.Prompt, 0, len(m.prompts))
	for _, p := range m.prompts {
		if p.EligibleFor(category, user) {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligiblePrompt
	}
	return eligible[m.rng.IntN(len(eligible))], nil
}
