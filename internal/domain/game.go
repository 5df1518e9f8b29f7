package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category - тип вопроса. Values match the stored column.
type Category int16

const (
	CategoryTruth Category = 1
	CategoryDare  Category = 2
)

func (c Category) String() string {
	switch c {
	case CategoryTruth:
		return "Truth"
	case CategoryDare:
		return "Dare"
	default:
		return fmt.Sprintf("Category(%d)", int16(c))
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryTruth || c == CategoryDare
}

// Other returns the opposite category.
func (c Category) Other() Category {
	if c == CategoryTruth {
		return CategoryDare
	}
	return CategoryTruth
}

// ParseCategory accepts "truth"/"dare" in any case.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "truth":
		return CategoryTruth, nil
	case "dare":
		return CategoryDare, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// Prompt - вопрос, предложенный игроком
type Prompt struct {
	ID          int64     `db:"id" json:"id"`
	SubmitterID UserID    `db:"submitter_id" json:"submitter_id"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	Category    Category  `db:"category" json:"category"`
	Content     string    `db:"content" json:"content"`
	// AddressedTo is nil when anyone may receive the prompt.
	AddressedTo *UserID `db:"addressed_to" json:"addressed_to,omitempty"`
}

// EligibleFor reports whether the prompt may be asked of user in the given category.
func (p *Prompt) EligibleFor(category Category, user UserID) bool {
	if p.Category != category {
		return false
	}
	return p.AddressedTo == nil || *p.AddressedTo == user
}

// LobbyExitCode - причина завершения ожидания в лобби
type LobbyExitCode int

const (
	LobbyNormal LobbyExitCode = iota
	LobbyLeaderLeft
	LobbyLeaderSkipped
)

func (c LobbyExitCode) String() string {
	switch c {
	case LobbyNormal:
		return "normal"
	case LobbyLeaderLeft:
		return "leader_left"
	case LobbyLeaderSkipped:
		return "leader_skipped"
	default:
		return "unknown"
	}
}
