package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"luna/internal/domain"
	"luna/internal/repository"
)

// MinPromptLength is the shortest prompt accepted, in characters.
const MinPromptLength = 20

var (
	ErrPromptTooShort  = fmt.Errorf("prompt must be at least %d characters", MinPromptLength)
	ErrInvalidCategory = errors.New("category must be truth or dare")
	ErrDuplicatePrompt = errors.New("prompt already submitted")
	ErrEmptySubmission = errors.New("nothing to submit")
)

// DuplicatePromptError names the earlier submission of the same text.
type DuplicatePromptError struct {
	Original *domain.Prompt
	Line     int // 1-based line in a bulk submission, 0 otherwise
}

func (e *DuplicatePromptError) Error() string {
	msg := fmt.Sprintf("prompt already submitted by %s at %s",
		e.Original.SubmitterID, e.Original.SubmittedAt.Format(time.RFC3339))
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *DuplicatePromptError) Unwrap() error { return ErrDuplicatePrompt }

// FormatError reports a bulk submission line that is not "truth - ..." or "dare - ...",
// or whose prompt fails validation (Err).
type FormatError struct {
	Line int
	Text string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d is not in the form \"truth - question\" or \"dare - question\": %q", e.Line, e.Text)
}

func (e *FormatError) Unwrap() error { return e.Err }

// PromptStore is the storage PromptService needs.
type PromptStore interface {
	Create(ctx context.Context, p *domain.Prompt) error
	GetByContent(ctx context.Context, content string) (*domain.Prompt, error)
	CountByCategory(ctx context.Context) (map[domain.Category]int64, error)
}

// PromptService handles prompt submissions
type PromptService struct {
	store PromptStore
}

func NewPromptService(store PromptStore) *PromptService {
	return &PromptService{store: store}
}

// Submit validates and stores a single prompt.
func (s *PromptService) Submit(ctx context.Context, submitter domain.UserID, category domain.Category, content string, addressedTo *domain.UserID) (*domain.Prompt, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < MinPromptLength {
		return nil, ErrPromptTooShort
	}

	p := &domain.Prompt{
		SubmitterID: submitter,
		Category:    category,
		Content:     content,
		AddressedTo: addressedTo,
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateContent) {
			return nil, s.duplicate(ctx, content, 0)
		}
		return nil, fmt.Errorf("store prompt: %w", err)
	}
	return p, nil
}

func (s *PromptService) duplicate(ctx context.Context, content string, line int) error {
	original, err := s.store.GetByContent(ctx, content)
	if err != nil {
		// raced with a delete; still a duplicate from the caller's point of view
		return ErrDuplicatePrompt
	}
	return &DuplicatePromptError{Original: original, Line: line}
}

var bulkLine = regexp.MustCompile(`(?i)^(truth|dare)\s+-\s+(.+)$`)

// BulkLine is a parsed bulk prompt with its 1-based source line.
type BulkLine struct {
	Line   int
	Prompt *domain.Prompt
}

// ParseBulk turns one "truth - ..." / "dare - ..." line per prompt into prompts and
// validates each of them. Blank lines are skipped.
func ParseBulk(text string) ([]BulkLine, error) {
	var out []BulkLine
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		m := bulkLine.FindStringSubmatch(line)
		if m == nil {
			return nil, &FormatError{Line: i + 1, Text: line}
		}
		category, err := domain.ParseCategory(m[1])
		if err != nil {
			return nil, &FormatError{Line: i + 1, Text: line}
		}
		content := strings.TrimSpace(m[2])
		if utf8.RuneCountInString(content) < MinPromptLength {
			return nil, &FormatError{Line: i + 1, Text: line, Err: ErrPromptTooShort}
		}
		out = append(out, BulkLine{Line: i + 1, Prompt: &domain.Prompt{Category: category, Content: content}})
	}
	if len(out) == 0 {
		return nil, ErrEmptySubmission
	}
	return out, nil
}

// BulkResult lists what a bulk submission stored before it stopped.
type BulkResult struct {
	Stored []*domain.Prompt `json:"stored"`
}

// SubmitBulk parses text and stores prompts in order. A malformed or too short line
// rejects the whole submission; the first duplicate stops it, keeping what was stored before.
func (s *PromptService) SubmitBulk(ctx context.Context, submitter domain.UserID, text string) (*BulkResult, error) {
	parsed, err := ParseBulk(text)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{}
	for _, l := range parsed {
		p := l.Prompt
		p.SubmitterID = submitter
		if err := s.store.Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicateContent) {
				return res, s.duplicate(ctx, p.Content, l.Line)
			}
			return res, fmt.Errorf("store prompt on line %d: %w", l.Line, err)
		}
		res.Stored = append(res.Stored, p)
	}
	return res, nil
}

// PromptPool is how many prompts a game can draw from.
type PromptPool struct {
	Truths int64 `json:"truths"`
	Dares  int64 `json:"dares"`
	Total  int64 `json:"total"`
}

// Pool counts the stored prompts per category.
func (s *PromptService) Pool(ctx context.Context) (PromptPool, error) {
	counts, err := s.store.CountByCategory(ctx)
	if err != nil {
		return PromptPool{}, fmt.Errorf("count prompts: %w", err)
	}
	pool := PromptPool{
		Truths: counts[domain.CategoryTruth],
		Dares:  counts[domain.CategoryDare],
	}
	pool.Total = pool.Truths + pool.Dares
	return pool, nil
}
