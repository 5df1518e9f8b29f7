package repository

import (
	"context"
	"errors"
	"fmt"

	"luna/internal/domain"
	"luna/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateContent is returned by Create when the same text is already stored.
var ErrDuplicateContent = errors.New("prompt content already exists")

// ErrPromptNotFound is returned by lookups that match nothing.
var ErrPromptNotFound = errors.New("prompt not found")

const uniqueViolation = "23505"

type PromptRepository struct {
	db *pgxpool.Pool
}

var _ game.PromptSource = (*PromptRepository)(nil)

func NewPromptRepository(db *pgxpool.Pool) *PromptRepository {
	return &PromptRepository{db: db}
}

const promptColumns = `id, submitter_id, submitted_at, category, content, addressed_to`

func scanPrompt(row pgx.Row) (*domain.Prompt, error) {
	var p domain.Prompt
	if err := row.Scan(&p.ID, &p.SubmitterID, &p.SubmittedAt, &p.Category, &p.Content, &p.AddressedTo); err != nil {
		return nil, err
	}
	return &p, nil
}

// RandomPrompt picks uniformly among prompts of category addressed to anyone or to user.
func (r *PromptRepository) RandomPrompt(ctx context.Context, category domain.Category, user domain.UserID) (*domain.Prompt, error) {
	p, err := scanPrompt(r.db.QueryRow(ctx,
		`SELECT `+promptColumns+`
		 FROM prompts
		 WHERE category = $1 AND (addressed_to IS NULL OR addressed_to = $2)
		 ORDER BY random()
		 LIMIT 1`,
		category, user,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrNoEligiblePrompt
	}
	if err != nil {
		return nil, fmt.Errorf("random prompt: %w", err)
	}
	return p, nil
}

// Create сохраняет вопрос и заполняет ID и SubmittedAt
func (r *PromptRepository) Create(ctx context.Context, p *domain.Prompt) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO prompts (submitter_id, category, content, addressed_to)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, submitted_at`,
		p.SubmitterID, p.Category, p.Content, p.AddressedTo,
	).Scan(&p.ID, &p.SubmittedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateContent
	}
	return err
}

func (r *PromptRepository) GetByContent(ctx context.Context, content string) (*domain.Prompt, error) {
	p, err := scanPrompt(r.db.QueryRow(ctx,
		`SELECT `+promptColumns+` FROM prompts WHERE content = $1`,
		content,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPromptNotFound
	}
	return p, err
}

// CountByCategory returns how many prompts exist per category.
func (r *PromptRepository) CountByCategory(ctx context.Context) (map[domain.Category]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT category, count(*) FROM prompts GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Category]int64, 2)
	for rows.Next() {
		var (
			c domain.Category
			n int64
		)
		if err := rows.Scan(&c, &n); err != nil {
			return nil, err
		}
		out[c] = n
	}
	return out, rows.Err()
}
