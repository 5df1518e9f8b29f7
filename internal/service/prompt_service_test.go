package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna/internal/domain"
	"luna/internal/repository"
)

type memoryPromptStore struct {
	prompts []*domain.Prompt
	err     error
}

func (m *memoryPromptStore) Create(_ context.Context, p *domain.Prompt) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.prompts {
		if existing.Content == p.Content {
			return repository.ErrDuplicateContent
		}
	}
	p.ID = int64(len(m.prompts) + 1)
	p.SubmittedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.prompts = append(m.prompts, p)
	return nil
}

func (m *memoryPromptStore) GetByContent(_ context.Context, content string) (*domain.Prompt, error) {
	for _, p := range m.prompts {
		if p.Content == content {
			return p, nil
		}
	}
	return nil, repository.ErrPromptNotFound
}

func (m *memoryPromptStore) CountByCategory(_ context.Context) (map[domain.Category]int64, error) {
	out := make(map[domain.Category]int64, 2)
	for _, p := range m.prompts {
		out[p.Category]++
	}
	return out, nil
}

const longTruth = "What is the most embarrassing thing in your phone?"

func TestSubmit(t *testing.T) {
	store := &memoryPromptStore{}
	svc := NewPromptService(store)
	ctx := context.Background()

	p, err := svc.Submit(ctx, 1, domain.CategoryTruth, "  "+longTruth+"  ", nil)
	require.NoError(t, err)
	assert.Equal(t, longTruth, p.Content)
	assert.Equal(t, domain.UserID(1), p.SubmitterID)

	_, err = svc.Submit(ctx, 2, domain.CategoryTruth, "too short", nil)
	assert.ErrorIs(t, err, ErrPromptTooShort)

	_, err = svc.Submit(ctx, 2, domain.Category(9), longTruth, nil)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestSubmitDuplicateNamesOriginal(t *testing.T) {
	store := &memoryPromptStore{}
	svc := NewPromptService(store)
	ctx := context.Background()

	_, err := svc.Submit(ctx, 1, domain.CategoryTruth, longTruth, nil)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, 2, domain.CategoryDare, longTruth, nil)
	require.ErrorIs(t, err, ErrDuplicatePrompt)

	var dup *DuplicatePromptError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, domain.UserID(1), dup.Original.SubmitterID)
	assert.Contains(t, dup.Error(), "2024-05-01")
}

func TestParseBulk(t *testing.T) {
	prompts, err := ParseBulk("truth - " + longTruth + "\n\nDare - Do your best impression of someone here\n")
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Equal(t, domain.CategoryTruth, prompts[0].Prompt.Category)
	assert.Equal(t, longTruth, prompts[0].Prompt.Content)
	assert.Equal(t, 1, prompts[0].Line)
	assert.Equal(t, domain.CategoryDare, prompts[1].Prompt.Category)
	assert.Equal(t, 3, prompts[1].Line)

	_, err = ParseBulk("truth - fine question here please\nwhat is this line")
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 2, fe.Line)

	_, err = ParseBulk("\n \n")
	assert.ErrorIs(t, err, ErrEmptySubmission)
}

func TestSubmitBulkStopsAtDuplicate(t *testing.T) {
	store := &memoryPromptStore{}
	svc := NewPromptService(store)
	ctx := context.Background()

	_, err := svc.Submit(ctx, 1, domain.CategoryTruth, longTruth, nil)
	require.NoError(t, err)

	res, err := svc.SubmitBulk(ctx, 2, "dare - Text the third person in your contacts\ntruth - "+longTruth+"\ndare - never stored because of the line above")
	require.ErrorIs(t, err, ErrDuplicatePrompt)

	var dup *DuplicatePromptError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, 2, dup.Line)
	require.Len(t, res.Stored, 1)
	assert.Len(t, store.prompts, 2)
}

func TestSubmitBulkMalformedStoresNothing(t *testing.T) {
	store := &memoryPromptStore{}
	svc := NewPromptService(store)

	_, err := svc.SubmitBulk(context.Background(), 2, "dare - Text the third person in your contacts\nnope")
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Empty(t, store.prompts)
}

func TestPromptPool(t *testing.T) {
	store := &memoryPromptStore{}
	svc := NewPromptService(store)
	ctx := context.Background()

	pool, err := svc.Pool(ctx)
	require.NoError(t, err)
	assert.Zero(t, pool.Total)

	_, err = svc.SubmitBulk(ctx, 1, "truth - "+longTruth+"\ndare - Text the third person in your contacts\ndare - Sing the chorus of the last song you heard")
	require.NoError(t, err)

	pool, err = svc.Pool(ctx)
	require.NoError(t, err)
	assert.Equal(t, PromptPool{Truths: 1, Dares: 2, Total: 3}, pool)
}

func TestSubmitBulkShortLineStoresNothing(t *testing.T) {
	store := &memoryPromptStore{}
	svc := NewPromptService(store)

	res, err := svc.SubmitBulk(context.Background(), 2,
		"dare - Text the third person in your contacts\ntruth - "+longTruth+"\ndare - hop")
	require.ErrorIs(t, err, ErrPromptTooShort)
	assert.Nil(t, res)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 3, fe.Line)
	assert.Empty(t, store.prompts)
}

func TestSubmitBulkDuplicateReportsSourceLine(t *testing.T) {
	store := &memoryPromptStore{}
	svc := NewPromptService(store)
	ctx := context.Background()

	_, err := svc.Submit(ctx, 1, domain.CategoryTruth, longTruth, nil)
	require.NoError(t, err)

	res, err := svc.SubmitBulk(ctx, 2, "\ndare - Text the third person in your contacts\n\ntruth - "+longTruth)
	var dup *DuplicatePromptError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, 4, dup.Line)
	assert.Len(t, res.Stored, 1)
}
