package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna/internal/domain"
	"luna/internal/game"
	"luna/internal/repository"
	"luna/internal/service"
)

type memoryPrompts struct {
	mu      sync.Mutex
	prompts []*domain.Prompt
}

func (m *memoryPrompts) Create(_ context.Context, p *domain.Prompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.prompts {
		if existing.Content == p.Content {
			return repository.ErrDuplicateContent
		}
	}
	p.ID = int64(len(m.prompts) + 1)
	p.SubmittedAt = time.Now()
	m.prompts = append(m.prompts, p)
	return nil
}

func (m *memoryPrompts) GetByContent(_ context.Context, content string) (*domain.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.prompts {
		if p.Content == content {
			return p, nil
		}
	}
	return nil, repository.ErrPromptNotFound
}

func (m *memoryPrompts) CountByCategory(_ context.Context) (map[domain.Category]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.Category]int64, 2)
	for _, p := range m.prompts {
		out[p.Category]++
	}
	return out, nil
}

type memoryStatistics map[domain.UserID]*domain.Statistics

func (m memoryStatistics) Get(_ context.Context, user domain.UserID) (*domain.Statistics, error) {
	st, ok := m[user]
	if !ok {
		return nil, repository.ErrStatisticsNotFound
	}
	return st, nil
}

func (m memoryStatistics) TopWinners(_ context.Context, limit int) ([]*domain.Statistics, error) {
	var out []*domain.Statistics
	for _, st := range m {
		out = append(out, st)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("routes-test-secret")

	parties := service.NewPartyService(service.PartyConfig{Prompts: game.NewMemoryPrompts(nil)})
	t.Cleanup(func() { _ = parties.Shutdown(context.Background()) })

	r := gin.New()
	RegisterRoutes(r, Deps{
		Version:    "test",
		Parties:    parties,
		Prompts:    service.NewPromptService(&memoryPrompts{}),
		Statistics: service.NewStatisticsService(memoryStatistics{
			7: {UserID: 7, GamesPlayed: 4, GamesWon: 2, PlayTime: 3725},
		}),
		APIRateLimit:     100,
		APIRateWindow:    time.Minute,
		SubmitRateLimit:  3,
		SubmitRateWindow: time.Minute,
	})
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, user domain.UserID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != 0 {
		token, err := service.GenerateJWT(user, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	r := newTestServer(t)
	assert.Equal(t, nethttp.StatusOK, do(t, r, nethttp.MethodGet, "/healthz", 0, "").Code)

	rec := do(t, r, nethttp.MethodGet, "/readyz", 0, "")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestStatisticsRoutes(t *testing.T) {
	r := newTestServer(t)

	assert.Equal(t, nethttp.StatusBadRequest, do(t, r, nethttp.MethodGet, "/api/statistics/abc", 0, "").Code)
	assert.Equal(t, nethttp.StatusNotFound, do(t, r, nethttp.MethodGet, "/api/statistics/8", 0, "").Code)
	assert.Equal(t, nethttp.StatusUnauthorized, do(t, r, nethttp.MethodGet, "/api/me/statistics", 0, "").Code)

	rec := do(t, r, nethttp.MethodGet, "/api/me/statistics", 7, "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "bronze", body["wins_award"])
	assert.Equal(t, "1h 2m 5s", body["play_time"])
	assert.InDelta(t, 0.5, body["win_rate"], 0.001)

	rec = do(t, r, nethttp.MethodGet, "/api/leaderboard?limit=5", 0, "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["leaderboard"], 1)

	assert.Equal(t, nethttp.StatusBadRequest, do(t, r, nethttp.MethodGet, "/api/leaderboard?limit=x", 0, "").Code)
}

func TestSubmitRoutes(t *testing.T) {
	r := newTestServer(t)
	const truth = `{"category":"truth","content":"What is the weirdest dream you remember?"}`

	assert.Equal(t, nethttp.StatusUnauthorized, do(t, r, nethttp.MethodPost, "/api/prompts", 0, truth).Code)

	rec := do(t, r, nethttp.MethodPost, "/api/prompts", 1, truth)
	require.Equal(t, nethttp.StatusCreated, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["id"])

	rec = do(t, r, nethttp.MethodPost, "/api/prompts", 2, truth)
	require.Equal(t, nethttp.StatusConflict, rec.Code)
	original := decode(t, rec)["original"].(map[string]any)
	assert.EqualValues(t, 1, original["submitter_id"])

	rec = do(t, r, nethttp.MethodPost, "/api/prompts", 2, `{"category":"dare","content":"too short"}`)
	assert.Equal(t, nethttp.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, nethttp.MethodPost, "/api/prompts/bulk", 2, `{"text":"dare - Say the alphabet backwards, quickly.\nnot a prompt"}`)
	require.Equal(t, nethttp.StatusUnprocessableEntity, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["line"])

	// user 2 has used the submit allowance of 3
	rec = do(t, r, nethttp.MethodPost, "/api/prompts/bulk", 2, `{"text":"dare - Say the alphabet backwards, quickly."}`)
	assert.Equal(t, nethttp.StatusTooManyRequests, rec.Code)

	// a too short line rejects the whole batch and names its line
	rec = do(t, r, nethttp.MethodPost, "/api/prompts/bulk", 3, `{"text":"dare - Say the alphabet backwards, quickly.\n\ntruth - why?"}`)
	require.Equal(t, nethttp.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 3, body["line"])
	assert.Nil(t, body["stored"])

	rec = do(t, r, nethttp.MethodGet, "/api/prompts/stats", 0, "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"truths":1,"dares":0,"total":1}`, rec.Body.String())
}

func TestLobbyRoutes(t *testing.T) {
	r := newTestServer(t)

	rec := do(t, r, nethttp.MethodGet, "/api/lobbies", 0, "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lobbies":[]}`, rec.Body.String())

	assert.Equal(t, nethttp.StatusNotFound, do(t, r, nethttp.MethodGet, "/api/lobbies/nope", 0, "").Code)
}
