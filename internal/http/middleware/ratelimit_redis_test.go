package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna/internal/cache"
)

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisRateLimitIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	ctx := context.Background()
	rdb, err := cache.Connect(ctx, addr, os.Getenv("REDIS_PASSWORD"), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	// small window for test
	w := 2 * time.Second
	limit := 2
	require.NoError(t, rdb.Del(ctx, "rl:2:192.0.2.1").Err())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", NewRateLimiter(rdb).ByIP(limit, w), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < limit; i++ {
		assert.Equal(t, http.StatusOK, do())
	}
	// next request should be blocked
	assert.Equal(t, http.StatusTooManyRequests, do())

	time.Sleep(w + 200*time.Millisecond)
	assert.Equal(t, http.StatusOK, do())
}
