package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCounter struct {
	hits map[string]int64
	err  error
}

func (m *memCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	if m.hits == nil {
		m.hits = map[string]int64{}
	}
	m.hits[key]++
	return m.hits[key], window, nil
}

func newServer(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, mw)
	return e
}

func post(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestFixedWindow(t *testing.T) {
	counter := &memCounter{}
	e := newServer(FixedWindow(Config{Prefix: "charity", Limit: 2, Window: time.Minute}, counter))

	assert.Equal(t, http.StatusOK, post(e, "10.0.0.1").Code)
	rec := post(e, "10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = post(e, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, post(e, "10.0.0.2").Code, "limits are per client")
	assert.Contains(t, counter.hits, "charity:/login:10.0.0.1")
}

func TestFixedWindow_Disabled(t *testing.T) {
	e := newServer(FixedWindow(Config{Limit: 1, Window: time.Minute}, nil))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(e, "10.0.0.1").Code)
	}
}

func TestFixedWindow_FailsOpen(t *testing.T) {
	e := newServer(FixedWindow(Config{Limit: 1, Window: time.Minute}, &memCounter{err: errors.New("redis down")}))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(e, "10.0.0.1").Code)
	}
}

func TestRedisCounter_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	_, _, err := RedisCounter{Client: client}.Hit(context.Background(), "k", time.Minute)
	require.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "rl:/login:1.2.3.4", Key("", "/login", "1.2.3.4"))
}
