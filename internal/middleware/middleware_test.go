package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/qa-forum/internal/api/httpx"
	"github.com/baharkarakas/qa-forum/internal/auth"
	"github.com/baharkarakas/qa-forum/internal/ratelimit"
)

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, _ := ActorFrom(r.Context())
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"user_id": a.UserID, "username": a.Username})
	})
}

func serve(h http.Handler, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequire(t *testing.T) {
	tm := auth.NewTokenManager("secret", "qa-forum", time.Hour, time.Minute)
	m := NewAuthMiddleware(tm, "prod")
	h := m.Require(echoActor())

	tok, _, err := tm.IssueAccess("11111111-1111-1111-1111-111111111111", "alice")
	require.NoError(t, err)

	rec := serve(h, "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", body["user_id"])
	assert.Equal(t, "alice", body["username"])

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Basic abc").Code)

	// dev shortcut is ignored outside dev
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer dev-11111111-1111-1111-1111-111111111111").Code)

	reset, _, err := tm.IssueReset("11111111-1111-1111-1111-111111111111", "hash")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer "+reset).Code)
}

func TestAuthDevToken(t *testing.T) {
	m := NewAuthMiddleware(auth.NewTokenManager("secret", "qa-forum", time.Hour, time.Minute), "dev")
	h := m.Require(echoActor())

	rec := serve(h, "Bearer dev-22222222-2222-2222-2222-222222222222")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "22222222-2222-2222-2222-222222222222")

	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer dev-not-a-uuid").Code)
}

func TestAuthOptional(t *testing.T) {
	m := NewAuthMiddleware(auth.NewTokenManager("secret", "qa-forum", time.Hour, time.Minute), "prod")
	h := m.Optional(echoActor())

	rec := serve(h, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":""`)

	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer garbage").Code)
}

func TestRateLimitPerIP(t *testing.T) {
	h := RateLimit(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"), "buckets are per client")
}

func TestIPBucketsRefill(t *testing.T) {
	now := time.Unix(1000, 0)
	b := newIPBuckets(1)
	b.now = func() time.Time { return now }

	assert.True(t, b.allow("a"))
	assert.False(t, b.allow("a"))
	now = now.Add(time.Second)
	assert.True(t, b.allow("a"))

	now = now.Add(bucketIdleTTL + time.Minute)
	assert.True(t, b.allow("b"))
	assert.NotContains(t, b.buckets, "a", "idle buckets are swept")
}

func TestThrottle(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := Throttle(ratelimit.New(rdb, "login", 2, 15*time.Minute), "login")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	assert.Equal(t, http.StatusOK, serve(h, "").Code)
	assert.Equal(t, http.StatusOK, serve(h, "").Code)
	rec := serve(h, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// fails open once redis is gone
	mr.Close()
	assert.Equal(t, http.StatusOK, serve(h, "").Code)
}

func TestThrottleNilLimiter(t *testing.T) {
	h := Throttle(nil, "login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	assert.Equal(t, http.StatusOK, serve(h, "").Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpx.RequestID(r.Context())
	}))

	rec := serve(h, "")
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := serve(h, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Contains(t, rec.Body.String(), "internal_error")
}
