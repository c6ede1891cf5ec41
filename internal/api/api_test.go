package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GETParsesJSONAndSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "unit-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))
		w.Write([]byte(`{"name":"acme"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHeader("User-Agent", "unit-test"))
	resp, err := c.GET(context.Background(), "/x", map[string]string{"X-Extra": "yes"})
	require.NoError(t, err)

	var body struct{ Name string }
	require.NoError(t, resp.ParseJSON(&body))
	assert.Equal(t, "acme", body.Name)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient().GET(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.False(t, se.Retryable())
}

func TestClient_DefaultUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "https://www.bseindia.com", r.Header.Get("Origin"))
	}))
	defer srv.Close()

	_, err := NewClient(WithHeader("User-Agent", "")).GET(context.Background(), srv.URL, BSEHeaders())
	require.NoError(t, err)
}

func TestClient_DoWithRetryStopsOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	req := NewRequest(http.MethodGet, srv.URL).WithContext(context.Background())
	_, err := NewClient().DoWithRetry(req, &RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_CookieJarKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "abc", Path: "/"})
			return
		}
		c, err := r.Cookie("nsit")
		if err != nil || c.Value != "abc" {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithCookieJar())
	_, err := c.GET(context.Background(), "/")
	require.NoError(t, err)
	_, err = c.GET(context.Background(), "/api/data")
	assert.NoError(t, err)
}

func TestClient_DoWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient()
	req := NewRequest(http.MethodGet, srv.URL).WithContext(context.Background())
	resp, err := c.DoWithRetry(req, &RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.String())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewClient(WithRateLimit(0.001, 1))
	_, err := c.GET(context.Background(), srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.GET(ctx, srv.URL)
	assert.Error(t, err, "second request must wait far longer than the deadline")
}
