package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
}

func TestScorer_Score(t *testing.T) {
	srv := chatServer(t, `{"score": 0.8}`)
	defer srv.Close()

	s, err := NewScorer("test-key", Options{BaseURL: srv.URL + "/v1", MaxTokens: 16})
	require.NoError(t, err)

	score, err := s.Score(context.Background(), "record profit and a buyback")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, score, 1e-9)
}

func TestScorer_ClampsAndRejectsGarbage(t *testing.T) {
	srv := chatServer(t, `{"score": 4}`)
	defer srv.Close()
	s, err := NewScorer("test-key", Options{BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	score, err := s.Score(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	bad := chatServer(t, `positive!`)
	defer bad.Close()
	s, err = NewScorer("test-key", Options{BaseURL: bad.URL + "/v1"})
	require.NoError(t, err)
	_, err = s.Score(context.Background(), "x")
	assert.Error(t, err)
}

func TestNewScorer_RequiresKey(t *testing.T) {
	_, err := NewScorer("", Options{})
	assert.Error(t, err)
}
