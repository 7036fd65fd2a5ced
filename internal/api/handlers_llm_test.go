package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"sheet_ai_server/internal/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type llmReply struct {
	status  int
	content string
}

// newFakeChatServer plays replies in order against /chat/completions; the last one repeats.
func newFakeChatServer(t *testing.T, replies ...llmReply) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(replies) {
			n = len(replies) - 1
		}
		reply := replies[n]
		w.Header().Set("Content-Type", "application/json")
		if reply.status >= 400 {
			w.WriteHeader(reply.status)
			body, _ := json.Marshal(map[string]any{"error": map[string]string{"message": reply.content, "type": "server_error"}})
			_, _ = w.Write(body)
			return
		}
		body, _ := json.Marshal(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply.content},
				"finish_reason": "stop",
			}},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newLLMBackedServer(t *testing.T, replies ...llmReply) (*testServer, *int32) {
	t.Helper()
	chat, calls := newFakeChatServer(t, replies...)
	gen := ai.NewGenerator(ai.Options{
		APIKey:      "test-key",
		BaseURL:     chat.URL,
		MaxTokens:   1500,
		Temperature: 0.2,
		RetryDelay:  10 * time.Millisecond,
	}, zap.NewNop())
	return newTestServer(t, gen, time.Minute), calls
}

func TestEndpointSucceedsWhenFirstLLMCallFails(t *testing.T) {
	s, calls := newLLMBackedServer(t,
		llmReply{status: http.StatusServiceUnavailable, content: "overloaded"},
		llmReply{content: budgetJSON},
	)

	w := s.post(t, `{"prompt":"Create a budget sheet with Income and Expenses columns"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Regexp(t, attachmentPattern, w.Header().Get("Content-Disposition"))
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestEndpointFailsWithSecondLLMError(t *testing.T) {
	s, calls := newLLMBackedServer(t,
		llmReply{status: http.StatusInternalServerError, content: "first failure"},
		llmReply{status: http.StatusInternalServerError, content: "second failure"},
	)

	w := s.post(t, `{"prompt":"budget"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, msgGenerationError, resp.Error)
	assert.Contains(t, resp.Details, "second failure")
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestEndpointMalformedModelOutput(t *testing.T) {
	s, _ := newLLMBackedServer(t, llmReply{content: "Here is your data: {not valid json"})

	w := s.post(t, `{"prompt":"budget"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Contains(t, resp.Details, "JSON parse error")
	assert.Contains(t, resp.Details, "Here is your data: {not valid json")
}
