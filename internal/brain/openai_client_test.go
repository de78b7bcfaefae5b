package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatClient_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "llama-3.3-70b-versatile",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": " {\"reply\":\"hello ji\"} "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`))
	}))
	defer srv.Close()

	client, err := NewOpenAICompatClient("gsk_test", srv.URL+"/openai/v1/", "llama-3.3-70b-versatile")
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), LLMRequest{
		System:      []string{"be a grandmother"},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: "hi"}},
		MaxTokens:   100,
		Temperature: 0.7,
		JSON:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"reply":"hello ji"}`, resp.Text)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, int32(16), resp.Usage.TotalTokens)

	assert.Equal(t, "llama-3.3-70b-versatile", got["model"])
	format, ok := got["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestOpenAICompatClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAICompatClient("k", srv.URL, "m")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}}})
	assert.Error(t, err)
}

func TestNewOpenAICompatClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAICompatClient(" ", "", "m")
	assert.Error(t, err)
}
