package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appcfg "github.com/content-prism/prism-core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompleterValidation(t *testing.T) {
	_, err := NewCompleter(nil)
	assert.Error(t, err)

	_, err = NewCompleter(&appcfg.AIProvider{Type: "OpenAI"})
	assert.Error(t, err)

	c, err := NewCompleter(&appcfg.AIProvider{Type: "Anthropic", APIKey: "sk-x"})
	require.NoError(t, err)
	assert.IsType(t, &anthropicCompleter{}, c)

	c, err = NewCompleter(&appcfg.AIProvider{Type: "OpenAI", APIKey: "sk-x"})
	require.NoError(t, err)
	assert.IsType(t, &openaiCompleter{}, c)

	c, err = NewCompleter(&appcfg.AIProvider{Type: "OpenAI-Compatible", APIKey: "sk-x"})
	require.NoError(t, err)
	assert.IsType(t, &chatCompleter{}, c)

	c, err = NewCompleter(&appcfg.AIProvider{Type: "OpenRouter", APIKey: "sk-x"})
	require.NoError(t, err)
	assert.IsType(t, &chatCompleter{}, c)
}

func TestOpenAICompleterRequestShape(t *testing.T) {
	var captured map[string]interface{}
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"ok\":true}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`))
	}))
	defer server.Close()

	completer, err := NewCompleter(&appcfg.AIProvider{
		Type:     "OpenAI",
		APIKey:   "sk-test",
		Endpoint: server.URL,
	})
	require.NoError(t, err)

	resp, err := completer.Complete(context.Background(), CompletionRequest{
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
		Temperature: 0.7,
		JSONMode:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", authHeader)
	assert.Equal(t, "gpt-4.1-mini", captured["model"])
	assert.Equal(t, 0.7, captured["temperature"])
	format := captured["response_format"].(map[string]interface{})
	assert.Equal(t, "json_object", format["type"])
	assert.Equal(t, `{"ok":true}`, resp.Text)
	assert.Equal(t, 16, resp.Usage.TotalTokens)
}

func TestChatCompleterRequestShape(t *testing.T) {
	var captured map[string]interface{}
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"content": "{\"ok\":true}"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`))
	}))
	defer server.Close()

	completer, err := NewCompleter(&appcfg.AIProvider{
		Type:     "OpenAI-Compatible",
		APIKey:   "sk-test",
		Endpoint: server.URL,
	})
	require.NoError(t, err)

	resp, err := completer.Complete(context.Background(), CompletionRequest{
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
		Temperature: 0.7,
		JSONMode:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", authHeader)
	assert.Equal(t, "gpt-4.1-mini", captured["model"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, captured["response_format"])
	assert.Equal(t, `{"ok":true}`, resp.Text)
	assert.Equal(t, 16, resp.Usage.TotalTokens)
}

func TestChatCompleterErrorResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": {"message": "model overloaded"}}`))
	}))
	defer server.Close()

	completer, err := NewCompleter(&appcfg.AIProvider{
		Type: "OpenAI-Compatible", APIKey: "sk-test", Endpoint: server.URL,
	})
	require.NoError(t, err)

	_, err = completer.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestAnthropicCompleterRequestShape(t *testing.T) {
	var captured map[string]interface{}
	var apiKey, version string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		version = r.Header.Get("anthropic-version")
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5-20251001",
			"content": [{"type": "text", "text": "{\"ok\":true}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 20, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	completer, err := NewCompleter(&appcfg.AIProvider{
		Type:         "Anthropic",
		APIKey:       "sk-ant",
		Endpoint:     server.URL,
		DefaultModel: "claude-haiku-4-5-20251001",
	})
	require.NoError(t, err)

	resp, err := completer.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "system one"},
			{Role: RoleSystem, Content: "system two"},
			{Role: RoleUser, Content: "hi"},
		},
		Temperature: 0.2,
	})
	require.NoError(t, err)

	assert.Equal(t, "sk-ant", apiKey)
	assert.Equal(t, "2023-06-01", version)

	// System messages fold into a single top-level system block.
	system := captured["system"].([]interface{})
	require.Len(t, system, 1)
	block := system[0].(map[string]interface{})
	assert.Equal(t, "system one\n\nsystem two", block["text"])

	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, float64(4096), captured["max_tokens"])

	assert.Equal(t, `{"ok":true}`, resp.Text)
	assert.Equal(t, 25, resp.Usage.TotalTokens)
}

func TestEndpointNormalization(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1/chat/completions",
		chatCompletionsURL(&appcfg.AIProvider{Type: "OpenAI-Compatible"}))
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions",
		chatCompletionsURL(&appcfg.AIProvider{Type: "OpenRouter"}))
	assert.Equal(t, "https://gw.example.com/v1/chat/completions",
		chatCompletionsURL(&appcfg.AIProvider{Type: "OpenAI-Compatible", Endpoint: "https://gw.example.com/v1/"}))

	assert.Equal(t, "", openaiSDKBaseURL(""))
	assert.Equal(t, "https://gw.example.com/v1", openaiSDKBaseURL("https://gw.example.com"))
	assert.Equal(t, "https://gw.example.com/v1", openaiSDKBaseURL("https://gw.example.com/v1/"))
}

func TestNormalizeProviderType(t *testing.T) {
	assert.True(t, isAnthropicProviderType("Anthropic"))
	assert.True(t, isAnthropicProviderType(" anthropic "))
	assert.False(t, isAnthropicProviderType("OpenAI"))
	assert.True(t, isOpenRouterProviderType("OpenRouter"))
	assert.True(t, isOpenRouterProviderType("open router"))
	assert.True(t, isOpenAICompatibleProviderType("OpenAI-Compatible"))
	assert.True(t, isOpenAICompatibleProviderType("openai_compatible"))
}
