package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	appcfg "github.com/content-prism/prism-core/internal/config"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

const completionTimeout = 120 * time.Second

// NewCompleter builds a Completer for the given provider. Native OpenAI and
// Anthropic providers go through their official SDK clients; openai-compatible
// gateways and OpenRouter speak the chat completions wire protocol directly.
func NewCompleter(provider *appcfg.AIProvider) (Completer, error) {
	if provider == nil {
		return nil, errors.New("AI provider is nil")
	}
	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey == "" {
		return nil, errors.New("AI provider api key is empty")
	}

	switch {
	case isAnthropicProviderType(provider.Type):
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint := strings.TrimSpace(provider.Endpoint); endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		return &anthropicCompleter{
			provider: provider,
			client:   anthropicclient.NewClient(opts...),
		}, nil

	case isOpenAICompatibleProviderType(provider.Type), isOpenRouterProviderType(provider.Type):
		return &chatCompleter{
			provider:   provider,
			httpClient: &http.Client{Timeout: completionTimeout},
		}, nil

	default:
		opts := []openaioption.RequestOption{
			openaioption.WithAPIKey(apiKey),
			openaioption.WithMaxRetries(0),
		}
		if base := openaiSDKBaseURL(provider.Endpoint); base != "" {
			opts = append(opts, openaioption.WithBaseURL(base))
		}
		return &openaiCompleter{
			provider: provider,
			client:   openaiclient.NewClient(opts...),
		}, nil
	}
}

func isAnthropicProviderType(raw string) bool {
	return normalizeProviderType(raw) == "anthropic"
}

func isOpenRouterProviderType(raw string) bool {
	return normalizeProviderType(raw) == "openrouter"
}

func isOpenAICompatibleProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "openai-compatible" || t == "openaicompatible"
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

// openaiCompleter runs chat completions through the OpenAI SDK client.
type openaiCompleter struct {
	provider *appcfg.AIProvider
	client   openaiclient.Client
}

func (c *openaiCompleter) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	model := strings.TrimSpace(c.provider.DefaultModel)
	if model == "" {
		model = "gpt-4.1-mini"
	}

	messages := make([]openaiclient.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openaiclient.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openaiclient.AssistantMessage(m.Content))
		default:
			messages = append(messages, openaiclient.UserMessage(m.Content))
		}
	}

	params := openaiclient.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Messages:    messages,
		Temperature: openaiclient.Float(req.Temperature),
	}
	if req.JSONMode {
		params.ResponseFormat = openaiclient.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openaiclient.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty response from AI")
	}

	return &Completion{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// anthropicCompleter runs completions through the Anthropic SDK client.
// System messages are folded into the top-level system field, and the
// JSON-mode hint relies on the prompts since the messages API has no
// response_format parameter.
type anthropicCompleter struct {
	provider *appcfg.AIProvider
	client   anthropicclient.Client
}

func (c *anthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	model := strings.TrimSpace(c.provider.DefaultModel)
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}

	var system []string
	chat := make([]anthropicclient.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			chat = append(chat, anthropicclient.NewAssistantMessage(anthropicclient.NewTextBlock(m.Content)))
		default:
			chat = append(chat, anthropicclient.NewUserMessage(anthropicclient.NewTextBlock(m.Content)))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropicclient.MessageNewParams{
		Model:       anthropicclient.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropicclient.Float(req.Temperature),
		Messages:    chat,
	}
	if len(system) > 0 {
		params.System = []anthropicclient.TextBlockParam{
			{Text: strings.Join(system, "\n\n")},
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type != "text" || block.Text == "" {
			continue
		}
		text.WriteString(block.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, errors.New("empty response from AI")
	}

	return &Completion{
		Text: text.String(),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// chatCompleter speaks the OpenAI chat completions wire protocol for
// openai-compatible gateways and OpenRouter, which the SDK clients do not
// cover.
type chatCompleter struct {
	provider   *appcfg.AIProvider
	httpClient *http.Client
}

func (c *chatCompleter) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	model := strings.TrimSpace(c.provider.DefaultModel)
	if model == "" {
		model = "gpt-4.1-mini"
	}

	payload := map[string]interface{}{
		"model":       model,
		"messages":    req.Messages,
		"temperature": req.Temperature,
	}
	if req.JSONMode {
		payload["response_format"] = map[string]string{"type": "json_object"}
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := chatCompletionsURL(c.provider)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.provider.APIKey))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("chat completions error: %s", strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage Usage `json:"usage"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return nil, fmt.Errorf("chat completions error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return nil, errors.New("empty response from AI")
	}

	return &Completion{
		Text:  result.Choices[0].Message.Content,
		Usage: result.Usage,
	}, nil
}

func chatCompletionsURL(provider *appcfg.AIProvider) string {
	base := strings.TrimSpace(provider.Endpoint)
	if base == "" {
		if isOpenRouterProviderType(provider.Type) {
			base = "https://openrouter.ai/api"
		} else {
			base = "https://api.openai.com"
		}
	}
	return normalizeEndpointBase(base) + "/v1/chat/completions"
}

// openaiSDKBaseURL ensures a configured endpoint carries the /v1 segment the
// SDK expects in its base URL. Empty input keeps the SDK default.
func openaiSDKBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

// normalizeEndpointBase strips a trailing /v1 so configured endpoints work
// whether or not they already include the version segment.
func normalizeEndpointBase(raw string) string {
	parsed, err := neturl.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		cleaned := strings.TrimRight(raw, "/")
		return strings.TrimSuffix(cleaned, "/v1")
	}

	path := strings.TrimRight(parsed.Path, "/")
	parsed.Path = strings.TrimSuffix(path, "/v1")
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return strings.TrimRight(parsed.String(), "/")
}
