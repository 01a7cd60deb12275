package pipeline

import (
	"context"
	"errors"
)

// Temperature settings for each generation task.
const (
	TemperatureExtraction = 0.2
	TemperatureGeneration = 0.7
	TemperatureCaptions   = 0.6
)

// Message roles for chat completion requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption of a completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates usage from another call.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// CompletionRequest describes a single chat completion call.
type CompletionRequest struct {
	Messages    []Message
	Temperature float64
	JSONMode    bool
	MaxTokens   int
}

// Completion is the model response text plus usage accounting.
type Completion struct {
	Text  string
	Usage Usage
}

// Completer executes chat completion requests against a model provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

var (
	// ErrInvalidJSON is returned when the model response cannot be parsed
	// as the expected JSON object.
	ErrInvalidJSON = errors.New("generated text is not valid JSON")

	// ErrExtraction wraps failures in the extraction phase.
	ErrExtraction = errors.New("content extraction failed")

	// ErrGeneration wraps failures in the post text and caption phases.
	ErrGeneration = errors.New("text generation failed")
)
