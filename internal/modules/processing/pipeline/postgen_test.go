package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/content-prism/prism-core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGenerationMessagesOrder(t *testing.T) {
	messages := buildGenerationMessages(GenerationInput{
		SourceContent:       "the article",
		BrandVoice:          "friendly but precise",
		Positioning:         "EMOTIONAL POSITIONING:\ncurious",
		CreatorNotes:        "mention the deadline",
		TemplateDescription: "three panel post",
		TemplateSchema:      `{"p1a":"","p1b":""}`,
	})

	require.Len(t, messages, 8)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "three panel post")
	assert.Contains(t, messages[0].Content, `{"p1a":"","p1b":""}`)

	assert.Equal(t, "BRAND VOICE GUIDELINES:\nfriendly but precise", messages[1].Content)
	assert.Equal(t, "I understand the brand voice guidelines. I will write in this voice.", messages[2].Content)
	assert.Equal(t, RoleAssistant, messages[2].Role)

	assert.Equal(t, "EMOTIONAL POSITIONING:\ncurious", messages[3].Content)
	assert.Equal(t, "I understand the emotional positioning. The first panel will have the strongest emotional impact as the hook.", messages[4].Content)

	assert.Equal(t, "CREATOR NOTES (PRIORITY INSTRUCTIONS):\nmention the deadline", messages[5].Content)
	assert.Equal(t, "I understand and will prioritize these creator notes in my generation.", messages[6].Content)

	last := messages[7]
	assert.Equal(t, RoleUser, last.Role)
	assert.Contains(t, last.Content, "SOURCE CONTENT:\nthe article")
}

func TestBuildGenerationMessagesSkipsEmptyContext(t *testing.T) {
	messages := buildGenerationMessages(GenerationInput{
		SourceContent:  "the article",
		TemplateSchema: `{"p1a":""}`,
	})

	// System prompt plus the content turn only.
	require.Len(t, messages, 2)
}

func TestBuildGenerationMessagesUsesExtraction(t *testing.T) {
	messages := buildGenerationMessages(GenerationInput{
		SourceContent:    "the full article",
		ExtractedContext: &models.ExtractedContext{MainThesis: "Thesis."},
		TemplateSchema:   `{"p1a":""}`,
	})

	last := messages[len(messages)-1]
	assert.Contains(t, last.Content, "EXTRACTED KEY INFORMATION:")
	assert.Contains(t, last.Content, "MAIN THESIS:\nThesis.")
	assert.NotContains(t, last.Content, "the full article")
}

func TestGeneratePostText(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{{
		Text:  `{"p1a":"first panel","p1b":"second panel"}`,
		Usage: Usage{PromptTokens: 100, CompletionTokens: 40, TotalTokens: 140},
	}}}

	result, err := GeneratePostText(context.Background(), completer, GenerationInput{
		SourceContent:  "the article",
		TemplateSchema: `{"p1a":"","p1b":""}`,
	})
	require.NoError(t, err)

	assert.Equal(t, "first panel", result.Parsed["p1a"])
	assert.Equal(t, "second panel", result.Parsed["p1b"])
	assert.Equal(t, 140, result.Usage.TotalTokens)

	require.Len(t, completer.requests, 1)
	assert.Equal(t, TemperatureGeneration, completer.requests[0].Temperature)
	assert.True(t, completer.requests[0].JSONMode)
}

func TestGeneratePostTextInvalidJSON(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{{Text: "I could not produce JSON"}}}

	_, err := GeneratePostText(context.Background(), completer, GenerationInput{
		SourceContent:  "the article",
		TemplateSchema: `{"p1a":""}`,
	})
	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGeneratePostTextWrapsCompleterError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("upstream down")}

	_, err := GeneratePostText(context.Background(), completer, GenerationInput{
		SourceContent:  "the article",
		TemplateSchema: `{"p1a":""}`,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestUsageAdd(t *testing.T) {
	u := Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	u.Add(Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3})
	assert.Equal(t, Usage{PromptTokens: 11, CompletionTokens: 7, TotalTokens: 18}, u)
}

func TestGenerationSystemPromptMentionsSchemaShape(t *testing.T) {
	prompt := buildGenerationSystemPrompt("desc", "schema")
	assert.True(t, strings.Contains(prompt, "valid JSON"))
}
