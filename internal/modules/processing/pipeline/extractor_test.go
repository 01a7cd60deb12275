package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/content-prism/prism-core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter replays canned responses and records the requests it saw.
type stubCompleter struct {
	responses []*Completion
	err       error
	requests  []CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req CompletionRequest) (*Completion, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	idx := len(s.requests) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

const extractionJSON = `{
	"main_thesis": "Sleep deprivation impairs memory consolidation.",
	"key_findings": ["Recall dropped 40%", "Effects persisted for a week"],
	"notable_quotes": [{"quote": "The effect was startling", "attribution": "Dr. Reyes"}],
	"context_background": "Sleep research has gained attention recently.",
	"audience_relevance": "Most adults sleep less than recommended."
}`

func TestGetOrExtractShortContentSkipsModel(t *testing.T) {
	completer := &stubCompleter{err: errors.New("must not be called")}

	result, err := GetOrExtract(context.Background(), completer, "a short article", nil, false)
	require.NoError(t, err)

	assert.False(t, result.Extracted)
	assert.Nil(t, result.Context)
	assert.Equal(t, StrategyDirect, result.Strategy)
	assert.Empty(t, completer.requests)

	// Forcing re-extraction does not override the short-content short-circuit.
	result, err = GetOrExtract(context.Background(), completer, "a short article", nil, true)
	require.NoError(t, err)

	assert.False(t, result.Extracted)
	assert.Equal(t, StrategyDirect, result.Strategy)
	assert.Empty(t, completer.requests)
}

func TestGetOrExtractReusesCachedContext(t *testing.T) {
	completer := &stubCompleter{err: errors.New("must not be called")}
	existing := &models.ExtractedContext{MainThesis: "cached thesis"}

	result, err := GetOrExtract(context.Background(), completer, shortWords(10000), existing, false)
	require.NoError(t, err)

	assert.True(t, result.Extracted)
	assert.True(t, result.UsedExisting)
	assert.Equal(t, StrategyCached, result.Strategy)
	assert.Same(t, existing, result.Context)
	assert.Empty(t, completer.requests)
}

func TestGetOrExtractForceBypassesCache(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{{Text: extractionJSON}}}
	existing := &models.ExtractedContext{MainThesis: "stale thesis"}

	result, err := GetOrExtract(context.Background(), completer, shortWords(10000), existing, true)
	require.NoError(t, err)

	assert.True(t, result.Extracted)
	assert.False(t, result.UsedExisting)
	assert.Equal(t, StrategyExtracted, result.Strategy)
	assert.Equal(t, "Sleep deprivation impairs memory consolidation.", result.Context.MainThesis)
	require.Len(t, completer.requests, 1)
	assert.Equal(t, TemperatureExtraction, completer.requests[0].Temperature)
	assert.True(t, completer.requests[0].JSONMode)
}

func TestExtractKeyInformationMetadata(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{{Text: extractionJSON}}}
	source := shortWords(10000)

	extracted, err := ExtractKeyInformation(context.Background(), completer, source)
	require.NoError(t, err)

	assert.Equal(t, EstimateTokens(source), extracted.SourceTokenCount)
	assert.Greater(t, extracted.ExtractedTokenCount, 0)
	assert.False(t, extracted.ExtractedAt.IsZero())
	require.Len(t, extracted.NotableQuotes, 1)
	assert.Equal(t, "Dr. Reyes", extracted.NotableQuotes[0].Attribution)
}

func TestExtractKeyInformationWrapsErrors(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{{Text: "not json at all"}}}

	_, err := ExtractKeyInformation(context.Background(), completer, shortWords(10000))
	assert.ErrorIs(t, err, ErrExtraction)

	completer = &stubCompleter{err: errors.New("upstream down")}
	_, err = ExtractKeyInformation(context.Background(), completer, shortWords(10000))
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestFormatContextForPrompt(t *testing.T) {
	extracted := &models.ExtractedContext{
		MainThesis:  "Thesis here.",
		KeyFindings: []string{"first", "second"},
		NotableQuotes: []models.ExtractedQuote{
			{Quote: "memorable line", Attribution: "Prof. Chen"},
		},
		ContextBackground: "Background here.",
		AudienceRelevance: "Relevance here.",
	}

	formatted := FormatContextForPrompt(extracted)
	expected := "MAIN THESIS:\nThesis here.\n\n" +
		"KEY FINDINGS:\n• first\n• second\n\n" +
		"NOTABLE QUOTES:\n\"memorable line\" — Prof. Chen\n\n" +
		"CONTEXT:\nBackground here.\n\n" +
		"WHY IT MATTERS:\nRelevance here."
	assert.Equal(t, expected, formatted)
}

func TestFormatContextForPromptSkipsEmptySections(t *testing.T) {
	assert.Equal(t, "", FormatContextForPrompt(nil))

	formatted := FormatContextForPrompt(&models.ExtractedContext{MainThesis: "Only thesis."})
	assert.Equal(t, "MAIN THESIS:\nOnly thesis.", formatted)
}

func TestUnmarshalModelJSON(t *testing.T) {
	var out map[string]string

	require.NoError(t, unmarshalModelJSON(`{"a":"b"}`, &out))
	assert.Equal(t, "b", out["a"])

	require.NoError(t, unmarshalModelJSON("```json\n{\"a\":\"fenced\"}\n```", &out))
	assert.Equal(t, "fenced", out["a"])

	require.NoError(t, unmarshalModelJSON(`Here you go: {"a":"prose"} hope that helps`, &out))
	assert.Equal(t, "prose", out["a"])

	assert.ErrorIs(t, unmarshalModelJSON("no braces here", &out), ErrInvalidJSON)
}
