package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/content-prism/prism-core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSaver struct {
	contentID string
	saved     *models.ExtractedContext
	err       error
	calls     int
}

func (r *recordingSaver) SaveExtractedContext(_ context.Context, contentID string, extracted *models.ExtractedContext) error {
	r.calls++
	r.contentID = contentID
	r.saved = extracted
	return r.err
}

func TestRunShortContentDirect(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{{
		Text:  `{"p1a":"panel"}`,
		Usage: Usage{TotalTokens: 50},
	}}}
	saver := &recordingSaver{}

	result, err := Run(context.Background(), completer, RunOptions{
		ContentID:      "c1",
		SourceContent:  "a short article",
		TemplateSchema: `{"p1a":""}`,
		Saver:          saver,
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyDirect, result.Strategy)
	assert.Nil(t, result.ExtractedContext)
	assert.Equal(t, "panel", result.Parsed["p1a"])
	assert.Equal(t, 0, saver.calls)

	// Only the generation call happened.
	require.Len(t, completer.requests, 1)
	assert.Equal(t, TemperatureGeneration, completer.requests[0].Temperature)
}

func TestRunLongContentExtractsAndSaves(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{
		{Text: extractionJSON, Usage: Usage{TotalTokens: 200}},
		{Text: `{"p1a":"panel"}`, Usage: Usage{TotalTokens: 60}},
	}}
	saver := &recordingSaver{}

	result, err := Run(context.Background(), completer, RunOptions{
		ContentID:      "c2",
		SourceContent:  shortWords(10000),
		TemplateSchema: `{"p1a":""}`,
		Saver:          saver,
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyExtracted, result.Strategy)
	require.NotNil(t, result.ExtractedContext)
	assert.Equal(t, "Sleep deprivation impairs memory consolidation.", result.ExtractedContext.MainThesis)

	assert.Equal(t, 1, saver.calls)
	assert.Equal(t, "c2", saver.contentID)
	assert.Same(t, result.ExtractedContext, saver.saved)

	require.Len(t, completer.requests, 2)
	assert.Equal(t, TemperatureExtraction, completer.requests[0].Temperature)
	assert.Equal(t, TemperatureGeneration, completer.requests[1].Temperature)
}

func TestRunReusesCachedExtraction(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{{Text: `{"p1a":"panel"}`}}}
	saver := &recordingSaver{}
	cached := &models.ExtractedContext{MainThesis: "cached thesis"}

	result, err := Run(context.Background(), completer, RunOptions{
		ContentID:       "c3",
		SourceContent:   shortWords(10000),
		ExistingContext: cached,
		TemplateSchema:  `{"p1a":""}`,
		Saver:           saver,
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyCached, result.Strategy)
	assert.Same(t, cached, result.ExtractedContext)
	assert.Equal(t, 0, saver.calls)
	require.Len(t, completer.requests, 1)
}

func TestRunForceReextract(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{
		{Text: extractionJSON},
		{Text: `{"p1a":"panel"}`},
	}}
	cached := &models.ExtractedContext{MainThesis: "stale thesis"}

	result, err := Run(context.Background(), completer, RunOptions{
		ContentID:       "c4",
		SourceContent:   shortWords(10000),
		ExistingContext: cached,
		ForceReextract:  true,
		TemplateSchema:  `{"p1a":""}`,
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyExtracted, result.Strategy)
	assert.NotEqual(t, "stale thesis", result.ExtractedContext.MainThesis)
	require.Len(t, completer.requests, 2)
}

func TestRunSaveFailureDoesNotAbort(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{
		{Text: extractionJSON},
		{Text: `{"p1a":"panel"}`},
	}}
	saver := &recordingSaver{err: errors.New("db gone")}

	result, err := Run(context.Background(), completer, RunOptions{
		ContentID:      "c5",
		SourceContent:  shortWords(10000),
		TemplateSchema: `{"p1a":""}`,
		Saver:          saver,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saver.calls)
	assert.Equal(t, "panel", result.Parsed["p1a"])
}

func TestRunUsesExtractionCompleterForExtraction(t *testing.T) {
	generator := &stubCompleter{responses: []*Completion{{Text: `{"p1a":"panel"}`}}}
	extractor := &stubCompleter{responses: []*Completion{{Text: extractionJSON}}}

	result, err := Run(context.Background(), generator, RunOptions{
		ContentID:           "c6",
		SourceContent:       shortWords(10000),
		TemplateSchema:      `{"p1a":""}`,
		ExtractionCompleter: extractor,
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyExtracted, result.Strategy)
	require.Len(t, extractor.requests, 1)
	require.Len(t, generator.requests, 1)
}

func TestRunExtractionFailurePropagates(t *testing.T) {
	completer := &stubCompleter{err: errors.New("provider down")}

	_, err := Run(context.Background(), completer, RunOptions{
		SourceContent:  shortWords(10000),
		TemplateSchema: `{"p1a":""}`,
	})
	assert.ErrorIs(t, err, ErrExtraction)
}
