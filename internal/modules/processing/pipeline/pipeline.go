package pipeline

import (
	"context"
	"time"

	"github.com/content-prism/prism-core/internal/models"
	"go.uber.org/zap"
)

// ContextSaver persists a freshly extracted context so later runs can reuse
// it without another extraction call.
type ContextSaver interface {
	SaveExtractedContext(ctx context.Context, contentID string, extracted *models.ExtractedContext) error
}

// RunOptions configures a full pipeline run.
type RunOptions struct {
	ContentID           string
	SourceContent       string
	ExistingContext     *models.ExtractedContext
	BrandVoice          string
	Positioning         string
	CreatorNotes        string
	TemplateDescription string
	TemplateSchema      string
	ForceReextract      bool
	Saver               ContextSaver
	Logger              *zap.Logger

	// ExtractionCompleter, when set, handles the extraction phase so it can
	// run on a different model than generation.
	ExtractionCompleter Completer
}

// RunResult is the outcome of a full pipeline run.
type RunResult struct {
	Text             string
	Parsed           map[string]string
	ExtractedContext *models.ExtractedContext
	Strategy         Strategy
	TokenCount       int
	Usage            Usage
	ProcessingTime   time.Duration
}

// Run executes the two-phase pipeline: decide the processing strategy,
// extract key information when the content is too long, then generate post
// text from either the extraction or the raw source.
func Run(ctx context.Context, completer Completer, opts RunOptions) (*RunResult, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	decision := DetermineStrategy(opts.SourceContent)
	logger.Info("pipeline strategy decided",
		zap.String("content_id", opts.ContentID),
		zap.String("strategy", string(decision.Strategy)),
		zap.Int("token_count", decision.TokenCount),
		zap.String("reason", decision.Reason),
	)

	var extracted *models.ExtractedContext
	var extraction *ExtractionResult

	if decision.Strategy == StrategyExtract || decision.Strategy == StrategyExtractRequired {
		extractor := completer
		if opts.ExtractionCompleter != nil {
			extractor = opts.ExtractionCompleter
		}

		var err error
		extraction, err = GetOrExtract(ctx, extractor, opts.SourceContent, opts.ExistingContext, opts.ForceReextract)
		if err != nil {
			return nil, err
		}
		extracted = extraction.Context

		// Persist fresh extractions so repeat runs hit the cache. A failed
		// save must not abort generation.
		if extraction.Extracted && !extraction.UsedExisting && opts.Saver != nil && opts.ContentID != "" {
			if err := opts.Saver.SaveExtractedContext(ctx, opts.ContentID, extracted); err != nil {
				logger.Warn("failed to save extracted context",
					zap.String("content_id", opts.ContentID),
					zap.Error(err),
				)
			}
		}
	}

	generation, err := GeneratePostText(ctx, completer, GenerationInput{
		SourceContent:       opts.SourceContent,
		ExtractedContext:    extracted,
		BrandVoice:          opts.BrandVoice,
		Positioning:         opts.Positioning,
		CreatorNotes:        opts.CreatorNotes,
		TemplateDescription: opts.TemplateDescription,
		TemplateSchema:      opts.TemplateSchema,
	})
	if err != nil {
		return nil, err
	}

	strategy := StrategyDirect
	if extraction != nil {
		strategy = extraction.Strategy
	}

	elapsed := time.Since(start)
	logger.Info("pipeline completed",
		zap.String("content_id", opts.ContentID),
		zap.String("strategy", string(strategy)),
		zap.Duration("elapsed", elapsed),
	)

	return &RunResult{
		Text:             generation.Text,
		Parsed:           generation.Parsed,
		ExtractedContext: extracted,
		Strategy:         strategy,
		TokenCount:       decision.TokenCount,
		Usage:            generation.Usage,
		ProcessingTime:   elapsed,
	}, nil
}
