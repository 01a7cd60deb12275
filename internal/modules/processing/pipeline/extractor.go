package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/content-prism/prism-core/internal/models"
)

const extractionSystemPrompt = `You are an expert research analyst specializing in extracting and preserving key information from academic papers and articles for social media content creation.

Your task is to extract the most important information that would be needed to create engaging social media content. You must preserve factual accuracy while identifying the most compelling and shareable aspects of the content.

EXTRACTION REQUIREMENTS:

1. MAIN THESIS (2-3 sentences)
   - The primary research question, argument, or finding
   - Must be factually accurate and capture the core message

2. KEY FINDINGS (3-5 bullet points)
   - The most significant discoveries, conclusions, or arguments
   - Include specific data, statistics, or evidence when available
   - Prioritize surprising, counterintuitive, or impactful findings

3. NOTABLE QUOTES (2-3 direct quotes)
   - Compelling statements that could be used in social media
   - Include the speaker/author attribution
   - Select quotes that are accessible to general audiences

4. CONTEXT AND BACKGROUND (1-2 sentences)
   - Why this research/topic matters
   - Current relevance or timeliness

5. AUDIENCE RELEVANCE (1-2 sentences)
   - Why a general audience (not just academics) should care
   - The "so what" factor - real-world implications

IMPORTANT GUIDELINES:
- Maintain factual accuracy - do not embellish or misrepresent findings
- Preserve nuance - include caveats or limitations if they are significant
- Use accessible language - translate academic jargon into plain English
- Identify the most compelling narrative angle for social media
- Do NOT include your own opinions or analysis beyond what's in the source

Respond with a JSON object containing these fields.`

func buildExtractionUserPrompt(sourceContent string) string {
	return `Please extract the key information from the following source content and return it as a JSON object with these keys:
- main_thesis (string): 2-3 sentences capturing the core message
- key_findings (array of strings): 3-5 bullet points of significant findings
- notable_quotes (array of objects with "quote" and "attribution" keys): 2-3 compelling quotes
- context_background (string): 1-2 sentences on why this matters
- audience_relevance (string): 1-2 sentences on real-world implications

SOURCE CONTENT:
` + sourceContent
}

// ExtractKeyInformation runs the extraction phase against the model and
// returns the structured context with token accounting metadata attached.
func ExtractKeyInformation(ctx context.Context, completer Completer, sourceContent string) (*models.ExtractedContext, error) {
	resp, err := completer.Complete(ctx, CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: extractionSystemPrompt},
			{Role: RoleUser, Content: buildExtractionUserPrompt(sourceContent)},
		},
		Temperature: TemperatureExtraction,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var extracted models.ExtractedContext
	if err := unmarshalModelJSON(resp.Text, &extracted); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	extracted.ExtractedAt = time.Now().UTC()
	extracted.SourceTokenCount = EstimateTokens(sourceContent)
	if encoded, err := json.Marshal(&extracted); err == nil {
		extracted.ExtractedTokenCount = EstimateTokens(string(encoded))
	}

	return &extracted, nil
}

// ExtractionResult describes the outcome of GetOrExtract.
type ExtractionResult struct {
	Extracted    bool
	Context      *models.ExtractedContext
	UsedExisting bool
	Strategy     Strategy
}

// GetOrExtract returns an extraction for the source content. Content below
// the extraction threshold skips the model entirely. A cached context is
// reused unless forceExtract is set.
func GetOrExtract(ctx context.Context, completer Completer, sourceContent string, existing *models.ExtractedContext, forceExtract bool) (*ExtractionResult, error) {
	if EstimateTokens(sourceContent) <= ExtractionRecommendedTokens {
		return &ExtractionResult{Strategy: StrategyDirect}, nil
	}

	if existing != nil && !forceExtract {
		return &ExtractionResult{
			Extracted:    true,
			Context:      existing,
			UsedExisting: true,
			Strategy:     StrategyCached,
		}, nil
	}

	extracted, err := ExtractKeyInformation(ctx, completer, sourceContent)
	if err != nil {
		return nil, err
	}
	return &ExtractionResult{
		Extracted: true,
		Context:   extracted,
		Strategy:  StrategyExtracted,
	}, nil
}

// FormatContextForPrompt renders an extracted context as labeled plain-text
// sections for inclusion in generation prompts.
func FormatContextForPrompt(extracted *models.ExtractedContext) string {
	if extracted == nil {
		return ""
	}

	parts := make([]string, 0, 5)

	if extracted.MainThesis != "" {
		parts = append(parts, "MAIN THESIS:\n"+extracted.MainThesis)
	}

	if len(extracted.KeyFindings) > 0 {
		findings := make([]string, 0, len(extracted.KeyFindings))
		for _, f := range extracted.KeyFindings {
			findings = append(findings, "• "+f)
		}
		parts = append(parts, "KEY FINDINGS:\n"+strings.Join(findings, "\n"))
	}

	if len(extracted.NotableQuotes) > 0 {
		quotes := make([]string, 0, len(extracted.NotableQuotes))
		for _, q := range extracted.NotableQuotes {
			quotes = append(quotes, fmt.Sprintf("%q — %s", q.Quote, q.Attribution))
		}
		parts = append(parts, "NOTABLE QUOTES:\n"+strings.Join(quotes, "\n"))
	}

	if extracted.ContextBackground != "" {
		parts = append(parts, "CONTEXT:\n"+extracted.ContextBackground)
	}

	if extracted.AudienceRelevance != "" {
		parts = append(parts, "WHY IT MATTERS:\n"+extracted.AudienceRelevance)
	}

	return strings.Join(parts, "\n\n")
}

// unmarshalModelJSON parses a model response as JSON, tolerating markdown
// code fences and leading/trailing prose around the object.
func unmarshalModelJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	return ErrInvalidJSON
}
