package pipeline

import (
	"math"
	"strings"
)

// Token thresholds driving the extraction decision. Estimates target
// gpt-4.1-mini class context windows, leaving room for prompts and response.
const (
	ShortContentTokens          = 4000
	ExtractionRecommendedTokens = 8000
	MaxSafeContextTokens        = 100000
	ExtractionTargetTokens      = 6000
)

// Strategy describes how source content is fed into generation.
type Strategy string

const (
	StrategyDirect            Strategy = "direct"
	StrategyDirectWithCaution Strategy = "direct_with_caution"
	StrategyExtract           Strategy = "extract"
	StrategyExtractRequired   Strategy = "extract_required"

	// Extraction outcome strategies reported by GetOrExtract.
	StrategyCached    Strategy = "cached"
	StrategyExtracted Strategy = "extracted"
)

// StrategyDecision is the recommendation for a piece of source content.
type StrategyDecision struct {
	Strategy   Strategy `json:"strategy"`
	TokenCount int      `json:"token_count"`
	Reason     string   `json:"reason"`
}

const tokenPunctuation = `.,!?;:'"()[]{}`

// EstimateTokens approximates the GPT token count of text without a real
// tokenizer. Punctuation tokenizes separately, short words are single tokens
// and longer words split into subwords. A 10% overhead covers special tokens.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	total := 0
	for _, word := range strings.Fields(text) {
		punctuation := 0
		length := 0
		for _, r := range word {
			if strings.ContainsRune(tokenPunctuation, r) {
				punctuation++
			} else {
				length++
			}
		}

		switch {
		case length <= 4:
			total++
		case length <= 8:
			total += 2
		default:
			total += (length + 3) / 4
		}
		total += punctuation
	}

	return int(math.Ceil(float64(total) * 1.1))
}

// DetermineStrategy recommends a processing strategy based on content length.
func DetermineStrategy(content string) StrategyDecision {
	tokenCount := EstimateTokens(content)

	switch {
	case tokenCount <= ShortContentTokens:
		return StrategyDecision{
			Strategy:   StrategyDirect,
			TokenCount: tokenCount,
			Reason:     "Content is short enough for direct processing",
		}
	case tokenCount <= ExtractionRecommendedTokens:
		return StrategyDecision{
			Strategy:   StrategyDirectWithCaution,
			TokenCount: tokenCount,
			Reason:     "Content is moderate length, direct processing acceptable",
		}
	case tokenCount <= MaxSafeContextTokens:
		return StrategyDecision{
			Strategy:   StrategyExtract,
			TokenCount: tokenCount,
			Reason:     "Content is long, extraction recommended to preserve key information",
		}
	default:
		return StrategyDecision{
			Strategy:   StrategyExtractRequired,
			TokenCount: tokenCount,
			Reason:     "Content exceeds safe context limits, extraction required",
		}
	}
}
