package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/content-prism/prism-core/internal/models"
)

const blueskyCaptionLimit = 300

const captionSystemPrompt = `You are an expert social media copywriter who excels at writing engaging, curiosity-filled hooks and content.

ROLE:
- You write captions for Bluesky, LinkedIn, Instagram, and Facebook
- You write on behalf of an academic institution
- Your audience is a mix of academics and general public
- Your language must be widely accessible, not designed for academics
- You are a reporter, not a marketer

GOALS:
- Create engaging captions that drive clicks to the original content
- Capture the essence and most compelling aspect of the content
- Match the tone and style appropriate for each platform`

const captionRulesPrompt = `IMPORTANT RULES FOR ALL CAPTIONS:

PLATFORM-SPECIFIC:
- Bluesky: MUST be under 300 characters. Be concise but impactful.
- LinkedIn: Professional but accessible. Can be longer (up to 3000 chars recommended).
- Instagram: Visual-first mindset. Engaging but not overly long.
- Facebook: Conversational and shareable.

CONTENT RULES:
- Do NOT include any emojis
- Do NOT include calls to action like "read more" or "learn more"
- Avoid generic phrases like "Explore how..." or "Discover what..."
- Don't just ask a question like "How effective was it?"
  Instead: "Researchers X and Y explore..." or "This study answers the question..."
- Frame questions properly with context, don't leave them hanging
- Be specific, not vague or clickbaity
- Lead with the most interesting finding or angle

QUALITY STANDARDS:
- Each caption should be able to stand alone
- Provide enough context for the reader to understand the topic
- Be accurate to the source material
- Make the reader curious enough to want more`

// CaptionInput carries the context for caption generation.
type CaptionInput struct {
	SourceContent    string
	ExtractedContext *models.ExtractedContext
	PostText         map[string]string
}

// CaptionSet holds one caption per target platform.
type CaptionSet struct {
	Bluesky   string `json:"bluesky_caption"`
	LinkedIn  string `json:"linkedin_caption"`
	Facebook  string `json:"facebook_caption"`
	Instagram string `json:"instagram_caption"`
}

// CaptionResult is the outcome of a caption generation call.
type CaptionResult struct {
	Captions CaptionSet
	Usage    Usage
}

func buildCaptionMessages(in CaptionInput) []Message {
	var contentSection string
	if in.ExtractedContext != nil {
		contentSection = "SOURCE CONTENT SUMMARY:\n" + FormatContextForPrompt(in.ExtractedContext)
	} else {
		contentSection = "SOURCE CONTENT:\n" + in.SourceContent
	}

	postText, _ := json.MarshalIndent(in.PostText, "", "  ")

	userPrompt := contentSection + `

POST TEXT (the social media post these captions will accompany):
` + string(postText) + `

Please generate captions for each platform. Return a JSON object with these keys:
- bluesky_caption (MUST be under 300 characters)
- linkedin_caption
- facebook_caption
- instagram_caption`

	return []Message{
		{Role: RoleSystem, Content: captionSystemPrompt},
		{Role: RoleSystem, Content: captionRulesPrompt},
		{Role: RoleUser, Content: userPrompt},
	}
}

// GenerateCaptions produces platform captions for a generated post. The
// Bluesky caption is truncated if the model overshoots the platform limit.
func GenerateCaptions(ctx context.Context, completer Completer, in CaptionInput) (*CaptionResult, error) {
	resp, err := completer.Complete(ctx, CompletionRequest{
		Messages:    buildCaptionMessages(in),
		Temperature: TemperatureCaptions,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	var captions CaptionSet
	if err := unmarshalModelJSON(resp.Text, &captions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, ErrInvalidJSON)
	}

	captions.Bluesky = truncateCaption(captions.Bluesky, blueskyCaptionLimit)

	return &CaptionResult{
		Captions: captions,
		Usage:    resp.Usage,
	}, nil
}

// truncateCaption shortens a caption to the given character limit, replacing
// the tail with an ellipsis.
func truncateCaption(caption string, limit int) string {
	runes := []rune(caption)
	if len(runes) <= limit {
		return caption
	}
	return string(runes[:limit-3]) + "..."
}
