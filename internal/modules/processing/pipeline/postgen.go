package pipeline

import (
	"context"
	"fmt"

	"github.com/content-prism/prism-core/internal/models"
)

// GenerationInput carries everything needed to generate post text.
type GenerationInput struct {
	SourceContent       string
	ExtractedContext    *models.ExtractedContext
	BrandVoice          string
	Positioning         string
	CreatorNotes        string
	TemplateDescription string
	TemplateSchema      string
}

// GenerationResult is the outcome of a post text generation call.
type GenerationResult struct {
	Text   string
	Parsed map[string]string
	Usage  Usage
}

func buildGenerationSystemPrompt(templateDescription, templateSchema string) string {
	return fmt.Sprintf(`You are a professional social media content writer creating engaging posts for academic research and institutional content.

ROLE AND CONSTRAINTS:
- You write accessible content for a mix of academics and general public
- You are a reporter/communicator, not a marketer
- You maintain factual accuracy while making content engaging
- You prioritize creator notes when provided

RESPONSE FORMAT:
Your response MUST be valid JSON matching the template schema structure exactly.
Each key in the schema represents a text field to fill.

For example, if schema has keys "p1a" and "p1b":
{
  "p1a": "Your generated text for p1a",
  "p1b": "Your generated text for p1b"
}

TEMPLATE DETAILS:
Description: %s

Schema:
%s`, templateDescription, templateSchema)
}

// buildGenerationMessages assembles the chat transcript. Brand voice,
// positioning and creator notes each go in as a separate user turn with an
// assistant acknowledgement so the model treats them as settled context.
func buildGenerationMessages(in GenerationInput) []Message {
	messages := []Message{
		{Role: RoleSystem, Content: buildGenerationSystemPrompt(in.TemplateDescription, in.TemplateSchema)},
	}

	if in.BrandVoice != "" {
		messages = append(messages,
			Message{Role: RoleUser, Content: "BRAND VOICE GUIDELINES:\n" + in.BrandVoice},
			Message{Role: RoleAssistant, Content: "I understand the brand voice guidelines. I will write in this voice."},
		)
	}

	if in.Positioning != "" {
		messages = append(messages,
			Message{Role: RoleUser, Content: in.Positioning},
			Message{Role: RoleAssistant, Content: "I understand the emotional positioning. The first panel will have the strongest emotional impact as the hook."},
		)
	}

	if in.CreatorNotes != "" {
		messages = append(messages,
			Message{Role: RoleUser, Content: "CREATOR NOTES (PRIORITY INSTRUCTIONS):\n" + in.CreatorNotes},
			Message{Role: RoleAssistant, Content: "I understand and will prioritize these creator notes in my generation."},
		)
	}

	var contentPrompt string
	if in.ExtractedContext != nil {
		contentPrompt = `Based on the following extracted key information from the source content, generate the post text according to the template schema.

EXTRACTED KEY INFORMATION:
` + FormatContextForPrompt(in.ExtractedContext) + `

Please generate the post text now, formatted as a valid JSON object matching the template schema.`
	} else {
		contentPrompt = `Based on the following source content, generate the post text according to the template schema.

SOURCE CONTENT:
` + in.SourceContent + `

Please generate the post text now, formatted as a valid JSON object matching the template schema.`
	}

	return append(messages, Message{Role: RoleUser, Content: contentPrompt})
}

// GeneratePostText runs the generation phase and validates that the model
// returned a JSON object matching the template schema shape.
func GeneratePostText(ctx context.Context, completer Completer, in GenerationInput) (*GenerationResult, error) {
	resp, err := completer.Complete(ctx, CompletionRequest{
		Messages:    buildGenerationMessages(in),
		Temperature: TemperatureGeneration,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	var parsed map[string]string
	if err := unmarshalModelJSON(resp.Text, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, ErrInvalidJSON)
	}

	return &GenerationResult{
		Text:   resp.Text,
		Parsed: parsed,
		Usage:  resp.Usage,
	}, nil
}
