package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/content-prism/prism-core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCaptions(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{{
		Text: `{
			"bluesky_caption": "short and punchy",
			"linkedin_caption": "professional take",
			"facebook_caption": "conversational take",
			"instagram_caption": "visual take"
		}`,
		Usage: Usage{TotalTokens: 80},
	}}}

	result, err := GenerateCaptions(context.Background(), completer, CaptionInput{
		SourceContent: "the article",
		PostText:      map[string]string{"p1a": "panel text"},
	})
	require.NoError(t, err)

	assert.Equal(t, "short and punchy", result.Captions.Bluesky)
	assert.Equal(t, "professional take", result.Captions.LinkedIn)
	assert.Equal(t, "conversational take", result.Captions.Facebook)
	assert.Equal(t, "visual take", result.Captions.Instagram)

	require.Len(t, completer.requests, 1)
	assert.Equal(t, TemperatureCaptions, completer.requests[0].Temperature)
}

func TestGenerateCaptionsTruncatesBluesky(t *testing.T) {
	long := strings.Repeat("é", 350)
	completer := &stubCompleter{responses: []*Completion{{
		Text: `{"bluesky_caption": "` + long + `", "linkedin_caption": "x", "facebook_caption": "x", "instagram_caption": "x"}`,
	}}}

	result, err := GenerateCaptions(context.Background(), completer, CaptionInput{
		SourceContent: "the article",
	})
	require.NoError(t, err)

	assert.Equal(t, 300, utf8.RuneCountInString(result.Captions.Bluesky))
	assert.True(t, strings.HasSuffix(result.Captions.Bluesky, "..."))
}

func TestTruncateCaption(t *testing.T) {
	assert.Equal(t, "short", truncateCaption("short", 300))

	exactly := strings.Repeat("a", 300)
	assert.Equal(t, exactly, truncateCaption(exactly, 300))

	over := strings.Repeat("a", 301)
	truncated := truncateCaption(over, 300)
	assert.Equal(t, 300, len(truncated))
	assert.Equal(t, strings.Repeat("a", 297)+"...", truncated)
}

func TestBuildCaptionMessagesPrefersExtraction(t *testing.T) {
	messages := buildCaptionMessages(CaptionInput{
		SourceContent:    "raw source",
		ExtractedContext: &models.ExtractedContext{MainThesis: "Thesis."},
		PostText:         map[string]string{"p1a": "panel"},
	})

	require.Len(t, messages, 3)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Equal(t, RoleSystem, messages[1].Role)

	user := messages[2]
	assert.Contains(t, user.Content, "SOURCE CONTENT SUMMARY:")
	assert.Contains(t, user.Content, "MAIN THESIS:\nThesis.")
	assert.NotContains(t, user.Content, "raw source")
	assert.Contains(t, user.Content, `"p1a": "panel"`)
}

func TestGenerateCaptionsInvalidJSON(t *testing.T) {
	completer := &stubCompleter{responses: []*Completion{{Text: "nope"}}}
	_, err := GenerateCaptions(context.Background(), completer, CaptionInput{SourceContent: "x"})
	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerateCaptionsWrapsCompleterError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("upstream down")}
	_, err := GenerateCaptions(context.Background(), completer, CaptionInput{SourceContent: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
}
