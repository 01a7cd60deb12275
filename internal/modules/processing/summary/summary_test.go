package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKeyChangesWithText(t *testing.T) {
	a := hashKey("c1", "original text")
	b := hashKey("c1", "edited text")
	c := hashKey("c2", "original text")

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, hashKey("c1", "original text"))
}

func TestUnmarshalSummaryJSON(t *testing.T) {
	var out struct {
		Summary string `json:"summary"`
	}

	require.NoError(t, unmarshalSummaryJSON(`{"summary":"plain"}`, &out))
	assert.Equal(t, "plain", out.Summary)

	require.NoError(t, unmarshalSummaryJSON("```json\n{\"summary\":\"fenced\"}\n```", &out))
	assert.Equal(t, "fenced", out.Summary)

	require.NoError(t, unmarshalSummaryJSON(`Sure! {"summary":"embedded"} done`, &out))
	assert.Equal(t, "embedded", out.Summary)

	assert.Error(t, unmarshalSummaryJSON("no json here", &out))
}

func TestExtractSummaryFromResponse(t *testing.T) {
	text, err := extractSummaryFromResponse(`{"summary": "  a tight paragraph  "}`)
	require.NoError(t, err)
	assert.Equal(t, "a tight paragraph", text)

	_, err = extractSummaryFromResponse(`{"summary": ""}`)
	assert.Error(t, err)

	_, err = extractSummaryFromResponse("garbage")
	assert.Error(t, err)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 100))

	long := strings.Repeat("é", 150)
	truncated := truncateText(long, 100)
	assert.Equal(t, strings.Repeat("é", 100)+"...", truncated)
}

func TestBuildSummaryPromptTruncatesContent(t *testing.T) {
	long := strings.Repeat("a", 13000)
	system, prompt := buildSummaryPrompt(long)

	assert.Contains(t, system, "200")
	assert.Contains(t, prompt, "<<<CONTENT")
	assert.Less(t, len(prompt), 12200)
}

func TestNormalizeOpenAIBaseURL(t *testing.T) {
	assert.Equal(t, "", normalizeOpenAIBaseURL(""))
	assert.Equal(t, "https://api.openai.com/v1", normalizeOpenAIBaseURL("https://api.openai.com"))
	assert.Equal(t, "https://gw.example.com/v1", normalizeOpenAIBaseURL("https://gw.example.com/v1/"))
}

func TestNormalizeOpenAICompatibleEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.openai.com", normalizeOpenAICompatibleEndpoint(""))
	assert.Equal(t, "https://gw.example.com", normalizeOpenAICompatibleEndpoint("https://gw.example.com/v1"))
	assert.Equal(t, "https://gw.example.com", normalizeOpenAICompatibleEndpoint("https://gw.example.com/"))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, splitLines("a\nb\n"))
	assert.Equal(t, []string{"only"}, splitLines("only"))
}
