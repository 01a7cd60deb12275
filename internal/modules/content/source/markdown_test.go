package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownToText(t *testing.T) {
	text, err := markdownToText("# Heading\n\nFirst paragraph with **bold** text.\n\nSecond paragraph.")
	require.NoError(t, err)

	assert.Equal(t, "Heading\n\nFirst paragraph with bold text.\n\nSecond paragraph.", text)
}

func TestMarkdownToTextLists(t *testing.T) {
	text, err := markdownToText("Intro line.\n\n- first item\n- second item")
	require.NoError(t, err)

	assert.Contains(t, text, "Intro line.")
	assert.Contains(t, text, "first item")
	assert.Contains(t, text, "second item")
	assert.NotContains(t, text, "-")
}

func TestMarkdownToTextGFMTable(t *testing.T) {
	text, err := markdownToText("| a | b |\n|---|---|\n| one | two |")
	require.NoError(t, err)

	assert.Contains(t, text, "one")
	assert.Contains(t, text, "two")
	assert.NotContains(t, text, "|")
}

func TestMarkdownToTextEmpty(t *testing.T) {
	text, err := markdownToText("")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}
