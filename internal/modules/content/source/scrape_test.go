package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseDoc(t *testing.T, raw string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

func TestExtractReadableArticle(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Page Title</title></head><body>
		<nav>Home About Contact</nav>
		<article>
			<h1>The Real Headline</h1>
			<p>First paragraph of the article body.</p>
			<p>Second paragraph of the article body.</p>
		</article>
		<footer>Copyright</footer>
	</body></html>`)

	result, err := extractReadable(doc)
	require.NoError(t, err)

	assert.Equal(t, "The Real Headline", result.Title)
	assert.Contains(t, result.MainText, "First paragraph of the article body.")
	assert.NotContains(t, result.MainText, "Home About Contact")
	assert.NotContains(t, result.MainText, "Copyright")
}

func TestExtractReadableRemovesUnwanted(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<article>
			<h1>Headline</h1>
			<script>var tracking = true;</script>
			<style>.x { color: red }</style>
			<div class="social-share">Share on everything</div>
			<div class="advertisement">Buy now</div>
			<p>Actual article text goes here.</p>
		</article>
	</body></html>`)

	result, err := extractReadable(doc)
	require.NoError(t, err)

	assert.NotContains(t, result.MainText, "tracking")
	assert.NotContains(t, result.MainText, "Share on everything")
	assert.NotContains(t, result.MainText, "Buy now")
	assert.Contains(t, result.MainText, "Actual article text goes here.")
}

func TestExtractReadableClassSelectors(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div class="post-title">Classy Title</div>
		<div class="post-content">Body text from the classed container.</div>
	</body></html>`)

	result, err := extractReadable(doc)
	require.NoError(t, err)
	assert.Equal(t, "Classy Title", result.Title)
	assert.Equal(t, "Body text from the classed container.", result.MainText)
}

func TestExtractReadableParagraphFallback(t *testing.T) {
	long := strings.Repeat("Long enough paragraph sentence. ", 4)
	doc := parseDoc(t, `<html><body>
		<div>
			<p>short</p>
			<p>`+long+`</p>
			<p>`+long+`</p>
		</div>
	</body></html>`)

	result, err := extractReadable(doc)
	require.NoError(t, err)

	// Short paragraphs are dropped, substantial ones joined by blank lines.
	assert.Equal(t, "Untitled Article", result.Title)
	assert.NotContains(t, result.MainText, "short")
	assert.Len(t, strings.Split(result.MainText, "\n\n"), 2)
}

func TestExtractReadableTitleFallsBackToDocumentTitle(t *testing.T) {
	long := strings.Repeat("Paragraph body text with enough length here. ", 3)
	doc := parseDoc(t, `<html><head><title>  Document   Title </title></head><body>
		<p>`+long+`</p>
	</body></html>`)

	result, err := extractReadable(doc)
	require.NoError(t, err)
	assert.Equal(t, "Document Title", result.Title)
}

func TestExtractReadableNothingFound(t *testing.T) {
	doc := parseDoc(t, `<html><body><div>tiny</div></body></html>`)

	_, err := extractReadable(doc)
	require.Error(t, err)
	assert.Equal(t, "Could not extract content from the webpage", err.Error())
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", cleanText("  a \n\t b   c  "))
	assert.Equal(t, "", cleanText(" \n "))
}

func TestSelectorMatching(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<main><h1 id="hero" class="big bold">Inside Main</h1></main>
		<h1>Outside</h1>
	</body></html>`)

	node := findFirst(doc, selector{tag: "h1", ancestorTag: "main"})
	require.NotNil(t, node)
	assert.Equal(t, "hero", attrValue(node, "id"))
	assert.True(t, hasClass(node, "bold"))
	assert.False(t, hasClass(node, "huge"))

	assert.Nil(t, findFirst(doc, selector{tag: "h2"}))
	assert.NotNil(t, findFirst(doc, selector{id: "hero"}))
}
