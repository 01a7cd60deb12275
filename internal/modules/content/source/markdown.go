package source

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// markdownToText renders markdown to HTML and strips the markup, keeping
// block boundaries as newlines so the prose stays readable.
func markdownToText(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}

	doc, err := html.Parse(&buf)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	walk(doc, func(n *html.Node) bool {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if isBlockElement(n.Data) && b.Len() > 0 {
				b.WriteString("\n\n")
			}
		}
		return true
	})

	paragraphs := strings.Split(b.String(), "\n\n")
	out := paragraphs[:0]
	for _, p := range paragraphs {
		if p = cleanText(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n"), nil
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "blockquote", "pre", "tr":
		return true
	}
	return false
}
