package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ScrapeResult is the readable content pulled out of a web page.
type ScrapeResult struct {
	Title    string `json:"title"`
	MainText string `json:"main_text"`
}

const scrapeTimeout = 30 * time.Second

var whitespaceRun = regexp.MustCompile(`\s+`)

// unwantedTags and unwantedClasses are stripped before text extraction so
// navigation chrome and ads do not pollute the article body.
var unwantedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
}

var unwantedClasses = []string{"social-share", "advertisement"}

// titleSelectors and contentSelectors are tried in order; the first match wins.
var titleSelectors = []selector{
	{tag: "h1"},
	{tag: "h1", ancestorTag: "article"},
	{tag: "h1", ancestorTag: "main"},
	{class: "article-title"},
	{class: "post-title"},
	{tag: "title"},
}

var contentSelectors = []selector{
	{tag: "article"},
	{tag: "main"},
	{class: "article-content"},
	{class: "post-content"},
	{id: "content"},
	{class: "content"},
}

// ScrapeURL fetches a page and extracts its title and main article text.
func ScrapeURL(ctx context.Context, url string) (*ScrapeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, scrapeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; PrismBot/1.0)")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed with status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}

	return extractReadable(doc)
}

func extractReadable(doc *html.Node) (*ScrapeResult, error) {
	removeUnwanted(doc)

	var title string
	for _, sel := range titleSelectors {
		if node := findFirst(doc, sel); node != nil {
			title = cleanText(textContent(node))
			if title != "" {
				break
			}
		}
	}

	var mainText string
	for _, sel := range contentSelectors {
		if node := findFirst(doc, sel); node != nil {
			mainText = cleanText(textContent(node))
			if mainText != "" {
				break
			}
		}
	}

	// Fall back to substantial paragraphs when no container matched.
	if mainText == "" {
		var paragraphs []string
		walk(doc, func(n *html.Node) bool {
			if n.Type == html.ElementNode && n.Data == "p" {
				if text := cleanText(textContent(n)); len(text) > 50 {
					paragraphs = append(paragraphs, text)
				}
				return false
			}
			return true
		})
		mainText = strings.Join(paragraphs, "\n\n")
	}

	if title == "" && mainText == "" {
		return nil, errors.New("Could not extract content from the webpage")
	}
	if title == "" {
		title = "Untitled Article"
	}

	return &ScrapeResult{Title: title, MainText: mainText}, nil
}

// selector matches an element by tag, class or id, optionally requiring an
// ancestor element with a given tag.
type selector struct {
	tag         string
	class       string
	id          string
	ancestorTag string
}

func (s selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.class != "" && !hasClass(n, s.class) {
		return false
	}
	if s.id != "" && attrValue(n, "id") != s.id {
		return false
	}
	if s.ancestorTag != "" && !hasAncestorTag(n, s.ancestorTag) {
		return false
	}
	return true
}

func findFirst(root *html.Node, sel selector) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if sel.matches(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// walk visits nodes depth-first; visit returns false to skip children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func removeUnwanted(n *html.Node) {
	var c *html.Node
	for c = n.FirstChild; c != nil; {
		next := c.NextSibling
		if isUnwanted(c) {
			n.RemoveChild(c)
		} else {
			removeUnwanted(c)
		}
		c = next
	}
}

func isUnwanted(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if unwantedTags[n.Data] {
		return true
	}
	for _, class := range unwantedClasses {
		if hasClass(n, class) {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
		return true
	})
	return b.String()
}

func cleanText(raw string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func hasAncestorTag(n *html.Node, tag string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}
