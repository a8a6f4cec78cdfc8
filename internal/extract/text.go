// Package extract turns crawled pages into contact details.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "li": {}, "tr": {}, "br": {}, "section": {},
	"article": {}, "footer": {}, "header": {}, "h1": {}, "h2": {}, "h3": {},
	"h4": {}, "h5": {}, "h6": {},
}

// PageText flattens an HTML document into plain text. Scripts, styles and
// images are dropped; block-level elements become newlines so regex windows
// stay readable.
func PageText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, svg, img, iframe").Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, body *goquery.Selection) {
		flatten(body, &b)
	})
	if b.Len() == 0 {
		// Fragments without a body element still carry text.
		flatten(doc.Selection, &b)
	}
	return collapseWhitespace(b.String()), nil
}

// PageTitle returns the document title, trimmed.
func PageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func flatten(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "#text" {
			b.WriteString(node.Text())
			return
		}
		if _, block := blockTags[goquery.NodeName(node)]; block {
			b.WriteString("\n")
		}
		flatten(node, b)
		if _, block := blockTags[goquery.NodeName(node)]; block {
			b.WriteString("\n")
		}
	})
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
