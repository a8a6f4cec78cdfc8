package crawler

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// candidate is a scored link waiting in the frontier.
type candidate struct {
	url   string
	score int
}

var skippedSchemes = []string{"mailto:", "tel:", "javascript:", "data:"}

var binaryExtensions = []string{
	".pdf", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".zip", ".gz",
	".mp4", ".mp3", ".webm", ".ico", ".css", ".js", ".woff", ".woff2",
}

// harvestLinks extracts same-host links from an HTML document, scores them
// against the contact keywords and returns them highest score first. Links
// that score zero are dropped; the crawl only follows contact-looking URLs.
func harvestLinks(pageHTML, baseURL string, keywords []string) []candidate {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []candidate
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		for _, scheme := range skippedSchemes {
			if strings.HasPrefix(strings.ToLower(href), scheme) {
				return
			}
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !strings.EqualFold(resolved.Hostname(), base.Hostname()) {
			return
		}
		if looksBinary(resolved.Path) {
			return
		}
		resolved.Fragment = ""

		link := resolved.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		score := scoreLink(resolved, sel.Text(), keywords)
		if score <= 0 {
			return
		}
		out = append(out, candidate{url: link, score: score})
	})

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	return out
}

// scoreLink weighs a link by contact-keyword hits in its path and query
// plus a small bonus when the anchor text mentions contact.
func scoreLink(u *url.URL, anchorText string, keywords []string) int {
	haystack := strings.ToLower(u.Path + "?" + u.RawQuery)
	score := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			score += 2
		}
	}
	if strings.Contains(strings.ToLower(anchorText), "contact") {
		score++
	}
	return score
}

func looksBinary(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range binaryExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
