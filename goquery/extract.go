// Package goquery implements linkcrawl.LinkExtractor on top of goquery.
package goquery

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/linkcrawl"
)

// Ensure LinkExtractor implements linkcrawl.LinkExtractor at compile time.
var _ linkcrawl.LinkExtractor = (*LinkExtractor)(nil)

// DefaultLinkSelector matches every element whose href is a navigable link.
const DefaultLinkSelector = "a[href], area[href]"

// LinkExtractor pulls hyperlink targets out of HTML documents.
type LinkExtractor struct {
	selector string
}

// NewLinkExtractor creates a LinkExtractor matching DefaultLinkSelector.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{selector: DefaultLinkSelector}
}

// ExtractLinks returns the absolute, normalized targets of every link in
// html, resolved against baseURL (or the document's <base href>).
// Results are deduplicated and keep document order. Fragment-only links
// and non-HTTP schemes are skipped. Unparsable input yields no links.
func (e *LinkExtractor) ExtractLinks(baseURL string, html []byte) []string {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find(e.selector).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links
}

// resolveURL resolves href against base and normalizes the result.
// Returns empty string if href cannot be parsed or does not resolve to
// an http(s) URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	normalized, err := linkcrawl.NormalizeURL(base.ResolveReference(ref).String())
	if err != nil {
		return ""
	}
	return normalized
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
