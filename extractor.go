package linkcrawl

// LinkExtractor finds hyperlink targets in markup.
type LinkExtractor interface {
	// ExtractLinks returns the absolute, normalized targets of the anchors
	// in html, resolved against baseURL, in document order and without
	// duplicates. Malformed markup yields no links rather than an error.
	ExtractLinks(baseURL string, html []byte) []string
}
