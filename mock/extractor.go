package mock

import "github.com/fwojciec/linkcrawl"

var _ linkcrawl.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of linkcrawl.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(baseURL string, html []byte) []string
}

func (e *LinkExtractor) ExtractLinks(baseURL string, html []byte) []string {
	return e.ExtractLinksFn(baseURL, html)
}
