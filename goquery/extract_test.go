package goquery_test

import (
	"testing"

	"github.com/fwojciec/linkcrawl/goquery"
	"github.com/stretchr/testify/assert"
)

func TestLinkExtractor_ExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("resolves relative links against the page URL", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<body>
	<a href="/x">X</a>
	<a href="../c?x=1">C</a>
	<a href="d">D</a>
</body>
</html>`

		e := goquery.NewLinkExtractor()
		links := e.ExtractLinks("https://example.com/a/b/", []byte(html))

		assert.Equal(t, []string{
			"https://example.com/x",
			"https://example.com/a/c?x=1",
			"https://example.com/a/b/d",
		}, links)
	})

	t.Run("keeps absolute links to other hosts", func(t *testing.T) {
		t.Parallel()

		html := `<a href="https://other.com/y">Other</a><a href="//cdn.example.com/z">CDN</a>`

		e := goquery.NewLinkExtractor()
		links := e.ExtractLinks("https://example.com/", []byte(html))

		assert.Equal(t, []string{
			"https://other.com/y",
			"https://cdn.example.com/z",
		}, links)
	})

	t.Run("skips fragment-only and non-HTTP links", func(t *testing.T) {
		t.Parallel()

		html := `
<a href="#section">Anchor</a>
<a href="javascript:void(0)">JS</a>
<a href="mailto:a@example.com">Mail</a>
<a href="tel:+123">Phone</a>
<a href="data:text/plain,hi">Data</a>
<a href="ftp://example.com/file">FTP</a>
<a href="">Empty</a>
<a>No href</a>
<a href="/ok">OK</a>`

		e := goquery.NewLinkExtractor()
		links := e.ExtractLinks("https://example.com/", []byte(html))

		assert.Equal(t, []string{"https://example.com/ok"}, links)
	})

	t.Run("strips fragments and deduplicates in document order", func(t *testing.T) {
		t.Parallel()

		html := `
<a href="/b#top">B top</a>
<a href="/a">A</a>
<a href="/b">B</a>
<a href="HTTPS://EXAMPLE.COM:443/a">A again</a>`

		e := goquery.NewLinkExtractor()
		links := e.ExtractLinks("https://example.com/", []byte(html))

		assert.Equal(t, []string{
			"https://example.com/b",
			"https://example.com/a",
		}, links)
	})

	t.Run("keeps self links that are not fragment-only", func(t *testing.T) {
		t.Parallel()

		html := `<a href="/page">Self</a>`

		e := goquery.NewLinkExtractor()
		links := e.ExtractLinks("https://example.com/page", []byte(html))

		assert.Equal(t, []string{"https://example.com/page"}, links)
	})

	t.Run("honors base element", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><base href="/docs/"></head>
<body><a href="intro">Intro</a></body></html>`

		e := goquery.NewLinkExtractor()
		links := e.ExtractLinks("https://example.com/other/page", []byte(html))

		assert.Equal(t, []string{"https://example.com/docs/intro"}, links)
	})

	t.Run("includes area elements", func(t *testing.T) {
		t.Parallel()

		html := `<map name="m"><area href="/region" shape="rect" coords="0,0,1,1"></map>`

		e := goquery.NewLinkExtractor()
		links := e.ExtractLinks("https://example.com/", []byte(html))

		assert.Equal(t, []string{"https://example.com/region"}, links)
	})

	t.Run("tolerates malformed markup", func(t *testing.T) {
		t.Parallel()

		html := `<div><a href="/one">one<p><a href="/two">two</div></span>`

		e := goquery.NewLinkExtractor()
		links := e.ExtractLinks("https://example.com/", []byte(html))

		assert.Equal(t, []string{
			"https://example.com/one",
			"https://example.com/two",
		}, links)
	})

	t.Run("returns no links for empty document", func(t *testing.T) {
		t.Parallel()

		e := goquery.NewLinkExtractor()
		assert.Empty(t, e.ExtractLinks("https://example.com/", nil))
	})

	t.Run("returns no links for relative base URL", func(t *testing.T) {
		t.Parallel()

		e := goquery.NewLinkExtractor()
		assert.Empty(t, e.ExtractLinks("/relative", []byte(`<a href="/x">x</a>`)))
	})
}
