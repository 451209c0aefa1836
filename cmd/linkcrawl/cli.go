package main

import (
	"context"
	"io"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Sitemaps linkcrawl.SitemapService
	Store    linkcrawl.CrawlStore
	Batch    *crawl.Batch
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config kong.ConfigFlag `help:"Load flag defaults from a YAML file"`

	Domain     string `short:"d" xor:"target" help:"Domain to crawl, e.g. example.com or https://example.com"`
	List       string `short:"l" xor:"target" help:"File with one domain per line"`
	OutputFile string `short:"o" type:"path" help:"Write URLs to this file instead of stdout"`

	Workers      int           `short:"w" default:"10" help:"Concurrent fetches per domain"`
	Batch        int           `short:"b" default:"10" help:"Domains crawled at once"`
	Timeout      time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	MaxDepth     int           `name:"max-depth" default:"0" help:"Maximum link hops from the root (0 = unbounded)"`
	MaxPages     int           `name:"max-pages" default:"0" help:"Maximum fetches per domain (0 = unbounded)"`
	CrawlTimeout time.Duration `name:"crawl-timeout" default:"0s" help:"Stop all crawls after this long (0 = never)"`
	RPS          float64       `name:"rps" default:"0" help:"Requests per second per domain (0 = unlimited)"`
	Retries      int           `default:"0" help:"Retries for transient fetch failures"`
	Insecure     bool          `default:"true" negatable:"" help:"Skip TLS certificate verification"`
	UserAgent    string        `name:"user-agent" help:"User-Agent header for requests"`
	Sitemap      bool          `help:"Seed each crawl from the site's sitemaps"`
	Bloom        bool          `help:"Use an approximate visited set for very large sites"`
	DB           string        `name:"db" type:"path" help:"Record crawls in this SQLite database"`
	Debug        bool          `help:"Log every fetch to stderr"`
}

// CrawlCmd runs a batch of crawls and writes the discovered URLs.
type CrawlCmd struct {
	Domain       string
	List         string
	OutputFile   string
	CrawlTimeout time.Duration
}
