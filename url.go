package linkcrawl

import (
	"net/url"
	"strings"
)

// Origin identifies the scheme and host a crawl is scoped to.
// Host keeps a non-default port; default ports are stripped so that
// https://example.com and https://example.com:443 are the same origin.
type Origin struct {
	Scheme string
	Host   string
}

// ParseOrigin parses a root domain URL into its normalized origin.
// Only http and https origins with a non-empty host are accepted.
func ParseOrigin(raw string) (Origin, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Origin{}, Errorf(EINVALID, "invalid domain %q: %v", raw, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Origin{}, Errorf(EINVALID, "invalid domain %q: unsupported scheme", raw)
	}
	if u.Hostname() == "" {
		return Origin{}, Errorf(EINVALID, "invalid domain %q: missing host", raw)
	}
	return Origin{Scheme: scheme, Host: normalizeHost(scheme, u.Host)}, nil
}

// String returns the origin as scheme://host.
func (o Origin) String() string {
	if o.IsZero() {
		return ""
	}
	return o.Scheme + "://" + o.Host
}

// URL returns the origin's root URL.
func (o Origin) URL() string {
	return o.String() + "/"
}

// IsZero reports whether the origin is unset.
func (o Origin) IsZero() bool {
	return o.Scheme == "" && o.Host == ""
}

// Contains reports whether u belongs to the origin: scheme, host and port
// must all be equal. Subdomains of the origin's host are not contained.
func (o Origin) Contains(u *url.URL) bool {
	if u == nil || o.IsZero() {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != o.Scheme {
		return false
	}
	return normalizeHost(scheme, u.Host) == o.Host
}

// InScope reports whether rawURL belongs to root.
// Unparsable URLs are never in scope.
func InScope(rawURL string, root Origin) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return root.Contains(u)
}

// NormalizeURL returns the canonical form used for deduplication:
// fragment removed, scheme and host lowercased, default port stripped,
// and an empty path replaced by "/". Relative and non-HTTP URLs are rejected.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", raw, err)
	}
	if !u.IsAbs() {
		return "", Errorf(EINVALID, "URL %q is not absolute", raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", Errorf(EINVALID, "URL %q has unsupported scheme", raw)
	}
	if u.Hostname() == "" {
		return "", Errorf(EINVALID, "URL %q has no host", raw)
	}
	u.Host = normalizeHost(u.Scheme, u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String(), nil
}

// DomainURL turns a domain as typed by a user into a root URL.
// A missing scheme defaults to https.
func DomainURL(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" || strings.Contains(domain, "://") {
		return domain
	}
	return "https://" + domain
}

func normalizeHost(scheme, host string) string {
	host = strings.ToLower(host)
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	return strings.TrimSuffix(host, ":")
}
