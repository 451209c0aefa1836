// Package fs provides file-based input and output for crawls.
package fs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fwojciec/linkcrawl"
)

// ReadDomains reads one domain per line from the file at path. Surrounding
// whitespace is trimmed; blank lines and lines starting with '#' are skipped.
// A missing file returns an ENOTFOUND error.
func ReadDomains(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, linkcrawl.Errorf(linkcrawl.ENOTFOUND, "'%s' file not found.", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseDomains(f)
}

// ParseDomains reads one domain per line from r.
func ParseDomains(r io.Reader) ([]string, error) {
	var domains []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading domains: %w", err)
	}
	return domains, nil
}
