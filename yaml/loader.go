// Package yaml loads kong flag defaults from YAML configuration files.
package yaml

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// Loader is a kong.ConfigurationLoader for flat YAML documents whose keys are
// flag names. Keys may use dashes or underscores:
//
//	workers: 20
//	max_depth: 3
//	crawl-timeout: 5m
//
// Nested mappings are flattened with dashes, so `crawl: {timeout: 5m}`
// resolves the --crawl-timeout flag.
func Loader(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}

	values := make(map[string]any)
	flatten("", doc, values)

	var resolver kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		v, ok := values[key(flag.Name)]
		if !ok {
			return nil, nil
		}
		return v, nil
	}
	return resolver, nil
}

// key normalizes a flag or YAML key for lookup.
func key(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}

func flatten(prefix string, doc map[string]any, out map[string]any) {
	for k, v := range doc {
		name := key(k)
		if prefix != "" {
			name = prefix + "-" + name
		}
		switch v := v.(type) {
		case map[string]any:
			flatten(name, v, out)
		case []any:
			parts := make([]string, len(v))
			for i, item := range v {
				parts[i] = fmt.Sprint(item)
			}
			out[name] = strings.Join(parts, ",")
		case nil:
		case string:
			out[name] = v
		default:
			out[name] = fmt.Sprint(v)
		}
	}
}
