package discovery

import (
	"path/filepath"
	"strings"
)

// Filter filters test case files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the configuration files whose file name or parent directory
// name matches pattern. Patterns support * and ? wildcards ("*offline*",
// "web?.ini"); a pattern without wildcards is a substring match.
func (f *Filter) FilterByName(paths []string, pattern string) []string {
	if pattern == "" {
		return paths
	}

	var filtered []string
	for _, path := range paths {
		candidates := []string{filepath.Base(path), filepath.Base(filepath.Dir(path))}
		for _, name := range candidates {
			if matchName(pattern, name) {
				filtered = append(filtered, path)
				break
			}
		}
	}
	return filtered
}

func matchName(pattern, name string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// "*Payment*"-style patterns also match when every literal part occurs in
	// order, which filepath.Match rejects for names containing separators.
	parts := strings.FieldsFunc(pattern, func(r rune) bool { return r == '*' || r == '?' })
	if len(parts) == 0 {
		return false
	}
	rest := name
	for _, part := range parts {
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	return true
}
