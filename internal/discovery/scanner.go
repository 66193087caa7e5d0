package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner scans for test case configuration files in a directory
type Scanner struct {
	skipDirs map[string]bool
	pattern  string
}

// NewScanner creates a new Scanner matching file names against pattern and
// skipping the given directory names
func NewScanner(skipDirs []string, pattern string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, pattern: pattern}
}

// Scan finds all test case configuration files below root, sorted by path
func (s *Scanner) Scan(root string) ([]string, error) {
	var configs []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test case path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test case path is not a directory: %s", root)
	}
	if _, err := filepath.Match(s.pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid test case pattern %q: %w", s.pattern, err)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if matched, _ := filepath.Match(s.pattern, d.Name()); matched {
			configs = append(configs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(configs)
	return configs, nil
}
