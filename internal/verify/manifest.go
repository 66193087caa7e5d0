package verify

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"instcheck/internal/domain"
)

// Entry is one line of a manifest
type Entry struct {
	Path string
	Want domain.FileExpectation
	Line int
}

// FormatEntry renders a manifest line without the trailing newline.
func FormatEntry(path string, size int64, digest string) string {
	return fmt.Sprintf("%s; %d; %s", path, size, digest)
}

// ParseManifest reads "<path>; <size>; <digest>" lines. Blank lines and lines
// starting with '#' are skipped. An empty size or digest field leaves that
// attribute unchecked. Size and digest are the last two fields, so paths may
// contain ';'; the path is used verbatim.
func ParseManifest(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields, ok := splitEntry(line)
		if !ok {
			return nil, &ManifestError{Line: lineNo, Reason: fmt.Sprintf("expected 3 fields, got %d", strings.Count(line, ";")+1)}
		}
		if strings.TrimSpace(fields[0]) == "" {
			return nil, &ManifestError{Line: lineNo, Reason: "empty path"}
		}

		entry := Entry{Path: fields[0], Want: domain.FileExpectation{Size: -1}, Line: lineNo}
		if fields[1] != "" {
			size, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil || size < 0 {
				return nil, &ManifestError{Line: lineNo, Reason: fmt.Sprintf("invalid size %q", fields[1])}
			}
			entry.Want.Size = size
		}
		entry.Want.Digest = strings.ToLower(fields[2])
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return entries, nil
}

// splitEntry splits line into path, size and digest at its last two ';'.
// Size and digest are trimmed.
func splitEntry(line string) ([3]string, bool) {
	last := strings.LastIndex(line, ";")
	if last < 0 {
		return [3]string{}, false
	}
	sep := strings.LastIndex(line[:last], ";")
	if sep < 0 {
		return [3]string{}, false
	}
	return [3]string{
		line[:sep],
		strings.TrimSpace(line[sep+1 : last]),
		strings.TrimSpace(line[last+1:]),
	}, true
}

// Resolve returns the path to check for a manifest entry. Relative entries are
// joined to prefix; an empty prefix leaves them relative to the working directory.
func Resolve(entryPath, prefix string) string {
	p := filepath.FromSlash(entryPath)
	if filepath.IsAbs(p) || prefix == "" {
		return p
	}
	return filepath.Join(prefix, p)
}

// CheckManifest verifies every entry of the manifest at path and returns the
// first failure.
func CheckManifest(path, prefix string) error {
	entries, err := readManifest(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := CheckFile(Resolve(entry.Path, prefix), entry.Want); err != nil {
			return err
		}
	}
	return nil
}

// Mismatches verifies every entry of the manifest at path and returns all
// failures. The error is set only when the manifest itself cannot be read.
func Mismatches(path, prefix string) ([]error, error) {
	entries, err := readManifest(path)
	if err != nil {
		return nil, err
	}
	var failures []error
	for _, entry := range entries {
		if err := CheckFile(Resolve(entry.Path, prefix), entry.Want); err != nil {
			failures = append(failures, err)
		}
	}
	return failures, nil
}

func readManifest(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	entries, err := ParseManifest(f)
	if err != nil {
		var me *ManifestError
		if errors.As(err, &me) {
			me.Manifest = path
		}
		return nil, err
	}
	return entries, nil
}

// FindManifests returns the regular, non-hidden files in dir matching pattern,
// sorted by name.
func FindManifests(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read checker directory: %w", err)
	}

	var manifests []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		matched, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("manifest pattern %q: %w", pattern, err)
		}
		if matched {
			manifests = append(manifests, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(manifests)
	return manifests, nil
}

// CheckDir verifies every manifest found in dir and returns the first failure.
func CheckDir(dir, pattern, prefix string) error {
	manifests, err := FindManifests(dir, pattern)
	if err != nil {
		return err
	}
	if len(manifests) == 0 {
		return fmt.Errorf("no manifests matching %q in %s", pattern, dir)
	}
	for _, m := range manifests {
		if err := CheckManifest(m, prefix); err != nil {
			return err
		}
	}
	return nil
}
