package verify

import "fmt"

// Kind identifies which file attribute failed verification
type Kind int

const (
	KindMissing Kind = iota
	KindSize
	KindDigest
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindSize:
		return "size"
	case KindDigest:
		return "digest"
	default:
		return "unknown"
	}
}

// Error reports a file that does not match its expectation
type Error struct {
	Path     string
	Kind     Kind
	Actual   string
	Expected string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissing:
		return fmt.Sprintf("%s: file does not exist", e.Path)
	case KindSize:
		return fmt.Sprintf("%s: unexpected size. Actual: %s Expected: %s", e.Path, e.Actual, e.Expected)
	default:
		return fmt.Sprintf("%s: md5sum mismatch. Actual: %s Expected: %s", e.Path, e.Actual, e.Expected)
	}
}

// ManifestError reports a manifest line that cannot be parsed
type ManifestError struct {
	Manifest string
	Line     int
	Reason   string
}

func (e *ManifestError) Error() string {
	if e.Manifest == "" {
		return fmt.Sprintf("manifest line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.Manifest, e.Line, e.Reason)
}
