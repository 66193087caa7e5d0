package commands

import (
	"io"
	"os"
)

// openOutput returns the file at path, or stdout when path is empty or "-".
// The returned close function must be called exactly once.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
