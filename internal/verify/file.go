package verify

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"instcheck/internal/domain"
)

const chunkSize = 4096

// MD5Sum returns the hex MD5 digest of r, reading it in fixed-size chunks.
func MD5Sum(r io.Reader) (string, error) {
	h := md5.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileMD5 returns the hex MD5 digest of the file at path.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return MD5Sum(f)
}

// CheckFile confirms that path exists and matches want. It returns nil or an *Error
// naming the first mismatching attribute; other errors are I/O failures.
func CheckFile(path string, want domain.FileExpectation) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Error{Path: path, Kind: KindMissing}
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return &Error{Path: path, Kind: KindMissing}
	}

	if want.Size >= 0 && info.Size() != want.Size {
		return &Error{
			Path:     path,
			Kind:     KindSize,
			Actual:   strconv.FormatInt(info.Size(), 10),
			Expected: strconv.FormatInt(want.Size, 10),
		}
	}

	if want.Digest != "" {
		sum, err := FileMD5(path)
		if err != nil {
			return fmt.Errorf("checksum %s: %w", path, err)
		}
		if !strings.EqualFold(sum, want.Digest) {
			return &Error{Path: path, Kind: KindDigest, Actual: sum, Expected: want.Digest}
		}
	}
	return nil
}
