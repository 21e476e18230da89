// Package fetch downloads dataset files with resume support, integrity
// verification, bounded retries, and ZIP archive extraction.
package fetch

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
)

// ErrUnsupportedHash is returned for hash algorithm names this package does
// not know.
var ErrUnsupportedHash = errors.New("unsupported hash algorithm")

// ErrIntegrity is returned when a downloaded file's digest does not match
// the expected value.
var ErrIntegrity = errors.New("hash mismatch")

const hashBlockSize = 4096

func newHasher(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "sha256":
		return sha256.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "md5":
		return md5.New(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedHash, algorithm)
}

// VerifyHash streams the file at path through the named digest algorithm and
// reports whether the hex digest equals expected. The comparison is
// case-sensitive.
func VerifyHash(path, expected, algorithm string) (bool, error) {
	h, err := newHasher(algorithm)
	if err != nil {
		return false, err
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, hashBlockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)) == expected, nil
}
