package dupstat

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"slices"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// Algorithms lists the supported digest names.
//
//nolint:gochecknoglobals // Config constant
var Algorithms = []string{"blake2b", "blake3", "sha256"}

// ErrUnknownAlgorithm is returned for a digest name not in Algorithms.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// newHasher returns a constructor for the named 256-bit digest.
func newHasher(name string) (func() hash.Hash, error) {
	switch name {
	case "blake2b":
		return func() hash.Hash {
			h, err := blake2b.New256(nil)
			if err != nil {
				// Only returned for an oversized key.
				panic(err)
			}

			return h
		}, nil
	case "blake3":
		return func() hash.Hash { return blake3.New() }, nil
	case "sha256":
		return sha256.New, nil
	default:
		return nil, fmt.Errorf("%w %q: must be one of %v", ErrUnknownAlgorithm, name, Algorithms)
	}
}

// ValidAlgorithm reports whether name is a supported digest.
func ValidAlgorithm(name string) bool {
	return slices.Contains(Algorithms, name)
}

// digestFile streams the file at path through h in len(buf)-sized reads and
// returns the hex digest. h is reset first so it can be reused.
func digestFile(path string, h hash.Hash, buf []byte) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h.Reset()

	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("reading %q: %w", path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
