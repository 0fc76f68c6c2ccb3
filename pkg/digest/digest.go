// Package digest computes the content hashes used to name store entries.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sort"
	"strings"

	"github.com/arthur-debert/wasmstash/pkg/errors"
	"github.com/zeebo/blake3"
)

const (
	// SHA256 is the default algorithm; store entries are named by it.
	SHA256 = "sha256"

	// BLAKE3 is the optional faster algorithm.
	BLAKE3 = "blake3"
)

var constructors = map[string]func() hash.Hash{
	SHA256: sha256.New,
	BLAKE3: func() hash.Hash { return blake3.New() },
}

// New returns a fresh hash for the named algorithm.
func New(algorithm string) (hash.Hash, error) {
	ctor, ok := constructors[strings.ToLower(algorithm)]
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown digest algorithm %q", algorithm).
			WithDetail("supported", Algorithms())
	}
	return ctor(), nil
}

// Sum hashes data and returns the lowercase hex digest.
func Sum(algorithm string, data []byte) (string, error) {
	h, err := New(algorithm)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Supported reports whether algorithm is known.
func Supported(algorithm string) bool {
	_, ok := constructors[strings.ToLower(algorithm)]
	return ok
}

// Algorithms lists the known algorithm names, sorted.
func Algorithms() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Valid reports whether s looks like a lowercase hex digest. Every
// supported algorithm produces 32-byte sums.
func Valid(s string) bool {
	if len(s) != 2*sha256.Size {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
