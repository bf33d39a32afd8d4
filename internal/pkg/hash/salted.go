package hash

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"strings"
)

const (
	sealedVersion = "v1"
	sealedSep     = "$"
	// DefaultSaltSize is the number of random salt bytes drawn per digest.
	DefaultSaltSize = 16
)

// ErrMalformedDigest is returned when a sealed digest cannot be parsed.
var ErrMalformedDigest = errors.New("hash: malformed sealed digest")

// Salted seals plaintext secrets as "v1$<salt-hex>$<digest-hex>" where the
// digest covers the salt and the plaintext. Every Seal call draws a new salt.
type Salted struct {
	inner    Hash
	saltSize int
	random   io.Reader
}

// NewSalted wraps inner with a per-record random salt drawn from crypto/rand.
func NewSalted(inner Hash) *Salted {
	return &Salted{inner: inner, saltSize: DefaultSaltSize, random: rand.Reader}
}

// Seal returns the sealed digest of plain.
func (s *Salted) Seal(plain string) (string, error) {
	salt := make([]byte, s.saltSize)
	if _, err := io.ReadFull(s.random, salt); err != nil {
		return "", err
	}
	saltHex := hex.EncodeToString(salt)

	digest, err := s.inner.Hash(saltHex + ":" + plain)
	if err != nil {
		return "", err
	}

	return strings.Join([]string{sealedVersion, saltHex, string(digest)}, sealedSep), nil
}

// Match reports whether plain matches the sealed digest. It returns
// ErrMalformedDigest when sealed was not produced by Seal.
func (s *Salted) Match(sealed, plain string) (bool, error) {
	parts := strings.Split(sealed, sealedSep)
	if len(parts) != 3 || parts[0] != sealedVersion || parts[1] == "" || parts[2] == "" {
		return false, ErrMalformedDigest
	}
	if _, err := hex.DecodeString(parts[1]); err != nil {
		return false, ErrMalformedDigest
	}

	return s.inner.Verify(parts[2], parts[1]+":"+plain), nil
}
