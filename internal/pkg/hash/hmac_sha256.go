package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 implements Hash with HMAC SHA-256 and supports key rotation:
// digests are produced with the current secret and accepted under the
// current or any previous secret.
type HMACSHA256 struct {
	keys [][]byte
}

// NewHMACSHA256 creates a hasher signing with secret. Digests made under any
// of previous still verify until those secrets are removed. Blank previous
// secrets are skipped.
func NewHMACSHA256(secret string, previous ...string) *HMACSHA256 {
	keys := make([][]byte, 0, 1+len(previous))
	keys = append(keys, []byte(secret))
	for _, p := range previous {
		if p != "" && p != secret {
			keys = append(keys, []byte(p))
		}
	}
	return &HMACSHA256{keys: keys}
}

// Hash returns the hex-encoded HMAC of str under the current secret.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	sum := sum(s.keys[0], str)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out, nil
}

// Verify reports whether hashed is the hex HMAC of str under any known secret.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	want, err := hex.DecodeString(hashed)
	if err != nil || len(want) != sha256.Size {
		return false
	}

	ok := false
	for _, key := range s.keys {
		if hmac.Equal(want, sum(key, str)) {
			ok = true
		}
	}
	return ok
}

func sum(key []byte, str string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(str))
	return h.Sum(nil)
}
