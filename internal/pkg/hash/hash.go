package hash

// Hash produces and verifies digests of plaintext strings.
type Hash interface {
	// Hash returns the hex-encoded digest of str.
	Hash(str string) ([]byte, error)
	// Verify checks whether the plaintext str matches hashed.
	Verify(hashed, str string) bool
}
