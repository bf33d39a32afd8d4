package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSHA256_HashVerifyOtherKey(t *testing.T) {
	h := NewHMACSHA256("secret")

	digest, err := h.Hash("123456")
	require.NoError(t, err)
	assert.Len(t, digest, 64)

	assert.True(t, h.Verify(string(digest), "123456"))
	assert.False(t, h.Verify(string(digest), "654321"))
	assert.False(t, NewHMACSHA256("other").Verify(string(digest), "123456"))
}

func TestSalted_SealMatch(t *testing.T) {
	s := NewSalted(NewHMACSHA256("secret"))

	sealed, err := s.Seal("482913")
	require.NoError(t, err)

	parts := strings.Split(sealed, "$")
	require.Len(t, parts, 3)
	assert.Equal(t, "v1", parts[0])
	assert.Len(t, parts[1], DefaultSaltSize*2)
	assert.Len(t, parts[2], 64)

	ok, err := s.Match(sealed, "482913")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Match(sealed, "482914")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSalted_FreshSaltPerSeal(t *testing.T) {
	s := NewSalted(NewHMACSHA256("secret"))

	a, err := s.Seal("111111")
	require.NoError(t, err)
	b, err := s.Seal("111111")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSalted_Malformed(t *testing.T) {
	s := NewSalted(NewHMACSHA256("secret"))

	for _, sealed := range []string{"", "plainhash", "v2$aa$bb", "v1$$bb", "v1$zz$bb", "v1$aa$"} {
		_, err := s.Match(sealed, "123456")
		assert.ErrorIs(t, err, ErrMalformedDigest, sealed)
	}
}
