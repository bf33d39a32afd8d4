package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/shopauth/internal/pkg/clock"
	"github.com/shandysiswandi/shopauth/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("k", 64))

func newTestJWT(t *testing.T, clk *clock.Manual) *Symmetric {
	t.Helper()

	s, err := NewHS512(Config{
		Secret:    testSecret,
		Issuer:    "shopauth",
		Audiences: []string{"storefront"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	return s
}

func TestNewHS512_Validation(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)

	_, err = NewHS512(Config{Secret: testSecret})
	assert.ErrorIs(t, err, ErrMissingDependency)

	s, err := NewHS512(Config{Secret: testSecret, Clock: clock.New(), UUID: uid.NewUUID()})
	require.NoError(t, err)
	assert.Equal(t, defaultTTL, s.ttl)
}

func TestSymmetric_GenerateVerify(t *testing.T) {
	clk := clock.NewManual(time.Now().Truncate(time.Second))
	s := newTestJWT(t, clk)

	token, err := s.Generate("alice@test.com")
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", claims.Subject)
	assert.Equal(t, "alice@test.com", claims.Email)
	assert.Equal(t, "shopauth", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestSymmetric_Expired(t *testing.T) {
	clk := clock.NewManual(time.Now().Truncate(time.Second))
	s := newTestJWT(t, clk)

	token, err := s.Generate("alice@test.com")
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSymmetric_WrongSecret(t *testing.T) {
	clk := clock.NewManual(time.Now().Truncate(time.Second))
	token, err := newTestJWT(t, clk).Generate("alice@test.com")
	require.NoError(t, err)

	other, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("z", 64)),
		Issuer:    "shopauth",
		Audiences: []string{"storefront"},
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = other.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSymmetric_ClaimsAndLeeway(t *testing.T) {
	clk := clock.NewManual(time.Now().Truncate(time.Second))
	s, err := NewHS512(Config{
		Secret: testSecret,
		TTL:    time.Minute,
		Leeway: 30 * time.Second,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	require.NoError(t, err)

	token, err := s.Generate("  Alice@Test.com ")
	require.NoError(t, err)

	clk.Advance(time.Minute + 10*time.Second)
	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", claims.Email)
	assert.Equal(t, []string{MethodOTP}, claims.Methods)

	clk.Advance(time.Minute)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = s.Generate(" ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSymmetric_RejectsOtherAudience(t *testing.T) {
	clk := clock.NewManual(time.Now().Truncate(time.Second))
	token, err := newTestJWT(t, clk).Generate("alice@test.com")
	require.NoError(t, err)

	admin, err := NewHS512(Config{
		Secret:    testSecret,
		Issuer:    "shopauth",
		Audiences: []string{"admin"},
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	_, err = admin.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetAuth(ctx))

	ctx = SetAuth(ctx, Claims{Email: "alice@test.com"})
	require.NotNil(t, GetAuth(ctx))
	assert.Equal(t, "alice@test.com", GetAuth(ctx).Email)
}
