package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrMissingDependency is returned when the clock or id generator is nil.
	ErrMissingDependency = errors.New("jwt: clock and id generator are required")

	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("jwt: token has expired")

	// ErrInvalidToken wraps every other verification failure.
	ErrInvalidToken = errors.New("jwt: invalid token")
)

const defaultTTL = time.Hour

// MethodOTP is the authentication method reference of tokens issued after a
// one-time code login.
const MethodOTP = "otp"

// JWT issues and verifies customer access tokens.
type JWT interface {
	// Generate creates a signed token whose subject is the customer email.
	Generate(email string) (string, error)
	// Verify parses and validates the token and returns its claims.
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	// Secret is the HMAC signing key, at least 64 bytes.
	Secret    []byte
	Issuer    string
	Audiences []string
	// TTL defaults to one hour.
	TTL time.Duration
	// Leeway tolerates clock skew between this service and its callers.
	Leeway time.Duration
	Clock  clocker
	UUID   generator
}

// Claims are the registered claims plus the customer email and the
// authentication methods used to obtain the token.
type Claims struct {
	jwt.RegisteredClaims
	Email   string   `json:"email"`
	Methods []string `json:"amr,omitempty"`
}

type authKey struct{}

// GetAuth returns the claims stored by SetAuth, or nil.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(authKey{}).(Claims)
	if !ok {
		return nil
	}
	return &clm
}

// SetAuth stores verified claims in ctx.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, authKey{}, clm)
}
