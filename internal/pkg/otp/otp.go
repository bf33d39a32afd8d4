package otp

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strconv"
)

// DefaultDigits is the length of a code when none is configured.
const DefaultDigits = 6

// ErrInvalidDigits is returned for a code length outside 1..18.
var ErrInvalidDigits = errors.New("otp: digits must be between 1 and 18")

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

// Numeric generates decimal codes of a fixed length.
type Numeric struct {
	min    *big.Int
	span   *big.Int
	source io.Reader
}

// NewNumeric returns a generator of codes in [10^(digits-1), 10^digits - 1].
func NewNumeric(digits int) (*Numeric, error) {
	return newNumeric(digits, rand.Reader)
}

func newNumeric(digits int, source io.Reader) (*Numeric, error) {
	if digits < 1 || digits > 18 {
		return nil, ErrInvalidDigits
	}

	lo := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	hi := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	if digits == 1 {
		lo = big.NewInt(0)
	}

	return &Numeric{
		min:    lo,
		span:   new(big.Int).Sub(hi, lo),
		source: source,
	}, nil
}

// Generate returns a fresh code.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.source, n.span)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(v.Add(v, n.min).Int64(), 10), nil
}
