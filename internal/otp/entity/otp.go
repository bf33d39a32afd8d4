package entity

import (
	"strings"
	"time"
)

// CodeTTL is how long an issued code stays verifiable.
const CodeTTL = 10 * time.Minute

// Purpose separates codes issued for different flows so a registration code
// can never be redeemed for a login.
type Purpose int8

const (
	// PurposeUnknown is the zero value and is never accepted.
	PurposeUnknown Purpose = 0
	// PurposeRegister gates account registration.
	PurposeRegister Purpose = 1
	// PurposeLogin gates passwordless sign in for existing accounts.
	PurposeLogin Purpose = 2
)

func (p Purpose) String() string {
	switch p {
	case PurposeRegister:
		return "register"
	case PurposeLogin:
		return "login"
	default:
		return "unknown"
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Key is the store key of the record for purpose and an already normalized email.
func Key(p Purpose, email string) string {
	return "otp:" + p.String() + ":" + email
}

// Record is the stored state of one issued code. Sealed holds the salted
// digest of the code, never the code itself.
type Record struct {
	Purpose   Purpose
	Email     string
	Sealed    string
	ExpiresAt time.Time
}

// Key returns the store key of r.
func (r Record) Key() string {
	return Key(r.Purpose, r.Email)
}
