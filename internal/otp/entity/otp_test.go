package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_NormalizedEmailsCollide(t *testing.T) {
	a := Key(PurposeRegister, NormalizeEmail("  USER@Example.com "))
	b := Key(PurposeRegister, NormalizeEmail("user@example.com"))

	assert.Equal(t, "otp:register:user@example.com", a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Key(PurposeLogin, "user@example.com"))
}

func TestRecord_Key(t *testing.T) {
	r := Record{Purpose: PurposeLogin, Email: "alice@test.com"}
	assert.Equal(t, "otp:login:alice@test.com", r.Key())
}
