// Package jwt issues and verifies the access tokens handed out after a
// successful login verification.
//
// It includes:
//   - A Claims type carrying the registered claims plus the customer email.
//   - A symmetric HS512 implementation for generating and verifying tokens.
//   - Context helpers for storing and retrieving authenticated claims.
package jwt
