// Package otp generates the numeric one-time codes mailed to customers.
//
// Codes are drawn from crypto/rand and are uniformly distributed over the
// range of N-digit numbers without a leading zero.
package otp
