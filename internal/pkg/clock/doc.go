// Package clock provides a tiny time abstraction.
//
// Code that computes expirations depends on Clocker instead of calling
// time.Now directly, so tests can drive time with a Manual clock.
package clock
