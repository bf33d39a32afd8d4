// Package kvstore provides a small key-value contract with TTLs and an atomic
// compare-and-delete, plus three drivers: a Redis client, an HTTP REST client
// for Upstash-compatible endpoints, and an in-process map for demos and tests.
package kvstore
