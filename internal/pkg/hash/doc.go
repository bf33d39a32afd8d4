// Package hash provides helpers for hashing and verifying short secrets.
//
// Only digests are stored; plaintext secrets are compared by recomputing the
// digest. Comparisons are constant time.
package hash
