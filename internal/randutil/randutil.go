// Package randutil provides defense-in-depth helpers around external
// io.Reader randomness sources, in the spirit of the standard library's
// crypto/internal/randutil.
package randutil

import "io"

// MaybeReadByte reads a single byte from r and discards it before a
// consumer reads the real random material it needs. Signing and encryption
// inputs are deterministic test vectors more often than most callers
// expect, and a read-ahead byte catches io.Readers that only behave
// correctly after their first Read call (a real-world footgun in hand
// written "fixed k" test readers).
func MaybeReadByte(r io.Reader) {
	var buf [1]byte
	r.Read(buf[:])
}
