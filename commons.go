package sm2

import (
	"encoding/hex"
	"strings"
)

func normalizeHex(s string) string {
	return strings.TrimSpace(s)
}

// decryptedString converts a successfully decrypted plaintext buffer to a
// string. Go's string(b) conversion is a byte-preserving reinterpretation,
// not a UTF-8 validity check, so a plaintext that is not valid UTF-8 still
// round-trips byte-for-byte through the returned string. This package does
// not substitute U+FFFD or error on invalid UTF-8; losslessness wins over
// validation.
func decryptedString(b []byte) string {
	return string(b)
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func concatBytes(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(normalizeHex(s))
}
