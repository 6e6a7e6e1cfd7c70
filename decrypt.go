package sm2

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/aacfactory/sm2core/curve"
	"github.com/aacfactory/sm2core/kdf"
)

// Decrypt collapses any failure to (nil, false); DecryptStrict surfaces
// the underlying cause.
func Decrypt(priv *PrivateKey, ciphertext []byte, opts *DecryptOpts) ([]byte, bool) {
	msg, err := decrypt(priv, ciphertext, opts)
	return msg, err == nil
}

func decrypt(priv *PrivateKey, ciphertext []byte, opts *DecryptOpts) ([]byte, error) {
	c1, c2, c3, err := parseCiphertext(ciphertext, opts)
	if err != nil {
		return nil, err
	}

	q := c1.Mul(priv.D)
	x2, y2 := q.Affine()

	stream, err := kdf.Stream(x2, y2, len(c2))
	if err != nil {
		return nil, err
	}

	msg := append([]byte{}, c2...)
	xorInto(msg, stream)

	want := sm3Digest(x2, msg, y2)
	if subtle.ConstantTimeCompare(want, c3) != 1 {
		return nil, ErrDecryption
	}
	return msg, nil
}

func DecryptFromHex(privHex, ciphertextHex string, opts *DecryptOpts) ([]byte, bool) {
	priv, err := ParsePrivateKeyHex(privHex)
	if err != nil {
		return nil, false
	}
	ct, err := decodeHex(ciphertextHex)
	if err != nil {
		return nil, false
	}
	return Decrypt(priv, ct, opts)
}

func DecryptToString(priv *PrivateKey, ciphertext []byte, opts *DecryptOpts) (string, bool) {
	b, ok := Decrypt(priv, ciphertext, opts)
	if !ok {
		return "", false
	}
	return decryptedString(b), true
}

// DecryptStrict preserves the underlying cause instead of collapsing to
// ErrDecryption, which is reserved for a genuine integrity check failure.
func DecryptStrict(priv *PrivateKey, ciphertext []byte, opts *DecryptOpts) ([]byte, error) {
	msg, err := decrypt(priv, ciphertext, opts)
	if err != nil {
		if errors.Is(err, ErrDecryption) {
			return nil, err
		}
		return nil, fmt.Errorf("sm2: decrypt: %w", err)
	}
	return msg, nil
}

func parseCiphertext(ciphertext []byte, opts *DecryptOpts) (c1 *curve.Point, c2, c3 []byte, err error) {
	if opts.der() {
		return decodeCiphertextDER(ciphertext, opts.framing())
	}
	return parsePlainCiphertext(ciphertext, opts.framing())
}

func parsePlainCiphertext(ciphertext []byte, framing Framing) (*curve.Point, []byte, []byte, error) {
	const c1Len = 2 * curve.ByteLen
	const c3Len = 32
	if len(ciphertext) < c1Len+c3Len {
		return nil, nil, nil, fmt.Errorf("sm2: ciphertext is %d bytes, need at least %d: %w", len(ciphertext), c1Len+c3Len, ErrCiphertextTooShort)
	}

	c1, err := curve.DecodePoint(ciphertext[:c1Len])
	if err != nil {
		return nil, nil, nil, err
	}
	rest := ciphertext[c1Len:]

	if framing == C1C2C3 {
		c2 := rest[:len(rest)-c3Len]
		c3 := rest[len(rest)-c3Len:]
		return c1, c2, c3, nil
	}
	c3 := rest[:c3Len]
	c2 := rest[c3Len:]
	return c1, c2, c3, nil
}

// ConvertCiphertextFraming re-frames a plain ciphertext between the two
// C1/C2/C3 orderings without touching the private key.
func ConvertCiphertextFraming(ciphertext []byte, from Framing) ([]byte, error) {
	c1, c2, c3, err := parsePlainCiphertext(ciphertext, from)
	if err != nil {
		return nil, err
	}
	to := C1C2C3
	if from == C1C2C3 {
		to = C1C3C2
	}
	c1Bytes := c1.Bytes()[1:]
	if to == C1C2C3 {
		return concatBytes(c1Bytes, c2, c3), nil
	}
	return concatBytes(c1Bytes, c3, c2), nil
}

func CiphertextToDER(ciphertext []byte, framing Framing) ([]byte, error) {
	c1, c2, c3, err := parsePlainCiphertext(ciphertext, framing)
	if err != nil {
		return nil, err
	}
	return encodeCiphertextDER(c1, c2, c3, framing)
}

func CiphertextFromDER(der []byte, framing Framing) ([]byte, error) {
	c1, c2, c3, err := decodeCiphertextDER(der, framing)
	if err != nil {
		return nil, err
	}
	c1Bytes := c1.Bytes()[1:]
	if framing == C1C2C3 {
		return concatBytes(c1Bytes, c2, c3), nil
	}
	return concatBytes(c1Bytes, c3, c2), nil
}
