package sm2

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/aacfactory/sm2core/curve"
	"github.com/aacfactory/sm2core/kdf"
	"github.com/tjfoc/gmsm/sm3"
)

// Encrypt implements the SM2 encryption state machine: a fresh ephemeral
// keypair (k, C1 = k*G), the shared point (x2, y2) = k*Pub, a KDF-XOR
// cipher body C2, and an SM3 integrity tag C3 = SM3(x2 || M || y2). It
// silently redraws k if the KDF output happens to be all-zero, the
// scheme's one defined rejection condition.
func Encrypt(rand io.Reader, pub PublicKeyLike, msg []byte, opts *EncryptOpts) ([]byte, error) {
	p := pub.point()
	if p.IsInfinity() {
		return nil, ErrPublicKeyAtInfinity
	}
	if !p.IsOnCurve() {
		return nil, curve.ErrNotOnCurve
	}

	var retries int
	for {
		k, err := randomScalar(rand)
		if err != nil {
			return nil, err
		}
		c1 := curve.BaseMul(k)
		q := pub.mulPoint(k)
		x2, y2 := q.Affine()

		stream, err := kdf.Stream(x2, y2, len(msg))
		if err != nil {
			return nil, err
		}
		if kdf.IsAllZero(stream) {
			if retries++; retries > maxRetryLimit {
				return nil, fmt.Errorf("sm2: encrypt: tried %d ephemeral keys, all produced an all-zero KDF stream: %w", retries, ErrRetryLimitExceeded)
			}
			continue
		}

		c2 := append([]byte{}, stream...)
		xorInto(c2, msg)
		c3 := sm3Digest(x2, msg, y2)

		return frameCiphertext(c1, c2, c3, opts)
	}
}

// EncryptToHex is Encrypt projected onto the hex external interface.
func EncryptToHex(rand io.Reader, pubHex string, msg []byte, opts *EncryptOpts) (string, error) {
	pub, err := ParsePublicKeyHex(pubHex)
	if err != nil {
		return "", err
	}
	ct, err := Encrypt(rand, pub, msg, opts)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(ct), nil
}

func sm3Digest(parts ...[]byte) []byte {
	h := sm3.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

func frameCiphertext(c1 *curve.Point, c2, c3 []byte, opts *EncryptOpts) ([]byte, error) {
	if opts.der() {
		return encodeCiphertextDER(c1, c2, c3, opts.framing())
	}
	c1Bytes := c1.Bytes()[1:] // strip the 04 prefix, leaving x1||y1
	if opts.framing() == C1C2C3 {
		return concatBytes(c1Bytes, c2, c3), nil
	}
	return concatBytes(c1Bytes, c3, c2), nil
}
