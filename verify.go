package sm2

import (
	"math/big"

	"github.com/aacfactory/sm2core/curve"
	"github.com/aacfactory/sm2core/identity"
)

// Verify implements the SM2 signature verification state machine. It
// returns a plain boolean: malformed signature encoding, an out-of-range
// (r, s), a public key off the curve, and an arithmetic mismatch all
// collapse to false, per the soft-fail contract shared with Decrypt.
func Verify(pub PublicKeyLike, msg, sig []byte, opts *VerifyOpts) bool {
	r, s, err := decodeSignature(sig, opts.der())
	if err != nil {
		return false
	}

	n := curve.Params().N
	if r.Sign() < 1 || r.Cmp(n) >= 0 || s.Sign() < 1 || s.Cmp(n) >= 0 {
		return false
	}

	p := pub.point()
	if p.IsInfinity() || !p.IsOnCurve() {
		return false
	}

	e, err := verifyDigest(pub, msg, opts)
	if err != nil {
		return false
	}

	rScalar, err1 := curve.ScalarFromCanonicalBytes(fixed32Bytes(r))
	sScalar, err2 := curve.ScalarFromCanonicalBytes(fixed32Bytes(s))
	if err1 != nil || err2 != nil {
		return false
	}
	t := rScalar.Add(sScalar)
	if t.IsZero() {
		return false
	}

	sum := curve.BaseMul(s).Add(pub.mulPoint(t.BigInt()))
	if sum.IsInfinity() {
		return false
	}

	eScalar, err := curve.ScalarFromBigInt(e)
	if err != nil {
		return false
	}
	xScalar, err := curve.ScalarFromBigInt(sum.X)
	if err != nil {
		return false
	}
	result := xScalar.Add(eScalar)
	return result.Equal(rScalar)
}

// VerifyFromHex is Verify projected onto the hex external interface.
func VerifyFromHex(pubHex string, msg []byte, sigHex string, opts *VerifyOpts) bool {
	pub, err := ParsePublicKeyHex(pubHex)
	if err != nil {
		return false
	}
	sig, err := decodeHex(sigHex)
	if err != nil {
		return false
	}
	return Verify(pub, msg, sig, opts)
}

func verifyDigest(pub PublicKeyLike, msg []byte, opts *VerifyOpts) (*big.Int, error) {
	if !opts.hash() {
		return new(big.Int).SetBytes(msg), nil
	}
	p := pub.point()
	e, err := identity.PreHash(p.X, p.Y, opts.uid(), msg)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(e), nil
}

func fixed32Bytes(v *big.Int) []byte {
	buf := make([]byte, curve.ByteLen)
	v.FillBytes(buf)
	return buf
}
