package sm2

import (
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/aacfactory/sm2core/curve"
)

// encodeCiphertextDER renders a ciphertext as a SEQUENCE of
// { INTEGER x1, INTEGER y1, OCTET STRING, OCTET STRING }, with the two
// octet strings ordered per framing: C3 then C2 for C1C3C2, C2 then C3
// for C1C2C3.
func encodeCiphertextDER(c1 *curve.Point, c2, c3 []byte, framing Framing) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(c1.X)
		b.AddASN1BigInt(c1.Y)
		if framing == C1C2C3 {
			b.AddASN1OctetString(c2)
			b.AddASN1OctetString(c3)
		} else {
			b.AddASN1OctetString(c3)
			b.AddASN1OctetString(c2)
		}
	})
	return b.Bytes()
}

func decodeCiphertextDER(ciphertext []byte, framing Framing) (c1 *curve.Point, c2, c3 []byte, err error) {
	x1, y1 := new(big.Int), new(big.Int)
	var first, second []byte
	var inner cryptobyte.String
	input := cryptobyte.String(ciphertext)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(x1) ||
		!inner.ReadASN1Integer(y1) ||
		!inner.ReadASN1Bytes(&first, asn1.OCTET_STRING) ||
		!inner.ReadASN1Bytes(&second, asn1.OCTET_STRING) ||
		!inner.Empty() {
		return nil, nil, nil, ErrInvalidCiphertext
	}

	p := curve.PointFromAffine(x1, y1)
	if p.IsInfinity() {
		return nil, nil, nil, curve.ErrPointAtInfinity
	}
	if !p.IsOnCurve() {
		return nil, nil, nil, curve.ErrNotOnCurve
	}

	if framing == C1C2C3 {
		return p, first, second, nil
	}
	return p, second, first, nil
}
