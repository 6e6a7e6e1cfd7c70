// Package curve is the field/curve arithmetic adapter: it wraps the
// externally provided SM2 curve implementation (github.com/tjfoc/gmsm/sm2)
// for group operations, and the package's own scalar field type (backed by
// internal/bigmod) for arithmetic modulo the curve order n. Nothing above
// this package touches the third-party curve type directly.
package curve

import (
	"crypto/elliptic"
	"errors"
	"math/big"

	tjsm2 "github.com/tjfoc/gmsm/sm2"
)

// ByteLen is the fixed width, in bytes, of a coordinate or scalar on the
// SM2 curve.
const ByteLen = 32

var (
	ErrPointAtInfinity      = errors.New("sm2: point is the infinity")
	ErrNotOnCurve           = errors.New("sm2: point is not on the curve")
	ErrInvalidPointEncoding = errors.New("sm2: invalid point encoding")
)

// SM2 returns the standard GB/T 32918 curve, P-256-like in size but with
// its own a, b, Gx, Gy, n.
func SM2() elliptic.Curve {
	return tjsm2.P256Sm2()
}

// Params exposes the curve's domain parameters, used by the identity hash.
func Params() *elliptic.CurveParams {
	return SM2().Params()
}

// Point is an affine curve point.
type Point struct {
	X, Y *big.Int
}

// IsInfinity reports whether p is the group identity, encoded by
// convention as (0, 0) the way crypto/elliptic's Curve methods do.
func (p *Point) IsInfinity() bool {
	return p == nil || (p.X.Sign() == 0 && p.Y.Sign() == 0)
}

// BaseMul computes k·G.
func BaseMul(k *big.Int) *Point {
	x, y := SM2().ScalarBaseMult(k.Bytes())
	return &Point{X: x, Y: y}
}

// Mul computes k·P.
func (p *Point) Mul(k *big.Int) *Point {
	x, y := SM2().ScalarMult(p.X, p.Y, k.Bytes())
	return &Point{X: x, Y: y}
}

// Add computes p+q. The case p == q goes through the curve's doubling,
// since its general addition formula does not cover equal inputs.
func (p *Point) Add(q *Point) *Point {
	if p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0 {
		x, y := SM2().Double(p.X, p.Y)
		return &Point{X: x, Y: y}
	}
	x, y := SM2().Add(p.X, p.Y, q.X, q.Y)
	return &Point{X: x, Y: y}
}

// IsOnCurve reports whether p satisfies the curve equation.
func (p *Point) IsOnCurve() bool {
	return SM2().IsOnCurve(p.X, p.Y)
}

// Affine returns the point's coordinates as fixed ByteLen big-endian
// buffers, left-zero-padded as needed.
func (p *Point) Affine() (x, y []byte) {
	x = make([]byte, ByteLen)
	y = make([]byte, ByteLen)
	p.X.FillBytes(x)
	p.Y.FillBytes(y)
	return
}

// Bytes returns the uncompressed SEC1 encoding 04 || X || Y.
func (p *Point) Bytes() []byte {
	x, y := p.Affine()
	out := make([]byte, 1+2*ByteLen)
	out[0] = 0x04
	copy(out[1:1+ByteLen], x)
	copy(out[1+ByteLen:], y)
	return out
}

// DecodePoint decodes an uncompressed point, with or without the leading
// 0x04 prefix, rejecting anything off-curve or at infinity.
func DecodePoint(b []byte) (*Point, error) {
	switch len(b) {
	case 2 * ByteLen:
		// bare X||Y.
	case 1 + 2*ByteLen:
		if b[0] != 0x04 {
			return nil, ErrInvalidPointEncoding
		}
		b = b[1:]
	default:
		return nil, ErrInvalidPointEncoding
	}
	x := new(big.Int).SetBytes(b[:ByteLen])
	y := new(big.Int).SetBytes(b[ByteLen:])
	p := &Point{X: x, Y: y}
	if p.IsInfinity() {
		return nil, ErrPointAtInfinity
	}
	if !p.IsOnCurve() {
		return nil, ErrNotOnCurve
	}
	return p, nil
}

// PointFromAffine builds a Point from affine coordinates without the
// on-curve check, for internal use where the check already happened (e.g.
// a point derived from a just-generated scalar).
func PointFromAffine(x, y *big.Int) *Point {
	return &Point{X: x, Y: y}
}
