package sm2

import (
	"errors"
	"math/big"

	"github.com/aacfactory/sm2core/curve"
)

// PrecomputedPublicKey holds a table of a public key point's 15 smallest
// non-zero multiples, built once and reused across scalar multiplications.
// It satisfies PublicKeyLike, so it's a drop-in for *PublicKey.
type PrecomputedPublicKey struct {
	pub   *PublicKey
	table [15]*curve.Point // table[i] holds (i+1)*P
}

var errNilPublicKey = errors.New("sm2: cannot precompute a nil public key")

func PrecomputePublicKey(pub *PublicKey) (*PrecomputedPublicKey, error) {
	if pub == nil {
		return nil, errNilPublicKey
	}
	p := pub.point()
	if p.IsInfinity() {
		return nil, ErrPublicKeyAtInfinity
	}
	if !p.IsOnCurve() {
		return nil, curve.ErrNotOnCurve
	}

	acc := &PrecomputedPublicKey{pub: pub}
	acc.table[0] = p
	for i := 1; i < len(acc.table); i++ {
		acc.table[i] = acc.table[i-1].Add(p)
	}
	return acc, nil
}

func (p *PrecomputedPublicKey) PublicKey() *PublicKey { return p.pub }

func (p *PrecomputedPublicKey) point() *curve.Point {
	return p.pub.point()
}

// mulPoint walks k one nibble at a time, most significant first: four
// doublings of the accumulator followed by one addition from the
// precomputed table, the same 4-bit windowed shape internal/bigmod.Exp
// uses for modular exponentiation.
func (p *PrecomputedPublicKey) mulPoint(k *big.Int) *curve.Point {
	n := curve.Params().N
	reduced := new(big.Int).Mod(k, n)
	kBytes := make([]byte, curve.ByteLen)
	reduced.FillBytes(kBytes)

	var acc *curve.Point
	started := false

	addNibble := func(nibble byte) {
		if nibble == 0 {
			return
		}
		if !started {
			acc = p.table[nibble-1]
			started = true
			return
		}
		acc = acc.Add(p.table[nibble-1])
	}

	for _, b := range kBytes {
		hi, lo := b>>4, b&0x0F
		if started {
			acc = acc.Add(acc)
			acc = acc.Add(acc)
			acc = acc.Add(acc)
			acc = acc.Add(acc)
		}
		addNibble(hi)
		if started {
			acc = acc.Add(acc)
			acc = acc.Add(acc)
			acc = acc.Add(acc)
			acc = acc.Add(acc)
		}
		addNibble(lo)
	}

	if !started {
		return curve.PointFromAffine(big.NewInt(0), big.NewInt(0))
	}
	return acc
}
