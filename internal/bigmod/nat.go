// Package bigmod provides constant-time big integer arithmetic modulo the
// SM2 scalar field order n. Unlike a general-purpose bignum library, it is
// not parameterized over an arbitrary modulus: the package is initialized
// once, before its first use, with n (via Init), and every subsequent Nat
// operation reduces against that one fixed value. This mirrors how the
// package is actually used: curve/scalar.go is the only caller, and it
// never needs arithmetic modulo anything but the curve order.
package bigmod

import (
	"errors"
	"math/big"
	"math/bits"
)

const (
	_W    = bits.UintSize - 1
	_MASK = (1 << _W) - 1
)

type choice uint

func not(c choice) choice { return 1 ^ c }

const yes = choice(1)
const no = choice(0)

func ctSelect(on choice, x, y uint) uint {
	mask := -uint(on)
	return y ^ (mask & (y ^ x))
}

func ctEq(x, y uint) choice {
	_, c1 := bits.Sub(x, y, 0)
	_, c2 := bits.Sub(y, x, 0)
	return not(choice(c1 | c2))
}

// Nat is an unsigned integer represented as a sequence of limbs, least
// significant first. Every Nat used with Add, Sub, Mul, Exp, or
// InverseVarTime must be sized to match the scalar field order via
// ExpandFor, SetBytes, or SetOverflowingBytes.
type Nat struct {
	limbs []uint
}

const preallocTarget = 2048
const preallocLimbs = (preallocTarget + _W - 1) / _W

func NewNat() *Nat {
	limbs := make([]uint, 0, preallocLimbs)
	return &Nat{limbs}
}

func (x *Nat) expand(n int) *Nat {
	if len(x.limbs) > n {
		panic("bigmod: internal error: shrinking nat")
	}
	if cap(x.limbs) < n {
		newLimbs := make([]uint, n)
		copy(newLimbs, x.limbs)
		x.limbs = newLimbs
		return x
	}
	extraLimbs := x.limbs[len(x.limbs):n]
	for i := range extraLimbs {
		extraLimbs[i] = 0
	}
	x.limbs = x.limbs[:n]
	return x
}

func (x *Nat) reset(n int) *Nat {
	if cap(x.limbs) < n {
		x.limbs = make([]uint, n)
		return x
	}
	for i := range x.limbs {
		x.limbs[i] = 0
	}
	x.limbs = x.limbs[:n]
	return x
}

func (x *Nat) Set(y *Nat) *Nat {
	x.reset(len(y.limbs))
	copy(x.limbs, y.limbs)
	return x
}

func (x *Nat) setBig(n *big.Int) *Nat {
	requiredLimbs := (n.BitLen() + _W - 1) / _W
	x.reset(requiredLimbs)

	outI := 0
	shift := 0
	limbs := n.Bits()
	for i := range limbs {
		xi := uint(limbs[i])
		x.limbs[outI] |= (xi << shift) & _MASK
		outI++
		if outI == requiredLimbs {
			return x
		}
		x.limbs[outI] = xi >> (_W - shift)
		shift++ // this assumes bits.UintSize - _W = 1
		if shift == _W {
			shift = 0
			outI++
		}
	}
	return x
}

// Bytes returns x as a big-endian slice of bytes sized for the scalar
// field order.
func (x *Nat) Bytes() []byte {
	bytes := make([]byte, order.size())
	shift := 0
	outI := len(bytes) - 1
	for _, limb := range x.limbs {
		remainingBits := _W
		for remainingBits >= 8 {
			bytes[outI] |= byte(limb) << shift
			consumed := 8 - shift
			limb >>= consumed
			remainingBits -= consumed
			shift = 0
			outI--
			if outI < 0 {
				return bytes
			}
		}
		bytes[outI] = byte(limb)
		shift = remainingBits
	}
	return bytes
}

// SetBytes sets x to the value of b, a big-endian unsigned integer that
// must already be reduced modulo the scalar field order.
func (x *Nat) SetBytes(b []byte) (*Nat, error) {
	if err := x.setBytes(b); err != nil {
		return nil, err
	}
	if x.cmpGeq(order.nat) == yes {
		return nil, errors.New("bigmod: input overflows the scalar field order")
	}
	return x, nil
}

// SetOverflowingBytes works like SetBytes but reduces b once modulo the
// scalar field order if it overflows, instead of rejecting it. It still
// rejects b if a second reduction would be required.
func (x *Nat) SetOverflowingBytes(b []byte) (*Nat, error) {
	if err := x.setBytes(b); err != nil {
		return nil, err
	}
	leading := _W - bitLen(x.limbs[len(x.limbs)-1])
	if leading < order.leading {
		return nil, errors.New("bigmod: input overflows the scalar field order")
	}
	x.sub(x.cmpGeq(order.nat), order.nat)
	return x, nil
}

func (x *Nat) setBytes(b []byte) error {
	outI := 0
	shift := 0
	x.resetFor()
	for i := len(b) - 1; i >= 0; i-- {
		bi := b[i]
		x.limbs[outI] |= uint(bi) << shift
		shift += 8
		if shift >= _W {
			shift -= _W
			x.limbs[outI] &= _MASK
			overflow := bi >> (8 - shift)
			outI++
			if outI >= len(x.limbs) {
				if overflow > 0 || i > 0 {
					return errors.New("bigmod: input overflows the scalar field order")
				}
				break
			}
			x.limbs[outI] = uint(overflow)
		}
	}
	return nil
}

// Equal reports whether x == y, in constant time per the announced length
// of the receiver.
func (x *Nat) Equal(y *Nat) choice {
	size := len(x.limbs)
	xLimbs := x.limbs[:size]
	yLimbs := y.limbs[:size]

	equal := yes
	for i := 0; i < size; i++ {
		equal &= ctEq(xLimbs[i], yLimbs[i])
	}
	return equal
}

// IsZero reports whether x == 0, in constant time.
func (x *Nat) IsZero() choice {
	size := len(x.limbs)
	xLimbs := x.limbs[:size]

	zero := yes
	for i := 0; i < size; i++ {
		zero &= ctEq(xLimbs[i], 0)
	}
	return zero
}

func (x *Nat) cmpGeq(y *Nat) choice {
	size := len(x.limbs)
	xLimbs := x.limbs[:size]
	yLimbs := y.limbs[:size]

	var c uint
	for i := 0; i < size; i++ {
		c = (xLimbs[i] - yLimbs[i] - c) >> _W
	}
	return not(choice(c))
}

func (x *Nat) assign(on choice, y *Nat) *Nat {
	size := len(x.limbs)
	xLimbs := x.limbs[:size]
	yLimbs := y.limbs[:size]

	for i := 0; i < size; i++ {
		xLimbs[i] = ctSelect(on, yLimbs[i], xLimbs[i])
	}
	return x
}

func (x *Nat) add(on choice, y *Nat) (c uint) {
	size := len(x.limbs)
	xLimbs := x.limbs[:size]
	yLimbs := y.limbs[:size]

	for i := 0; i < size; i++ {
		res := xLimbs[i] + yLimbs[i] + c
		xLimbs[i] = ctSelect(on, res&_MASK, xLimbs[i])
		c = res >> _W
	}
	return
}

func (x *Nat) sub(on choice, y *Nat) (c uint) {
	size := len(x.limbs)
	xLimbs := x.limbs[:size]
	yLimbs := y.limbs[:size]

	for i := 0; i < size; i++ {
		res := xLimbs[i] - yLimbs[i] - c
		xLimbs[i] = ctSelect(on, res&_MASK, xLimbs[i])
		c = res >> _W
	}
	return
}

// scalarOrder is the fixed odd modulus this package performs every
// operation under: the SM2 curve order n, installed once by Init.
type scalarOrder struct {
	nat     *Nat
	leading int  // number of leading zero bits in the modulus
	m0inv   uint // -nat.limbs[0]⁻¹ mod _W
	rr      *Nat // R*R for montgomeryRepresentation
}

// order is nil until Init runs. Every exported Nat operation in this
// package other than NewNat, Set, and Equal/IsZero dereferences it, so
// Init must run before any of those are called; curve/scalar.go guarantees
// this with a sync.Once around its one call to Init.
var order *scalarOrder

func computeRR(m *scalarOrder) *Nat {
	rr := NewNat().expand(len(m.nat.limbs))
	n := len(rr.limbs)
	rr.limbs[n-1] = 1
	for i := n - 1; i < 2*n; i++ {
		rr.shiftIn(0, m) // x = x * 2^_W mod m
	}
	return rr
}

func minusInverseModW(x uint) uint {
	y := x
	for i := 0; i < 5; i++ {
		y = y * (2 - x*y)
	}
	return (1 << _W) - (y & _MASK)
}

// Init installs n as the scalar field order every subsequent Nat operation
// reduces against. Later calls are no-ops: the package is used with exactly
// one order for the lifetime of a process, and re-deriving it per call
// would just repeat the same Montgomery setup for the same answer.
func Init(n *big.Int) {
	if order != nil {
		return
	}
	m := &scalarOrder{}
	m.nat = NewNat().setBig(n)
	m.leading = _W - bitLen(m.nat.limbs[len(m.nat.limbs)-1])
	m.m0inv = minusInverseModW(m.nat.limbs[0])
	m.rr = computeRR(m)
	order = m
}

func bitLen(n uint) int {
	var length int
	for n != 0 {
		length++
		n >>= 1
	}
	return length
}

func (m *scalarOrder) size() int {
	return (m.bitLen() + 7) / 8
}

func (m *scalarOrder) bitLen() int {
	return len(m.nat.limbs)*_W - int(m.leading)
}

func (x *Nat) shiftIn(y uint, m *scalarOrder) *Nat {
	d := NewNat().reset(len(m.nat.limbs))

	size := len(m.nat.limbs)
	xLimbs := x.limbs[:size]
	dLimbs := d.limbs[:size]
	mLimbs := m.nat.limbs[:size]

	needSubtraction := no
	for i := _W - 1; i >= 0; i-- {
		carry := (y >> i) & 1
		var borrow uint
		for i := 0; i < size; i++ {
			l := ctSelect(needSubtraction, dLimbs[i], xLimbs[i])

			res := l<<1 + carry
			xLimbs[i] = res & _MASK
			carry = res >> _W

			res = xLimbs[i] - mLimbs[i] - borrow
			dLimbs[i] = res & _MASK
			borrow = res >> _W
		}
		needSubtraction = ctEq(carry, borrow)
	}
	return x.assign(needSubtraction, d)
}

// ExpandFor grows x to the scalar field order's limb width, zero-extending
// it, so it can be used as an operand in Add, Sub, or Mul.
func (out *Nat) ExpandFor() *Nat {
	return out.expand(len(order.nat.limbs))
}

func (out *Nat) resetFor() *Nat {
	return out.reset(len(order.nat.limbs))
}

// Sub computes x = x - y mod n, where n is the scalar field order.
//
// The length of both operands must be the same as the order's. Both
// operands must already be reduced modulo n.
func (x *Nat) Sub(y *Nat) *Nat {
	underflow := x.sub(yes, y)
	x.add(choice(underflow), order.nat)
	return x
}

// Add computes x = x + y mod n, where n is the scalar field order.
//
// The length of both operands must be the same as the order's. Both
// operands must already be reduced modulo n.
func (x *Nat) Add(y *Nat) *Nat {
	overflow := x.add(yes, y)
	underflow := not(x.cmpGeq(order.nat)) // x < n

	// Three cases are possible:
	//
	//   - overflow = 0, underflow = 0: addition fits, but may still need
	//     reducing by subtracting n once.
	//   - overflow = 0, underflow = 1: addition fits and is already < n.
	//   - overflow = 1, underflow = 1: the limbs overflowed, and
	//     subtracting n cancels the carry.
	//
	// overflow = 1, underflow = 0 cannot happen: y <= n-1, so if x+y
	// overflows the limbs, x+y-n cannot also be >= n.
	needSubtraction := ctEq(overflow, uint(underflow))

	x.sub(needSubtraction, order.nat)
	return x
}

// montgomeryRepresentation calculates x = x * R mod n, with R = 2^(_W * k)
// and k = len(order.nat.limbs). This assumes x is already reduced mod n.
func (x *Nat) montgomeryRepresentation() *Nat {
	return x.montgomeryMul(NewNat().Set(x), order.rr)
}

// montgomeryReduction calculates x = x / R mod n, taking x out of
// Montgomery representation.
func (x *Nat) montgomeryReduction() *Nat {
	t0 := NewNat().Set(x)
	t1 := NewNat().ExpandFor()
	t1.limbs[0] = 1
	return x.montgomeryMul(t0, t1)
}

// montgomeryMul calculates d = a * b / R mod n, using Montgomery
// multiplication. All inputs must be the same length as the order, not
// alias d, and already be reduced modulo n.
func (d *Nat) montgomeryMul(a *Nat, b *Nat) *Nat {
	d.resetFor()
	if len(a.limbs) != len(order.nat.limbs) || len(b.limbs) != len(order.nat.limbs) {
		panic("bigmod: invalid montgomeryMul input")
	}

	overflow := montgomeryLoop(d.limbs, a.limbs, b.limbs, order.nat.limbs, order.m0inv)
	underflow := not(d.cmpGeq(order.nat)) // d < n
	needSubtraction := ctEq(overflow, uint(underflow))
	d.sub(needSubtraction, order.nat)

	return d
}

func montgomeryLoop(d, a, b, m []uint, m0inv uint) (overflow uint) {
	size := len(d)
	a = a[:size]
	b = b[:size]
	m = m[:size]

	for _, ai := range a {
		hi, lo := bits.Mul(ai, b[0])
		zLo, c := bits.Add(d[0], lo, 0)
		f := (zLo * m0inv) & _MASK // (d[0] + a[i] * b[0]) * m0inv
		zHi, _ := bits.Add(0, hi, c)
		hi, lo = bits.Mul(f, m[0])
		zLo, c = bits.Add(zLo, lo, 0)
		zHi, _ = bits.Add(zHi, hi, c)
		carry := zHi<<1 | zLo>>_W

		for j := 1; j < size; j++ {
			hi, lo := bits.Mul(ai, b[j])
			zLo, c := bits.Add(d[j], lo, 0)
			zHi, _ := bits.Add(0, hi, c)
			hi, lo = bits.Mul(f, m[j])
			zLo, c = bits.Add(zLo, lo, 0)
			zHi, _ = bits.Add(zHi, hi, c)
			zLo, c = bits.Add(zLo, carry, 0)
			zHi, _ = bits.Add(zHi, 0, c)
			d[j-1] = zLo & _MASK
			carry = zHi<<1 | zLo>>_W
		}

		z := overflow + carry
		d[size-1] = z & _MASK
		overflow = z >> _W
	}
	return
}

// Mul calculates x *= y mod n, where n is the scalar field order.
//
// x and y must already be reduced modulo n, must share the order's
// announced length, and may not alias.
func (x *Nat) Mul(y *Nat) *Nat {
	xR := NewNat().Set(x).montgomeryRepresentation() // xR = x * R mod n
	return x.montgomeryMul(xR, y)                     // x = xR * y / R mod n
}

// Exp calculates out = x^e mod n, where n is the scalar field order. The
// exponent e is big-endian. x must already be reduced modulo n.
func (out *Nat) Exp(x *Nat, e []byte) *Nat {
	// 4-bit windows: more scratch space, fewer squarings, than 2-bit
	// windows, for the exponent sizes this package is used with.
	table := [(1 << 4) - 1]*Nat{
		NewNat(), NewNat(), NewNat(), NewNat(), NewNat(),
		NewNat(), NewNat(), NewNat(), NewNat(), NewNat(),
		NewNat(), NewNat(), NewNat(), NewNat(), NewNat(),
	}
	table[0].Set(x).montgomeryRepresentation()
	for i := 1; i < len(table); i++ {
		table[i].montgomeryMul(table[i-1], table[0])
	}

	out.resetFor()
	out.limbs[0] = 1
	out.montgomeryRepresentation()
	t0 := NewNat().ExpandFor()
	t1 := NewNat().ExpandFor()
	for _, b := range e {
		for _, j := range []int{4, 0} {
			t1.montgomeryMul(out, out)
			out.montgomeryMul(t1, t1)
			t1.montgomeryMul(out, out)
			out.montgomeryMul(t1, t1)

			k := uint((b >> j) & 0b1111)
			for i := range table {
				t0.assign(ctEq(k, uint(i+1)), table[i])
			}

			t1.montgomeryMul(out, t0)
			out.assign(not(ctEq(k, 0)), t1)
		}
	}

	return out.montgomeryReduction()
}

// InverseVarTime calculates out = x⁻¹ mod n via Fermat's little theorem
// (x^(n-2) mod n), which requires n to be prime; true for the SM2 curve
// order this package is initialized with. It is not constant-time in the
// exponent length, only in the exponent's bit pattern (Exp's windowed
// ladder is already constant-time in that sense); the "VarTime" in the
// name refers only to n not being checked for primality here.
func (out *Nat) InverseVarTime(x *Nat) *Nat {
	nMinus2 := new(big.Int).Sub(orderToBig(), big.NewInt(2))
	return out.Exp(x, nMinus2.Bytes())
}

func orderToBig() *big.Int {
	return new(big.Int).SetBytes(order.nat.Bytes())
}
