package curve

import (
	"math/big"
	"sync"

	"github.com/aacfactory/sm2core/internal/bigmod"
)

var scalarFieldOnce sync.Once

// ensureScalarField installs the SM2 curve order into internal/bigmod the
// first time a Scalar is needed. bigmod is specialized to this one order
// for the package's lifetime; every constructor below calls this before
// touching a Nat.
func ensureScalarField() {
	scalarFieldOnce.Do(func() {
		bigmod.Init(Params().N)
	})
}

// Scalar is an integer modulo the curve order n, backed by the
// constant-time internal/bigmod primitive.
type Scalar struct {
	nat *bigmod.Nat
}

// ScalarFromBytes interprets b as a big-endian integer and reduces it
// once modulo n if it is at least n, rejecting it if its bit length
// exceeds that of n.
func ScalarFromBytes(b []byte) (*Scalar, error) {
	ensureScalarField()
	n, err := bigmod.NewNat().SetOverflowingBytes(b)
	if err != nil {
		return nil, err
	}
	return &Scalar{nat: n}, nil
}

// ScalarFromCanonicalBytes is like ScalarFromBytes but rejects b outright
// if it is not already fully reduced modulo n, for callers that require an
// input already in [0, n-1], such as a signature's r/s.
func ScalarFromCanonicalBytes(b []byte) (*Scalar, error) {
	ensureScalarField()
	n, err := bigmod.NewNat().SetBytes(b)
	if err != nil {
		return nil, err
	}
	return &Scalar{nat: n}, nil
}

// ScalarFromBigInt reduces v modulo n.
func ScalarFromBigInt(v *big.Int) (*Scalar, error) {
	return ScalarFromBytes(v.Bytes())
}

// Bytes returns s as a fixed ByteLen big-endian buffer.
func (s *Scalar) Bytes() []byte { return s.nat.Bytes() }

// BigInt returns s as a *big.Int.
func (s *Scalar) BigInt() *big.Int { return new(big.Int).SetBytes(s.Bytes()) }

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool { return s.nat.IsZero() == 1 }

// Equal reports whether s == o.
func (s *Scalar) Equal(o *Scalar) bool { return s.nat.Equal(o.nat) == 1 }

// Add returns s + o mod n.
func (s *Scalar) Add(o *Scalar) *Scalar {
	out := &Scalar{nat: bigmod.NewNat().Set(s.nat)}
	out.nat.Add(o.nat)
	return out
}

// Sub returns s - o mod n.
func (s *Scalar) Sub(o *Scalar) *Scalar {
	out := &Scalar{nat: bigmod.NewNat().Set(s.nat)}
	out.nat.Sub(o.nat)
	return out
}

// Mul returns s * o mod n.
func (s *Scalar) Mul(o *Scalar) *Scalar {
	out := &Scalar{nat: bigmod.NewNat().Set(s.nat)}
	out.nat.Mul(o.nat)
	return out
}

// Inverse returns s⁻¹ mod n. n is prime for the SM2 curve, so this holds
// for every non-zero s.
func (s *Scalar) Inverse() *Scalar {
	out := &Scalar{nat: bigmod.NewNat().ExpandFor()}
	out.nat.InverseVarTime(s.nat)
	return out
}

// One returns the multiplicative identity.
func One() *Scalar {
	ensureScalarField()
	s, _ := ScalarFromBigInt(big.NewInt(1))
	return s
}

// Zero returns the additive identity.
func Zero() *Scalar {
	ensureScalarField()
	return &Scalar{nat: bigmod.NewNat().ExpandFor()}
}
