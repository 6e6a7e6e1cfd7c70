package sm2

import (
	"encoding/hex"
	"errors"
	"io"
	"math/big"
	"strings"

	"github.com/aacfactory/sm2core/curve"
)

// PrivateKey is an SM2 private key: an integer D in [1, n-2] and its
// derived public key Pub = D*G.
type PrivateKey struct {
	D   *big.Int
	Pub PublicKey
}

type PublicKey struct {
	X, Y *big.Int
}

// PublicKeyLike is satisfied by *PublicKey and *PrecomputedPublicKey, so
// Encrypt and Verify can take either.
type PublicKeyLike interface {
	point() *curve.Point
	mulPoint(k *big.Int) *curve.Point
}

func (pub *PublicKey) point() *curve.Point {
	return curve.PointFromAffine(pub.X, pub.Y)
}

func (pub *PublicKey) mulPoint(k *big.Int) *curve.Point {
	return pub.point().Mul(k)
}

func (pub *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && pub.X.Cmp(other.X) == 0 && pub.Y.Cmp(other.Y) == 0
}

func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	d, err := randomPrivateKeyScalar(rand)
	if err != nil {
		return nil, err
	}
	p := curve.BaseMul(d)
	return &PrivateKey{D: d, Pub: PublicKey{X: p.X, Y: p.Y}}, nil
}

func GenerateKeyPairHex(rand io.Reader) (privHex, pubHex string, err error) {
	priv, err := GenerateKey(rand)
	if err != nil {
		return "", "", err
	}
	return priv.Hex(), priv.Pub.Hex(), nil
}

func (priv *PrivateKey) Hex() string {
	buf := make([]byte, curve.ByteLen)
	priv.D.FillBytes(buf)
	return hex.EncodeToString(buf)
}

// Hex renders X||Y without a 04 prefix; ParsePublicKeyHex accepts either
// form on input.
func (pub *PublicKey) Hex() string {
	x := make([]byte, curve.ByteLen)
	y := make([]byte, curve.ByteLen)
	pub.X.FillBytes(x)
	pub.Y.FillBytes(y)
	return hex.EncodeToString(x) + hex.EncodeToString(y)
}

func ParsePrivateKeyHex(s string) (*PrivateKey, error) {
	b, err := hex.DecodeString(normalizeHex(s))
	if err != nil || len(b) != curve.ByteLen {
		return nil, ErrInvalidPrivateKeyHex
	}
	d := new(big.Int).SetBytes(b)
	n := curve.Params().N
	nMinus1 := new(big.Int).Sub(n, big.NewInt(1))
	if d.Sign() <= 0 || d.Cmp(nMinus1) >= 0 {
		return nil, ErrInvalidPrivateKey
	}
	p := curve.BaseMul(d)
	return &PrivateKey{D: d, Pub: PublicKey{X: p.X, Y: p.Y}}, nil
}

// ParsePublicKeyHex accepts X||Y with or without a leading 04 prefix, and
// rejects points off the curve or at infinity.
func ParsePublicKeyHex(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(stripPublicKeyPrefix(normalizeHex(s)))
	if err != nil {
		return nil, ErrInvalidPublicKeyHex
	}
	p, err := curve.DecodePoint(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{X: p.X, Y: p.Y}, nil
}

func stripPublicKeyPrefix(s string) string {
	const bareLen = 4 * curve.ByteLen // 128 hex chars
	const prefixedLen = bareLen + 2   // 130 hex chars, leading "04"
	if len(s) == prefixedLen && strings.HasPrefix(s, "04") {
		return s[2:]
	}
	return s
}

var errRandomScalar = errors.New("sm2: failed to read randomness")

// randomScalar samples an ephemeral value from [1, n-1], the range the
// scheme allows for encryption's k and a signature's ephemeral k.
func randomScalar(rand io.Reader) (*big.Int, error) {
	return randomScalarBelow(rand, new(big.Int).Sub(curve.Params().N, big.NewInt(1)))
}

// randomPrivateKeyScalar samples from [1, n-2], the tighter range
// ParsePrivateKeyHex enforces on ingress, so a generated key round-trips.
func randomPrivateKeyScalar(rand io.Reader) (*big.Int, error) {
	n := curve.Params().N
	nMinus2 := new(big.Int).Sub(n, big.NewInt(2))
	return randomScalarBelow(rand, nMinus2)
}

// randomScalarBelow samples uniformly from [1, bound] by oversampling
// entropy and reducing modulo bound, close enough to uniform without
// rejection sampling.
func randomScalarBelow(rand io.Reader, bound *big.Int) (*big.Int, error) {
	n := curve.Params().N
	byteLen := (n.BitLen()+7)/8 + 8
	buf := make([]byte, byteLen)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, errRandomScalar
	}
	k := new(big.Int).SetBytes(buf)
	k.Mod(k, bound)
	k.Add(k, big.NewInt(1))
	return k, nil
}
