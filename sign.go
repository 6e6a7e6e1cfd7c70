package sm2

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/aacfactory/sm2core/curve"
	"github.com/aacfactory/sm2core/identity"
	"github.com/aacfactory/sm2core/internal/randutil"
)

// PointPool is a caller-owned FIFO of pre-generated (k, x1) ephemeral pairs
// that Sign pops from before falling back to generating its own, letting a
// high-throughput signer amortize k*G off the critical path.
type PointPool struct {
	entries []pointPoolEntry
}

type pointPoolEntry struct {
	k  *big.Int
	x1 *big.Int
}

// Push adds a (k, x1) pair, x1 the X coordinate of k*G. Every k must be
// used exactly once; reusing one breaks the scheme's unforgeability.
func (p *PointPool) Push(k, x1 *big.Int) {
	p.entries = append(p.entries, pointPoolEntry{k: k, x1: x1})
}

func (p *PointPool) Pop() (k, x1 *big.Int, ok bool) {
	if p == nil || len(p.entries) == 0 {
		return nil, nil, false
	}
	e := p.entries[0]
	p.entries = p.entries[1:]
	return e.k, e.x1, true
}

func (p *PointPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// GeneratePoolEntry generates a fresh (k, x1) pair suitable for Push, for
// callers that refill the pool on their own schedule.
func GeneratePoolEntry(rand io.Reader) (k, x1 *big.Int, err error) {
	k, err = randomScalar(rand)
	if err != nil {
		return nil, nil, err
	}
	p := curve.BaseMul(k)
	return k, p.X, nil
}

func Sign(rand io.Reader, priv *PrivateKey, msg []byte, opts *SignOpts) ([]byte, error) {
	e, err := signDigest(priv, msg, opts)
	if err != nil {
		return nil, err
	}

	randutil.MaybeReadByte(rand)

	eScalar, err := curve.ScalarFromBigInt(e)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	dScalar, err := curve.ScalarFromBigInt(priv.D)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	onePlusDInv := dScalar.Add(curve.One()).Inverse()

	n := curve.Params().N

	var retries int
	for {
		k, x1, err := nextEphemeral(rand, opts)
		if err != nil {
			return nil, err
		}

		x1Scalar, err := curve.ScalarFromBigInt(x1)
		if err != nil {
			return nil, ErrInvalidSignature
		}
		rScalar := x1Scalar.Add(eScalar)

		rPlusK := new(big.Int).Add(rScalar.BigInt(), k)
		if rScalar.IsZero() || rPlusK.Cmp(n) == 0 {
			if retries++; retries > maxRetryLimit {
				return nil, fmt.Errorf("sm2: sign: tried %d ephemeral keys, r was always 0 or r+k always n: %w", retries, ErrRetryLimitExceeded)
			}
			continue
		}

		kScalar, err := curve.ScalarFromBigInt(k)
		if err != nil {
			return nil, ErrInvalidSignature
		}
		sScalar := kScalar.Sub(rScalar.Mul(dScalar)).Mul(onePlusDInv)
		if sScalar.IsZero() {
			if retries++; retries > maxRetryLimit {
				return nil, fmt.Errorf("sm2: sign: tried %d ephemeral keys, s was always 0: %w", retries, ErrRetryLimitExceeded)
			}
			continue
		}

		return encodeSignature(rScalar.BigInt(), sScalar.BigInt(), opts.der())
	}
}

func SignToHex(rand io.Reader, privHex string, msg []byte, opts *SignOpts) (string, error) {
	priv, err := ParsePrivateKeyHex(privHex)
	if err != nil {
		return "", err
	}
	sig, err := Sign(rand, priv, msg, opts)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

func signDigest(priv *PrivateKey, msg []byte, opts *SignOpts) (*big.Int, error) {
	if !opts.hash() {
		return new(big.Int).SetBytes(msg), nil
	}
	pub := signerPublicKey(priv, opts)
	e, err := identity.PreHash(pub.X, pub.Y, opts.uid(), msg)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(e), nil
}

func signerPublicKey(priv *PrivateKey, opts *SignOpts) *curve.Point {
	if opts != nil && opts.PublicKey != nil {
		return opts.PublicKey.point()
	}
	return priv.Pub.point()
}

func nextEphemeral(rand io.Reader, opts *SignOpts) (k, x1 *big.Int, err error) {
	if opts != nil && opts.Pool != nil {
		if k, x1, ok := opts.Pool.Pop(); ok {
			return k, x1, nil
		}
		if opts.PoolOnly {
			return nil, nil, ErrPointPoolExhausted
		}
	}
	return GeneratePoolEntry(rand)
}
