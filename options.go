package sm2

import "github.com/aacfactory/sm2core/identity"

// Framing selects the ciphertext's field ordering. C1C3C2 is the GB/T
// 32918 default; C1C2C3 is the legacy ordering some deployments still use.
type Framing byte

const (
	C1C3C2 Framing = iota
	C1C2C3
)

type EncryptOpts struct {
	Framing Framing
	DER     bool
}

func (o *EncryptOpts) framing() Framing {
	if o == nil {
		return C1C3C2
	}
	return o.Framing
}

func (o *EncryptOpts) der() bool {
	return o != nil && o.DER
}

// DecryptOpts must match the EncryptOpts used to produce the ciphertext,
// or decryption fails.
type DecryptOpts struct {
	Framing Framing
	DER     bool
}

func (o *DecryptOpts) framing() Framing {
	if o == nil {
		return C1C3C2
	}
	return o.Framing
}

func (o *DecryptOpts) der() bool {
	return o != nil && o.DER
}

type SignOpts struct {
	// Hash Z-prehashes the message before the signature equations run;
	// otherwise msg is treated as an already-computed digest.
	Hash bool
	// UID is the signer's identity, used only when Hash is set. Defaults
	// to identity.DefaultUID when empty.
	UID []byte
	// PublicKey overrides the public key used to compute Z; if nil, it is
	// derived from the private key being signed with.
	PublicKey PublicKeyLike
	DER       bool
	// Pool, if non-nil, supplies pre-generated (k, x1) ephemeral pairs
	// before Sign falls back to generating its own.
	Pool *PointPool
	// PoolOnly returns ErrPointPoolExhausted instead of falling back once
	// Pool runs dry. Has no effect without a non-nil Pool.
	PoolOnly bool
}

func (o *SignOpts) uid() []byte {
	if o == nil || len(o.UID) == 0 {
		return identity.DefaultUID
	}
	return o.UID
}

func (o *SignOpts) hash() bool { return o != nil && o.Hash }
func (o *SignOpts) der() bool  { return o != nil && o.DER }

// VerifyOpts must mirror the SignOpts used to produce the signature.
type VerifyOpts struct {
	Hash bool
	UID  []byte
	DER  bool
}

func (o *VerifyOpts) uid() []byte {
	if o == nil || len(o.UID) == 0 {
		return identity.DefaultUID
	}
	return o.UID
}

func (o *VerifyOpts) hash() bool { return o != nil && o.Hash }
func (o *VerifyOpts) der() bool  { return o != nil && o.DER }
