package sm2

import (
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/aacfactory/sm2core/curve"
)

func encodeSignature(r, s *big.Int, der bool) ([]byte, error) {
	if der {
		return encodeSignatureDER(r, s)
	}
	return encodeSignatureRaw(r, s), nil
}

func decodeSignature(sig []byte, der bool) (r, s *big.Int, err error) {
	if der {
		return decodeSignatureDER(sig)
	}
	return decodeSignatureRaw(sig)
}

// encodeSignatureRaw renders (r, s) as the fixed 64-byte r||s framing.
func encodeSignatureRaw(r, s *big.Int) []byte {
	out := make([]byte, 2*curve.ByteLen)
	r.FillBytes(out[:curve.ByteLen])
	s.FillBytes(out[curve.ByteLen:])
	return out
}

func decodeSignatureRaw(sig []byte) (r, s *big.Int, err error) {
	if len(sig) != 2*curve.ByteLen {
		return nil, nil, ErrInvalidSignature
	}
	r = new(big.Int).SetBytes(sig[:curve.ByteLen])
	s = new(big.Int).SetBytes(sig[curve.ByteLen:])
	return r, s, nil
}

// encodeSignatureDER renders (r, s) as a SEQUENCE of two INTEGERs, the
// framing most CAs and TLS stacks expect for an SM2 signature.
func encodeSignatureDER(r, s *big.Int) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	return b.Bytes()
}

// SignatureToDER re-encodes a raw 64-byte r||s signature as ASN.1 DER.
func SignatureToDER(sig []byte) ([]byte, error) {
	r, s, err := decodeSignatureRaw(sig)
	if err != nil {
		return nil, err
	}
	return encodeSignatureDER(r, s)
}

// SignatureFromDER re-encodes a DER signature in the raw 64-byte r||s
// framing.
func SignatureFromDER(der []byte) ([]byte, error) {
	r, s, err := decodeSignatureDER(der)
	if err != nil {
		return nil, err
	}
	return encodeSignatureRaw(r, s), nil
}

func decodeSignatureDER(sig []byte) (r, s *big.Int, err error) {
	r, s = new(big.Int), new(big.Int)
	var inner cryptobyte.String
	input := cryptobyte.String(sig)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, nil, ErrInvalidSignature
	}
	return r, s, nil
}
