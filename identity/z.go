// Package identity implements the SM2 user-identity binding hash (the "Z
// value") and the signing/verification pre-hash e = SM3(Z || M) built on
// top of it.
package identity

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/tjfoc/gmsm/sm3"

	"github.com/aacfactory/sm2core/curve"
)

// DefaultUID is the SM2 standard's example default user identity, used
// whenever a caller does not supply one of its own.
var DefaultUID = []byte("1234567812345678")

// ErrUIDTooLong is returned for a user identity whose bit length would
// overflow the 16-bit ENTL field.
var ErrUIDTooLong = errors.New("sm2: user identity is too long")

// Z computes the identity-and-parameter binding hash:
//
//	Z = SM3(ENTL || userID || a || b || Gx || Gy || Px || Py)
//
// ENTL is the bit length of userID as a 16-bit big-endian integer; every
// curve constant and public key coordinate is a fixed 32-byte big-endian
// integer.
func Z(pubX, pubY *big.Int, userID []byte) ([]byte, error) {
	if len(userID)*8 > 0xFFFF {
		return nil, ErrUIDTooLong
	}

	h := sm3.New()
	var entl [2]byte
	binary.BigEndian.PutUint16(entl[:], uint16(len(userID)*8))
	h.Write(entl[:])
	h.Write(userID)

	params := curve.Params()
	a := new(big.Int).Sub(params.P, big.NewInt(3)) // SM2 fixes a = p-3
	h.Write(fixed32(a))
	h.Write(fixed32(params.B))
	h.Write(fixed32(params.Gx))
	h.Write(fixed32(params.Gy))
	h.Write(fixed32(pubX))
	h.Write(fixed32(pubY))
	return h.Sum(nil), nil
}

func fixed32(v *big.Int) []byte {
	buf := make([]byte, curve.ByteLen)
	v.FillBytes(buf)
	return buf
}

// PreHash computes e = SM3(Z || M), the digest that signing and
// verification operate on when Z-prehashing is requested.
func PreHash(pubX, pubY *big.Int, userID, msg []byte) ([]byte, error) {
	z, err := Z(pubX, pubY, userID)
	if err != nil {
		return nil, err
	}
	h := sm3.New()
	h.Write(z)
	h.Write(msg)
	return h.Sum(nil), nil
}
