// Package kdf implements the SM2 counter-mode key derivation stream: an
// arbitrary-length pseudorandom byte stream derived from the shared point
// coordinates (x2, y2), built on top of SM3. Encryption XORs it into the
// plaintext to produce C2; decryption XORs it into C2 to recover the
// plaintext, since the same stream, keyed only by (x2, y2), inverts itself.
package kdf

import (
	"encoding/binary"
	"errors"

	"github.com/tjfoc/gmsm/sm3"
)

const blockSize = 32 // sm3.Size

// ErrStreamTooLong is returned when the requested length would require
// more than 2^32-1 counter steps, the bound imposed by the 32-bit counter.
var ErrStreamTooLong = errors.New("sm2: kdf stream exceeds counter-mode bound")

// Stream derives length bytes from SM3(x2 || y2 || ct), ct a 32-bit
// big-endian counter starting at 1 and incrementing every 32 bytes
// consumed. A zero-length request consumes no counter steps at all.
func Stream(x2, y2 []byte, length int) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	if length < 0 {
		return nil, errors.New("sm2: negative kdf stream length")
	}
	blocks := (length + blockSize - 1) / blockSize
	if uint64(blocks) > uint64(1)<<32-1 {
		return nil, ErrStreamTooLong
	}

	out := make([]byte, length)
	var counter [4]byte
	ct := uint32(1)
	for i := 0; i < blocks; i++ {
		binary.BigEndian.PutUint32(counter[:], ct)
		h := sm3.New()
		h.Write(x2)
		h.Write(y2)
		h.Write(counter[:])
		block := h.Sum(nil)

		start := i * blockSize
		end := start + blockSize
		if end > length {
			end = length
		}
		copy(out[start:end], block[:end-start])
		ct++
	}
	return out, nil
}

// IsAllZero reports whether every byte of a non-empty stream is zero, the
// "failed to calculate valid t" rejection condition the encryptor retries
// a fresh ephemeral key on. An empty stream (the zero-length message case)
// is never considered a rejection.
func IsAllZero(stream []byte) bool {
	if len(stream) == 0 {
		return false
	}
	var acc byte
	for _, b := range stream {
		acc |= b
	}
	return acc == 0
}
