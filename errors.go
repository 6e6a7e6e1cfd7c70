package sm2

import "errors"

// Sentinel errors surfaced from malformed input. Arithmetic rejection
// conditions during signing (r = 0, r+k = n, s = 0) are not errors: the
// signer retries transparently and never surfaces them. Decryption
// integrity failure and verification failure are likewise not errors: they
// are the soft-fail boolean/empty-result contract described on Decrypt and
// Verify.
var (
	ErrInvalidPrivateKeyHex = errors.New("sm2: private key hex must be 64 hex characters")
	ErrInvalidPublicKeyHex  = errors.New("sm2: public key hex must be 128 hex characters, with or without a 04 prefix")
	ErrInvalidPrivateKey    = errors.New("sm2: private key is out of range [1, n-2]")
	ErrPublicKeyAtInfinity  = errors.New("sm2: public key point is the infinity")
	ErrCiphertextTooShort   = errors.New("sm2: ciphertext too short")
	ErrInvalidCiphertext    = errors.New("sm2: malformed ciphertext")
	ErrInvalidSignature     = errors.New("sm2: malformed signature")
	ErrDecryption           = errors.New("sm2: decryption integrity check failed")
	ErrPointPoolExhausted   = errors.New("sm2: point pool is empty")
	ErrRetryLimitExceeded   = errors.New("sm2: exceeded retry limit generating a valid ephemeral value")
)

const maxRetryLimit = 100
