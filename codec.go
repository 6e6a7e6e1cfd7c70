package sm2

import "io"

// String/[]byte convenience wrappers around Encrypt, Decrypt, Sign, and
// Verify.

func EncryptString(rand io.Reader, pub PublicKeyLike, plaintext string, opts *EncryptOpts) ([]byte, error) {
	return Encrypt(rand, pub, []byte(plaintext), opts)
}

func EncryptStringToHex(rand io.Reader, pubHex, plaintext string, opts *EncryptOpts) (string, error) {
	return EncryptToHex(rand, pubHex, []byte(plaintext), opts)
}

func SignString(rand io.Reader, priv *PrivateKey, message string, opts *SignOpts) ([]byte, error) {
	return Sign(rand, priv, []byte(message), opts)
}

func SignStringToHex(rand io.Reader, privHex, message string, opts *SignOpts) (string, error) {
	return SignToHex(rand, privHex, []byte(message), opts)
}

func VerifyString(pub PublicKeyLike, message string, sig []byte, opts *VerifyOpts) bool {
	return Verify(pub, []byte(message), sig, opts)
}

func VerifyStringFromHex(pubHex, message, sigHex string, opts *VerifyOpts) bool {
	return VerifyFromHex(pubHex, []byte(message), sigHex, opts)
}
