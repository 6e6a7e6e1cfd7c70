package sm2_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	sm2 "github.com/aacfactory/sm2core"
)

func mustKey(t *testing.T) *sm2.PrivateKey {
	t.Helper()
	priv, err := sm2.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return priv
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	priv := mustKey(t)
	msg := []byte("encryption standard")

	for _, framing := range []sm2.Framing{sm2.C1C3C2, sm2.C1C2C3} {
		for _, der := range []bool{false, true} {
			ct, err := sm2.Encrypt(rand.Reader, &priv.Pub, msg, &sm2.EncryptOpts{Framing: framing, DER: der})
			if err != nil {
				t.Fatalf("framing=%v der=%v: %v", framing, der, err)
			}
			got, ok := sm2.Decrypt(priv, ct, &sm2.DecryptOpts{Framing: framing, DER: der})
			if !ok {
				t.Fatalf("framing=%v der=%v: decrypt failed", framing, der)
			}
			if !bytes.Equal(got, msg) {
				t.Fatalf("framing=%v der=%v: got %q, want %q", framing, der, got, msg)
			}
		}
	}
}

func TestEncryptDecryptEmptyMessage(t *testing.T) {
	priv := mustKey(t)
	ct, err := sm2.Encrypt(rand.Reader, &priv.Pub, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	// 64 bytes C1 + 32 bytes C3 + 0 bytes C2, hex-doubled: 128+64 hex chars.
	if len(ct) != 64+32 {
		t.Fatalf("expected a 96-byte ciphertext for an empty message, got %d", len(ct))
	}
	got, ok := sm2.Decrypt(priv, ct, nil)
	if !ok {
		t.Fatal("decrypt of empty-message ciphertext failed")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty plaintext, got %q", got)
	}
}

func TestEncryptToHexLength(t *testing.T) {
	priv := mustKey(t)
	hexCt, err := sm2.EncryptToHex(rand.Reader, priv.Pub.Hex(), []byte("hello"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := 128 + 64 + 2*5; len(hexCt) != want {
		t.Fatalf("expected %d hex characters for a 5-byte message, got %d", want, len(hexCt))
	}
}

func TestDecryptTamperedCiphertextFails(t *testing.T) {
	priv := mustKey(t)
	msg := []byte("tamper me")
	ct, err := sm2.Encrypt(rand.Reader, &priv.Pub, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range ct {
		tampered := append([]byte{}, ct...)
		tampered[i] ^= 0x01
		if _, ok := sm2.Decrypt(priv, tampered, nil); ok {
			t.Fatalf("decrypt succeeded after flipping bit in byte %d", i)
		}
	}
}

func TestFramingEquivalenceRequiresMatchingMode(t *testing.T) {
	priv := mustKey(t)
	msg := []byte("cross framing")
	ct, err := sm2.Encrypt(rand.Reader, &priv.Pub, msg, &sm2.EncryptOpts{Framing: sm2.C1C3C2})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sm2.Decrypt(priv, ct, &sm2.DecryptOpts{Framing: sm2.C1C2C3}); ok {
		t.Fatal("decrypt succeeded with a mismatched framing mode")
	}
}

func TestConvertCiphertextFraming(t *testing.T) {
	priv := mustKey(t)
	msg := []byte("reframe me")
	ct, err := sm2.Encrypt(rand.Reader, &priv.Pub, msg, &sm2.EncryptOpts{Framing: sm2.C1C3C2})
	if err != nil {
		t.Fatal(err)
	}
	reframed, err := sm2.ConvertCiphertextFraming(ct, sm2.C1C3C2)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := sm2.Decrypt(priv, reframed, &sm2.DecryptOpts{Framing: sm2.C1C2C3})
	if !ok {
		t.Fatal("decrypt of reframed ciphertext failed")
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("got %q, want %q", got, msg)
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv := mustKey(t)
	msg := []byte("encryption standard")

	for _, der := range []bool{false, true} {
		for _, hash := range []bool{false, true} {
			sig, err := sm2.Sign(rand.Reader, priv, msg, &sm2.SignOpts{DER: der, Hash: hash})
			if err != nil {
				t.Fatalf("der=%v hash=%v: %v", der, hash, err)
			}
			if !sm2.Verify(&priv.Pub, msg, sig, &sm2.VerifyOpts{DER: der, Hash: hash}) {
				t.Fatalf("der=%v hash=%v: verify failed", der, hash)
			}
		}
	}
}

func TestVerifyFailsWithWrongKey(t *testing.T) {
	priv := mustKey(t)
	other := mustKey(t)
	msg := []byte("whose key is this")
	sig, err := sm2.Sign(rand.Reader, priv, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sm2.Verify(&other.Pub, msg, sig, nil) {
		t.Fatal("verify succeeded with the wrong public key")
	}
}

func TestVerifyFailsWithTamperedMessage(t *testing.T) {
	priv := mustKey(t)
	msg := []byte("original message")
	sig, err := sm2.Sign(rand.Reader, priv, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sm2.Verify(&priv.Pub, []byte("different message"), sig, nil) {
		t.Fatal("verify succeeded after the message changed")
	}
}

func TestKeyHexRoundTrip(t *testing.T) {
	priv := mustKey(t)
	parsedPriv, err := sm2.ParsePrivateKeyHex(priv.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if parsedPriv.D.Cmp(priv.D) != 0 {
		t.Fatal("private key did not round-trip through hex")
	}
	parsedPub, err := sm2.ParsePublicKeyHex(priv.Pub.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if !parsedPub.Equal(&priv.Pub) {
		t.Fatal("public key did not round-trip through hex")
	}
	prefixed := "04" + priv.Pub.Hex()
	parsedPrefixed, err := sm2.ParsePublicKeyHex(prefixed)
	if err != nil {
		t.Fatal(err)
	}
	if !parsedPrefixed.Equal(&priv.Pub) {
		t.Fatal("public key with 04 prefix did not parse to the same point")
	}
}
