package sm2_test

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"testing"

	sm2 "github.com/aacfactory/sm2core"
)

// sm2OrderHex is the curve order n from GB/T 32918-2016, used only to
// construct the malleated signature below.
const sm2OrderHex = "FFFFFFFE" + "FFFFFFFF" + "FFFFFFFF" + "FFFFFFFF" + "7203DF6B" + "21C6052B" + "53BBF409" + "39D54123"

func TestSignatureDERRoundTrip(t *testing.T) {
	priv := mustKey(t)
	msg := []byte("der round trip")
	sig, err := sm2.Sign(rand.Reader, priv, msg, &sm2.SignOpts{DER: true})
	if err != nil {
		t.Fatal(err)
	}
	if !sm2.Verify(&priv.Pub, msg, sig, &sm2.VerifyOpts{DER: true}) {
		t.Fatal("verify failed on the freshly DER-encoded signature")
	}
	if len(sig) == 0 || sig[0] != 0x30 {
		t.Fatalf("expected a DER SEQUENCE, got leading byte 0x%02x", sig[0])
	}

	raw, err := sm2.SignatureFromDER(sig)
	if err != nil {
		t.Fatal(err)
	}
	back, err := sm2.SignatureToDER(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, sig) {
		t.Fatal("signature did not round-trip through DER and back")
	}
}

func TestSignatureNonMalleability(t *testing.T) {
	priv := mustKey(t)
	msg := []byte("non malleable")
	sig, err := sm2.Sign(rand.Reader, priv, msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig) != 64 {
		t.Fatalf("expected a 64-byte raw signature, got %d", len(sig))
	}

	n, ok := new(big.Int).SetString(sm2OrderHex, 16)
	if !ok {
		t.Fatal("bad test constant")
	}
	s := new(big.Int).SetBytes(sig[32:])
	negS := new(big.Int).Sub(n, s)
	negSBytes := make([]byte, 32)
	negS.FillBytes(negSBytes)

	malleated := append(append([]byte{}, sig[:32]...), negSBytes...)
	if sm2.Verify(&priv.Pub, msg, malleated, nil) {
		t.Fatal("verify succeeded with (r, n-s), which SM2 must reject")
	}
}

func TestCiphertextDERRoundTrip(t *testing.T) {
	priv := mustKey(t)
	msg := []byte("asn1 ciphertext")
	for _, framing := range []sm2.Framing{sm2.C1C3C2, sm2.C1C2C3} {
		der, err := sm2.Encrypt(rand.Reader, &priv.Pub, msg, &sm2.EncryptOpts{Framing: framing, DER: true})
		if err != nil {
			t.Fatal(err)
		}
		got, ok := sm2.Decrypt(priv, der, &sm2.DecryptOpts{Framing: framing, DER: true})
		if !ok {
			t.Fatalf("framing=%v: decrypt of DER ciphertext failed", framing)
		}
		if !bytes.Equal(got, msg) {
			t.Fatalf("framing=%v: got %q, want %q", framing, got, msg)
		}
	}
	der, err := sm2.Encrypt(rand.Reader, &priv.Pub, msg, &sm2.EncryptOpts{Framing: sm2.C1C3C2, DER: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sm2.Decrypt(priv, der, &sm2.DecryptOpts{Framing: sm2.C1C2C3, DER: true}); ok {
		t.Fatal("decrypt succeeded on a DER ciphertext with a mismatched framing mode")
	}
}

func TestCiphertextToDERFromDER(t *testing.T) {
	priv := mustKey(t)
	msg := []byte("reframe to der")
	plain, err := sm2.Encrypt(rand.Reader, &priv.Pub, msg, &sm2.EncryptOpts{Framing: sm2.C1C3C2})
	if err != nil {
		t.Fatal(err)
	}
	der, err := sm2.CiphertextToDER(plain, sm2.C1C3C2)
	if err != nil {
		t.Fatal(err)
	}
	back, err := sm2.CiphertextFromDER(der, sm2.C1C3C2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, plain) {
		t.Fatal("ciphertext did not round-trip through DER and back")
	}
}
