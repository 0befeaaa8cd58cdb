package crypto

import (
	"bytes"
	"testing"
)

func TestKDFDomainSeparation(t *testing.T) {
	in := []byte("master")
	salt := []byte("salt")
	a := KDF(in, salt, []byte("ENC"), 32)
	b := KDF(in, salt, []byte("MAC"), 32)
	if bytes.Equal(a, b) {
		t.Fatal("expected different outputs for different info labels")
	}
}

func TestKDFOutputLengths(t *testing.T) {
	for _, n := range []int{1, 16, 32, 33, 64, 100} {
		out := KDF([]byte("in"), []byte("s"), []byte("i"), n)
		if len(out) != n {
			t.Fatalf("outLen %d: got %d bytes", n, len(out))
		}
	}
}

func TestDeriveKeys(t *testing.T) {
	enc, mac := DeriveKeys([]byte("master"), []byte("salt"))
	if len(enc) != 32 || len(mac) != 32 {
		t.Fatalf("lengths %d, %d", len(enc), len(mac))
	}
	if bytes.Equal(enc, mac) {
		t.Fatal("encryption and MAC keys must differ")
	}
	enc2, mac2 := DeriveKeys([]byte("master"), []byte("salt"))
	if !bytes.Equal(enc, enc2) || !bytes.Equal(mac, mac2) {
		t.Fatal("derivation must be deterministic")
	}
}
