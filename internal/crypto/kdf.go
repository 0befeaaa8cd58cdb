package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

const (
	infoEnc = "CBCPROBE-ENC"
	infoMAC = "CBCPROBE-MAC"
)

// KDF is an HKDF-shaped derivation with explicit salt and info so callers get
// domain separation between uses of the same input keying material.
func KDF(input, salt, info []byte, outLen int) []byte {
	prk := hmac.New(sha256.New, salt)
	prk.Write(input)
	prkSum := prk.Sum(nil)
	var out []byte
	var prev []byte
	var ctr byte = 1
	for len(out) < outLen {
		h := hmac.New(sha256.New, prkSum)
		h.Write(prev)
		h.Write(info)
		h.Write([]byte{ctr})
		prev = h.Sum(nil)
		out = append(out, prev...)
		ctr++
	}
	return out[:outLen]
}

// DeriveKeys splits one master key into independent encryption and MAC keys
// using distinct info labels. Seal/Open rely on the two never colliding.
func DeriveKeys(master, salt []byte) (encKey, macKey []byte) {
	encKey = KDF(master, salt, []byte(infoEnc), 32)
	macKey = KDF(master, salt, []byte(infoMAC), 32)
	return encKey, macKey
}
