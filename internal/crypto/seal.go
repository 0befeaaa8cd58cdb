// Package crypto holds the hardened counterparts the bare CBC mode lacks:
// encrypt-then-MAC sealing and an off-the-shelf AEAD. The probes decrypt the
// same tampered input through both paths to show the tamper being rejected
// before any plaintext is produced.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"

	"cbcprobe/internal/cbc"
)

// ErrAuthFailed reports a sealed message whose tag does not verify.
var ErrAuthFailed = errors.New("crypto: message authentication failed")

// Seal pads and CBC-encrypts plaintext under encKey, then appends an
// HMAC-SHA256 tag computed over iv||ciphertext under macKey. Output layout is
// iv || ciphertext || tag. The tag covers the IV, so the bit-flip forgery
// that works on bare CBC is caught by Open.
func Seal(encKey, macKey, plaintext []byte) ([]byte, error) {
	c, err := cbc.NewAES(encKey)
	if err != nil { return nil, err }
	n := c.BlockSize()
	iv, err := cbc.NewIV(n)
	if err != nil { return nil, err }
	padded, err := cbc.Pad(plaintext, n)
	if err != nil { return nil, err }
	ct, err := cbc.Encrypt(c, iv, padded)
	if err != nil { return nil, err }
	body := append(iv, ct...)
	mac := hmac.New(sha256.New, macKey)
	mac.Write(body)
	return mac.Sum(body), nil
}

// Open verifies the tag before any decryption runs, rejecting IV or
// ciphertext tampering outright, then CBC-decrypts and unpads.
func Open(encKey, macKey, sealed []byte) ([]byte, error) {
	c, err := cbc.NewAES(encKey)
	if err != nil { return nil, err }
	n := c.BlockSize()
	if len(sealed) < n+n+sha256.Size {
		return nil, fmt.Errorf("%w: sealed message of %d bytes too short", cbc.ErrInvalidLength, len(sealed))
	}
	body, tag := sealed[:len(sealed)-sha256.Size], sealed[len(sealed)-sha256.Size:]
	mac := hmac.New(sha256.New, macKey)
	mac.Write(body)
	if !hmac.Equal(tag, mac.Sum(nil)) {
		return nil, ErrAuthFailed
	}
	padded, err := cbc.Decrypt(c, body[:n], body[n:])
	if err != nil { return nil, err }
	return cbc.Unpad(padded, n)
}
