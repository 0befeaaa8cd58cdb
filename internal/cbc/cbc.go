// Package cbc implements the CBC mode of operation from scratch over an
// opaque block-cipher primitive, together with PKCS#7 padding.
//
// The mode carries no authentication on purpose: the IV and ciphertext are
// malleable, which is the behavior the probes in this repo demonstrate. Use
// the crypto package's Seal/Open when tampering must be detected.
package cbc

import "fmt"

// Encrypt runs CBC over an already-padded plaintext: each block is XORed with
// the previous ciphertext block (the IV for the first) before the block
// cipher is applied. Encryption is inherently sequential; block i cannot be
// produced before C[i-1] exists. Inputs are not mutated.
func Encrypt(c BlockCipher, iv, plaintext []byte) ([]byte, error) {
	n := c.BlockSize()
	if len(iv) != n {
		return nil, fmt.Errorf("%w: IV length %d, block size %d", ErrInvalidParameter, len(iv), n)
	}
	if len(plaintext)%n != 0 {
		return nil, fmt.Errorf("%w: plaintext length %d not a multiple of %d", ErrInvalidLength, len(plaintext), n)
	}
	out := make([]byte, len(plaintext))
	prev := iv
	for i := 0; i < len(plaintext); i += n {
		blk := out[i : i+n]
		xorBytes(blk, plaintext[i:i+n], prev)
		c.EncryptBlock(blk, blk)
		prev = blk
	}
	return out, nil
}

// Decrypt reverses Encrypt. The chain input for block i+1 is the received
// ciphertext block C[i], never its decrypted form. That choice bounds the
// blast radius of a tamper: flipping a bit in C[i] scrambles P[i] entirely
// but flips exactly the same bit position in P[i+1], and a tampered IV
// affects P[1] alone, bit for bit. Each output block depends only on C[i-1]
// and C[i], so blocks of one message could be decrypted independently.
func Decrypt(c BlockCipher, iv, ciphertext []byte) ([]byte, error) {
	n := c.BlockSize()
	if len(iv) != n {
		return nil, fmt.Errorf("%w: IV length %d, block size %d", ErrInvalidParameter, len(iv), n)
	}
	if len(ciphertext) == 0 || len(ciphertext)%n != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d", ErrInvalidLength, len(ciphertext))
	}
	out := make([]byte, len(ciphertext))
	prev := iv
	for i := 0; i < len(ciphertext); i += n {
		ct := ciphertext[i : i+n]
		blk := out[i : i+n]
		c.DecryptBlock(blk, ct)
		xorBytes(blk, blk, prev)
		prev = ct
	}
	return out, nil
}

func xorBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}
