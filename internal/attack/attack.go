// Package attack computes the IV and ciphertext tweaks that exploit CBC's
// unauthenticated chaining. For CBC, plaintext[i] = Dec(C[i]) XOR C[i-1], so
// whoever controls C[i-1] (or the IV, for the first block) controls an XOR
// mask over plaintext[i] without knowing the key.
package attack

import (
	"fmt"

	"cbcprobe/internal/cbc"
)

// TweakIV applies an XOR mask to the IV to induce the same XOR in the first
// plaintext block on decryption. The input IV is left unmodified.
func TweakIV(iv []byte, xorMask []byte) []byte {
	out := make([]byte, len(iv))
	for i := range iv {
		m := byte(0)
		if i < len(xorMask) {
			m = xorMask[i]
		}
		out[i] = iv[i] ^ m
	}
	return out
}

// ComputeTamperedIV returns an IV that makes the first plaintext block
// decrypt to desired at [offset, offset+len(desired)) wherever the original
// plaintext held known. Bytes outside that range keep their original value
// after decryption. known and desired must have equal length and the segment
// must fit inside the first block.
func ComputeTamperedIV(iv, known, desired []byte, offset int) ([]byte, error) {
	if len(known) != len(desired) {
		return nil, fmt.Errorf("%w: segment lengths differ (%d vs %d)", cbc.ErrInvalidParameter, len(known), len(desired))
	}
	if offset < 0 || offset+len(known) > len(iv) {
		return nil, fmt.Errorf("%w: segment [%d,%d) outside %d-byte block", cbc.ErrInvalidParameter, offset, offset+len(known), len(iv))
	}
	mask := make([]byte, len(iv))
	for i := range known {
		mask[offset+i] = known[i] ^ desired[i]
	}
	return TweakIV(iv, mask), nil
}

// TamperBlock rewrites ciphertext block blockIndex-1 so that plaintext block
// blockIndex (zero-based, >= 1) decrypts to desired at offset, at the cost of
// scrambling plaintext block blockIndex-1 entirely. Same XOR principle as
// ComputeTamperedIV, applied one step later in the chain. Returns a modified
// copy; the input ciphertext is untouched.
func TamperBlock(ciphertext []byte, blockIndex int, known, desired []byte, offset, blockSize int) ([]byte, error) {
	if blockSize < 1 || len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d, block size %d", cbc.ErrInvalidLength, len(ciphertext), blockSize)
	}
	if blockIndex < 1 || (blockIndex+1)*blockSize > len(ciphertext) {
		return nil, fmt.Errorf("%w: block index %d", cbc.ErrInvalidParameter, blockIndex)
	}
	if len(known) != len(desired) {
		return nil, fmt.Errorf("%w: segment lengths differ (%d vs %d)", cbc.ErrInvalidParameter, len(known), len(desired))
	}
	if offset < 0 || offset+len(known) > blockSize {
		return nil, fmt.Errorf("%w: segment [%d,%d) outside %d-byte block", cbc.ErrInvalidParameter, offset, offset+len(known), blockSize)
	}
	out := append([]byte(nil), ciphertext...)
	prev := out[(blockIndex-1)*blockSize : blockIndex*blockSize]
	for i := range known {
		prev[offset+i] ^= known[i] ^ desired[i]
	}
	return out, nil
}
