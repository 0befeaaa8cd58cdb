package cbc

import (
	"bytes"
	"fmt"
)

// Pad appends PKCS#7 padding so the result length is a multiple of blockSize.
// Between 1 and blockSize bytes are always added; a message that is already
// block-aligned receives a full extra block. That is what lets Unpad tell
// padding apart from real content.
func Pad(data []byte, blockSize int) ([]byte, error) {
	if blockSize < 1 || blockSize > 255 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidParameter, blockSize)
	}
	n := blockSize - len(data)%blockSize
	out := make([]byte, 0, len(data)+n)
	out = append(out, data...)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...), nil
}

// Unpad validates and strips PKCS#7 padding: the last byte v must be in
// [1, blockSize] and the trailing v bytes must all equal v. This check is the
// only integrity gate in the whole pipeline, and a weak one: a randomly
// corrupted last block still passes roughly once in 256 attempts.
func Unpad(data []byte, blockSize int) ([]byte, error) {
	if blockSize < 1 || blockSize > 255 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidParameter, blockSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidPadding)
	}
	v := int(data[len(data)-1])
	if v == 0 || v > blockSize || v > len(data) {
		return nil, fmt.Errorf("%w: pad byte %d", ErrInvalidPadding, v)
	}
	for _, b := range data[len(data)-v:] {
		if int(b) != v {
			return nil, fmt.Errorf("%w: inconsistent pad bytes", ErrInvalidPadding)
		}
	}
	return data[:len(data)-v], nil
}
