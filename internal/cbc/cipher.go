package cbc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// BlockCipher is the single primitive the mode layer is built on. EncryptBlock
// and DecryptBlock must be mutual inverses for a fixed key and operate on
// exactly BlockSize bytes; dst and src may overlap.
type BlockCipher interface {
	BlockSize() int
	EncryptBlock(dst, src []byte)
	DecryptBlock(dst, src []byte)
}

// NewAES returns a BlockCipher backed by AES. The key must be 16, 24 or 32
// bytes long.
func NewAES(key []byte) (BlockCipher, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: AES key must be 16, 24 or 32 bytes, got %d", ErrInvalidParameter, len(key))
	}
	b, err := aes.NewCipher(key)
	if err != nil { return nil, err }
	return aesCipher{b}, nil
}

type aesCipher struct{ b cipher.Block }

func (c aesCipher) BlockSize() int               { return c.b.BlockSize() }
func (c aesCipher) EncryptBlock(dst, src []byte) { c.b.Encrypt(dst, src) }
func (c aesCipher) DecryptBlock(dst, src []byte) { c.b.Decrypt(dst, src) }

// NewIV returns a fresh random IV of the given block size. A new IV must be
// drawn for every encryption under the same key; the IV travels in clear with
// the ciphertext and is integrity-sensitive, not secret.
func NewIV(blockSize int) ([]byte, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidParameter, blockSize)
	}
	iv := make([]byte, blockSize)
	if _, err := rand.Read(iv); err != nil { return nil, err }
	return iv, nil
}
