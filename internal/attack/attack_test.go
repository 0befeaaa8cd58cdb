package attack

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbcprobe/internal/cbc"
)

func TestTweakIV(t *testing.T) {
	iv := []byte{0x00, 0x01, 0x02}
	mask := []byte{0xff, 0x00, 0x01}
	out := TweakIV(iv, mask)
	if out[0] != 0xff || out[1] != 0x01 || out[2] != 0x03 {
		t.Fatalf("unexpected: %v", out)
	}
	if iv[0] != 0x00 {
		t.Fatal("input IV mutated")
	}
	// Short mask leaves the tail alone.
	out = TweakIV(iv, []byte{0x01})
	if out[1] != 0x01 || out[2] != 0x02 {
		t.Fatalf("short mask changed tail: %v", out)
	}
}

func TestComputeTamperedIVParameters(t *testing.T) {
	iv := make([]byte, 16)
	_, err := ComputeTamperedIV(iv, []byte("abc"), []byte("ab"), 0)
	assert.ErrorIs(t, err, cbc.ErrInvalidParameter)
	_, err = ComputeTamperedIV(iv, []byte("abc"), []byte("xyz"), 14)
	assert.ErrorIs(t, err, cbc.ErrInvalidParameter)
	_, err = ComputeTamperedIV(iv, []byte("abc"), []byte("xyz"), -1)
	assert.ErrorIs(t, err, cbc.ErrInvalidParameter)
}

// The canonical scenario: "a secret" encrypted under a random key, then
// decrypted with a tampered IV that swaps "secret" for "rabbit".
func TestSecretBecomesRabbit(t *testing.T) {
	key := make([]byte, 16)
	_, err := rand.Read(key)
	require.NoError(t, err)
	c, err := cbc.NewAES(key)
	require.NoError(t, err)
	n := c.BlockSize()
	iv, err := cbc.NewIV(n)
	require.NoError(t, err)

	padded, err := cbc.Pad([]byte("a secret"), n)
	require.NoError(t, err)
	ct, err := cbc.Encrypt(c, iv, padded)
	require.NoError(t, err)

	tampered, err := ComputeTamperedIV(iv, []byte("secret"), []byte("rabbit"), 2)
	require.NoError(t, err)

	out, err := cbc.Decrypt(c, tampered, ct)
	require.NoError(t, err)
	pt, err := cbc.Unpad(out, n)
	require.NoError(t, err)
	assert.Equal(t, []byte("a rabbit"), pt)

	// The honest receiver still gets the original.
	honest, err := cbc.Decrypt(c, iv, ct)
	require.NoError(t, err)
	pt, err = cbc.Unpad(honest, n)
	require.NoError(t, err)
	assert.Equal(t, []byte("a secret"), pt)
}

func TestComputeTamperedIVLeavesOtherBytes(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	c, err := cbc.NewAES(key)
	require.NoError(t, err)
	n := c.BlockSize()
	iv, err := cbc.NewIV(n)
	require.NoError(t, err)

	pt := make([]byte, 2*n)
	_, err = rand.Read(pt)
	require.NoError(t, err)
	ct, err := cbc.Encrypt(c, iv, pt)
	require.NoError(t, err)

	const offset = 5
	desired := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	tampered, err := ComputeTamperedIV(iv, pt[offset:offset+4], desired, offset)
	require.NoError(t, err)

	out, err := cbc.Decrypt(c, tampered, ct)
	require.NoError(t, err)
	assert.Equal(t, desired, out[offset:offset+4])
	assert.Equal(t, pt[:offset], out[:offset])
	assert.Equal(t, pt[offset+4:n], out[offset+4:n])
	assert.Equal(t, pt[n:], out[n:], "second block must be untouched")
}

func TestTamperBlock(t *testing.T) {
	key := make([]byte, 16)
	_, err := rand.Read(key)
	require.NoError(t, err)
	c, err := cbc.NewAES(key)
	require.NoError(t, err)
	n := c.BlockSize()
	iv, err := cbc.NewIV(n)
	require.NoError(t, err)

	pt := make([]byte, 3*n)
	_, err = rand.Read(pt)
	require.NoError(t, err)
	ct, err := cbc.Encrypt(c, iv, pt)
	require.NoError(t, err)

	const offset = 3
	desired := []byte("ok!")
	known := pt[2*n+offset : 2*n+offset+3]
	forgedCT, err := TamperBlock(ct, 2, known, desired, offset, n)
	require.NoError(t, err)
	assert.Equal(t, ct[:n], forgedCT[:n], "only C[1] may change")
	assert.Equal(t, ct[2*n:], forgedCT[2*n:])

	out, err := cbc.Decrypt(c, iv, forgedCT)
	require.NoError(t, err)
	assert.Equal(t, desired, out[2*n+offset:2*n+offset+3])
	assert.Equal(t, pt[:n], out[:n], "P[0] must be unchanged")
	assert.NotEqual(t, pt[n:2*n], out[n:2*n], "P[1] is the sacrificed block")
}

func TestTamperBlockParameters(t *testing.T) {
	ct := make([]byte, 32)
	_, err := TamperBlock(ct, 0, []byte("a"), []byte("b"), 0, 16)
	assert.ErrorIs(t, err, cbc.ErrInvalidParameter, "block 0 is reached via the IV, not TamperBlock")
	_, err = TamperBlock(ct, 2, []byte("a"), []byte("b"), 0, 16)
	assert.ErrorIs(t, err, cbc.ErrInvalidParameter)
	_, err = TamperBlock(ct[:30], 1, []byte("a"), []byte("b"), 0, 16)
	assert.ErrorIs(t, err, cbc.ErrInvalidLength)
	_, err = TamperBlock(ct, 1, []byte("ab"), []byte("b"), 0, 16)
	assert.ErrorIs(t, err, cbc.ErrInvalidParameter)
	_, err = TamperBlock(ct, 1, []byte("ab"), []byte("cd"), 15, 16)
	assert.ErrorIs(t, err, cbc.ErrInvalidParameter)
}
