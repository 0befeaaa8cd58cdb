package cbc

import "errors"

var (
	// ErrInvalidLength reports input whose length is not a whole number of
	// blocks, or an empty ciphertext.
	ErrInvalidLength = errors.New("cbc: invalid input length")

	// ErrInvalidPadding reports a buffer whose trailing bytes do not form
	// valid PKCS#7 padding.
	ErrInvalidPadding = errors.New("cbc: invalid padding")

	// ErrInvalidParameter reports an unsupported key size, a wrong IV length,
	// or an out-of-range offset/segment.
	ErrInvalidParameter = errors.New("cbc: invalid parameter")
)
