package cbc

import (
	"bytes"
	"errors"
	"testing"
)

func TestPad(t *testing.T) {
	cases := []struct {
		buf       []byte
		blockSize int
		want      []byte
	}{
		{[]byte{0}, 3, []byte{0, 2, 2}},
		{[]byte{0, 0}, 3, []byte{0, 0, 1}},
		// Aligned input still gains a full block.
		{[]byte{0, 0, 0}, 3, []byte{0, 0, 0, 3, 3, 3}},
		{nil, 3, []byte{3, 3, 3}},
	}
	for _, c := range cases {
		got, err := Pad(c.buf, c.blockSize)
		if err != nil {
			t.Fatalf("Pad(%v, %d): %v", c.buf, c.blockSize, err)
		}
		if !bytes.Equal(got, c.want) {
			t.Errorf("Pad(%v, %d) = %v, want %v", c.buf, c.blockSize, got, c.want)
		}
	}
}

func TestPadDoesNotMutateInput(t *testing.T) {
	in := append(make([]byte, 0, 8), 1, 2, 3)
	if _, err := Pad(in, 4); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in, []byte{1, 2, 3}) {
		t.Errorf("input mutated: %v", in)
	}
}

func TestPadBadBlockSize(t *testing.T) {
	for _, bs := range []int{0, -1, 256} {
		if _, err := Pad([]byte("x"), bs); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Pad with block size %d: got %v, want ErrInvalidParameter", bs, err)
		}
	}
}

func TestUnpad(t *testing.T) {
	cases := []struct {
		buf       []byte
		blockSize int
		want      []byte
	}{
		{[]byte{0, 2, 2}, 3, []byte{0}},
		{[]byte{0, 0, 1}, 3, []byte{0, 0}},
		{[]byte{0, 0, 0, 3, 3, 3}, 3, []byte{0, 0, 0}},
	}
	for _, c := range cases {
		got, err := Unpad(c.buf, c.blockSize)
		if err != nil {
			t.Fatalf("Unpad(%v, %d): %v", c.buf, c.blockSize, err)
		}
		if !bytes.Equal(got, c.want) {
			t.Errorf("Unpad(%v, %d) = %v, want %v", c.buf, c.blockSize, got, c.want)
		}
	}
}

func TestUnpadRejects(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
	}{
		{"empty input", nil},
		{"last byte zero", []byte{1, 2, 0}},
		{"last byte above block size", []byte{1, 2, 4}},
		{"pad longer than input", []byte{3, 3}},
		{"inconsistent pad bytes", []byte{1, 2, 3, 1, 3, 3}},
		{"zero padding never valid", []byte{1, 2, 0, 0, 0, 0}},
	}
	for _, c := range cases {
		if _, err := Unpad(c.buf, 3); !errors.Is(err, ErrInvalidPadding) {
			t.Errorf("%s: got %v, want ErrInvalidPadding", c.name, err)
		}
	}
}

func TestPadUnpadRoundTrip(t *testing.T) {
	const blockSize = 16
	for n := 0; n < 3*blockSize; n++ {
		in := bytes.Repeat([]byte{byte(n)}, n)
		padded, err := Pad(in, blockSize)
		if err != nil {
			t.Fatal(err)
		}
		if len(padded)%blockSize != 0 || len(padded) <= len(in) {
			t.Fatalf("len %d: padded to %d", n, len(padded))
		}
		out, err := Unpad(padded, blockSize)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("round trip failed for length %d", n)
		}
	}
}
