package bitio

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriterMSBFirst(t *testing.T) {
	buf := NewBuffer(16)
	w := NewWriter(buf)

	// 1,0,1,1 then 0000 padding -> 0xB0
	for _, bit := range []bool{true, false, true, true} {
		if err := w.WriteBit(bit); err != nil {
			t.Fatalf("WriteBit: %v", err)
		}
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if got := buf.Bytes(); !bytes.Equal(got, []byte{0xB0}) {
		t.Errorf("Bytes = %x, want b0", got)
	}
	if got := w.BitsWritten(); got != 4 {
		t.Errorf("BitsWritten = %d, want 4", got)
	}
}

func TestWriteBitsValueOrder(t *testing.T) {
	buf := NewBuffer(16)
	w := NewWriter(buf)

	// 0x1A5 over 12 bits -> 0001 1010 0101, padded to 0x1A 0x50
	if err := w.WriteBits(0x1A5, 12); err != nil {
		t.Fatalf("WriteBits: %v", err)
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if got := buf.Bytes(); !bytes.Equal(got, []byte{0x1A, 0x50}) {
		t.Errorf("Bytes = %x, want 1a50", got)
	}
	if got := w.BitsWritten(); got != 12 {
		t.Errorf("BitsWritten = %d, want 12", got)
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	buf := NewBuffer(64)
	w := NewWriter(buf)

	values := []struct {
		v uint32
		n uint
	}{
		{0, 1}, {1, 1}, {0x2A, 7}, {0xFFFF, 16}, {5, 3}, {0x12345, 20},
	}
	for _, tc := range values {
		if err := w.WriteBits(tc.v, tc.n); err != nil {
			t.Fatalf("WriteBits(%#x, %d): %v", tc.v, tc.n, err)
		}
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r := NewReader(buf.Bytes(), w.BitsWritten())
	for _, tc := range values {
		got, err := r.ReadBits(tc.n)
		if err != nil {
			t.Fatalf("ReadBits(%d): %v", tc.n, err)
		}
		if got != tc.v {
			t.Errorf("ReadBits(%d) = %#x, want %#x", tc.n, got, tc.v)
		}
	}
}

func TestReaderStopsAtPayloadBits(t *testing.T) {
	// One byte of data but only 3 declared payload bits.
	r := NewReader([]byte{0xFF}, 3)
	for i := 0; i < 3; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			t.Fatalf("ReadBit %d: %v", i, err)
		}
		if !bit {
			t.Errorf("ReadBit %d = false, want true", i)
		}
	}
	if _, err := r.ReadBit(); !errors.Is(err, ErrUnderflow) {
		t.Errorf("ReadBit past budget = %v, want ErrUnderflow", err)
	}
}

func TestReaderUnderflowOnShortData(t *testing.T) {
	// Declared 16 payload bits but only one byte present.
	r := NewReader([]byte{0xAB}, 16)
	if _, err := r.ReadBits(8); err != nil {
		t.Fatalf("ReadBits(8): %v", err)
	}
	if _, err := r.ReadBit(); !errors.Is(err, ErrUnderflow) {
		t.Errorf("ReadBit past data = %v, want ErrUnderflow", err)
	}
}

func TestFixedBufferOverflow(t *testing.T) {
	storage := make([]byte, 2)
	buf := NewFixedBuffer(storage)
	w := NewWriter(buf)

	if err := w.WriteBits(0xFFFF, 16); err != nil {
		t.Fatalf("WriteBits within capacity: %v", err)
	}
	err := w.WriteBits(0xFF, 8)
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("WriteBits past capacity = %v, want ErrOverflow", err)
	}
}

func TestFixedBufferPushBytes(t *testing.T) {
	buf := NewFixedBuffer(make([]byte, 4))
	if err := buf.PushBytes([]byte{1, 2, 3}); err != nil {
		t.Fatalf("PushBytes: %v", err)
	}
	if err := buf.PushBytes([]byte{4, 5}); !errors.Is(err, ErrOverflow) {
		t.Errorf("PushBytes past capacity = %v, want ErrOverflow", err)
	}
}

func TestFinishIdempotentWhenAligned(t *testing.T) {
	buf := NewBuffer(8)
	w := NewWriter(buf)
	if err := w.WriteBits(0xAB, 8); err != nil {
		t.Fatalf("WriteBits: %v", err)
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got := buf.Len(); got != 1 {
		t.Errorf("Len after aligned Finish = %d, want 1", got)
	}
}

func BenchmarkWriterGolombShaped(b *testing.B) {
	b.SetBytes(1 << 13)
	for i := 0; i < b.N; i++ {
		buf := NewBuffer(1 << 11)
		w := NewWriter(buf)
		for j := 0; j < 1024; j++ {
			w.WriteZeros(uint32(j & 7))
			w.WriteBit(true)
			w.WriteBits(uint32(j), 6)
		}
		w.Finish()
	}
}
