package raster

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func testCube(nx, ny, nz, d int, seed int64) Cube {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]uint16, nx*ny*nz)
	for i := range samples {
		samples[i] = uint16(rng.Intn(1 << d))
	}
	return Cube{NX: nx, NY: ny, NZ: nz, D: d, Samples: samples}
}

func TestBSQRoundTrip(t *testing.T) {
	c := testCube(7, 5, 4, 12, 1)
	data := AppendBSQ(nil, c)
	if len(data) != len(c.Samples)*2 {
		t.Fatalf("serialized length = %d, want %d", len(data), len(c.Samples)*2)
	}

	got, err := ParseBSQ(data, c.NX, c.NY, c.NZ, c.D)
	if err != nil {
		t.Fatalf("ParseBSQ: %v", err)
	}
	for i := range c.Samples {
		if got.Samples[i] != c.Samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got.Samples[i], c.Samples[i])
		}
	}
}

func TestBSQLittleEndian(t *testing.T) {
	got, err := ParseBSQ([]byte{0x34, 0x12}, 1, 1, 1, 16)
	if err != nil {
		t.Fatalf("ParseBSQ: %v", err)
	}
	if got.Samples[0] != 0x1234 {
		t.Errorf("sample = %#x, want 0x1234", got.Samples[0])
	}
}

func TestBSQSizeMismatch(t *testing.T) {
	if _, err := ParseBSQ(make([]byte, 10), 2, 2, 2, 8); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("ParseBSQ short data = %v, want ErrSizeMismatch", err)
	}
}

func TestBSQSampleRange(t *testing.T) {
	// 0x0123 exceeds 8-bit depth.
	if _, err := ParseBSQ([]byte{0x23, 0x01}, 1, 1, 1, 8); !errors.Is(err, ErrSampleRange) {
		t.Errorf("ParseBSQ out-of-depth sample = %v, want ErrSampleRange", err)
	}
}

func TestBSQFileRoundTrip(t *testing.T) {
	c := testCube(6, 4, 2, 10, 2)
	path := filepath.Join(t.TempDir(), "frames", "cube.bsq")

	if err := WriteBSQ(path, c); err != nil {
		t.Fatalf("WriteBSQ: %v", err)
	}
	got, err := LoadBSQ(path, c.NX, c.NY, c.NZ, c.D)
	if err != nil {
		t.Fatalf("LoadBSQ: %v", err)
	}
	for i := range c.Samples {
		if got.Samples[i] != c.Samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got.Samples[i], c.Samples[i])
		}
	}
}

func TestBSQGzipTransparent(t *testing.T) {
	c := testCube(6, 4, 2, 10, 3)
	dir := t.TempDir()
	plain := filepath.Join(dir, "cube.bsq")
	zipped := filepath.Join(dir, "cube.bsq.gz")

	if err := WriteBSQ(plain, c); err != nil {
		t.Fatalf("WriteBSQ: %v", err)
	}
	raw, err := os.ReadFile(plain)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := os.WriteFile(zipped, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := LoadBSQ(zipped, c.NX, c.NY, c.NZ, c.D)
	if err != nil {
		t.Fatalf("LoadBSQ gzip: %v", err)
	}
	for i := range c.Samples {
		if got.Samples[i] != c.Samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got.Samples[i], c.Samples[i])
		}
	}
}

func TestPPM8BitParse(t *testing.T) {
	// 2x1 image: pixel 0 = (10, 20, 30), pixel 1 = (11, 21, 31).
	data := []byte("P6\n# a comment\n2 1\n255\n")
	data = append(data, 10, 20, 30, 11, 21, 31)

	c, err := ParsePPM(data)
	if err != nil {
		t.Fatalf("ParsePPM: %v", err)
	}
	if c.NX != 2 || c.NY != 1 || c.NZ != 3 || c.D != 8 {
		t.Fatalf("dims = %dx%dx%d D=%d, want 2x1x3 D=8", c.NX, c.NY, c.NZ, c.D)
	}
	want := []uint16{10, 11, 20, 21, 30, 31} // planar
	for i := range want {
		if c.Samples[i] != want[i] {
			t.Fatalf("Samples = %v, want %v", c.Samples, want)
		}
	}
}

func TestPPM16BitParse(t *testing.T) {
	data := []byte("P6 1 1 65535\n")
	data = append(data, 0x12, 0x34, 0x00, 0x01, 0xFF, 0xFE)

	c, err := ParsePPM(data)
	if err != nil {
		t.Fatalf("ParsePPM: %v", err)
	}
	if c.D != 16 {
		t.Fatalf("D = %d, want 16", c.D)
	}
	want := []uint16{0x1234, 0x0001, 0xFFFE}
	for i := range want {
		if c.Samples[i] != want[i] {
			t.Fatalf("Samples = %v, want %v", c.Samples, want)
		}
	}
}

func TestPPMRejectsNonP6(t *testing.T) {
	if _, err := ParsePPM([]byte("P3\n1 1\n255\n1 2 3")); !errors.Is(err, ErrNotPPM) {
		t.Errorf("ParsePPM on P3 = %v, want ErrNotPPM", err)
	}
}

func TestPPMTruncated(t *testing.T) {
	data := []byte("P6\n4 4\n255\n")
	data = append(data, 1, 2, 3) // far fewer than 48 bytes
	if _, err := ParsePPM(data); !errors.Is(err, ErrTruncated) {
		t.Errorf("ParsePPM truncated = %v, want ErrTruncated", err)
	}
}

func TestPPMWriterRoundTrip(t *testing.T) {
	for _, d := range []int{8, 16} {
		c := testCube(5, 3, 3, d, int64(d))
		data, err := AppendPPM(nil, c)
		if err != nil {
			t.Fatalf("D=%d: AppendPPM: %v", d, err)
		}
		got, err := ParsePPM(data)
		if err != nil {
			t.Fatalf("D=%d: ParsePPM: %v", d, err)
		}
		if got.NX != c.NX || got.NY != c.NY || got.D != d {
			t.Fatalf("D=%d: dims = %dx%d D=%d, want %dx%d", d, got.NX, got.NY, got.D, c.NX, c.NY)
		}
		for i := range c.Samples {
			if got.Samples[i] != c.Samples[i] {
				t.Fatalf("D=%d: sample %d = %d, want %d", d, i, got.Samples[i], c.Samples[i])
			}
		}
	}
}

func TestPPMWriterRejectsBandCount(t *testing.T) {
	c := testCube(4, 4, 2, 8, 9)
	if _, err := AppendPPM(nil, c); !errors.Is(err, ErrBadDimension) {
		t.Errorf("AppendPPM with 2 bands = %v, want ErrBadDimension", err)
	}
}

func TestPPMFileRoundTrip(t *testing.T) {
	c := testCube(4, 2, 3, 8, 11)
	path := filepath.Join(t.TempDir(), "image.ppm")
	if err := WritePPM(path, c); err != nil {
		t.Fatalf("WritePPM: %v", err)
	}
	got, err := LoadPPM(path)
	if err != nil {
		t.Fatalf("LoadPPM: %v", err)
	}
	for i := range c.Samples {
		if got.Samples[i] != c.Samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got.Samples[i], c.Samples[i])
		}
	}
}
