// Package raster reads and writes the raster file formats the CCSDS-123
// tools exchange: band-sequential planar samples (.bsq) and binary
// netpbm (.ppm).
//
// BSQ files carry little-endian unsigned 16-bit samples regardless of
// the coded bit depth. PPM files are pixel-interleaved three-band images
// that are reorganized into the planar layout the compression core
// consumes. Gzip-compressed raster files are decompressed transparently
// on load.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/bartokon/ccsds123/internal/interleave"
)

// Raster file errors.
var (
	ErrSizeMismatch = errors.New("raster: file size does not match dimensions")
	ErrSampleRange  = errors.New("raster: sample value exceeds bit depth")
	ErrNotPPM       = errors.New("raster: not a binary P6 netpbm file")
	ErrTruncated    = errors.New("raster: truncated pixel data")
	ErrBadDimension = errors.New("raster: invalid dimensions")
)

// Cube is an uncompressed multi-band raster in band-sequential planar
// layout: all of band 0, then band 1, row-major within each band.
type Cube struct {
	NX, NY, NZ int
	// D is the sample bit depth; every sample is below 2^D.
	D       int
	Samples []uint16
}

// gzipMagic prefixes every gzip stream.
var gzipMagic = []byte{0x1f, 0x8b}

// readFile reads path, transparently decompressing gzip content.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("raster: %s: %w", path, err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// writeFile writes data to path, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ParseBSQ decodes a planar little-endian 16-bit raster of the given
// dimensions and validates every sample against the bit depth.
func ParseBSQ(data []byte, nx, ny, nz, d int) (Cube, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 || d <= 0 || d > 16 {
		return Cube{}, ErrBadDimension
	}
	count := nx * ny * nz
	if len(data) != count*2 {
		return Cube{}, ErrSizeMismatch
	}

	samples := make([]uint16, count)
	limit := uint32(1)<<d - 1
	for i := range samples {
		v := uint16(data[i*2]) | uint16(data[i*2+1])<<8
		if uint32(v) > limit {
			return Cube{}, fmt.Errorf("%w: sample %d is %d, depth %d", ErrSampleRange, i, v, d)
		}
		samples[i] = v
	}
	return Cube{NX: nx, NY: ny, NZ: nz, D: d, Samples: samples}, nil
}

// LoadBSQ reads a planar raster file (optionally gzip-compressed).
func LoadBSQ(path string, nx, ny, nz, d int) (Cube, error) {
	data, err := readFile(path)
	if err != nil {
		return Cube{}, err
	}
	return ParseBSQ(data, nx, ny, nz, d)
}

// AppendBSQ serializes a cube as planar little-endian 16-bit samples.
func AppendBSQ(dst []byte, c Cube) []byte {
	for _, v := range c.Samples {
		dst = append(dst, byte(v), byte(v>>8))
	}
	return dst
}

// WriteBSQ writes a cube as a planar raster file.
func WriteBSQ(path string, c Cube) error {
	return writeFile(path, AppendBSQ(make([]byte, 0, len(c.Samples)*2), c))
}

// isSpace reports netpbm whitespace.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// ppmToken scans the next header token, skipping whitespace and
// #-comments, and returns the token with the position after it.
func ppmToken(data []byte, pos int) (string, int, error) {
	for {
		for pos < len(data) && isSpace(data[pos]) {
			pos++
		}
		if pos >= len(data) {
			return "", pos, fmt.Errorf("%w: unexpected end of header", ErrNotPPM)
		}
		if data[pos] == '#' {
			for pos < len(data) && data[pos] != '\n' {
				pos++
			}
			continue
		}
		start := pos
		for pos < len(data) && !isSpace(data[pos]) {
			pos++
		}
		return string(data[start:pos]), pos, nil
	}
}

// ppmNumber parses an unsigned decimal header token; zero is accepted
// here and left for the caller to reject.
func ppmNumber(data []byte, pos int) (int, int, error) {
	tok, next, err := ppmToken(data, pos)
	if err != nil {
		return 0, pos, err
	}
	value := 0
	for _, ch := range []byte(tok) {
		if ch < '0' || ch > '9' {
			return 0, pos, fmt.Errorf("%w: bad header token %q", ErrNotPPM, tok)
		}
		value = value*10 + int(ch-'0')
		if value > 1<<20 {
			return 0, pos, fmt.Errorf("%w: header value out of range", ErrNotPPM)
		}
	}
	return value, next, nil
}

// ParsePPM decodes a binary P6 netpbm image into a three-band planar
// cube. Images with maxval up to 255 load as 8-bit samples; larger
// maxval selects 16-bit big-endian samples.
func ParsePPM(data []byte) (Cube, error) {
	if len(data) < 2 || data[0] != 'P' || data[1] != '6' {
		return Cube{}, ErrNotPPM
	}
	pos := 2
	nx, pos, err := ppmNumber(data, pos)
	if err != nil {
		return Cube{}, err
	}
	ny, pos, err := ppmNumber(data, pos)
	if err != nil {
		return Cube{}, err
	}
	maxval, pos, err := ppmNumber(data, pos)
	if err != nil {
		return Cube{}, err
	}
	if nx <= 0 || ny <= 0 || maxval <= 0 || maxval > 0xFFFF {
		return Cube{}, fmt.Errorf("%w: bad dimensions %dx%d maxval %d", ErrNotPPM, nx, ny, maxval)
	}
	// A single whitespace byte separates the header from pixel data.
	if pos >= len(data) || !isSpace(data[pos]) {
		return Cube{}, fmt.Errorf("%w: missing pixel data separator", ErrNotPPM)
	}
	pos++

	pixels := nx * ny
	wide := maxval > 255
	bytesPerSample := 1
	d := 8
	if wide {
		bytesPerSample = 2
		d = 16
	}
	if pos+pixels*3*bytesPerSample > len(data) {
		return Cube{}, ErrTruncated
	}

	interleaved := make([]uint16, pixels*3)
	if wide {
		for i := range interleaved {
			interleaved[i] = uint16(data[pos+i*2])<<8 | uint16(data[pos+i*2+1])
		}
	} else {
		for i := range interleaved {
			interleaved[i] = uint16(data[pos+i])
		}
	}

	return Cube{
		NX: nx, NY: ny, NZ: 3, D: d,
		Samples: interleave.ToPlanar(interleaved, 3, nil),
	}, nil
}

// LoadPPM reads a binary P6 file (optionally gzip-compressed).
func LoadPPM(path string) (Cube, error) {
	data, err := readFile(path)
	if err != nil {
		return Cube{}, err
	}
	return ParsePPM(data)
}

// AppendPPM serializes a three-band planar cube as a binary P6 image:
// 8-bit samples for depths up to 8, 16-bit big-endian otherwise.
func AppendPPM(dst []byte, c Cube) ([]byte, error) {
	if c.NZ != 3 {
		return nil, fmt.Errorf("%w: PPM requires 3 bands, have %d", ErrBadDimension, c.NZ)
	}
	if c.D <= 0 || c.D > 16 {
		return nil, fmt.Errorf("%w: depth %d", ErrBadDimension, c.D)
	}

	maxval := 255
	wide := c.D > 8
	if wide {
		maxval = 0xFFFF
	}
	dst = fmt.Appendf(dst, "P6\n%d %d\n%d\n", c.NX, c.NY, maxval)

	interleaved := interleave.ToPixel(c.Samples, 3, nil)
	for _, v := range interleaved {
		if wide {
			dst = append(dst, byte(v>>8), byte(v))
		} else {
			dst = append(dst, byte(v))
		}
	}
	return dst, nil
}

// WritePPM writes a three-band cube as a binary P6 file.
func WritePPM(path string, c Cube) error {
	data, err := AppendPPM(nil, c)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}
