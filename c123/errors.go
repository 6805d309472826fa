package c123

import (
	"errors"

	"github.com/bartokon/ccsds123/internal/bitio"
)

// Errors reported by encoding, decoding, and container parsing.
var (
	// ErrInvalidParameter indicates a Params field outside its supported
	// range; the wrapped message names the field.
	ErrInvalidParameter = errors.New("c123: invalid parameter")

	// ErrSizeMismatch indicates a sample slice whose length does not
	// match the configured cube dimensions.
	ErrSizeMismatch = errors.New("c123: raster size does not match dimensions")

	// ErrContainerTooSmall indicates a container shorter than its header.
	ErrContainerTooSmall = errors.New("c123: container too small")

	// ErrBadMagic indicates a container that does not start with "C123".
	ErrBadMagic = errors.New("c123: invalid container magic")

	// ErrUnsupportedVersion indicates a container version other than 2 or 3.
	ErrUnsupportedVersion = errors.New("c123: unsupported container version")

	// ErrBitstreamUnderflow indicates a payload that ended before the
	// declared payload bits produced the final sample.
	ErrBitstreamUnderflow = errors.New("c123: bitstream exhausted before payload end")

	// ErrBitstreamOverflow indicates an externally supplied output buffer
	// that is too small for the encoded container.
	ErrBitstreamOverflow = errors.New("c123: output buffer overflow")
)

// translateBitErr maps bit-level I/O failures onto the package's error
// kinds; other errors pass through unchanged.
func translateBitErr(err error) error {
	switch {
	case errors.Is(err, bitio.ErrUnderflow):
		return ErrBitstreamUnderflow
	case errors.Is(err, bitio.ErrOverflow):
		return ErrBitstreamOverflow
	}
	return err
}
