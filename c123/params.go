// Package c123 implements the CCSDS-123 lossless compressor and
// decompressor for multi-band integer rasters, together with the
// self-describing .c123 container format.
//
// Samples are processed in Band-Interleaved-by-Pixel order through a
// synchronous prediction chain (neighbor-narrow local sums, an adaptive
// per-band weight vector, and a register-width-exact scaled prediction),
// a sign-folding residual mapper, and a sample-adaptive Golomb
// power-of-2 entropy coder. Encoder and decoder run the chain in
// lockstep, so for a given Params and raster the emitted container is
// byte-exact across platforms.
package c123

import "fmt"

// LocalSumMode selects the neighborhood local-sum formula.
type LocalSumMode uint16

// Local-sum modes. Only NeighborNarrow is implemented by the pipeline;
// the others exist so legacy headers decode to a nameable value.
const (
	LocalSumNeighborWide LocalSumMode = iota
	LocalSumNeighborNarrow
	LocalSumColumnWide
	LocalSumColumnNarrow
)

// CoderParams configures the sample-adaptive entropy coder.
type CoderParams struct {
	// UMax is the unary-prefix escape threshold, in (0, 32].
	UMax int
	// CounterSize bounds the global counter at 2^CounterSize - 1, in (0, 16].
	CounterSize int
	// InitialCountExponent sets the counter after the first sample to
	// 2^InitialCountExponent, in [0, 16].
	InitialCountExponent int
	// KZPrime feeds the initial per-band accumulator value, in [0, 16].
	KZPrime int
}

// Params configures a single encode or decode. It is treated as
// immutable for the duration of the call.
type Params struct {
	// Cube dimensions, each positive and at most 65535.
	NX, NY, NZ int
	// D is the sample bit depth, in (0, 16].
	D int
	// P is the predictor order; only 0 is supported.
	P int

	Reduced        bool
	ColumnOriented bool
	LocalSum       LocalSumMode

	// Theta is the near-lossless error bound; only 0 (lossless) is
	// supported.
	Theta int

	// Omega is the weight register-scaling exponent, in (0, 31].
	Omega int
	// RegisterBits is the emulated prediction register width, in (0, 64].
	RegisterBits int
	// VMin and VMax bound the weight-update scale exponent; VMin <= VMax.
	VMin, VMax int
	// TincLog is the log2 of the scale-exponent increment interval, >= 0.
	TincLog int

	Coder CoderParams
}

// DefaultParams returns lossless parameters for the given cube
// dimensions and bit depth, with the coder configuration the encoder
// ships by default.
func DefaultParams(nx, ny, nz, d int) Params {
	return Params{
		NX: nx, NY: ny, NZ: nz, D: d,
		P:            0,
		LocalSum:     LocalSumNeighborNarrow,
		Theta:        0,
		Omega:        19,
		RegisterBits: 64,
		VMin:         -1,
		VMax:         3,
		TincLog:      6,
		Coder: CoderParams{
			UMax:                 18,
			CounterSize:          6,
			InitialCountExponent: 1,
			KZPrime:              0,
		},
	}
}

// Validate checks every field against its supported range. All
// violations are reported as ErrInvalidParameter with a field-specific
// message.
func (p Params) Validate() error {
	switch {
	case p.NX <= 0 || p.NY <= 0 || p.NZ <= 0:
		return fmt.Errorf("%w: image dimensions must be positive", ErrInvalidParameter)
	case p.NX > 0xFFFF || p.NY > 0xFFFF || p.NZ > 0xFFFF:
		return fmt.Errorf("%w: image dimensions must fit in 16 bits", ErrInvalidParameter)
	case p.D <= 0 || p.D > 16:
		return fmt.Errorf("%w: bit depth must be within (0, 16]", ErrInvalidParameter)
	case p.P != 0:
		return fmt.Errorf("%w: predictor order P > 0 is not supported", ErrInvalidParameter)
	case p.Reduced:
		return fmt.Errorf("%w: reduced mode is not supported", ErrInvalidParameter)
	case p.LocalSum != LocalSumNeighborNarrow:
		return fmt.Errorf("%w: only neighbor-narrow local sums are implemented", ErrInvalidParameter)
	case p.Theta != 0:
		return fmt.Errorf("%w: theta must be zero for lossless operation", ErrInvalidParameter)
	case p.Omega <= 0 || p.Omega > 31:
		return fmt.Errorf("%w: omega must be within (0, 31]", ErrInvalidParameter)
	case p.RegisterBits <= 0 || p.RegisterBits > 64:
		return fmt.Errorf("%w: register size must be within (0, 64]", ErrInvalidParameter)
	case p.VMin > p.VMax:
		return fmt.Errorf("%w: vMin must not exceed vMax", ErrInvalidParameter)
	case p.TincLog < 0:
		return fmt.Errorf("%w: tinc log must be non-negative", ErrInvalidParameter)
	case p.Coder.UMax <= 0 || p.Coder.UMax > 32:
		return fmt.Errorf("%w: uMax must be within (0, 32]", ErrInvalidParameter)
	case p.Coder.CounterSize <= 0 || p.Coder.CounterSize > 16:
		return fmt.Errorf("%w: counter size must be within (0, 16]", ErrInvalidParameter)
	case p.Coder.InitialCountExponent < 0 || p.Coder.InitialCountExponent > 16:
		return fmt.Errorf("%w: initial count exponent must be within [0, 16]", ErrInvalidParameter)
	case p.Coder.KZPrime < 0 || p.Coder.KZPrime > 16:
		return fmt.Errorf("%w: kz' must be within [0, 16]", ErrInvalidParameter)
	}
	return nil
}

// sampleCount returns the number of samples in the configured cube.
func (p Params) sampleCount() int {
	return p.NX * p.NY * p.NZ
}
