package c123

import (
	"github.com/bartokon/ccsds123/internal/bitio"
	"github.com/bartokon/ccsds123/internal/predictor"
)

// bandState holds the per-band prediction context: two rolling rows of
// centered samples and the adaptive weight vector.
type bandState struct {
	prevRow []int32
	currRow []int32
	weights []int32
}

func newBandStates(p Params) []bandState {
	components := p.P + 3
	if p.Reduced {
		components = p.P
	}
	bands := make([]bandState, p.NZ)
	for i := range bands {
		bands[i].prevRow = make([]int32, p.NX)
		bands[i].currRow = make([]int32, p.NX)
		bands[i].weights = predictor.InitWeights(p.Reduced, p.Omega, components)
	}
	return bands
}

// rollRows promotes the current row to previous at the end of a line.
func (b *bandState) rollRows() {
	b.prevRow, b.currRow = b.currRow, b.prevRow
	clear(b.currRow)
}

// gather collects the causal neighborhood for position (x, y). Neighbors
// outside the image are zero; a missing north-east falls back to north.
func (b *bandState) gather(nx, x, y int) predictor.LocalSamples {
	var s predictor.LocalSamples
	s.Cur = b.currRow[x]
	if x > 0 {
		s.West = b.currRow[x-1]
	}
	if y > 0 {
		s.North = b.prevRow[x]
		if x > 0 {
			s.NorthWest = b.prevRow[x-1]
		}
		if x+1 < nx {
			s.NorthEast = b.prevRow[x+1]
		} else {
			s.NorthEast = s.North
		}
	}
	return s
}

// Encode compresses a band-sequential planar cube of uncentered samples
// into a .c123 container. The samples slice must hold exactly
// NX*NY*NZ values.
func Encode(samples []uint16, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(samples) != p.sampleCount() {
		return nil, ErrSizeMismatch
	}

	payload := bitio.NewBuffer(len(samples) * 2)
	w := bitio.NewWriter(payload)
	payloadBits, err := encodePayload(samples, p, w)
	if err != nil {
		return nil, translateBitErr(err)
	}

	out := make([]byte, 0, headerSizeV3+payload.Len())
	out = append(out, makeHeader(p, payloadBits)...)
	out = append(out, payload.Bytes()...)
	return out, nil
}

// EncodeInto compresses into a caller-supplied fixed-capacity buffer and
// returns the container as a prefix of dst. It fails with
// ErrBitstreamOverflow if the container does not fit in len(dst) bytes.
func EncodeInto(dst []byte, samples []uint16, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(samples) != p.sampleCount() {
		return nil, ErrSizeMismatch
	}
	if len(dst) < headerSizeV3 {
		return nil, ErrBitstreamOverflow
	}

	payload := bitio.NewFixedBuffer(dst[headerSizeV3:len(dst):len(dst)])
	w := bitio.NewWriter(payload)
	payloadBits, err := encodePayload(samples, p, w)
	if err != nil {
		return nil, translateBitErr(err)
	}

	copy(dst, makeHeader(p, payloadBits))
	return dst[:headerSizeV3+payload.Len()], nil
}

// encodePayload runs the BIP prediction loop and entropy-codes every
// sample, returning the number of meaningful payload bits.
func encodePayload(samples []uint16, p Params, w *bitio.Writer) (int, error) {
	bands := newBandStates(p)
	ctl := predictor.NewControl(predictor.ControlConfig{
		NX: p.NX, NY: p.NY, NZ: p.NZ,
		VMin: p.VMin, VMax: p.VMax, TincLog: p.TincLog,
	})
	coder := newSampleAdaptiveCoder(p)

	diffs := make([]int32, p.P+3)
	bandStride := p.NX * p.NY
	offset := int32(1) << (p.D - 1)
	total := p.sampleCount()

	for s := 0; s < total; s++ {
		ctrl, z := ctl.Step()
		pixel := s / p.NZ
		x := pixel % p.NX
		y := pixel / p.NX
		band := &bands[z]

		centered := int32(samples[z*bandStride+pixel]) - offset
		neighborhood := band.gather(p.NX, x, y)
		neighborhood.Cur = centered
		local := predictor.ComputeLocalDiff(ctrl, neighborhood, p.ColumnOriented)
		diffs[0] = local.DN
		diffs[1] = local.DW
		diffs[2] = local.DNW
		dot := predictor.DotProduct(diffs, band.weights)

		pred := predictor.Predict(predictor.PredictInputs{
			Ctrl:           ctrl,
			Depth:          p.D,
			Omega:          p.Omega,
			RegisterBits:   p.RegisterBits,
			PrevBandSample: -1,
			Numerator:      dot,
			LocalSum:       local.LocalSum,
		})
		mapped := predictor.MapResidual(p.D, centered, pred.ScaledPred)
		if err := coder.encodeSample(ctrl, z, mapped.Delta, w); err != nil {
			return 0, err
		}

		predictor.UpdateWeights(band.weights, predictor.WeightUpdateInputs{
			Ctrl:       ctrl,
			Depth:      p.D,
			Omega:      p.Omega,
			ScaledPred: pred.ScaledPred,
			Sample:     centered,
			Diffs:      diffs,
		}, p.Reduced)

		band.currRow[x] = centered
		if x == p.NX-1 {
			band.rollRows()
		}
	}

	if err := w.Finish(); err != nil {
		return 0, err
	}
	return w.BitsWritten(), nil
}
