package c123

import (
	"github.com/bartokon/ccsds123/internal/bitio"
	"github.com/bartokon/ccsds123/internal/predictor"
)

// Decode parses a container and reconstructs the band-sequential planar
// cube it encodes, returning the samples and the coding parameters from
// the header.
func Decode(container []byte) ([]uint16, Params, error) {
	summary, err := ReadSummary(container)
	if err != nil {
		return nil, Params{}, err
	}
	out := make([]uint16, summary.Params.sampleCount())
	p, err := DecodeInto(out, container)
	if err != nil {
		return nil, Params{}, err
	}
	return out, p, nil
}

// DecodeInto reconstructs a container's cube into dst, which must hold
// exactly the NX*NY*NZ samples the header declares.
func DecodeInto(dst []uint16, container []byte) (Params, error) {
	summary, err := ReadSummary(container)
	if err != nil {
		return Params{}, err
	}
	p := summary.Params
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	if len(dst) != p.sampleCount() {
		return Params{}, ErrSizeMismatch
	}

	payload := container[headerSize(summary.Version):]
	if err := decodePayload(payload, dst, p, summary.PayloadBits); err != nil {
		return Params{}, translateBitErr(err)
	}
	return p, nil
}

// decodePayload mirrors encodePayload: it reproduces the identical
// prediction chain from previously decoded samples, reads each mapped
// residual, and unmaps it back onto the prediction.
func decodePayload(payload []byte, dst []uint16, p Params, payloadBits int) error {
	bands := newBandStates(p)
	ctl := predictor.NewControl(predictor.ControlConfig{
		NX: p.NX, NY: p.NY, NZ: p.NZ,
		VMin: p.VMin, VMax: p.VMax, TincLog: p.TincLog,
	})
	r := bitio.NewReader(payload, payloadBits)
	coder := newSampleAdaptiveCoder(p)

	diffs := make([]int32, p.P+3)
	bandStride := p.NX * p.NY
	offset := int32(1) << (p.D - 1)
	maxVal := int32(1)<<p.D - 1
	total := p.sampleCount()

	for s := 0; s < total; s++ {
		ctrl, z := ctl.Step()
		pixel := s / p.NZ
		x := pixel % p.NX
		y := pixel / p.NX
		band := &bands[z]

		// The current sample is not known yet; the neighborhood is
		// gathered with cur = 0, exactly as the encoder's central
		// difference is ignored by the order-zero predictor.
		neighborhood := band.gather(p.NX, x, y)
		neighborhood.Cur = 0
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

		delta, err := coder.decodeSample(ctrl, z, r)
		if err != nil {
			return err
		}
		residual := predictor.UnmapResidual(delta, pred.ScaledPred, p.D)
		centered := pred.Predicted + residual

		sample := centered + offset
		if sample < 0 {
			sample = 0
		} else if sample > maxVal {
			sample = maxVal
		}
		dst[z*bandStride+pixel] = uint16(sample)

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

	return nil
}
