package c123

import (
	"math"

	"github.com/bartokon/ccsds123/internal/bitio"
	"github.com/bartokon/ccsds123/internal/predictor"
)

// sampleAdaptiveCoder holds the entropy-coder state shared between
// encoding and decoding: the global counter and the per-band
// accumulators. Both directions derive the Golomb parameter k from the
// same pre-update state, so a decoder tracking this struct stays in
// lockstep with the encoder that produced the stream.
type sampleAdaptiveCoder struct {
	p            Params
	accumulators []uint32
	counter      uint32
	initialAcc   uint32
	maxCounter   uint32
}

func newSampleAdaptiveCoder(p Params) *sampleAdaptiveCoder {
	return &sampleAdaptiveCoder{
		p:            p,
		accumulators: make([]uint32, p.NZ),
		initialAcc:   initialAccumulator(p.Coder),
		maxCounter:   uint32(1)<<p.Coder.CounterSize - 1,
	}
}

// initialAccumulator computes the per-band accumulator seed
// ((3 * 2^(kz'+6) - 49) * 2^initExp) >> 7.
func initialAccumulator(c CoderParams) uint32 {
	lhs := uint64(3) << (c.KZPrime + 6)
	return uint32((lhs - 49) << c.InitialCountExponent >> 7)
}

func maskBits(bits uint) uint32 {
	if bits == 0 {
		return 0
	}
	if bits >= 32 {
		return math.MaxUint32
	}
	return uint32(1)<<bits - 1
}

// selectK picks the Golomb power-of-2 parameter from the pre-update
// counter and the accumulator-derived threshold: the largest k in
// [1, D-2] with counter*2^k <= rhs, or 0 when the mean residual is
// small; an untrained counter starts wide at D-2.
func (c *sampleAdaptiveCoder) selectK(counter, rhs uint32) uint {
	depth := c.p.D
	if depth <= 1 {
		return 0
	}
	if counter == 0 {
		return uint(depth - 2)
	}
	if uint64(counter)<<1 > uint64(rhs) {
		return 0
	}
	var selected uint
	for i := 1; i <= depth-2; i++ {
		if uint64(counter)<<uint(i) <= uint64(rhs) {
			selected = uint(i)
		}
	}
	return selected
}

// encodeSample emits the code word for one mapped residual and advances
// the coder state.
//
// The first sample of each band is emitted raw as D bits and seeds the
// band's accumulator; every other sample gets a Golomb power-of-2 code
// with a u_max-limited unary prefix and a raw-D-bit escape.
func (c *sampleAdaptiveCoder) encodeSample(ctrl predictor.CtrlSignals, z int, delta uint32, w *bitio.Writer) error {
	counterPre := c.counter
	rhs := c.accumulators[z] + (49*counterPre)>>7
	k := c.selectK(counterPre, rhs)
	first := ctrl.FirstLine && ctrl.FirstInLine

	var err error
	if first {
		err = w.WriteBits(delta&maskBits(uint(c.p.D)), uint(c.p.D))
	} else {
		err = c.emitCode(delta, k, w)
	}
	if err != nil {
		return err
	}

	c.updateAccumulator(z, counterPre, delta, first)
	c.updateCounter(ctrl, z, counterPre)
	return nil
}

func (c *sampleAdaptiveCoder) emitCode(delta uint32, k uint, w *bitio.Writer) error {
	value := delta & maskBits(uint(c.p.D))
	var u uint32
	if k < 32 {
		u = value >> k
	}
	if u >= uint32(c.p.Coder.UMax) {
		if err := w.WriteZeros(uint32(c.p.Coder.UMax)); err != nil {
			return err
		}
		return w.WriteBits(value, uint(c.p.D))
	}
	if err := w.WriteZeros(u); err != nil {
		return err
	}
	if err := w.WriteBit(true); err != nil {
		return err
	}
	if k > 0 {
		return w.WriteBits(value&maskBits(k), k)
	}
	return nil
}

// decodeSample reads the code word for one sample and advances the coder
// state exactly as encodeSample does.
func (c *sampleAdaptiveCoder) decodeSample(ctrl predictor.CtrlSignals, z int, r *bitio.Reader) (uint32, error) {
	counterPre := c.counter
	rhs := c.accumulators[z] + (49*counterPre)>>7
	k := c.selectK(counterPre, rhs)
	first := ctrl.FirstLine && ctrl.FirstInLine

	var delta uint32
	if first {
		v, err := r.ReadBits(uint(c.p.D))
		if err != nil {
			return 0, err
		}
		delta = v
	} else {
		u, err := c.readUnaryLimited(r)
		if err != nil {
			return 0, err
		}
		if u >= uint32(c.p.Coder.UMax) {
			v, err := r.ReadBits(uint(c.p.D))
			if err != nil {
				return 0, err
			}
			delta = v
		} else {
			var remainder uint32
			if k > 0 {
				remainder, err = r.ReadBits(k)
				if err != nil {
					return 0, err
				}
			}
			delta = u<<k | remainder
		}
	}

	c.updateAccumulator(z, counterPre, delta, first)
	c.updateCounter(ctrl, z, counterPre)
	return delta, nil
}

// readUnaryLimited counts leading zero bits up to u_max; a one bit ends
// the prefix early.
func (c *sampleAdaptiveCoder) readUnaryLimited(r *bitio.Reader) (uint32, error) {
	var zeros uint32
	for zeros < uint32(c.p.Coder.UMax) {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit {
			return zeros, nil
		}
		zeros++
	}
	return zeros, nil
}

// updateAccumulator adds the residual to the band's accumulator,
// saturating at 32 bits; once the counter saturates the accumulator is
// halved alongside it to keep the ratio stable.
func (c *sampleAdaptiveCoder) updateAccumulator(z int, counterPre, delta uint32, first bool) {
	if first {
		c.accumulators[z] = c.initialAcc
		return
	}
	sum := uint64(c.accumulators[z]) + uint64(delta)
	if counterPre < c.maxCounter {
		if sum > math.MaxUint32 {
			sum = math.MaxUint32
		}
		c.accumulators[z] = uint32(sum)
	} else {
		c.accumulators[z] = uint32((sum + 1) >> 1)
	}
}

// updateCounter advances the global counter once per pixel, on the last
// band, halving at saturation.
func (c *sampleAdaptiveCoder) updateCounter(ctrl predictor.CtrlSignals, z int, counterPre uint32) {
	if ctrl.FirstLine && ctrl.FirstInLine {
		c.counter = uint32(1) << c.p.Coder.InitialCountExponent
		return
	}
	if z >= c.p.NZ-1 {
		if counterPre < c.maxCounter {
			c.counter = counterPre + 1
		} else {
			c.counter = (counterPre + 1) >> 1
		}
	} else {
		c.counter = counterPre
	}
}
