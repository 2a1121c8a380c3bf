package control

import (
	"sync/atomic"

	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/timing"
)

// Quantizer holds the global quantization grid selection shared by every
// controller and computes the sample-domain schedules controllers need
// to arm a quantized onset or length. It is owned by the control loop
// but the grid selection is read by the visual layer too, so it lives in
// an atomic word.
type Quantizer struct {
	keeper *timing.Keeper
	grid   atomic.Uint32 // command.Quantization
}

// NewQuantizer returns a Quantizer defaulting to QUANT_16.
func NewQuantizer(keeper *timing.Keeper) *Quantizer {
	q := &Quantizer{keeper: keeper}
	q.grid.Store(uint32(command.Quant16))
	return q
}

// Grid returns the current global quantization selection.
func (q *Quantizer) Grid() command.Quantization { return command.Quantization(q.grid.Load()) }

// SetGrid changes the global quantization selection.
func (q *Quantizer) SetGrid(g command.Quantization) { q.grid.Store(uint32(g)) }

// Duration returns the length in samples of the current grid's
// subdivision at the current tempo, with no block rounding — the audio
// callback's block-accurate schedule check handles that granularity.
func (q *Quantizer) Duration() uint32 {
	return q.Grid().Subdivision(q.keeper.SamplesPerBeat())
}

// SamplesToNextBoundary returns how many samples remain until the next
// boundary of the current grid.
func (q *Quantizer) SamplesToNextBoundary() uint32 {
	return q.keeper.SamplesToNextSubdivision(q.Duration())
}

// OnsetSample computes the absolute sample position at which a
// quantized onset should fire: the next grid boundary, pulled earlier by
// lookahead samples (clamped to not go negative), so the effect engages
// slightly ahead of the beat to catch external transients.
func (q *Quantizer) OnsetSample(lookahead uint32) uint64 {
	toNext := q.SamplesToNextBoundary()
	var adjusted uint32
	if toNext > lookahead {
		adjusted = toNext - lookahead
	}
	return q.keeper.SamplePosition() + uint64(adjusted)
}
