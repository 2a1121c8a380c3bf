// Package effects implements the three audio-context state machines —
// CHOKE, FREEZE, and STUTTER — that transform the stereo stream. Every
// type here is exercised exclusively from the audio callback (AC); the
// only cross-context traffic is the scheduling fields and mode/enabled
// flags, which are all backed by sync/atomic words per timing.Keeper's
// concurrency model.
package effects

import (
	"github.com/tempograph/microloop/timing"
)

// Block is one stereo audio block: two channels of N int16 samples each.
// N is fixed at timing.BlockSize for the whole process.
type Block = [2][]int16

// Engine is the common shape of the three effects, dispatched statically
// through a fixed-size Chain rather than a slice of interfaces — three
// concrete effects are all this design will ever need, but the interface
// still lets controllers and the visual layer treat them uniformly.
type Engine interface {
	// Process transforms in into out, reading the block's sample
	// position from the shared timing.Keeper. Engines never advance the
	// keeper; Chain.Process advances it before running the engines.
	Process(in, out Block)
	IsEnabled() bool
	Name() string
}

// scheduleWithinBlock reports whether a nonzero scheduled sample
// position falls within [pos, pos+timing.BlockSize), the coarsest
// granularity at which the audio callback can act. A zero value means
// "no schedule pending".
func scheduleWithinBlock(scheduled, pos uint64) bool {
	if scheduled == 0 {
		return false
	}
	blockEnd := pos + timing.BlockSize
	return scheduled >= pos && scheduled < blockEnd
}

// saturate clamps a wide intermediate product back into the int16 range
// so a gain momentarily above 1.0 (there shouldn't be one, but safety
// first) can never wrap instead of clip.
func saturate(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// silence fills out with zeros; used whenever the audio subsystem hands
// the callback a short or missing input block.
func silence(out Block) {
	for ch := range out {
		for i := range out[ch] {
			out[ch][i] = 0
		}
	}
}

// Chain wires STUTTER -> FREEZE -> CHOKE in series: input -> TimeKeeper
// -> stutter -> freeze -> choke -> output. It owns the intermediate
// stereo scratch buffers so no allocation happens once the chain is
// built.
type Chain struct {
	keeper  *timing.Keeper
	Stutter *Stutter
	Freeze  *Freeze
	Choke   *Choke

	scratch1 Block
	scratch2 Block
}

// NewChain builds a Chain sharing keeper with the three effects, each
// sized for timing.BlockSize-sample blocks.
func NewChain(keeper *timing.Keeper) *Chain {
	return &Chain{
		keeper:  keeper,
		Stutter: NewStutter(keeper),
		Freeze:  NewFreeze(keeper),
		Choke:   NewChoke(keeper),
		scratch1: Block{
			make([]int16, timing.BlockSize),
			make([]int16, timing.BlockSize),
		},
		scratch2: Block{
			make([]int16, timing.BlockSize),
			make([]int16, timing.BlockSize),
		},
	}
}

// Process advances the shared timeline by one block, then runs the full
// effect chain. A short or missing input block (either channel under
// timing.BlockSize samples) is not recoverable: the timeline still
// advances, but the block is emitted as silence rather than run through
// STUTTER/FREEZE/CHOKE, since either could otherwise synthesize a
// captured loop from data that was never actually received.
func (c *Chain) Process(in, out Block) {
	c.keeper.IncrementSamples(timing.BlockSize)

	if len(in[0]) < timing.BlockSize || len(in[1]) < timing.BlockSize {
		silence(out)
		return
	}

	c.Stutter.Process(in, c.scratch1)
	c.Freeze.Process(c.scratch1, c.scratch2)
	c.Choke.Process(c.scratch2, out)
}

// Engines returns the three effects in patch order, for iteration by
// controllers, the command dispatcher, and the visual layer.
func (c *Chain) Engines() [3]Engine {
	return [3]Engine{c.Stutter, c.Freeze, c.Choke}
}
