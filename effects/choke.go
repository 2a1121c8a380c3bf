package effects

import (
	"math"
	"sync/atomic"

	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/timing"
)

// defaultChokeFadeMS is the crossfade time used until a FadeSource is
// wired, and the value Process falls back to if none ever is.
const defaultChokeFadeMS = 3.0

// FadeSource supplies the current crossfade time in milliseconds, read
// once per block from the audio callback. Satisfied by *control.Settings
// without effects importing control, which already imports effects.
type FadeSource interface {
	FadeMS() float64
}

// Choke mutes the signal on engage and restores it on release, ramping
// the gain linearly over the crossfade time in both directions to avoid
// the click a hard gain step would produce.
type Choke struct {
	keeper *timing.Keeper

	// currentGain is touched only from Process (AC). targetGain is also
	// written by Engage and Release, which controllers call from the
	// control loop; it is a plain field, not an atomic.
	currentGain float64
	targetGain  float64

	fadeSource FadeSource

	enabled atomic.Bool

	lengthMode atomic.Uint32 // command.Mode
	onsetMode  atomic.Uint32 // command.Mode

	onsetAtSample   atomic.Uint64
	releaseAtSample atomic.Uint64
}

// NewChoke returns a Choke starting unmuted with both onset and length
// in FREE mode.
func NewChoke(keeper *timing.Keeper) *Choke {
	c := &Choke{
		keeper:      keeper,
		currentGain: 1.0,
		targetGain:  1.0,
	}
	return c
}

// SetFadeSource wires the collaborator Process reads the crossfade time
// from each block. A nil source (the default) leaves Process on
// defaultChokeFadeMS.
func (c *Choke) SetFadeSource(f FadeSource) { c.fadeSource = f }

// fadeSamples is the current crossfade time in whole samples (rounded),
// read fresh every block so a console "set fade_ms" takes effect on the
// next block.
func (c *Choke) fadeSamples() float64 {
	ms := float64(defaultChokeFadeMS)
	if c.fadeSource != nil {
		ms = c.fadeSource.FadeMS()
	}
	return math.Round(ms / 1000.0 * timing.SampleRate)
}

func (c *Choke) Name() string { return "choke" }

// IsEnabled reports whether choke is currently engaged (muting).
func (c *Choke) IsEnabled() bool { return c.enabled.Load() }

// Engage starts the fade to silence at once; used for FREE onset and as the block-accurate
// action a scheduled QUANTIZED onset performs when its sample arrives.
func (c *Choke) Engage() {
	c.targetGain = 0.0
	c.enabled.Store(true)
}

// Release unmutes immediately, ramping back up over the current fade
// time.
func (c *Choke) Release() {
	c.targetGain = 1.0
	c.enabled.Store(false)
}

// Toggle engages if released, releases if engaged.
func (c *Choke) Toggle() {
	if c.IsEnabled() {
		c.Release()
	} else {
		c.Engage()
	}
}

// ScheduleOnset arranges for Engage to fire on the block containing
// sample. A value of 0 cancels any pending onset.
func (c *Choke) ScheduleOnset(sample uint64) { c.onsetAtSample.Store(sample) }

// ScheduleRelease arranges for Release to fire on the block containing
// sample. A value of 0 cancels any pending release.
func (c *Choke) ScheduleRelease(sample uint64) { c.releaseAtSample.Store(sample) }

// SetOnsetMode selects whether button presses engage immediately (FREE)
// or wait for the next quantized boundary (QUANTIZED).
func (c *Choke) SetOnsetMode(m command.Mode) { c.onsetMode.Store(uint32(m)) }

// OnsetMode returns the current onset mode.
func (c *Choke) OnsetMode() command.Mode { return command.Mode(c.onsetMode.Load()) }

// SetLengthMode selects whether a release fires immediately on button-up
// (FREE) or after the current quantization duration elapses (QUANTIZED).
func (c *Choke) SetLengthMode(m command.Mode) { c.lengthMode.Store(uint32(m)) }

// LengthMode returns the current length mode.
func (c *Choke) LengthMode() command.Mode { return command.Mode(c.lengthMode.Load()) }

// Process fires any block-accurate scheduled onset/release, then applies
// the crossfade ramp to every sample in the block.
func (c *Choke) Process(in, out Block) {
	pos := c.keeper.SamplePosition()

	if scheduleWithinBlock(c.onsetAtSample.Load(), pos) {
		c.Engage()
		c.onsetAtSample.Store(0)
	}
	if scheduleWithinBlock(c.releaseAtSample.Load(), pos) {
		c.Release()
		c.releaseAtSample.Store(0)
	}

	// A full 0<->1 swing takes exactly fadeSamples(); the gain stops at
	// the target instead of approaching it asymptotically.
	start := c.currentGain
	target := c.targetGain
	step := 1.0 / c.fadeSamples()
	gain := start

	for ch := 0; ch < 2; ch++ {
		gain = start
		src, dst := in[ch], out[ch]
		for i := range dst {
			if gain < target {
				gain = math.Min(gain+step, target)
			} else if gain > target {
				gain = math.Max(gain-step, target)
			}
			if gain < 0.0 {
				gain = 0.0
			} else if gain > 1.0 {
				gain = 1.0
			}
			dst[i] = saturate(float64(src[i]) * gain)
		}
	}
	// Both channels ramp identically from the same starting gain; commit
	// the shared ending gain once, after the loop.
	c.currentGain = gain
}
