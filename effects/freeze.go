package effects

import (
	"sync/atomic"

	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/timing"
)

// freezeBufferMS is the length of the circular capture buffer. Chosen
// deliberately short (a few milliseconds) for the harsh, glitchy timbre
// that defines this effect rather than a musical loop — see the buffer
// size grounding note in DESIGN.md.
const freezeBufferMS = 3

// freezeBufferSamples is (freezeBufferMS * SampleRate) / 1000, truncated
// to an integer sample count.
const freezeBufferSamples = freezeBufferMS * timing.SampleRate / 1000

// Freeze continuously records the last freezeBufferSamples of audio per
// channel while passing input straight through; on engage it stops
// advancing the write head and instead loops the captured buffer from
// wherever the write head stood at the moment of capture.
type Freeze struct {
	keeper *timing.Keeper

	bufL, bufR [freezeBufferSamples]int16
	writePos   int
	readPos    int

	enabled atomic.Bool

	lengthMode atomic.Uint32
	onsetMode  atomic.Uint32

	onsetAtSample   atomic.Uint64
	releaseAtSample atomic.Uint64
}

// NewFreeze returns a Freeze starting in passthrough (unfrozen) mode
// with a silent capture buffer.
func NewFreeze(keeper *timing.Keeper) *Freeze {
	return &Freeze{keeper: keeper}
}

func (f *Freeze) Name() string { return "freeze" }

// CaptureSnapshot copies out the full capture ring for offline inspection
// (the debug console's WAV dump). Best-effort: the buffer has no atomic
// protection, so a snapshot taken mid-write may tear, acceptable for a
// debug convenience but not for the audio path itself.
func (f *Freeze) CaptureSnapshot() (left, right []int16) {
	left = make([]int16, freezeBufferSamples)
	right = make([]int16, freezeBufferSamples)
	copy(left, f.bufL[:])
	copy(right, f.bufR[:])
	return left, right
}

// IsEnabled reports whether freeze is currently looping the captured
// buffer.
func (f *Freeze) IsEnabled() bool { return f.enabled.Load() }

// Engage captures the buffer at the current write head and starts
// looping from there.
func (f *Freeze) Engage() {
	f.readPos = f.writePos
	f.enabled.Store(true)
}

// Release returns to passthrough, resuming continuous capture.
func (f *Freeze) Release() { f.enabled.Store(false) }

// Toggle engages if released, releases if engaged.
func (f *Freeze) Toggle() {
	if f.IsEnabled() {
		f.Release()
	} else {
		f.Engage()
	}
}

// ScheduleOnset arranges for Engage to fire on the block containing
// sample. 0 cancels.
func (f *Freeze) ScheduleOnset(sample uint64) { f.onsetAtSample.Store(sample) }

// ScheduleRelease arranges for Release to fire on the block containing
// sample. 0 cancels.
func (f *Freeze) ScheduleRelease(sample uint64) { f.releaseAtSample.Store(sample) }

// SetOnsetMode selects FREE (engage immediately) or QUANTIZED (wait for
// the next grid boundary) onset behavior.
func (f *Freeze) SetOnsetMode(m command.Mode) { f.onsetMode.Store(uint32(m)) }

// OnsetMode returns the current onset mode.
func (f *Freeze) OnsetMode() command.Mode { return command.Mode(f.onsetMode.Load()) }

// SetLengthMode selects FREE (release on button-up) or QUANTIZED
// (auto-release after the current quantization duration).
func (f *Freeze) SetLengthMode(m command.Mode) { f.lengthMode.Store(uint32(m)) }

// LengthMode returns the current length mode.
func (f *Freeze) LengthMode() command.Mode { return command.Mode(f.lengthMode.Load()) }

// Process fires any block-accurate scheduled onset/release, then either
// records-and-passes-through (unfrozen) or loops the captured buffer
// (frozen).
func (f *Freeze) Process(in, out Block) {
	pos := f.keeper.SamplePosition()

	if scheduleWithinBlock(f.onsetAtSample.Load(), pos) {
		f.Engage()
		f.onsetAtSample.Store(0)
	}
	if scheduleWithinBlock(f.releaseAtSample.Load(), pos) {
		f.Release()
		f.releaseAtSample.Store(0)
	}

	if !f.IsEnabled() {
		n := len(in[0])
		for i := 0; i < n; i++ {
			f.bufL[f.writePos] = in[0][i]
			f.bufR[f.writePos] = in[1][i]
			out[0][i] = in[0][i]
			out[1][i] = in[1][i]

			f.writePos++
			if f.writePos >= freezeBufferSamples {
				f.writePos = 0
			}
		}
		return
	}

	n := len(out[0])
	for i := 0; i < n; i++ {
		out[0][i] = f.bufL[f.readPos]
		out[1][i] = f.bufR[f.readPos]

		f.readPos++
		if f.readPos >= freezeBufferSamples {
			f.readPos = 0
		}
	}
}
