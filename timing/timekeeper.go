// Package timing implements the shared timing authority mapping an
// external beat clock (24 pulses per quarter note) onto the audio sample
// timeline, and the quantization math built on top of it. A single
// *Keeper is shared between the audio callback (which only calls
// IncrementSamples) and the control loop (everything else); every field
// is an independent atomic word so neither side ever blocks the other.
package timing

import (
	"sync/atomic"

	"github.com/tempograph/microloop/command"
)

const (
	// SampleRate is the fixed audio sample rate in Hz.
	SampleRate = 44100
	// BlockSize is the fixed number of stereo frames per audio callback.
	BlockSize = 128
	// PPQN is pulses per quarter note for the external beat clock.
	PPQN = 24
	// BeatsPerBar assumes a 4/4 time signature throughout.
	BeatsPerBar = 4

	minSamplesPerBeat = 8000
	maxSamplesPerBeat = 100000
	defaultBPM        = 120
	// defaultSamplesPerBeat is SampleRate*60/defaultBPM = 22050.
	defaultSamplesPerBeat = SampleRate * 60 / defaultBPM

	// nearBoundary is the on-time tolerance (in samples) that keeps a
	// press landing just past a beat/bar boundary from waiting a full
	// beat/bar before firing.
	nearBoundary = 16
)

// Keeper is the timing authority. Zero value is not usable; construct
// with New.
type Keeper struct {
	samplePosition atomic.Uint64

	beatNumber     atomic.Uint32
	tickInBeat     atomic.Uint32
	samplesPerBeat atomic.Uint32

	transport atomic.Uint32
	beatFlag  atomic.Bool
}

// New returns a Keeper reset to its default state (STOPPED transport,
// 120 BPM, beat 0, sample 0).
func New() *Keeper {
	k := &Keeper{}
	k.Reset()
	return k
}

// Reset zeroes the sample and beat counters, restores the default tempo,
// and sets the transport to STOPPED. Calling Reset twice in a row is
// equivalent to calling it once.
func (k *Keeper) Reset() {
	k.samplePosition.Store(0)
	k.beatNumber.Store(0)
	k.tickInBeat.Store(0)
	k.samplesPerBeat.Store(defaultSamplesPerBeat)
	k.transport.Store(uint32(command.Stopped))
	k.beatFlag.Store(false)
}

// ---------- audio timeline (AC only) ----------

// IncrementSamples advances the sample counter by n. Called from the
// audio callback exactly once per block with n == BlockSize.
func (k *Keeper) IncrementSamples(n uint32) {
	k.samplePosition.Add(uint64(n))
}

// SamplePosition returns the current monotonic sample count.
func (k *Keeper) SamplePosition() uint64 {
	return k.samplePosition.Load()
}

// ---------- MIDI-style timeline (CC only) ----------

// SyncToExternalClock recomputes samplesPerBeat from the measured period
// between clock ticks. tickPeriodMicros should already be smoothed (e.g.
// via an EMA) by the caller. Values that would put samplesPerBeat outside
// [8000, 100000] (~30-330 BPM) are rejected and leave state unchanged.
func (k *Keeper) SyncToExternalClock(tickPeriodMicros uint32) {
	beatPeriodMicros := uint64(tickPeriodMicros) * PPQN
	spb := uint32((beatPeriodMicros * SampleRate) / 1_000_000)
	if spb < minSamplesPerBeat || spb > maxSamplesPerBeat {
		return
	}
	k.samplesPerBeat.Store(spb)
}

// SetSamplesPerBeat sets the tempo directly, bypassing clock-tick
// smoothing. Intended for tests and manual tempo entry.
func (k *Keeper) SetSamplesPerBeat(spb uint32) {
	k.samplesPerBeat.Store(spb)
}

// IncrementTick advances the tick-within-beat counter, rolling over to
// the next beat (and setting the beat flag) every 24 ticks.
func (k *Keeper) IncrementTick() {
	tick := k.tickInBeat.Load() + 1
	if tick >= PPQN {
		tick = 0
		k.beatNumber.Add(1)
		k.beatFlag.Store(true)
	}
	k.tickInBeat.Store(tick)
}

// ---------- transport ----------

// SetTransportState publishes a new transport state.
func (k *Keeper) SetTransportState(s command.TransportState) {
	k.transport.Store(uint32(s))
}

// TransportState returns the current transport state.
func (k *Keeper) TransportState() command.TransportState {
	return command.TransportState(k.transport.Load())
}

// IsRunning reports whether the transport is PLAYING or RECORDING.
func (k *Keeper) IsRunning() bool {
	s := k.TransportState()
	return s == command.Playing || s == command.Recording
}

// ---------- queries ----------

// BeatNumber returns the current beat count since the last reset.
func (k *Keeper) BeatNumber() uint32 { return k.beatNumber.Load() }

// BarNumber returns BeatNumber / BeatsPerBar.
func (k *Keeper) BarNumber() uint32 { return k.BeatNumber() / BeatsPerBar }

// BeatInBar returns BeatNumber % BeatsPerBar.
func (k *Keeper) BeatInBar() uint32 { return k.BeatNumber() % BeatsPerBar }

// TickInBeat returns the current tick within the beat, in [0, 24).
func (k *Keeper) TickInBeat() uint32 { return k.tickInBeat.Load() }

// SamplesPerBeat returns the current tempo expressed in samples.
func (k *Keeper) SamplesPerBeat() uint32 { return k.samplesPerBeat.Load() }

// BPM returns the current tempo in beats per minute.
func (k *Keeper) BPM() float64 {
	spb := k.SamplesPerBeat()
	if spb == 0 {
		return 0
	}
	return float64(SampleRate*60) / float64(spb)
}

// ---------- quantization API ----------

// SamplesToNextBeat returns the number of samples until the next beat
// boundary, using the sample-position-modulo-samplesPerBeat form. It
// returns 0 when the position is at or up to nearBoundary samples past a
// boundary, so a press landing just after a beat fires immediately
// instead of waiting a full beat.
func (k *Keeper) SamplesToNextBeat() uint32 {
	spb := k.SamplesPerBeat()
	if spb == 0 {
		return 0
	}
	within := uint32(k.SamplePosition() % uint64(spb))
	if within <= nearBoundary {
		return 0
	}
	return spb - within
}

// SamplesToNextSubdivision returns the number of samples until the next
// boundary of the given subdivision (in samples), computed from the
// tick-within-beat position rather than sample-modulo. This keeps the
// quantization grid locked to the externally advancing beat counter
// instead of drifting against the independently advancing sample
// counter.
func (k *Keeper) SamplesToNextSubdivision(subdivision uint32) uint32 {
	spb := k.SamplesPerBeat()
	if spb == 0 || subdivision == 0 {
		return 0
	}
	samplesPerTick := spb / PPQN
	elapsed := k.TickInBeat() * samplesPerTick

	if subdivision >= spb {
		if elapsed >= spb {
			return 0
		}
		return spb - elapsed
	}

	index := elapsed / subdivision
	next := (index + 1) * subdivision
	if next > spb {
		next = spb
	}
	return next - elapsed
}

// SamplesToNextBar returns the number of samples until the next bar
// boundary, analogous to SamplesToNextBeat but modulo spb*BeatsPerBar.
func (k *Keeper) SamplesToNextBar() uint32 {
	spb := k.SamplesPerBeat()
	if spb == 0 {
		return 0
	}
	samplesPerBar := spb * BeatsPerBar
	within := uint32(k.SamplePosition() % uint64(samplesPerBar))
	if within <= nearBoundary {
		return 0
	}
	return samplesPerBar - within
}

// BeatToSample returns the sample position at which beat b begins.
func (k *Keeper) BeatToSample(b uint32) uint64 {
	return uint64(b) * uint64(k.SamplesPerBeat())
}

// BarToSample returns the sample position at which bar b begins.
func (k *Keeper) BarToSample(b uint32) uint64 {
	return uint64(b) * BeatsPerBar * uint64(k.SamplesPerBeat())
}

// SampleToBeat returns the beat number containing sample position p.
func (k *Keeper) SampleToBeat(p uint64) uint32 {
	spb := k.SamplesPerBeat()
	if spb == 0 {
		return 0
	}
	return uint32(p / uint64(spb))
}

// IsOnBeatBoundary reports whether the current sample position is within
// one audio block of the current beat's boundary.
func (k *Keeper) IsOnBeatBoundary() bool {
	beatSample := k.BeatToSample(k.BeatNumber())
	pos := k.SamplePosition()
	if pos < beatSample {
		return false
	}
	return pos-beatSample <= BlockSize
}

// IsOnBarBoundary reports whether the current position is on a bar
// boundary: the downbeat of the current beat's bar, within tolerance.
func (k *Keeper) IsOnBarBoundary() bool {
	if k.BeatInBar() != 0 {
		return false
	}
	return k.IsOnBeatBoundary()
}

// ---------- beat notification ----------

// PollBeatFlag atomically exchanges the beat flag for false and returns
// its prior value. Guarantees at-least-once delivery: any beat crossed
// since the last poll is reported exactly once, and consecutive beats
// crossed between polls collapse into a single true.
func (k *Keeper) PollBeatFlag() bool {
	return k.beatFlag.Swap(false)
}
