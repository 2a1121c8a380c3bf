package effects

import (
	"sync/atomic"

	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/timing"
)

// StutterState is one of the eight states of the stutter engine's state
// machine. It is read by the control loop (to drive visual feedback) and
// written both by the audio callback (scheduled transitions, buffer
// full) and by the controller's immediate transitions, so it lives in an
// atomic word like every other cross-context field.
type StutterState uint32

const (
	IdleNoLoop StutterState = iota
	IdleWithLoop
	WaitCaptureStart
	Capturing
	WaitCaptureEnd
	WaitPlaybackOnset
	Playing
	WaitPlaybackLength
)

func (s StutterState) String() string {
	switch s {
	case IdleNoLoop:
		return "idle_no_loop"
	case IdleWithLoop:
		return "idle_with_loop"
	case WaitCaptureStart:
		return "wait_capture_start"
	case Capturing:
		return "capturing"
	case WaitCaptureEnd:
		return "wait_capture_end"
	case WaitPlaybackOnset:
		return "wait_playback_onset"
	case Playing:
		return "playing"
	case WaitPlaybackLength:
		return "wait_playback_length"
	default:
		return "?"
	}
}

// stutterMinTempoBPM is the slowest tempo the capture buffer is sized
// for; a bar at any tempo at or above this fits.
const stutterMinTempoBPM = 70

// stutterBufferSamples holds one bar (4 beats) at stutterMinTempoBPM:
// (60/stutterMinTempoBPM) seconds per beat * SampleRate * 4 beats.
const stutterBufferSamples = timing.SampleRate * 60 / stutterMinTempoBPM * 4

// Stutter arms, captures, and loops a bounded slice of audio into a
// non-circular buffer sized for one bar at the slowest supported tempo.
// Unlike Freeze's small continuously-recording ring, the capture window
// here is an explicit, non-circular recording bounded by button hold
// time or the buffer filling.
type Stutter struct {
	keeper *timing.Keeper

	bufL, bufR [stutterBufferSamples]int16
	writePos   int
	readPos    int
	// captureLength is the number of valid samples captured; 0 means no
	// loop is held (none captured yet, or a new capture has started).
	captureLength int

	state atomic.Uint32 // StutterState

	// stutterHeld latches whether the physical stutter button is
	// currently held, consulted at capture-end time to pick the
	// post-capture destination state.
	stutterHeld atomic.Bool

	onsetMode        atomic.Uint32
	lengthMode       atomic.Uint32
	captureStartMode atomic.Uint32
	captureEndMode   atomic.Uint32

	captureStartAtSample  atomic.Uint64
	captureEndAtSample    atomic.Uint64
	playbackOnsetAtSample atomic.Uint64
	playbackLenAtSample   atomic.Uint64
}

// NewStutter returns a Stutter starting IDLE_NO_LOOP with an empty
// buffer.
func NewStutter(keeper *timing.Keeper) *Stutter {
	return &Stutter{keeper: keeper}
}

func (s *Stutter) Name() string { return "stutter" }

// IsEnabled reports whether the engine is in any state other than
// IDLE_NO_LOOP — i.e. it holds a loop, is capturing, or is waiting on a
// scheduled transition.
func (s *Stutter) IsEnabled() bool { return s.State() != IdleNoLoop }

// State returns the current state, safe to call from either context.
func (s *Stutter) State() StutterState { return StutterState(s.state.Load()) }

// SetStutterHeld latches whether the stutter button is currently held.
func (s *Stutter) SetStutterHeld(held bool) { s.stutterHeld.Store(held) }

// StutterHeld reports the latched hold state.
func (s *Stutter) StutterHeld() bool { return s.stutterHeld.Load() }

// mode accessors, mirroring Choke/Freeze.
func (s *Stutter) SetOnsetMode(m command.Mode)        { s.onsetMode.Store(uint32(m)) }
func (s *Stutter) OnsetMode() command.Mode            { return command.Mode(s.onsetMode.Load()) }
func (s *Stutter) SetLengthMode(m command.Mode)       { s.lengthMode.Store(uint32(m)) }
func (s *Stutter) LengthMode() command.Mode           { return command.Mode(s.lengthMode.Load()) }
func (s *Stutter) SetCaptureStartMode(m command.Mode) { s.captureStartMode.Store(uint32(m)) }
func (s *Stutter) CaptureStartMode() command.Mode     { return command.Mode(s.captureStartMode.Load()) }
func (s *Stutter) SetCaptureEndMode(m command.Mode)   { s.captureEndMode.Store(uint32(m)) }
func (s *Stutter) CaptureEndMode() command.Mode       { return command.Mode(s.captureEndMode.Load()) }

// CaptureLength returns the number of valid samples in the last capture,
// 0 if none has completed since the last capture started.
func (s *Stutter) CaptureLength() int { return s.captureLength }

// CaptureSnapshot copies out the first CaptureLength samples of the
// capture buffer for offline inspection (the debug console's WAV dump).
// It is a best-effort read: the buffer is plain AC-owned memory with no
// atomic protection, so a snapshot taken mid-capture may see a partially
// written tail, which is acceptable for a debug convenience but would
// not be for anything on the audio path itself.
func (s *Stutter) CaptureSnapshot() (left, right []int16) {
	n := s.captureLength
	left = make([]int16, n)
	right = make([]int16, n)
	copy(left, s.bufL[:n])
	copy(right, s.bufR[:n])
	return left, right
}

// BeginCapture immediately transitions into CAPTURING, discarding any
// previous loop. Used for FREE capture-start.
func (s *Stutter) BeginCapture() {
	s.writePos = 0
	s.captureLength = 0
	s.state.Store(uint32(Capturing))
}

// ScheduleCaptureStart arms WAIT_CAPTURE_START and schedules the block-
// accurate transition into CAPTURING. Used for QUANTIZED capture-start.
func (s *Stutter) ScheduleCaptureStart(sample uint64) {
	s.state.Store(uint32(WaitCaptureStart))
	s.captureStartAtSample.Store(sample)
}

// CancelCaptureStart aborts a pending WAIT_CAPTURE_START, returning to
// IDLE_NO_LOOP per the state table's cancel exit.
func (s *Stutter) CancelCaptureStart() {
	s.captureStartAtSample.Store(0)
	s.state.Store(uint32(IdleNoLoop))
}

// EndCapture immediately ends capture (FREE capture-end), applying the
// post-capture transition rule against the current write position.
func (s *Stutter) EndCapture() {
	s.finishCapture(s.writePos)
}

// ScheduleCaptureEnd arms WAIT_CAPTURE_END and schedules the block-
// accurate capture-end. Used for QUANTIZED capture-end.
func (s *Stutter) ScheduleCaptureEnd(sample uint64) {
	s.state.Store(uint32(WaitCaptureEnd))
	s.captureEndAtSample.Store(sample)
}

// finishCapture applies the post-capture transition rule: PLAYING if the
// stutter button is still latched held, else IDLE_WITH_LOOP; IDLE_NO_LOOP
// if nothing was captured.
func (s *Stutter) finishCapture(length int) {
	s.captureLength = length
	s.captureEndAtSample.Store(0)
	if length == 0 {
		s.state.Store(uint32(IdleNoLoop))
		return
	}
	if s.StutterHeld() {
		s.readPos = 0
		s.state.Store(uint32(Playing))
		return
	}
	s.state.Store(uint32(IdleWithLoop))
}

// BeginPlayback immediately starts looping the captured buffer from the
// top. Used for FREE playback-onset.
func (s *Stutter) BeginPlayback() {
	s.readPos = 0
	s.state.Store(uint32(Playing))
}

// SchedulePlaybackOnset arms WAIT_PLAYBACK_ONSET. Used for QUANTIZED
// playback-onset.
func (s *Stutter) SchedulePlaybackOnset(sample uint64) {
	s.state.Store(uint32(WaitPlaybackOnset))
	s.playbackOnsetAtSample.Store(sample)
}

// EndPlayback immediately stops looping, returning to IDLE_WITH_LOOP.
// Used for FREE playback-length (button release).
func (s *Stutter) EndPlayback() {
	s.playbackLenAtSample.Store(0)
	s.state.Store(uint32(IdleWithLoop))
}

// SchedulePlaybackLength arms WAIT_PLAYBACK_LENGTH. Used for QUANTIZED
// playback-length.
func (s *Stutter) SchedulePlaybackLength(sample uint64) {
	s.state.Store(uint32(WaitPlaybackLength))
	s.playbackLenAtSample.Store(sample)
}

// Process evaluates every scheduled transition in tie-break order
// (capture-start, capture-end, playback-onset, playback-length), then
// runs the audio behavior for the resulting state, applying a buffer-
// full override if capture fills the buffer this block.
func (s *Stutter) Process(in, out Block) {
	pos := s.keeper.SamplePosition()

	if scheduleWithinBlock(s.captureStartAtSample.Load(), pos) {
		s.captureStartAtSample.Store(0)
		s.writePos = 0
		s.captureLength = 0
		s.state.Store(uint32(Capturing))
	}
	if scheduleWithinBlock(s.captureEndAtSample.Load(), pos) {
		s.finishCapture(s.writePos)
	}
	if scheduleWithinBlock(s.playbackOnsetAtSample.Load(), pos) {
		s.playbackOnsetAtSample.Store(0)
		s.readPos = 0
		s.state.Store(uint32(Playing))
	}
	if scheduleWithinBlock(s.playbackLenAtSample.Load(), pos) {
		s.playbackLenAtSample.Store(0)
		s.state.Store(uint32(IdleWithLoop))
	}

	switch s.State() {
	case Capturing, WaitCaptureEnd:
		s.recordAndPassthrough(in, out)
		if s.writePos >= stutterBufferSamples {
			s.finishCapture(stutterBufferSamples)
		}
	case Playing, WaitPlaybackLength:
		s.loopCapturedBuffer(out)
	default: // IdleNoLoop, IdleWithLoop, WaitCaptureStart, WaitPlaybackOnset
		s.passthrough(in, out)
	}
}

func (s *Stutter) passthrough(in, out Block) {
	n := len(in[0])
	copy(out[0][:n], in[0][:n])
	copy(out[1][:n], in[1][:n])
}

func (s *Stutter) recordAndPassthrough(in, out Block) {
	n := len(in[0])
	i := 0
	for ; i < n && s.writePos < stutterBufferSamples; i++ {
		s.bufL[s.writePos] = in[0][i]
		s.bufR[s.writePos] = in[1][i]
		out[0][i] = in[0][i]
		out[1][i] = in[1][i]
		s.writePos++
	}
	// Buffer filled mid-block: still pass the remainder of the block
	// through rather than leaving it uninitialized.
	for ; i < n; i++ {
		out[0][i] = in[0][i]
		out[1][i] = in[1][i]
	}
}

func (s *Stutter) loopCapturedBuffer(out Block) {
	n := len(out[0])
	if s.captureLength == 0 {
		silence(out)
		return
	}
	for i := 0; i < n; i++ {
		out[0][i] = s.bufL[s.readPos]
		out[1][i] = s.bufR[s.readPos]
		s.readPos++
		if s.readPos >= s.captureLength {
			s.readPos = 0
		}
	}
}
