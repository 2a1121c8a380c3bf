package control

import (
	"context"
	"log"
	"time"

	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/spsc"
	"github.com/tempograph/microloop/timing"
)

// TransportEvent is a MIDI-style transport message: START resets the
// timeline and begins playback, STOP halts it, CONTINUE resumes without
// resetting.
type TransportEvent uint8

const (
	TransportStart TransportEvent = iota
	TransportStop
	TransportContinue
)

func (e TransportEvent) String() string {
	switch e {
	case TransportStart:
		return "START"
	case TransportStop:
		return "STOP"
	case TransportContinue:
		return "CONTINUE"
	default:
		return "?"
	}
}

const (
	defaultAvgTickPeriodUs = 20833 // ~120 BPM
	minTickPeriodUs        = 10000
	maxTickPeriodUs        = 50000

	tickInterval = 2 * time.Millisecond
)

// EncoderReader supplies the raw quadrature position and pushbutton state
// for a hardware encoder index. Implemented by the device package; a nil
// reader leaves every registered EncoderMenu untouched.
type EncoderReader interface {
	Read(index int) (position int32, pressed bool)
}

// BeatLED receives beat-boundary pulse edges so the caller can drive a
// physical or terminal LED without the scheduler knowing which.
type BeatLED interface {
	SetBeatLED(on bool)
}

// Scheduler is the control loop: it drains every input queue, dispatches
// commands, advances the timing authority from the external clock, and
// keeps visual feedback in sync. One Scheduler owns the entire control
// side of the looper; the audio callback only ever touches the *Keeper
// and effect engines it shares with it.
type Scheduler struct {
	keeper     *timing.Keeper
	dispatcher *Dispatcher
	tracer     *Tracer
	settings   *Settings

	controllers []Controller

	commands        *spsc.Ring[command.Command]
	transportEvents *spsc.Ring[TransportEvent]
	clockTicks      *spsc.Ring[uint32]

	encoders      []*EncoderMenu
	encoderReader EncoderReader
	beatLED       BeatLED
	visual        *VisualFeedback

	transportActive bool
	lastTickMicros  uint32
	avgTickPeriodUs uint32
	ledOffSample    uint64
}

// NewScheduler wires a Scheduler to its collaborators. Queue capacities
// stay modest since the control loop drains them every 2ms, so a burst
// deeper than a few dozen events indicates a stuck consumer, not a
// sizing problem.
func NewScheduler(keeper *timing.Keeper, dispatcher *Dispatcher, tracer *Tracer, settings *Settings, controllers []Controller) *Scheduler {
	return &Scheduler{
		keeper:          keeper,
		dispatcher:      dispatcher,
		tracer:          tracer,
		settings:        settings,
		controllers:     controllers,
		commands:        spsc.New[command.Command](64),
		transportEvents: spsc.New[TransportEvent](32),
		clockTicks:      spsc.New[uint32](256),
		avgTickPeriodUs: defaultAvgTickPeriodUs,
	}
}

// SetEncoderReader wires the hardware (or terminal) source polled once
// per iteration for every registered encoder.
func (s *Scheduler) SetEncoderReader(r EncoderReader) { s.encoderReader = r }

// SetBeatLED wires the sink for beat-boundary pulses.
func (s *Scheduler) SetBeatLED(led BeatLED) { s.beatLED = led }

// SetVisualFeedback wires the display/LED recomputation step. A nil
// VisualFeedback (the default) leaves Tick's visual step a no-op.
func (s *Scheduler) SetVisualFeedback(v *VisualFeedback) { s.visual = v }

// RegisterEncoder adds a menu handler to be polled each iteration. index
// must match the value the EncoderReader expects.
func (s *Scheduler) RegisterEncoder(menu *EncoderMenu) {
	s.encoders = append(s.encoders, menu)
}

// PushCommand enqueues a button/UI command for the control loop to
// dispatch. The queue is single-producer: calls must not overlap across
// goroutines. Drops the command and reports false if the queue is full.
func (s *Scheduler) PushCommand(cmd command.Command) bool { return s.commands.Push(cmd) }

// PushTransportEvent enqueues a MIDI-style transport message.
func (s *Scheduler) PushTransportEvent(e TransportEvent) bool { return s.transportEvents.Push(e) }

// PushClockTick enqueues a clock pulse's microsecond timestamp.
func (s *Scheduler) PushClockTick(micros uint32) bool {
	ok := s.clockTicks.Push(micros)
	if !ok && s.tracer != nil {
		s.tracer.Record(EventMIDIClockDropped, 0)
	}
	return ok
}

// Run drains and dispatches on a fixed 2ms cadence, cooperative
// scheduling that keeps every control-plane step off the audio thread,
// until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	epoch := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(uint64(time.Since(epoch).Milliseconds()))
		}
	}
}

// Tick runs one control-loop iteration. Exported so tests and an
// alternate driver (e.g. a fixed-step simulation) can step it directly
// without a real-time ticker.
func (s *Scheduler) Tick(nowMillis uint64) {
	s.processCommands()
	s.updateEncoders(nowMillis)
	s.updateControllers(nowMillis)
	s.processTransportEvents()
	s.processClockTicks()
	s.updateBeatLED()
	if s.visual != nil {
		s.visual.Update(nowMillis)
	}
}

func (s *Scheduler) processCommands() {
	for {
		cmd, ok := s.commands.Pop()
		if !ok {
			return
		}
		s.dispatcher.Execute(cmd)
	}
}

func (s *Scheduler) updateEncoders(nowMillis uint64) {
	if s.encoderReader == nil {
		return
	}
	for i, menu := range s.encoders {
		pos, pressed := s.encoderReader.Read(i)
		menu.Update(pos, pressed, nowMillis)
	}
}

func (s *Scheduler) updateControllers(nowMillis uint64) {
	for _, c := range s.controllers {
		c.UpdateVisualFeedback(nowMillis)
	}
}

func (s *Scheduler) processTransportEvents() {
	for {
		event, ok := s.transportEvents.Pop()
		if !ok {
			return
		}
		switch event {
		case TransportStart:
			s.lastTickMicros = 0
			s.transportActive = true
			s.keeper.Reset()
			s.keeper.SetTransportState(command.Playing)
			s.pulseBeatLED(0)
			if s.tracer != nil {
				s.tracer.Record(EventMIDIStart, 0)
			}
		case TransportStop:
			s.transportActive = false
			s.keeper.SetTransportState(command.Stopped)
			s.ledOffSample = 0
			if s.beatLED != nil {
				s.beatLED.SetBeatLED(false)
			}
			if s.tracer != nil {
				s.tracer.Record(EventMIDIStop, 0)
			}
		case TransportContinue:
			s.transportActive = true
			s.keeper.SetTransportState(command.Playing)
			if s.tracer != nil {
				s.tracer.Record(EventMIDIContinue, 0)
			}
		default:
			log.Printf("control: unrecognized transport event %d, discarding", event)
		}
	}
}

func (s *Scheduler) processClockTicks() {
	for {
		clockMicros, ok := s.clockTicks.Pop()
		if !ok {
			return
		}
		if !s.transportActive {
			continue
		}

		if s.lastTickMicros > 0 {
			period := clockMicros - s.lastTickMicros
			if period >= minTickPeriodUs && period <= maxTickPeriodUs {
				w := s.settings.ClockSmoothing()
				s.avgTickPeriodUs = uint32(float64(s.avgTickPeriodUs)*w + float64(period)*(1-w))
				s.keeper.SyncToExternalClock(s.avgTickPeriodUs)
				if s.tracer != nil {
					s.tracer.Record(EventTickPeriodUpdate, uint16(s.avgTickPeriodUs/10))
				}
			}
		}
		s.lastTickMicros = clockMicros
		s.keeper.IncrementTick()
	}
}

func (s *Scheduler) updateBeatLED() {
	current := s.keeper.SamplePosition()

	if s.keeper.PollBeatFlag() {
		s.pulseBeatLED(current)
	}

	if s.ledOffSample > 0 && current >= s.ledOffSample {
		if s.beatLED != nil {
			s.beatLED.SetBeatLED(false)
		}
		s.ledOffSample = 0
		if s.tracer != nil {
			s.tracer.Record(EventBeatLEDOff, 0)
		}
	}
}

// pulseBeatLED turns the beat LED on and arms it to turn off after a
// two-tick pulse width, scaled to the current tempo.
func (s *Scheduler) pulseBeatLED(fromSample uint64) {
	if s.beatLED != nil {
		s.beatLED.SetBeatLED(true)
	}
	spb := s.keeper.SamplesPerBeat()
	pulseSamples := uint64(spb) * 2 / timing.PPQN
	s.ledOffSample = fromSample + pulseSamples
	if s.tracer != nil {
		s.tracer.Record(EventBeatLEDOn, 0)
	}
}

// Snapshot summarizes current timing/clock-recovery state for the debug
// console's "s" command.
func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		SamplePosition: s.keeper.SamplePosition(),
		BeatNumber:     s.keeper.BeatNumber(),
		TickInBeat:     s.keeper.TickInBeat(),
		SamplesPerBeat: s.keeper.SamplesPerBeat(),
		BPM:            s.keeper.BPM(),
		Transport:      s.keeper.TransportState().String(),
	}
	if s.tracer != nil {
		snap.EventsRecorded = s.tracer.EventsRecorded()
	}
	return snap
}
