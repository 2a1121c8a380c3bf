package control

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// EventID identifies the kind of a trace event. Numbering uses a banded
// scheme: each subsystem gets a hundred-wide range so new events can be
// added without renumbering anything else.
type EventID uint16

const (
	EventMIDIClockRecv EventID = 1 + iota
	EventMIDIClockQueued
	EventMIDIClockDropped
)

const (
	EventMIDIStart EventID = 10 + iota
	EventMIDIStop
	EventMIDIContinue
)

const (
	EventBeatStart EventID = 100 + iota
	EventBeatLEDOn
	EventBeatLEDOff
	EventTickPeriodUpdate
)

const (
	EventAppLoopStart EventID = 200 + iota
	EventAppClockDrain
	EventAppEventDrain
)

const (
	EventAudioCallback EventID = 300 + iota
	EventAudioUnderrun
)

const (
	EventTimekeeperSync EventID = 400 + iota
	EventTimekeeperTransport
	EventTimekeeperBeatAdvance
	EventTimekeeperSamplePos
)

const (
	EventChokeButtonPress EventID = 500 + iota
	EventChokeButtonRelease
	EventChokeEngage
	EventChokeRelease
	EventChokeFadeStart
	EventChokeFadeComplete
)

var eventNames = map[EventID]string{
	EventMIDIClockRecv:         "MIDI_CLOCK_RECV",
	EventMIDIClockQueued:       "MIDI_CLOCK_QUEUED",
	EventMIDIClockDropped:      "MIDI_CLOCK_DROPPED",
	EventMIDIStart:             "MIDI_START",
	EventMIDIStop:              "MIDI_STOP",
	EventMIDIContinue:          "MIDI_CONTINUE",
	EventBeatStart:             "BEAT_START",
	EventBeatLEDOn:             "BEAT_LED_ON",
	EventBeatLEDOff:            "BEAT_LED_OFF",
	EventTickPeriodUpdate:      "TICK_PERIOD_UPDATE",
	EventAppLoopStart:          "APP_LOOP_START",
	EventAppClockDrain:         "APP_CLOCK_DRAIN",
	EventAppEventDrain:         "APP_EVENT_DRAIN",
	EventAudioCallback:         "AUDIO_CALLBACK",
	EventAudioUnderrun:         "AUDIO_UNDERRUN",
	EventTimekeeperSync:        "TIMEKEEPER_SYNC",
	EventTimekeeperTransport:   "TIMEKEEPER_TRANSPORT",
	EventTimekeeperBeatAdvance: "TIMEKEEPER_BEAT_ADVANCE",
	EventTimekeeperSamplePos:   "TIMEKEEPER_SAMPLE_POS",
	EventChokeButtonPress:      "CHOKE_BUTTON_PRESS",
	EventChokeButtonRelease:    "CHOKE_BUTTON_RELEASE",
	EventChokeEngage:           "CHOKE_ENGAGE",
	EventChokeRelease:          "CHOKE_RELEASE",
	EventChokeFadeStart:        "CHOKE_FADE_START",
	EventChokeFadeComplete:     "CHOKE_FADE_COMPLETE",
}

func (id EventID) String() string {
	if name, ok := eventNames[id]; ok {
		return name
	}
	return "UNKNOWN"
}

// traceBufferSize is the ring's event capacity. Kept a power of two so
// the write index can be masked instead of taken modulo.
const traceBufferSize = 1024

type traceEvent struct {
	timestampUS uint32
	eventID     EventID
	value       uint16
}

// Tracer is a wait-free circular event log safe to record into from any
// context — audio callback, clock ISR emulation, or the control loop —
// with dump/clear/snapshot only ever called from the control loop.
// Overflow silently overwrites the oldest event.
type Tracer struct {
	buffer   [traceBufferSize]traceEvent
	writeIdx atomic.Uint64
	start    time.Time
}

// NewTracer returns an empty Tracer with its timestamp epoch set to now.
func NewTracer() *Tracer {
	return &Tracer{start: time.Now()}
}

// Record appends an event, wrapping over the oldest slot once the buffer
// fills. Safe for concurrent use by any number of callers.
func (t *Tracer) Record(id EventID, value uint16) {
	idx := t.writeIdx.Add(1) - 1
	slot := &t.buffer[idx&(traceBufferSize-1)]
	slot.timestampUS = uint32(time.Since(t.start).Microseconds())
	slot.eventID = id
	slot.value = value
}

// EventsRecorded returns the total number of events recorded since
// construction or the last Clear, including ones already overwritten.
func (t *Tracer) EventsRecorded() uint64 { return t.writeIdx.Load() }

// Clear resets the buffer and write index. Only safe to call from the
// control loop, never concurrently with a recording goroutine.
func (t *Tracer) Clear() {
	for i := range t.buffer {
		t.buffer[i] = traceEvent{}
	}
	t.writeIdx.Store(0)
}

// Dump renders every recorded event in chronological order, oldest
// first, as a fixed-width table. Call only from the control loop.
func (t *Tracer) Dump() string {
	var b strings.Builder
	b.WriteString("=== TRACE DUMP ===\n")
	b.WriteString("Timestamp(us) | ID  | Value | Event\n")
	b.WriteString("--------------|-----|-------|------\n")

	current := t.writeIdx.Load()
	start := uint64(0)
	if current >= traceBufferSize {
		start = current & (traceBufferSize - 1)
	}

	for i := uint64(0); i < traceBufferSize; i++ {
		idx := (start + i) & (traceBufferSize - 1)
		e := t.buffer[idx]
		if e.timestampUS == 0 && e.eventID == 0 && e.value == 0 {
			continue
		}
		fmt.Fprintf(&b, "%13d | %3d | %5d | %s\n", e.timestampUS, e.eventID, e.value, e.eventID)
	}

	b.WriteString("=== END TRACE ===\n")
	return b.String()
}

// Snapshot is a point-in-time summary of the timing authority and clock
// recovery state, printed by the debug console's "s" command.
type Snapshot struct {
	SamplePosition uint64
	BeatNumber     uint32
	TickInBeat     uint32
	SamplesPerBeat uint32
	BPM            float64
	Transport      string
	EventsRecorded uint64
}

// String formats a Snapshot the way the console prints it.
func (s Snapshot) String() string {
	return fmt.Sprintf(
		"sample=%d beat=%d tick=%d/24 samples/beat=%d (%.1f BPM) transport=%s events=%d",
		s.SamplePosition, s.BeatNumber, s.TickInBeat, s.SamplesPerBeat, s.BPM, s.Transport, s.EventsRecorded,
	)
}
