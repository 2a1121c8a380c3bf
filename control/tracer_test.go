package control

import (
	"strings"
	"testing"
)

func TestTracerRecordAndDumpContainsEvent(t *testing.T) {
	tr := NewTracer()
	tr.Record(EventChokeEngage, 42)

	dump := tr.Dump()
	if !strings.Contains(dump, "CHOKE_ENGAGE") {
		t.Fatalf("dump missing event name: %s", dump)
	}
	if !strings.Contains(dump, "42") {
		t.Fatalf("dump missing value: %s", dump)
	}
}

func TestTracerClearEmptiesBuffer(t *testing.T) {
	tr := NewTracer()
	tr.Record(EventChokeEngage, 1)
	tr.Record(EventChokeRelease, 2)
	tr.Clear()

	dump := tr.Dump()
	if strings.Contains(dump, "CHOKE_ENGAGE") || strings.Contains(dump, "CHOKE_RELEASE") {
		t.Fatalf("expected empty dump after clear, got: %s", dump)
	}
}

func TestTracerOverflowsOldestEvents(t *testing.T) {
	tr := NewTracer()
	for i := 0; i < traceBufferSize+10; i++ {
		tr.Record(EventAppLoopStart, uint16(i))
	}

	dump := tr.Dump()
	lines := strings.Split(strings.TrimSpace(dump), "\n")
	// header (3 lines) + traceBufferSize events + footer (1 line)
	want := 3 + traceBufferSize + 1
	if len(lines) != want {
		t.Fatalf("expected %d lines after overflow, got %d", want, len(lines))
	}
	count := strings.Count(dump, "APP_LOOP_START")
	if count != traceBufferSize {
		t.Fatalf("expected exactly %d surviving events, got %d", traceBufferSize, count)
	}
}

func TestEventIDStringUnknown(t *testing.T) {
	if got := EventID(9999).String(); got != "UNKNOWN" {
		t.Fatalf("expected UNKNOWN, got %s", got)
	}
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		SamplePosition: 100,
		BeatNumber:     2,
		TickInBeat:     5,
		SamplesPerBeat: 22050,
		BPM:            120,
		Transport:      "PLAYING",
		EventsRecorded: 3,
	}
	str := s.String()
	if !strings.Contains(str, "PLAYING") || !strings.Contains(str, "120.0 BPM") {
		t.Fatalf("unexpected snapshot string: %s", str)
	}
}
