package device

import (
	"testing"

	"github.com/tempograph/microloop/control"
	"github.com/tempograph/microloop/effects"
	"github.com/tempograph/microloop/timing"
)

type fakeHandler struct {
	claims string
	calls  []string
}

func (f *fakeHandler) HandleLine(line string) bool {
	f.calls = append(f.calls, line)
	return line == f.claims
}

func newTestConsole(t *testing.T) (*Console, *effects.Stutter, *effects.Freeze) {
	t.Helper()
	keeper := timing.New()
	stutter := effects.NewStutter(keeper)
	freeze := effects.NewFreeze(keeper)
	tracer := control.NewTracer()
	settings := control.NewSettings()
	sched := newTestScheduler(t)
	return &Console{tracer: tracer, sched: sched, settings: settings, stutter: stutter, freeze: freeze}, stutter, freeze
}

func TestConsoleDispatchHandlerInterceptsBeforeDebugCommands(t *testing.T) {
	c, _, _ := newTestConsole(t)
	h := &fakeHandler{claims: "freeze"}
	c.AddHandler(h)

	c.dispatch("freeze")
	if len(h.calls) != 1 {
		t.Fatalf("handler called %d times, want 1", len(h.calls))
	}
}

func TestConsoleDispatchFallsThroughToDebugCommands(t *testing.T) {
	c, _, _ := newTestConsole(t)
	h := &fakeHandler{claims: "freeze"} // never claims "t"
	c.AddHandler(h)

	c.dispatch("t") // should not panic; falls through to tracer dump
	if len(h.calls) != 1 {
		t.Fatalf("handler called %d times, want 1", len(h.calls))
	}
}

func TestConsoleDispatchClearCommand(t *testing.T) {
	c, _, _ := newTestConsole(t)
	c.tracer.Record(control.EventChokeEngage, 1)
	c.dispatch("c")
	if c.tracer.EventsRecorded() != 0 {
		t.Fatalf("EventsRecorded() = %d, want 0 after clear", c.tracer.EventsRecorded())
	}
}

func TestConsoleDispatchUnknownCommandDoesNotPanic(t *testing.T) {
	c, _, _ := newTestConsole(t)
	c.dispatch("bogus")
}

func TestConsoleDispatchSetThenGetRoundTrips(t *testing.T) {
	c, _, _ := newTestConsole(t)
	c.dispatch("set fade_ms 5")

	v, err := c.settings.Get(control.KeyFadeMS)
	if err != nil {
		t.Fatalf("Get(%s) error: %v", control.KeyFadeMS, err)
	}
	if v.(float64) != 5 {
		t.Fatalf("fade_ms = %v, want 5", v)
	}

	c.dispatch("get fade_ms") // should not panic
}

func TestConsoleDispatchSetOutOfRangeLeavesValueUnchanged(t *testing.T) {
	c, _, _ := newTestConsole(t)
	c.dispatch("set fade_ms 1000") // outside [0.1, 50]

	v, _ := c.settings.Get(control.KeyFadeMS)
	if v.(float64) != 3.0 {
		t.Fatalf("fade_ms = %v, want unchanged default 3.0", v)
	}
}
