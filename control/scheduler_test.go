package control

import (
	"testing"

	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/effects"
	"github.com/tempograph/microloop/timing"
)

type fakeBeatLED struct {
	on      bool
	history []bool
}

func (f *fakeBeatLED) SetBeatLED(on bool) {
	f.on = on
	f.history = append(f.history, on)
}

type fakeEncoderReader struct {
	positions [2]int32
	pressed   [2]bool
}

func (f *fakeEncoderReader) Read(index int) (int32, bool) {
	return f.positions[index], f.pressed[index]
}

func newTestScheduler() (*Scheduler, *timing.Keeper, *fakeBeatLED) {
	keeper := timing.New()
	choke := effects.NewChoke(keeper)
	freeze := effects.NewFreeze(keeper)
	stutter := effects.NewStutter(keeper)
	quant := NewQuantizer(keeper)
	settings := NewSettings()
	activity := NewActivity()

	chokeCtrl := NewChokeController(choke, quant, settings, activity)
	freezeCtrl := NewFreezeController(freeze, quant, settings, activity)
	stutterCtrl := NewStutterController(stutter, quant, settings, activity)

	dispatcher := NewDispatcher(activity, stutterCtrl)
	dispatcher.RegisterEffect(command.EffectChoke, chokeCtrl, choke)
	dispatcher.RegisterEffect(command.EffectFreeze, freezeCtrl, freeze)
	dispatcher.RegisterEffect(command.EffectStutter, stutterCtrl, nil)

	tracer := NewTracer()
	sched := NewScheduler(keeper, dispatcher, tracer, settings, []Controller{chokeCtrl, freezeCtrl, stutterCtrl})
	led := &fakeBeatLED{}
	sched.SetBeatLED(led)
	return sched, keeper, led
}

func TestSchedulerDrainsAndDispatchesCommands(t *testing.T) {
	sched, _, _ := newTestScheduler()
	if !sched.PushCommand(command.Command{Kind: command.KindEnable, Target: command.EffectChoke}) {
		t.Fatal("expected command to be pushed")
	}
	sched.Tick(0)

	// Choke is now engaged; verify by pushing a release and checking the
	// engine reflects a full toggle cycle without panicking.
	sched.PushCommand(command.Command{Kind: command.KindDisable, Target: command.EffectChoke})
	sched.Tick(1)
}

func TestSchedulerTransportStartResetsKeeperAndPulsesLED(t *testing.T) {
	sched, keeper, led := newTestScheduler()
	keeper.IncrementSamples(5000)

	sched.PushTransportEvent(TransportStart)
	sched.Tick(0)

	if keeper.SamplePosition() != 0 {
		t.Fatalf("SamplePosition() = %d, want 0 after START reset", keeper.SamplePosition())
	}
	if keeper.TransportState() != command.Playing {
		t.Fatalf("TransportState() = %v, want Playing", keeper.TransportState())
	}
	if !led.on {
		t.Fatal("expected beat LED on after START")
	}
}

func TestSchedulerTransportStopTurnsLEDOff(t *testing.T) {
	sched, _, led := newTestScheduler()
	sched.PushTransportEvent(TransportStart)
	sched.Tick(0)
	sched.PushTransportEvent(TransportStop)
	sched.Tick(1)

	if led.on {
		t.Fatal("expected beat LED off after STOP")
	}
}

func TestSchedulerClockTicksAdvanceTickCounter(t *testing.T) {
	sched, keeper, _ := newTestScheduler()
	sched.PushTransportEvent(TransportStart)
	sched.Tick(0)

	sched.PushClockTick(0)
	sched.PushClockTick(20833)
	sched.Tick(1)

	if keeper.TickInBeat() != 2 {
		t.Fatalf("TickInBeat() = %d, want 2", keeper.TickInBeat())
	}
}

func TestSchedulerClockTicksIgnoredWhileTransportStopped(t *testing.T) {
	sched, keeper, _ := newTestScheduler()
	sched.PushClockTick(0)
	sched.PushClockTick(20833)
	sched.Tick(0)

	if keeper.TickInBeat() != 0 {
		t.Fatalf("TickInBeat() = %d, want 0 while transport stopped", keeper.TickInBeat())
	}
}

func TestSchedulerSnapshotReflectsKeeperState(t *testing.T) {
	sched, keeper, _ := newTestScheduler()
	keeper.SetSamplesPerBeat(22050)
	snap := sched.Snapshot()
	if snap.SamplesPerBeat != 22050 {
		t.Fatalf("SamplesPerBeat = %d, want 22050", snap.SamplesPerBeat)
	}
	if snap.BPM != 120 {
		t.Fatalf("BPM = %v, want 120", snap.BPM)
	}
}

func TestSchedulerEncoderReaderDrivesRegisteredMenus(t *testing.T) {
	sched, _, _ := newTestScheduler()
	reader := &fakeEncoderReader{}
	sched.SetEncoderReader(reader)

	var fired bool
	menu := NewEncoderMenu(0)
	menu.OnValueChange(func(int8) { fired = true })
	sched.RegisterEncoder(menu)

	sched.Tick(0)
	reader.positions[0] = stepsPerDetent
	sched.Tick(1)

	if !fired {
		t.Fatal("expected encoder movement to fire value-change callback")
	}
}
