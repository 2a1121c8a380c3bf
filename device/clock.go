package device

import (
	"context"
	"time"

	"github.com/tempograph/microloop/control"
)

// ClockSource is the narrow contract for the external clock parser
// collaborator: it pushes transport events and clock-tick timestamps
// onto the scheduler's input queues. Nothing downstream cares whether
// ticks came from real MIDI hardware or a generated metronome.
type ClockSource interface {
	Run(ctx context.Context)
}

// SoftClock is an internal metronome standing in for external MIDI clock
// hardware, which this environment has no driver for. It emits a single
// START at startup and then a steady stream of 24-PPQN ticks paced to a
// configured BPM.
type SoftClock struct {
	scheduler *control.Scheduler
	bpm       float64
}

const clockPPQN = 24

// NewSoftClock returns a SoftClock that will drive scheduler at bpm once
// Run is called.
func NewSoftClock(scheduler *control.Scheduler, bpm float64) *SoftClock {
	return &SoftClock{scheduler: scheduler, bpm: bpm}
}

// Run blocks, emitting START immediately and then one clock tick every
// tickPeriod until ctx is canceled. Each tick is timestamped with a
// microsecond counter derived from the run's own start time, close
// enough for the scheduler's EMA period smoothing to lock onto.
func (c *SoftClock) Run(ctx context.Context) {
	c.scheduler.PushTransportEvent(control.TransportStart)

	tickPeriod := time.Duration(60_000_000_000/(c.bpm*clockPPQN)) * time.Nanosecond
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	epoch := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.scheduler.PushClockTick(uint32(time.Since(epoch).Microseconds()))
		}
	}
}

// SetBPM changes the metronome's tempo. Takes effect on the next Run
// call; SoftClock does not support retuning a running ticker.
func (c *SoftClock) SetBPM(bpm float64) { c.bpm = bpm }
