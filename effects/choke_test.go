package effects

import (
	"testing"

	"github.com/tempograph/microloop/timing"
)

func newBlock(fill int16) Block {
	return Block{
		makeConst(fill),
		makeConst(fill),
	}
}

func makeConst(v int16) []int16 {
	b := make([]int16, timing.BlockSize)
	for i := range b {
		b[i] = v
	}
	return b
}

func newOutBlock() Block {
	return Block{make([]int16, timing.BlockSize), make([]int16, timing.BlockSize)}
}

func TestChokeStartsUnmuted(t *testing.T) {
	k := timing.New()
	c := NewChoke(k)
	in := newBlock(1000)
	out := newOutBlock()
	c.Process(in, out)
	if out[0][0] != 1000 {
		t.Fatalf("expected passthrough at full gain, got %d", out[0][0])
	}
}

func TestChokeEngageRampsToZero(t *testing.T) {
	k := timing.New()
	c := NewChoke(k)
	c.Engage()
	if !c.IsEnabled() {
		t.Fatal("expected IsEnabled true after Engage")
	}
	in := newBlock(1000)
	var last int16 = 1000
	// Ramp over ~132 samples; several blocks of 128 should reach 0.
	for i := 0; i < 3; i++ {
		out := newOutBlock()
		c.Process(in, out)
		if out[0][timing.BlockSize-1] > last {
			t.Fatalf("gain should be non-increasing while engaging")
		}
		last = out[0][timing.BlockSize-1]
	}
	if last != 0 {
		t.Fatalf("expected fully muted after ramp, got %d", last)
	}
}

func TestChokeReleaseRampsBackToFull(t *testing.T) {
	k := timing.New()
	c := NewChoke(k)
	c.Engage()
	in := newBlock(1000)
	for i := 0; i < 3; i++ {
		c.Process(in, newOutBlock())
	}
	c.Release()
	if c.IsEnabled() {
		t.Fatal("expected IsEnabled false after Release")
	}
	var out Block
	for i := 0; i < 3; i++ {
		out = newOutBlock()
		c.Process(in, out)
	}
	if out[0][timing.BlockSize-1] != 1000 {
		t.Fatalf("expected full volume after release ramp, got %d", out[0][timing.BlockSize-1])
	}
}

func TestChokeScheduledOnsetFiresWithinBlock(t *testing.T) {
	k := timing.New()
	c := NewChoke(k)
	// Onset scheduled to land inside the first block (samples [0,128)).
	c.ScheduleOnset(50)
	in := newBlock(1000)
	c.Process(in, newOutBlock())
	if !c.IsEnabled() {
		t.Fatal("expected choke engaged after scheduled onset fired")
	}
}

func TestChokeScheduledOnsetDoesNotFireEarly(t *testing.T) {
	k := timing.New()
	c := NewChoke(k)
	c.ScheduleOnset(10000) // far beyond the first block
	in := newBlock(1000)
	c.Process(in, newOutBlock())
	if c.IsEnabled() {
		t.Fatal("onset should not have fired yet")
	}
}

func TestChokeEngageRampsBothChannelsInLockstep(t *testing.T) {
	k := timing.New()
	c := NewChoke(k)
	c.Engage()
	in := newBlock(1000)
	out := newOutBlock()
	c.Process(in, out)
	for i := range out[0] {
		if out[0][i] != out[1][i] {
			t.Fatalf("channels diverged at sample %d: left=%d right=%d", i, out[0][i], out[1][i])
		}
	}
}

type fakeFadeSource struct{ ms float64 }

func (f *fakeFadeSource) FadeMS() float64 { return f.ms }

func TestChokeUsesWiredFadeSource(t *testing.T) {
	k := timing.New()
	c := NewChoke(k)
	c.SetFadeSource(&fakeFadeSource{ms: 0.1}) // much shorter than the 3ms default
	c.Engage()
	in := newBlock(1000)
	out := newOutBlock()
	c.Process(in, out)
	if out[0][timing.BlockSize-1] != 0 {
		t.Fatalf("expected fully muted within one block at a short fade time, got %d", out[0][timing.BlockSize-1])
	}
}

func TestChokeToggle(t *testing.T) {
	k := timing.New()
	c := NewChoke(k)
	c.Toggle()
	if !c.IsEnabled() {
		t.Fatal("expected engaged after first toggle")
	}
	c.Toggle()
	if c.IsEnabled() {
		t.Fatal("expected released after second toggle")
	}
}
