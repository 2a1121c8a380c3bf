package effects

import (
	"testing"

	"github.com/tempograph/microloop/timing"
)

func TestScheduleWithinBlockZeroMeansNone(t *testing.T) {
	if scheduleWithinBlock(0, 1000) {
		t.Fatal("0 should never be considered scheduled")
	}
}

func TestScheduleWithinBlockBoundaries(t *testing.T) {
	pos := uint64(1000)
	if !scheduleWithinBlock(pos, pos) {
		t.Fatal("exact block start should fire")
	}
	if !scheduleWithinBlock(pos+timing.BlockSize-1, pos) {
		t.Fatal("last sample of block should fire")
	}
	if scheduleWithinBlock(pos+timing.BlockSize, pos) {
		t.Fatal("first sample of next block should not fire yet")
	}
	if scheduleWithinBlock(pos-1, pos) {
		t.Fatal("a sample already passed should not fire")
	}
}

func TestSaturateClampsToInt16Range(t *testing.T) {
	if got := saturate(40000); got != 32767 {
		t.Fatalf("saturate(40000) = %d, want 32767", got)
	}
	if got := saturate(-40000); got != -32768 {
		t.Fatalf("saturate(-40000) = %d, want -32768", got)
	}
	if got := saturate(1234); got != 1234 {
		t.Fatalf("saturate(1234) = %d, want 1234", got)
	}
}

func TestChainProcessAdvancesTimeline(t *testing.T) {
	k := timing.New()
	c := NewChain(k)
	before := k.SamplePosition()
	c.Process(newBlock(100), newOutBlock())
	if k.SamplePosition() != before+timing.BlockSize {
		t.Fatalf("sample position advanced by %d, want %d", k.SamplePosition()-before, timing.BlockSize)
	}
}

func TestChainPassthroughWhenAllEffectsIdle(t *testing.T) {
	k := timing.New()
	c := NewChain(k)
	out := newOutBlock()
	c.Process(newBlock(321), out)
	if out[0][0] != 321 || out[1][0] != 321 {
		t.Fatalf("expected passthrough with all effects idle, got %d/%d", out[0][0], out[1][0])
	}
}

func TestChainChokeMutesEndToEnd(t *testing.T) {
	k := timing.New()
	c := NewChain(k)
	c.Choke.Engage()
	var out Block
	for i := 0; i < 3; i++ {
		out = newOutBlock()
		c.Process(newBlock(1000), out)
	}
	if out[0][timing.BlockSize-1] != 0 {
		t.Fatalf("expected choke to have muted the chain output, got %d", out[0][timing.BlockSize-1])
	}
}

func TestChainProcessShortInputEmitsSilenceNotCapturedLoop(t *testing.T) {
	k := timing.New()
	c := NewChain(k)
	c.Freeze.Engage()
	for i := 0; i < 3; i++ {
		c.Process(newBlock(777), newOutBlock())
	}

	short := Block{
		make([]int16, timing.BlockSize-1),
		make([]int16, timing.BlockSize-1),
	}
	before := k.SamplePosition()
	out := newOutBlock()
	c.Process(short, out)

	if k.SamplePosition() != before+timing.BlockSize {
		t.Fatalf("timeline must still advance on a short input block, got %d, want %d", k.SamplePosition(), before+timing.BlockSize)
	}
	for ch := range out {
		for i, v := range out[ch] {
			if v != 0 {
				t.Fatalf("expected silence on short input block, got out[%d][%d] = %d", ch, i, v)
			}
		}
	}
}

func TestChainProcessMissingInputEmitsSilence(t *testing.T) {
	k := timing.New()
	c := NewChain(k)
	out := newOutBlock()
	c.Process(Block{nil, nil}, out)
	for ch := range out {
		for i, v := range out[ch] {
			if v != 0 {
				t.Fatalf("expected silence on missing input block, got out[%d][%d] = %d", ch, i, v)
			}
		}
	}
}

func TestChainEnginesReturnsAllThreeInPatchOrder(t *testing.T) {
	k := timing.New()
	c := NewChain(k)
	engines := c.Engines()
	if engines[0].Name() != "stutter" || engines[1].Name() != "freeze" || engines[2].Name() != "choke" {
		t.Fatalf("unexpected engine order: %s, %s, %s", engines[0].Name(), engines[1].Name(), engines[2].Name())
	}
}
