package device

import (
	"testing"

	"github.com/tempograph/microloop/visual"
)

func TestBitmapNameKnownAndUnknown(t *testing.T) {
	if got := bitmapName(visual.ChokeActive); got != "CHOKE ACTIVE" {
		t.Fatalf("bitmapName(ChokeActive) = %q", got)
	}
	if got := bitmapName(visual.BitmapID(250)); got != "BITMAP(250)" {
		t.Fatalf("bitmapName(250) = %q, want fallback", got)
	}
}

func TestTermDisplayDrainsQueueToNewest(t *testing.T) {
	d := NewTermDisplay()
	d.Show(visual.FreezeActive)
	d.Show(visual.ChokeActive)
	d.Show(visual.Default)

	d.PollAndRender()

	if d.queue.Size() != 0 {
		t.Fatalf("queue size = %d, want 0 after drain", d.queue.Size())
	}
	if d.last != visual.Default {
		t.Fatalf("last = %v, want Default (the newest pushed)", d.last)
	}
}

func TestTermDisplayIgnoresEmptyQueue(t *testing.T) {
	d := NewTermDisplay()
	d.PollAndRender() // should not panic with nothing queued
	if d.shown {
		t.Fatal("expected shown to remain false with nothing ever queued")
	}
}
