package device

import (
	"testing"

	"github.com/tempograph/microloop/visual"
)

func TestTermLEDsSetKeyDedupesUnchangedColor(t *testing.T) {
	l := NewTermLEDs()
	l.SetKey(visual.KeyChoke, visual.Red)
	if !l.haveLast[visual.KeyChoke] || l.last[visual.KeyChoke] != visual.Red {
		t.Fatal("expected KeyChoke cached as Red after first SetKey")
	}
	l.SetKey(visual.KeyChoke, visual.Red) // no-op, should not panic or change cache
	if l.last[visual.KeyChoke] != visual.Red {
		t.Fatal("expected KeyChoke to remain Red")
	}
}

func TestTermLEDsSetKeyOutOfRangeIsNoop(t *testing.T) {
	l := NewTermLEDs()
	l.SetKey(visual.Key(99), visual.Red) // must not panic on an out-of-range key
}

func TestTermLEDsSetBeatLEDTracksState(t *testing.T) {
	l := NewTermLEDs()
	l.SetBeatLED(true)
	if !l.haveBeat || !l.beatOn {
		t.Fatal("expected beat state true after SetBeatLED(true)")
	}
	l.SetBeatLED(false)
	if l.beatOn {
		t.Fatal("expected beat state false after SetBeatLED(false)")
	}
}
