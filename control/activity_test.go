package control

import (
	"testing"

	"github.com/tempograph/microloop/command"
)

func TestActivityDefaultsToNone(t *testing.T) {
	a := NewActivity()
	if got := a.LastActivated(); got != command.EffectNone {
		t.Fatalf("LastActivated() = %v, want EffectNone", got)
	}
}

func TestActivitySetAndGet(t *testing.T) {
	a := NewActivity()
	a.SetLastActivated(command.EffectChoke)
	if got := a.LastActivated(); got != command.EffectChoke {
		t.Fatalf("LastActivated() = %v, want EffectChoke", got)
	}
}

func TestActivityClearIfCurrentlyOnlyClearsMatchingEffect(t *testing.T) {
	a := NewActivity()
	a.SetLastActivated(command.EffectFreeze)

	a.ClearIfCurrently(command.EffectChoke)
	if got := a.LastActivated(); got != command.EffectFreeze {
		t.Fatalf("LastActivated() = %v, want EffectFreeze unchanged", got)
	}

	a.ClearIfCurrently(command.EffectFreeze)
	if got := a.LastActivated(); got != command.EffectNone {
		t.Fatalf("LastActivated() = %v, want EffectNone after clear", got)
	}
}
