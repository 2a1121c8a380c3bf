package control

import (
	"testing"

	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/effects"
	"github.com/tempograph/microloop/timing"
)

func newFreezeController() (*FreezeController, *effects.Freeze) {
	keeper := timing.New()
	effect := effects.NewFreeze(keeper)
	quant := NewQuantizer(keeper)
	settings := NewSettings()
	activity := NewActivity()
	return NewFreezeController(effect, quant, settings, activity), effect
}

func TestFreezeControllerFreeOnsetEngagesImmediately(t *testing.T) {
	c, effect := newFreezeController()
	cmd := command.Command{Kind: command.KindEnable, Target: command.EffectFreeze}

	if !c.HandleButtonPress(cmd) {
		t.Fatal("expected HandleButtonPress to report handled")
	}
	if !effect.IsEnabled() {
		t.Fatal("expected freeze to be engaged")
	}
}

func TestFreezeControllerQuantizedOnsetDefersEngage(t *testing.T) {
	c, effect := newFreezeController()
	c.effect.SetOnsetMode(command.ModeQuantized)
	cmd := command.Command{Kind: command.KindEnable, Target: command.EffectFreeze}

	if !c.HandleButtonPress(cmd) {
		t.Fatal("expected HandleButtonPress to report handled")
	}
	if effect.IsEnabled() {
		t.Fatal("expected freeze not yet engaged before schedule fires")
	}
}

func TestFreezeControllerReleaseFallsThroughWhenLengthFree(t *testing.T) {
	c, _ := newFreezeController()
	cmd := command.Command{Kind: command.KindDisable, Target: command.EffectFreeze}
	if c.HandleButtonRelease(cmd) {
		t.Fatal("expected FREE-length release to fall through")
	}
}

func TestFreezeControllerReleaseAbsorbedWhenLengthQuantized(t *testing.T) {
	c, _ := newFreezeController()
	c.effect.SetLengthMode(command.ModeQuantized)
	cmd := command.Command{Kind: command.KindDisable, Target: command.EffectFreeze}
	if !c.HandleButtonRelease(cmd) {
		t.Fatal("expected QUANTIZED-length release to be absorbed")
	}
}

func TestFreezeControllerHandleSetParam(t *testing.T) {
	c, effect := newFreezeController()
	cmd := command.Command{
		Kind:   command.KindSetParam,
		Target: command.EffectFreeze,
		Param1: command.ParamLength,
		Value:  uint32(command.ModeQuantized),
	}
	if !c.HandleSetParam(cmd) {
		t.Fatal("expected HandleSetParam to report handled")
	}
	if effect.LengthMode() != command.ModeQuantized {
		t.Fatal("expected length mode to be updated")
	}
}

func TestFreezeControllerUpdateVisualFeedbackTracksEdges(t *testing.T) {
	c, effect := newFreezeController()
	effect.Engage()
	c.UpdateVisualFeedback(0)
	if got := c.activity.LastActivated(); got != command.EffectFreeze {
		t.Fatalf("activity = %v, want EffectFreeze", got)
	}
	effect.Release()
	c.UpdateVisualFeedback(1)
	if got := c.activity.LastActivated(); got != command.EffectNone {
		t.Fatalf("activity = %v, want EffectNone", got)
	}
}
