package control

import (
	"testing"

	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/effects"
	"github.com/tempograph/microloop/timing"
)

func newChokeController() (*ChokeController, *effects.Choke, *timing.Keeper) {
	keeper := timing.New()
	effect := effects.NewChoke(keeper)
	quant := NewQuantizer(keeper)
	settings := NewSettings()
	activity := NewActivity()
	return NewChokeController(effect, quant, settings, activity), effect, keeper
}

func TestChokeControllerFreeOnsetEngagesImmediately(t *testing.T) {
	c, effect, _ := newChokeController()
	cmd := command.Command{Kind: command.KindEnable, Target: command.EffectChoke}

	if !c.HandleButtonPress(cmd) {
		t.Fatal("expected HandleButtonPress to report handled")
	}
	if !effect.IsEnabled() {
		t.Fatal("expected choke to be engaged")
	}
	if got := c.activity.LastActivated(); got != command.EffectChoke {
		t.Fatalf("activity = %v, want EffectChoke", got)
	}
}

func TestChokeControllerQuantizedOnsetSchedulesInstead(t *testing.T) {
	c, effect, _ := newChokeController()
	c.effect.SetOnsetMode(command.ModeQuantized)
	cmd := command.Command{Kind: command.KindEnable, Target: command.EffectChoke}

	if !c.HandleButtonPress(cmd) {
		t.Fatal("expected HandleButtonPress to report handled")
	}
	if effect.IsEnabled() {
		t.Fatal("expected choke not yet engaged before schedule fires")
	}
}

func TestChokeControllerReleaseFallsThroughWhenLengthFree(t *testing.T) {
	c, _, _ := newChokeController()
	cmd := command.Command{Kind: command.KindDisable, Target: command.EffectChoke}
	if c.HandleButtonRelease(cmd) {
		t.Fatal("expected FREE-length release to fall through to default dispatch")
	}
}

func TestChokeControllerReleaseAbsorbedWhenLengthQuantized(t *testing.T) {
	c, _, _ := newChokeController()
	c.effect.SetLengthMode(command.ModeQuantized)
	cmd := command.Command{Kind: command.KindDisable, Target: command.EffectChoke}
	if !c.HandleButtonRelease(cmd) {
		t.Fatal("expected QUANTIZED-length release to be absorbed")
	}
}

func TestChokeControllerHandleSetParam(t *testing.T) {
	c, effect, _ := newChokeController()
	cmd := command.Command{
		Kind:   command.KindSetParam,
		Target: command.EffectChoke,
		Param1: command.ParamOnset,
		Value:  uint32(command.ModeQuantized),
	}
	if !c.HandleSetParam(cmd) {
		t.Fatal("expected HandleSetParam to report handled")
	}
	if effect.OnsetMode() != command.ModeQuantized {
		t.Fatal("expected onset mode to be updated")
	}
}

func TestChokeControllerIgnoresOtherTargets(t *testing.T) {
	c, _, _ := newChokeController()
	cmd := command.Command{Kind: command.KindEnable, Target: command.EffectFreeze}
	if c.HandleButtonPress(cmd) {
		t.Fatal("expected controller to ignore commands not targeting choke")
	}
}

func TestChokeControllerUpdateVisualFeedbackTracksEdges(t *testing.T) {
	c, effect, _ := newChokeController()
	c.UpdateVisualFeedback(0)
	if got := c.activity.LastActivated(); got != command.EffectNone {
		t.Fatalf("activity = %v, want EffectNone before engagement", got)
	}

	effect.Engage()
	c.UpdateVisualFeedback(1)
	if got := c.activity.LastActivated(); got != command.EffectChoke {
		t.Fatalf("activity = %v, want EffectChoke after engage edge", got)
	}

	effect.Release()
	c.UpdateVisualFeedback(2)
	if got := c.activity.LastActivated(); got != command.EffectNone {
		t.Fatalf("activity = %v, want EffectNone after release edge", got)
	}
}
