package control

import (
	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/effects"
)

// FreezeController mirrors ChokeController's onset/length branching for
// the FREEZE effect: FREE onset engages (capturing readPos) immediately;
// QUANTIZED onset arms a lookahead-adjusted schedule.
type FreezeController struct {
	effect   *effects.Freeze
	quant    *Quantizer
	settings *Settings
	activity *Activity

	currentParam Parameter
	wasEngaged   bool
}

// NewFreezeController wires a FreezeController to its effect and shared
// collaborators.
func NewFreezeController(effect *effects.Freeze, quant *Quantizer, settings *Settings, activity *Activity) *FreezeController {
	return &FreezeController{effect: effect, quant: quant, settings: settings, activity: activity}
}

func (c *FreezeController) EffectID() command.EffectID { return command.EffectFreeze }

func (c *FreezeController) CurrentParameter() Parameter     { return c.currentParam }
func (c *FreezeController) SetCurrentParameter(p Parameter) { c.currentParam = p }

// HandleButtonPress implements Controller.
func (c *FreezeController) HandleButtonPress(cmd command.Command) bool {
	if cmd.Target != command.EffectFreeze {
		return false
	}
	if cmd.Kind != command.KindEnable && cmd.Kind != command.KindToggle {
		return false
	}

	if c.effect.OnsetMode() == command.ModeFree {
		c.effect.Engage()
		if c.effect.LengthMode() == command.ModeQuantized {
			c.effect.ScheduleRelease(c.quant.keeper.SamplePosition() + uint64(c.quant.Duration()))
		}
		c.activity.SetLastActivated(command.EffectFreeze)
		c.wasEngaged = true
		return true
	}

	onsetSample := c.quant.OnsetSample(c.settings.LookaheadSamples())
	c.effect.ScheduleOnset(onsetSample)
	if c.effect.LengthMode() == command.ModeQuantized {
		c.effect.ScheduleRelease(onsetSample + uint64(c.quant.Duration()))
	}
	return true
}

// HandleButtonRelease implements Controller.
func (c *FreezeController) HandleButtonRelease(cmd command.Command) bool {
	if cmd.Target != command.EffectFreeze {
		return false
	}
	if cmd.Kind != command.KindDisable {
		return false
	}
	if c.effect.LengthMode() == command.ModeQuantized {
		return true
	}
	c.effect.ScheduleOnset(0)
	return false
}

// HandleSetParam implements Controller, applying LENGTH/ONSET mode bits.
func (c *FreezeController) HandleSetParam(cmd command.Command) bool {
	if cmd.Target != command.EffectFreeze || cmd.Kind != command.KindSetParam {
		return false
	}
	mode := command.Mode(cmd.Value)
	switch cmd.Param1 {
	case command.ParamLength:
		c.effect.SetLengthMode(mode)
	case command.ParamOnset:
		c.effect.SetOnsetMode(mode)
	default:
		return false
	}
	return true
}

// UpdateVisualFeedback keeps the activity tracker in sync with edges the
// audio callback produces on its own via a scheduled transition.
func (c *FreezeController) UpdateVisualFeedback(nowMillis uint64) {
	engaged := c.effect.IsEnabled()
	if engaged && !c.wasEngaged {
		c.activity.SetLastActivated(command.EffectFreeze)
	}
	if !engaged && c.wasEngaged {
		c.activity.ClearIfCurrently(command.EffectFreeze)
	}
	c.wasEngaged = engaged
}
