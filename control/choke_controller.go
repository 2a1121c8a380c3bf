package control

import (
	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/effects"
)

// ChokeController translates button and encoder events into scheduling
// calls on a *effects.Choke, branching on its onset/length quantization
// modes exactly as the audio effect controllers do for every effect:
// FREE onset engages immediately; QUANTIZED onset arms a block-accurate
// schedule pulled earlier by the lookahead offset.
type ChokeController struct {
	effect   *effects.Choke
	quant    *Quantizer
	settings *Settings
	activity *Activity

	currentParam Parameter
	wasEngaged   bool
}

// NewChokeController wires a ChokeController to its effect, the shared
// quantizer, settings, and activity tracker.
func NewChokeController(effect *effects.Choke, quant *Quantizer, settings *Settings, activity *Activity) *ChokeController {
	return &ChokeController{effect: effect, quant: quant, settings: settings, activity: activity}
}

func (c *ChokeController) EffectID() command.EffectID { return command.EffectChoke }

// CurrentParameter returns which mode the CHOKE encoder is currently
// editing.
func (c *ChokeController) CurrentParameter() Parameter { return c.currentParam }

// SetCurrentParameter is called by the CHOKE encoder's button-press
// callback to cycle between LENGTH and ONSET.
func (c *ChokeController) SetCurrentParameter(p Parameter) { c.currentParam = p }

// HandleButtonPress implements Controller.
func (c *ChokeController) HandleButtonPress(cmd command.Command) bool {
	if cmd.Target != command.EffectChoke {
		return false
	}
	if cmd.Kind != command.KindEnable && cmd.Kind != command.KindToggle {
		return false
	}

	if c.effect.OnsetMode() == command.ModeFree {
		c.effect.Engage()
		if c.effect.LengthMode() == command.ModeQuantized {
			c.effect.ScheduleRelease(c.currentSample() + uint64(c.quant.Duration()))
		}
		c.activity.SetLastActivated(command.EffectChoke)
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
func (c *ChokeController) HandleButtonRelease(cmd command.Command) bool {
	if cmd.Target != command.EffectChoke {
		return false
	}
	if cmd.Kind != command.KindDisable {
		return false
	}
	if c.effect.LengthMode() == command.ModeQuantized {
		return true // auto-releases on schedule; ignore the button-up
	}
	c.effect.ScheduleOnset(0) // cancel a not-yet-fired quantized onset
	return false              // fall through to the dispatcher's default disable
}

// HandleSetParam implements Controller, applying LENGTH/ONSET mode bits.
func (c *ChokeController) HandleSetParam(cmd command.Command) bool {
	if cmd.Target != command.EffectChoke || cmd.Kind != command.KindSetParam {
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

// UpdateVisualFeedback detects the edges a quantized onset/release
// produces on its own (without a button event driving them) and keeps
// the activity tracker in sync.
func (c *ChokeController) UpdateVisualFeedback(nowMillis uint64) {
	engaged := c.effect.IsEnabled()
	if engaged && !c.wasEngaged {
		c.activity.SetLastActivated(command.EffectChoke)
	}
	if !engaged && c.wasEngaged {
		c.activity.ClearIfCurrently(command.EffectChoke)
	}
	c.wasEngaged = engaged
}

func (c *ChokeController) currentSample() uint64 {
	return c.quant.keeper.SamplePosition()
}
