package control

import (
	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/effects"
)

// StutterController is the most involved of the three controllers: it
// tracks FUNC-modifier state itself (the dispatcher forwards FUNC events
// to it directly, since FUNC has no engine of its own), decides whether
// a STUTTER press starts a capture (FUNC held) or triggers playback of
// an existing loop, and independently quantizes both the capture phase
// (CAPTURE_START/CAPTURE_END) and the playback phase (ONSET/LENGTH).
type StutterController struct {
	effect   *effects.Stutter
	quant    *Quantizer
	settings *Settings
	activity *Activity

	funcHeld     bool
	currentParam Parameter
	lastState    effects.StutterState
}

// NewStutterController wires a StutterController to its effect and
// shared collaborators.
func NewStutterController(effect *effects.Stutter, quant *Quantizer, settings *Settings, activity *Activity) *StutterController {
	return &StutterController{effect: effect, quant: quant, settings: settings, activity: activity}
}

func (c *StutterController) EffectID() command.EffectID { return command.EffectStutter }

func (c *StutterController) CurrentParameter() Parameter     { return c.currentParam }
func (c *StutterController) SetCurrentParameter(p Parameter) { c.currentParam = p }

// SetFuncHeld records the FUNC modifier's held state. Called by the
// dispatcher whenever it sees a command targeting command.EffectFunc,
// since FUNC has no engine of its own to route through the normal path.
func (c *StutterController) SetFuncHeld(held bool) { c.funcHeld = held }

// HandleButtonPress implements Controller. With FUNC held, a STUTTER
// press starts (or restarts) capture; without it, it triggers playback
// of whatever loop is already captured.
func (c *StutterController) HandleButtonPress(cmd command.Command) bool {
	if cmd.Target != command.EffectStutter {
		return false
	}
	if cmd.Kind != command.KindEnable && cmd.Kind != command.KindToggle {
		return false
	}

	if c.funcHeld {
		c.effect.SetStutterHeld(true)
		if c.effect.CaptureStartMode() == command.ModeFree {
			c.effect.BeginCapture()
		} else {
			c.effect.ScheduleCaptureStart(c.quant.OnsetSample(c.settings.LookaheadSamples()))
		}
		c.activity.SetLastActivated(command.EffectStutter)
		return true
	}

	if c.effect.State() == effects.IdleWithLoop {
		if c.effect.OnsetMode() == command.ModeFree {
			c.effect.BeginPlayback()
		} else {
			c.effect.SchedulePlaybackOnset(c.quant.OnsetSample(c.settings.LookaheadSamples()))
		}
		c.activity.SetLastActivated(command.EffectStutter)
	}
	return true
}

// HandleButtonRelease implements Controller, branching on which phase
// the engine is currently in.
func (c *StutterController) HandleButtonRelease(cmd command.Command) bool {
	if cmd.Target != command.EffectStutter {
		return false
	}
	if cmd.Kind != command.KindDisable {
		return false
	}

	now := c.quant.keeper.SamplePosition()
	switch c.effect.State() {
	case effects.WaitCaptureStart:
		c.effect.SetStutterHeld(false)
		c.effect.CancelCaptureStart()
	case effects.Capturing, effects.WaitCaptureEnd:
		c.effect.SetStutterHeld(false)
		if c.effect.CaptureEndMode() == command.ModeFree {
			c.effect.EndCapture()
		} else {
			c.effect.ScheduleCaptureEnd(now + uint64(c.quant.Duration()))
		}
	case effects.Playing, effects.WaitPlaybackLength:
		if c.effect.LengthMode() == command.ModeFree {
			c.effect.EndPlayback()
		} else {
			c.effect.SchedulePlaybackLength(now + uint64(c.quant.Duration()))
		}
	}
	return true
}

// HandleSetParam implements Controller, applying one of the four
// independent FREE/QUANTIZED mode bits.
func (c *StutterController) HandleSetParam(cmd command.Command) bool {
	if cmd.Target != command.EffectStutter || cmd.Kind != command.KindSetParam {
		return false
	}
	mode := command.Mode(cmd.Value)
	switch cmd.Param1 {
	case command.ParamLength:
		c.effect.SetLengthMode(mode)
	case command.ParamOnset:
		c.effect.SetOnsetMode(mode)
	case command.ParamCaptureStart:
		c.effect.SetCaptureStartMode(mode)
	case command.ParamCaptureEnd:
		c.effect.SetCaptureEndMode(mode)
	default:
		return false
	}
	return true
}

// UpdateVisualFeedback edge-detects state transitions the audio callback
// makes on its own (buffer-full, scheduled transitions) and keeps the
// activity tracker in sync.
func (c *StutterController) UpdateVisualFeedback(nowMillis uint64) {
	state := c.effect.State()
	if state != c.lastState {
		if state == effects.IdleNoLoop {
			c.activity.ClearIfCurrently(command.EffectStutter)
		} else {
			c.activity.SetLastActivated(command.EffectStutter)
		}
	}
	c.lastState = state
}
