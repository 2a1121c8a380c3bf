// Package control implements the control-context (CC) side of the
// system: per-effect controllers that translate button and encoder
// events into effect scheduling calls, the command dispatch table that
// backstops them, the encoder parameter-editing menu, the settings
// registry, the trace ring backing the debug console, and the
// cooperative scheduler loop that ties all of it together each
// iteration.
package control

import "github.com/tempograph/microloop/command"

// Controller is the common shape of the three effect controllers. Each
// gets first look at a button command targeting its effect; returning
// true means it fully handled the command and the dispatch table should
// not also apply the default enable/disable/toggle behavior.
type Controller interface {
	EffectID() command.EffectID
	HandleButtonPress(cmd command.Command) bool
	HandleButtonRelease(cmd command.Command) bool
	HandleSetParam(cmd command.Command) bool
	UpdateVisualFeedback(nowMillis uint64)
}

// Parameter selects which of an effect's two or four mode bits an
// encoder is currently editing.
type Parameter uint8

const (
	ParamLength Parameter = iota
	ParamOnset
	ParamCaptureStart
	ParamCaptureEnd
)
