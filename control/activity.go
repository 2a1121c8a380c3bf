package control

import (
	"sync/atomic"

	"github.com/tempograph/microloop/command"
)

// Activity tracks which effect was most recently activated, the single
// piece of state the visual layer needs beyond the engines' own states.
// It is written by controllers (on button press, and on the edge where a
// quantized-onset controller notices its engine engaged on its own) and
// read every control-loop iteration to build a visual.State.
type Activity struct {
	last atomic.Uint32 // command.EffectID
}

// NewActivity returns an Activity with no effect activated.
func NewActivity() *Activity {
	return &Activity{}
}

// SetLastActivated records id as the most recently activated effect.
func (a *Activity) SetLastActivated(id command.EffectID) { a.last.Store(uint32(id)) }

// LastActivated returns the most recently activated effect, or
// command.EffectNone if none has been.
func (a *Activity) LastActivated() command.EffectID { return command.EffectID(a.last.Load()) }

// ClearIfCurrently resets LastActivated to EffectNone only if it
// currently equals id, so an unrelated effect's activation isn't
// clobbered by a stale auto-release edge check.
func (a *Activity) ClearIfCurrently(id command.EffectID) {
	a.last.CompareAndSwap(uint32(id), uint32(command.EffectNone))
}
