package control

import (
	"log"

	"github.com/tempograph/microloop/command"
)

// switchable is the minimal shape the dispatcher's default fallback
// needs from an engine: CHOKE and FREEZE satisfy it directly. STUTTER
// does not — its controller always fully intercepts every command
// targeting it, so it never reaches the fallback path.
type switchable interface {
	Toggle()
	Engage()
	Release()
	IsEnabled() bool
}

// Dispatcher is the command plane's two-layer entry point: each
// registered controller gets first look at a command targeting its
// effect, and unhandled TOGGLE/ENABLE/DISABLE commands fall back to the
// target engine's default behavior. SET_PARAM is only ever consumed by a
// controller; there is no default meaning for it.
type Dispatcher struct {
	controllers map[command.EffectID]Controller
	engines     map[command.EffectID]switchable
	activity    *Activity
	stutter     *StutterController
}

// NewDispatcher returns an empty Dispatcher. Register effects with
// RegisterEffect before calling Execute.
func NewDispatcher(activity *Activity, stutter *StutterController) *Dispatcher {
	return &Dispatcher{
		controllers: make(map[command.EffectID]Controller),
		engines:     make(map[command.EffectID]switchable),
		activity:    activity,
		stutter:     stutter,
	}
}

// RegisterEffect wires a controller and, for effects with default
// toggle/enable/disable semantics, its underlying engine. A second
// registration for an id already registered is logged and ignored.
func (d *Dispatcher) RegisterEffect(id command.EffectID, ctrl Controller, engine switchable) {
	if _, dup := d.controllers[id]; dup {
		log.Printf("control: effect %v already registered, ignoring duplicate registration", id)
		return
	}
	d.controllers[id] = ctrl
	if engine != nil {
		d.engines[id] = engine
	}
}

// Execute routes cmd through controller interception and, failing that,
// default dispatch. Unrecognized command kinds and unregistered targets
// are logged and discarded — no error path is fatal to the control loop.
func (d *Dispatcher) Execute(cmd command.Command) {
	if cmd.Kind == command.KindNone {
		return
	}

	if cmd.Target == command.EffectFunc {
		if d.stutter != nil {
			d.stutter.SetFuncHeld(cmd.Kind == command.KindEnable)
		}
		return
	}

	if ctrl, ok := d.controllers[cmd.Target]; ok {
		handled := false
		switch cmd.Kind {
		case command.KindEnable, command.KindToggle:
			handled = ctrl.HandleButtonPress(cmd)
		case command.KindDisable:
			handled = ctrl.HandleButtonRelease(cmd)
		case command.KindSetParam:
			handled = ctrl.HandleSetParam(cmd)
		default:
			log.Printf("control: unrecognized command kind %d for %s, discarding", cmd.Kind, cmd.Target)
			return
		}
		if handled {
			return
		}
	}

	engine, ok := d.engines[cmd.Target]
	if !ok {
		log.Printf("control: no effect registered for target %s, discarding command", cmd.Target)
		return
	}

	switch cmd.Kind {
	case command.KindToggle:
		engine.Toggle()
	case command.KindEnable:
		engine.Engage()
	case command.KindDisable:
		engine.Release()
	default:
		log.Printf("control: command kind %d has no default handling for %s, discarding", cmd.Kind, cmd.Target)
		return
	}

	if engine.IsEnabled() {
		d.activity.SetLastActivated(cmd.Target)
	} else {
		d.activity.ClearIfCurrently(cmd.Target)
	}
}
