package control

// EncoderMenu debounces a raw quadrature position into discrete detent
// steps and drives a short-lived "touched" window used to show a
// parameter's current value on the display before falling back to the
// default screen.
//
// stepsPerDetent is 4: one detent of hysteresis before a step registers.
type EncoderMenu struct {
	index int

	lastPosition int32
	accumulator  int32

	touched        bool
	touchedUntilMS uint64

	onValueChange func(delta int8)
	onButtonPress func()
	onDisplay     func(touched bool)
}

const (
	stepsPerDetent    = 4
	displayCooldownMS = 2000
)

// NewEncoderMenu returns an EncoderMenu for the given hardware encoder index.
func NewEncoderMenu(index int) *EncoderMenu {
	return &EncoderMenu{index: index}
}

// OnValueChange registers the callback fired once per detent crossed,
// with delta being +1 or -1; crossing several detents between polls
// fires it once per detent.
func (e *EncoderMenu) OnValueChange(fn func(delta int8)) { e.onValueChange = fn }

// OnButtonPress registers the callback fired when the encoder's
// integrated pushbutton is pressed.
func (e *EncoderMenu) OnButtonPress(fn func()) { e.onButtonPress = fn }

// OnDisplayUpdate registers the callback fired whenever the touched
// window opens or closes, so the caller can show the live parameter
// value and later return to the default screen.
func (e *EncoderMenu) OnDisplayUpdate(fn func(touched bool)) { e.onDisplay = fn }

// IsTouched reports whether the encoder was turned recently enough that
// its parameter should still be shown instead of the default screen.
func (e *EncoderMenu) IsTouched() bool { return e.touched }

// ResetPosition re-baselines the raw position tracking, e.g. after a
// hardware reset, without emitting a spurious value-change callback.
func (e *EncoderMenu) ResetPosition(rawPosition int32) {
	e.lastPosition = rawPosition
	e.accumulator = 0
}

// Update should be called once per control-loop iteration with the
// encoder's current raw quadrature position, whether its button is
// currently pressed, and the current monotonic millisecond clock. It
// converts accumulated quadrature steps into detent-sized value-change
// callbacks and manages the touched/cooldown window.
func (e *EncoderMenu) Update(rawPosition int32, buttonPressed bool, nowMS uint64) {
	delta := rawPosition - e.lastPosition
	e.lastPosition = rawPosition
	if delta != 0 {
		e.accumulator += delta
		e.markTouched(nowMS)
	}

	for e.accumulator >= stepsPerDetent {
		e.accumulator -= stepsPerDetent
		e.fireValueChange(1)
	}
	for e.accumulator <= -stepsPerDetent {
		e.accumulator += stepsPerDetent
		e.fireValueChange(-1)
	}

	if buttonPressed {
		e.markTouched(nowMS)
		if e.onButtonPress != nil {
			e.onButtonPress()
		}
	}

	if e.touched && nowMS >= e.touchedUntilMS {
		e.touched = false
		if e.onDisplay != nil {
			e.onDisplay(false)
		}
	}
}

func (e *EncoderMenu) fireValueChange(delta int8) {
	if e.onValueChange != nil {
		e.onValueChange(delta)
	}
}

func (e *EncoderMenu) markTouched(nowMS uint64) {
	wasTouched := e.touched
	e.touched = true
	e.touchedUntilMS = nowMS + displayCooldownMS
	if !wasTouched && e.onDisplay != nil {
		e.onDisplay(true)
	}
}
