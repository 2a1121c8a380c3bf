package control

import (
	"github.com/tempograph/microloop/effects"
	"github.com/tempograph/microloop/visual"
)

// BitmapSink is the narrow contract the display collaborator exposes to
// the control loop: push a bitmap id, the device renders it however it
// can.
type BitmapSink interface {
	Show(id visual.BitmapID)
}

// KeyLEDSink is the narrow contract for the four momentary-button LEDs,
// kept separate from BeatLED since the beat pulse and the per-key colors
// are driven by different parts of the tick.
type KeyLEDSink interface {
	SetKey(key visual.Key, c visual.LEDColor)
}

// VisualFeedback recomputes visual.Compute each tick from the three
// effect engines and the activity tracker, and forwards the result to
// whatever display/LED sinks are wired. Kept as its own type rather than
// folded into Scheduler so the pure visual.Compute call and its wiring
// are easy to test independently of the timing/clock machinery.
type VisualFeedback struct {
	choke   *effects.Choke
	freeze  *effects.Freeze
	stutter *effects.Stutter

	activity *Activity
	display  BitmapSink
	leds     KeyLEDSink
}

// NewVisualFeedback wires the three effect engines and the activity
// tracker that visual.Compute needs. display and leds are set separately
// via SetDisplay/SetKeyLEDs so a headless build can skip both.
func NewVisualFeedback(choke *effects.Choke, freeze *effects.Freeze, stutter *effects.Stutter, activity *Activity) *VisualFeedback {
	return &VisualFeedback{choke: choke, freeze: freeze, stutter: stutter, activity: activity}
}

// SetDisplay wires the bitmap sink.
func (v *VisualFeedback) SetDisplay(d BitmapSink) { v.display = d }

// SetKeyLEDs wires the per-key LED sink.
func (v *VisualFeedback) SetKeyLEDs(l KeyLEDSink) { v.leds = l }

// Update computes the current visual.Feedback and forwards it to the
// wired sinks. A no-op if neither sink is set.
func (v *VisualFeedback) Update(nowMillis uint64) {
	if v.display == nil && v.leds == nil {
		return
	}
	feedback := visual.Compute(visual.State{
		ChokeEnabled:  v.choke.IsEnabled(),
		FreezeEnabled: v.freeze.IsEnabled(),
		StutterState:  v.stutter.State(),
		LastActivated: v.activity.LastActivated(),
		NowMillis:     nowMillis,
	})
	if v.display != nil {
		v.display.Show(feedback.Bitmap)
	}
	if v.leds != nil {
		for key, color := range feedback.LEDs {
			v.leds.SetKey(visual.Key(key), color)
		}
	}
}
