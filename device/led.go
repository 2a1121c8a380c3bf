package device

import (
	"github.com/fatih/color"

	"github.com/tempograph/microloop/visual"
)

// LEDs is the narrow contract for the four momentary-button LEDs plus
// the beat LED.
type LEDs interface {
	SetKey(key visual.Key, c visual.LEDColor)
	SetBeatLED(on bool)
}

var keyLabels = map[visual.Key]string{
	visual.KeyFreeze:  "FREEZE",
	visual.KeyChoke:   "CHOKE",
	visual.KeyStutter: "STUTTER",
	visual.KeyFunc:    "FUNC",
}

// TermLEDs renders each key's LED color as a colored terminal glyph, one
// line per state change, and the beat LED as a bare on/off line, using
// fatih/color's package-level print convention (color.<Name>(format,
// args...) prints directly). State is cached per key so unchanged colors
// don't reprint every control tick.
type TermLEDs struct {
	last     [4]visual.LEDColor
	haveLast [4]bool
	beatOn   bool
	haveBeat bool
}

// NewTermLEDs returns a TermLEDs with no cached state, so the first
// SetKey/SetBeatLED call for each LED always renders.
func NewTermLEDs() *TermLEDs {
	return &TermLEDs{}
}

// SetKey renders key's new color if it differs from the last one shown.
func (l *TermLEDs) SetKey(key visual.Key, c visual.LEDColor) {
	if int(key) >= len(l.last) {
		return
	}
	if l.haveLast[key] && l.last[key] == c {
		return
	}
	l.last[key], l.haveLast[key] = c, true
	printLED(keyLabels[key], c)
}

// SetBeatLED renders the beat LED's on/off transition.
func (l *TermLEDs) SetBeatLED(on bool) {
	if l.haveBeat && l.beatOn == on {
		return
	}
	l.beatOn, l.haveBeat = on, true
	if on {
		color.White("[led] BEAT *")
	} else {
		color.White("[led] BEAT .")
	}
}

func printLED(label string, c visual.LEDColor) {
	switch c {
	case visual.Red:
		color.Red("[led] %-7s ●", label)
	case visual.Green:
		color.Green("[led] %-7s ●", label)
	case visual.Blue:
		color.Blue("[led] %-7s ●", label)
	case visual.White:
		color.White("[led] %-7s ●", label)
	case visual.Cyan:
		color.Cyan("[led] %-7s ●", label)
	default:
		color.White("[led] %-7s ○", label)
	}
}
