// Package visual computes the deterministic mapping from effect engine
// states to a bitmap id and per-key LED colors. It is pure: nothing here
// touches a device, an atomic word, or a clock beyond the millisecond
// timestamp passed in by the caller for blink cadence.
package visual

import (
	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/effects"
)

// BitmapID selects the bitmap the control loop should push to the
// display, stable across releases so a bitmap asset table built against
// it carries over unchanged.
type BitmapID uint8

const (
	Default BitmapID = iota
	FreezeActive
	ChokeActive
	Quant32Bitmap
	Quant16Bitmap
	Quant8Bitmap
	Quant4Bitmap
	ChokeLengthFree
	ChokeLengthQuant
	ChokeOnsetFree
	ChokeOnsetQuant
	FreezeLengthFree
	FreezeLengthQuant
	FreezeOnsetFree
	FreezeOnsetQuant
	StutterIdleWithLoop
	StutterCapturing
	StutterPlaying
	StutterOnsetFree
	StutterOnsetQuant
	StutterLengthFree
	StutterLengthQuant
	StutterCaptureStartFree
	StutterCaptureStartQuant
	StutterCaptureEndFree
	StutterCaptureEndQuant
)

// LEDColor is one of the fixed colors a status LED can show.
type LEDColor uint8

const (
	Off LEDColor = iota
	Green
	Red
	Blue
	White
	Cyan
)

// Key names the four momentary LEDs above the FREEZE, CHOKE, STUTTER,
// and FUNC buttons.
type Key uint8

const (
	KeyFreeze Key = iota
	KeyChoke
	KeyStutter
	KeyFunc
	numKeys
)

// blinkPeriodMS is the half-period of the 4Hz (250ms on/off) blink used
// for WAIT_CAPTURE_START and WAIT_PLAYBACK_ONSET.
const blinkPeriodMS = 250

// State is the read-only snapshot of engine states the visual layer
// needs; the control loop builds one each iteration from the live
// engines without exposing them directly to this package.
type State struct {
	ChokeEnabled   bool
	FreezeEnabled  bool
	StutterState   effects.StutterState
	LastActivated  command.EffectID
	NowMillis      uint64
}

// Feedback is the computed output: one bitmap for the display and one
// color per key.
type Feedback struct {
	Bitmap BitmapID
	LEDs   [numKeys]LEDColor
}

// Compute derives the display bitmap and LED colors from the current
// engine states and the last-activated effect. Last-activated wins; if
// it is no longer engaged, the next still-engaged effect (in FREEZE,
// CHOKE, STUTTER priority) is shown; otherwise the default bitmap.
func Compute(s State) Feedback {
	f := Feedback{Bitmap: Default}
	f.LEDs[KeyFreeze] = Green
	f.LEDs[KeyChoke] = Green
	f.LEDs[KeyStutter] = stutterIdleColor(s.StutterState)
	f.LEDs[KeyFunc] = Green

	if s.ChokeEnabled {
		f.LEDs[KeyChoke] = Red
	}
	if s.FreezeEnabled {
		f.LEDs[KeyFreeze] = Cyan
	}
	blinkOn := (s.NowMillis/blinkPeriodMS)%2 == 0
	switch s.StutterState {
	case effects.WaitCaptureStart:
		if blinkOn {
			f.LEDs[KeyStutter] = Red
		} else {
			f.LEDs[KeyStutter] = Off
		}
	case effects.Capturing, effects.WaitCaptureEnd:
		f.LEDs[KeyStutter] = Red
	case effects.WaitPlaybackOnset:
		if blinkOn {
			f.LEDs[KeyStutter] = Blue
		} else {
			f.LEDs[KeyStutter] = Off
		}
	case effects.Playing, effects.WaitPlaybackLength:
		f.LEDs[KeyStutter] = Blue
	}

	f.Bitmap = bitmapFor(s, s.LastActivated)
	if f.Bitmap == Default {
		for _, id := range []command.EffectID{command.EffectFreeze, command.EffectChoke, command.EffectStutter} {
			if b := bitmapFor(s, id); b != Default {
				f.Bitmap = b
				break
			}
		}
	}
	return f
}

func stutterIdleColor(st effects.StutterState) LEDColor {
	if st == effects.IdleWithLoop {
		return White
	}
	return Green
}

// bitmapFor returns the bitmap for a single named effect if it is
// currently engaged, or Default if it is not.
func bitmapFor(s State, effect command.EffectID) BitmapID {
	switch effect {
	case command.EffectChoke:
		if s.ChokeEnabled {
			return ChokeActive
		}
	case command.EffectFreeze:
		if s.FreezeEnabled {
			return FreezeActive
		}
	case command.EffectStutter:
		return stutterBitmap(s.StutterState)
	}
	return Default
}

// stutterBitmap maps every non-idle-no-loop STUTTER state to a bitmap,
// collapsing the three "wait" states onto the bitmap of what they are
// waiting to become.
func stutterBitmap(st effects.StutterState) BitmapID {
	switch st {
	case effects.IdleWithLoop:
		return StutterIdleWithLoop
	case effects.WaitCaptureStart, effects.Capturing, effects.WaitCaptureEnd:
		return StutterCapturing
	case effects.WaitPlaybackOnset, effects.Playing, effects.WaitPlaybackLength:
		return StutterPlaying
	default:
		return Default
	}
}

// QuantizationBitmap maps a global quantization grid selection to its
// display bitmap, used when the FUNC+quantization-encoder combo is
// being shown.
func QuantizationBitmap(q command.Quantization) BitmapID {
	switch q {
	case command.Quant32:
		return Quant32Bitmap
	case command.Quant16:
		return Quant16Bitmap
	case command.Quant8:
		return Quant8Bitmap
	case command.Quant4:
		return Quant4Bitmap
	default:
		return Quant16Bitmap
	}
}

// ModeBitmap maps an effect's onset/length/capture mode toggle to its
// bitmap, mirroring the *_FREE / *_QUANT pairs in the BitmapID table.
func ModeBitmap(effect command.EffectID, param uint8, mode command.Mode) BitmapID {
	quantized := mode == command.ModeQuantized
	switch effect {
	case command.EffectChoke:
		if param == command.ParamOnset {
			return pick(quantized, ChokeOnsetQuant, ChokeOnsetFree)
		}
		return pick(quantized, ChokeLengthQuant, ChokeLengthFree)
	case command.EffectFreeze:
		if param == command.ParamOnset {
			return pick(quantized, FreezeOnsetQuant, FreezeOnsetFree)
		}
		return pick(quantized, FreezeLengthQuant, FreezeLengthFree)
	case command.EffectStutter:
		switch param {
		case command.ParamOnset:
			return pick(quantized, StutterOnsetQuant, StutterOnsetFree)
		case command.ParamCaptureStart:
			return pick(quantized, StutterCaptureStartQuant, StutterCaptureStartFree)
		case command.ParamCaptureEnd:
			return pick(quantized, StutterCaptureEndQuant, StutterCaptureEndFree)
		default:
			return pick(quantized, StutterLengthQuant, StutterLengthFree)
		}
	default:
		return Default
	}
}

func pick(cond bool, ifTrue, ifFalse BitmapID) BitmapID {
	if cond {
		return ifTrue
	}
	return ifFalse
}
