package device

import "strings"

// EncoderSource is the narrow contract for the four quadrature encoders:
// each reports an absolute step position and whether its shaft button is
// currently pressed. control.Scheduler polls this once per tick per
// registered control.EncoderMenu.
type EncoderSource interface {
	Read(index int) (position int32, pressed bool)
}

// encoder indices, in the order Scheduler.RegisterEncoder expects them:
// FREEZE parameter, STUTTER parameter, CHOKE parameter, global
// quantization.
const (
	EncoderFreeze = iota
	EncoderStutter
	EncoderChoke
	EncoderQuant
	numEncoders
)

type encoderKeys struct {
	inc, dec, press string
}

// ConsoleEncoders stands in for the four physical quadrature encoders.
// Since a terminal has no shaft to turn, each encoder is driven by a
// pair of increment/decrement tokens plus a press token, accumulating an
// absolute step position the same way control.EncoderMenu expects a real
// encoder's position register to behave.
type ConsoleEncoders struct {
	keys     [numEncoders]encoderKeys
	position [numEncoders]int32
	pressed  [numEncoders]bool
}

// NewConsoleEncoders returns a ConsoleEncoders with the default key
// bindings: [/] for FREEZE, {/} for STUTTER, </> for CHOKE, and -/+ for
// the global quantization encoder; "p0".."p3" press the corresponding
// shaft button.
func NewConsoleEncoders() *ConsoleEncoders {
	return &ConsoleEncoders{
		keys: [numEncoders]encoderKeys{
			EncoderFreeze:  {inc: "]", dec: "[", press: "p0"},
			EncoderStutter: {inc: "}", dec: "{", press: "p1"},
			EncoderChoke:   {inc: ">", dec: "<", press: "p2"},
			EncoderQuant:   {inc: "+", dec: "-", press: "p3"},
		},
	}
}

// Read returns the current position and momentary pressed state of the
// index'th encoder. Matches control.Scheduler's EncoderReader interface.
func (e *ConsoleEncoders) Read(index int) (int32, bool) {
	if index < 0 || index >= numEncoders {
		return 0, false
	}
	pressed := e.pressed[index]
	e.pressed[index] = false // shaft press is momentary, consumed on read
	return e.position[index], pressed
}

// HandleLine matches line against the encoder key table, adjusting a
// position counter or latching a shaft press. Returns false if line
// names no known encoder token.
func (e *ConsoleEncoders) HandleLine(line string) bool {
	token := strings.TrimSpace(line)
	for i, k := range e.keys {
		switch token {
		case k.inc:
			e.position[i]++
			return true
		case k.dec:
			e.position[i]--
			return true
		case k.press:
			e.pressed[i] = true
			return true
		}
	}
	return false
}
