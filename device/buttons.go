package device

import (
	"strings"

	"github.com/tempograph/microloop/command"
)

// CommandSink is the subset of control.Scheduler the input adapters push
// into. Kept narrow so device doesn't need to import control just for
// this one method.
type CommandSink interface {
	PushCommand(cmd command.Command) bool
}

// ButtonSource is the narrow contract for the GPIO button collaborator:
// it feeds command messages into the control plane. HandleLine lets
// device.Console dispatch a line of terminal input to it without owning
// a second reader on stdin.
type ButtonSource interface {
	HandleLine(line string) (handled bool)
}

type buttonKey struct {
	token   string
	press   command.Command
	release command.Command
}

// ConsoleButtons stands in for the four GPIO momentary buttons: FREEZE,
// CHOKE, STUTTER, and the FUNC modifier. A terminal line has no native
// press/release edge, so each key's token toggles it: the first
// occurrence of the token sends the press command and the second sends
// the release, which is enough to hold FUNC across an intervening
// STUTTER toggle the same way a player holds FUNC and taps STUTTER.
// Mapping is a configurable {keyIndex, pressCommand, releaseCommand}
// table, keyed by name instead of GPIO index.
type ConsoleButtons struct {
	sink CommandSink
	keys []buttonKey
	down map[string]bool
}

// NewConsoleButtons returns a ConsoleButtons with the default key
// mapping, pushing commands into sink.
func NewConsoleButtons(sink CommandSink) *ConsoleButtons {
	return &ConsoleButtons{
		sink: sink,
		down: make(map[string]bool),
		keys: []buttonKey{
			{
				token:   "freeze",
				press:   command.Command{Kind: command.KindEnable, Target: command.EffectFreeze},
				release: command.Command{Kind: command.KindDisable, Target: command.EffectFreeze},
			},
			{
				token:   "choke",
				press:   command.Command{Kind: command.KindEnable, Target: command.EffectChoke},
				release: command.Command{Kind: command.KindDisable, Target: command.EffectChoke},
			},
			{
				token:   "stutter",
				press:   command.Command{Kind: command.KindEnable, Target: command.EffectStutter},
				release: command.Command{Kind: command.KindDisable, Target: command.EffectStutter},
			},
			{
				token:   "func",
				press:   command.Command{Kind: command.KindEnable, Target: command.EffectFunc},
				release: command.Command{Kind: command.KindDisable, Target: command.EffectFunc},
			},
		},
	}
}

// HandleLine matches line against the button table by token (case
// insensitive, whitespace trimmed), toggles that key's held state, and
// pushes the corresponding press or release command. Returns false if
// line names no known button, leaving it for the next handler in the
// console's dispatch chain.
func (b *ConsoleButtons) HandleLine(line string) bool {
	token := strings.ToLower(strings.TrimSpace(line))
	for _, k := range b.keys {
		if k.token != token {
			continue
		}
		if b.down[k.token] {
			b.down[k.token] = false
			b.sink.PushCommand(k.release)
		} else {
			b.down[k.token] = true
			b.sink.PushCommand(k.press)
		}
		return true
	}
	return false
}
