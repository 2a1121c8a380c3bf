package device

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tempograph/microloop/control"
	"github.com/tempograph/microloop/effects"
)

// lineHandler is satisfied by ButtonSource and EncoderSource; Console
// tries each in turn before falling back to its own debug commands.
type lineHandler interface {
	HandleLine(line string) bool
}

// Console is the serial debug console, a terminal readline loop driving
// a small command table. It owns the process's one stdin reader and,
// since buttons and encoders have no dedicated terminal of their own in
// this environment, dispatches each line first to them and only handles
// it itself if neither claims it.
type Console struct {
	rl       *readline.Instance
	tracer   *control.Tracer
	sched    *control.Scheduler
	settings *control.Settings
	stutter  *effects.Stutter
	freeze   *effects.Freeze
	handlers []lineHandler
}

// NewConsole opens a readline prompt and returns a Console wired to
// tracer for t/c, sched for s, settings for get/set, plus stutter/freeze
// for the supplemental w (WAV dump) command.
func NewConsole(tracer *control.Tracer, sched *control.Scheduler, settings *control.Settings, stutter *effects.Stutter, freeze *effects.Freeze) (*Console, error) {
	rl, err := readline.New("microloop> ")
	if err != nil {
		return nil, err
	}
	return &Console{rl: rl, tracer: tracer, sched: sched, settings: settings, stutter: stutter, freeze: freeze}, nil
}

// AddHandler registers a ButtonSource or EncoderSource to receive lines
// before Console's own debug commands are tried.
func (c *Console) AddHandler(h lineHandler) {
	c.handlers = append(c.handlers, h)
}

// Close releases the readline terminal.
func (c *Console) Close() error { return c.rl.Close() }

// Run blocks reading lines until EOF (Ctrl-D), dispatching each to the
// registered handlers and then to Console's own t/c/s/w/get/set
// commands. Any other readline error is printed and reading continues.
func (c *Console) Run() error {
	for {
		line, err := c.rl.Readline()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.dispatch(line)
	}
}

func (c *Console) dispatch(line string) {
	for _, h := range c.handlers {
		if h.HandleLine(line) {
			return
		}
	}
	fields := strings.Fields(line)
	switch {
	case line == "t":
		fmt.Println(c.tracer.Dump())
	case line == "c":
		c.tracer.Clear()
		fmt.Println("trace cleared")
	case line == "s":
		fmt.Println(c.sched.Snapshot().String())
	case line == "w":
		c.dumpCaptures()
	case len(fields) == 2 && fields[0] == "get":
		c.getSetting(fields[1])
	case len(fields) == 3 && fields[0] == "set":
		c.setSetting(fields[1], fields[2])
	default:
		fmt.Printf("unknown command: %s\n", line)
	}
}

// getSetting prints a control.Settings property's current value; "get
// <key>" is the console counterpart to "set <key> <value>".
func (c *Console) getSetting(key string) {
	v, err := c.settings.Get(key)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%s = %v\n", key, v)
}

// setSetting parses value as a float64 and applies it to a registered
// control.Settings property, validating against that property's range.
func (c *Console) setSetting(key, value string) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		fmt.Printf("set %s: %v\n", key, err)
		return
	}
	if err := c.settings.Set(key, f); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%s = %v\n", key, f)
}

// dumpCaptures writes the current STUTTER and FREEZE capture buffers to
// .wav files in the working directory, a debug convenience for offline
// inspection of what a player just captured.
func (c *Console) dumpCaptures() {
	if n := c.stutter.CaptureLength(); n > 0 {
		left, right := c.stutter.CaptureSnapshot()
		if err := DumpWAV("stutter_capture.wav", left, right); err != nil {
			fmt.Println("stutter dump failed:", err)
		} else {
			fmt.Println("wrote stutter_capture.wav")
		}
	} else {
		fmt.Println("no stutter capture to dump")
	}

	left, right := c.freeze.CaptureSnapshot()
	if err := DumpWAV("freeze_capture.wav", left, right); err != nil {
		fmt.Println("freeze dump failed:", err)
	} else {
		fmt.Println("wrote freeze_capture.wav")
	}
}
