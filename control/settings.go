package control

import (
	"fmt"
	"sync/atomic"
)

// Settings stores the handful of tunable knobs the debug console can
// adjust at runtime without locks: fade time, quantized-onset lookahead,
// and the clock-tick smoothing ratio.
// Every property is registered once at startup, so lookups never race a
// missing key.
type Settings struct {
	properties map[string]*atomic.Value
	setters    map[string]setter
}

type setter func(val interface{}, dest *atomic.Value) error

// Property keys exposed to the console's "set" command.
const (
	KeyLookaheadSamples = "lookahead_samples"
	KeyClockSmoothing   = "clock_smoothing"
	KeyFadeMS           = "fade_ms"
)

// NewSettings returns a Settings populated with defaults: 128-sample
// lookahead, a 9:1 EMA smoothing ratio for MIDI clock tick periods, and
// a 3ms choke crossfade.
func NewSettings() *Settings {
	s := &Settings{
		properties: make(map[string]*atomic.Value),
		setters:    make(map[string]setter),
	}
	s.MustRegister(KeyLookaheadSamples, setIntRange(0, 4096), 128)
	s.MustRegister(KeyClockSmoothing, setFloat64Range(0, 1), 0.9)
	s.MustRegister(KeyFadeMS, setFloat64Range(0.1, 50), 3.0)
	return s
}

// Set updates a registered property, validating against its range.
func (s *Settings) Set(key string, value interface{}) error {
	prop, ok := s.properties[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	set := s.setters[key]
	if err := set(value, prop); err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	return nil
}

// Get returns the current value of a registered property.
func (s *Settings) Get(key string) (interface{}, error) {
	prop, ok := s.properties[key]
	if !ok {
		return nil, fmt.Errorf("unknown property %s", key)
	}
	return prop.Load(), nil
}

// Register adds a new property, applying init immediately.
func (s *Settings) Register(key string, set setter, init interface{}) (*atomic.Value, error) {
	var prop atomic.Value
	s.properties[key] = &prop
	s.setters[key] = set
	return &prop, set(init, &prop)
}

// MustRegister is Register but panics on error; only meant for the fixed
// set of properties registered once at startup.
func (s *Settings) MustRegister(key string, set setter, init interface{}) *atomic.Value {
	prop, err := s.Register(key, set, init)
	if err != nil {
		panic(err)
	}
	return prop
}

// LookaheadSamples returns the current quantized-onset lookahead.
func (s *Settings) LookaheadSamples() uint32 {
	v, _ := s.Get(KeyLookaheadSamples)
	n, _ := v.(int)
	return uint32(n)
}

// ClockSmoothing returns the current EMA weight given to the previous
// smoothed tick period (closer to 1 = slower to react to tempo changes).
func (s *Settings) ClockSmoothing() float64 {
	v, _ := s.Get(KeyClockSmoothing)
	f, _ := v.(float64)
	return f
}

// FadeMS returns the current crossfade time in milliseconds.
func (s *Settings) FadeMS() float64 {
	v, _ := s.Get(KeyFadeMS)
	f, _ := v.(float64)
	return f
}

func setIntRange(min, max int) setter {
	return func(v interface{}, dest *atomic.Value) error {
		var n int
		switch t := v.(type) {
		case int:
			n = t
		case float64:
			n = int(t)
		default:
			return fmt.Errorf("value is not an int: %v", v)
		}
		if n < min || n > max {
			return fmt.Errorf("value out of range [%d, %d]: %d", min, max, n)
		}
		dest.Store(n)
		return nil
	}
}

func setFloat64Range(min, max float64) setter {
	return func(v interface{}, dest *atomic.Value) error {
		var f float64
		switch t := v.(type) {
		case float64:
			f = t
		case int:
			f = float64(t)
		default:
			return fmt.Errorf("value is not a float64: %v", v)
		}
		if f < min || f > max {
			return fmt.Errorf("value out of range [%v, %v]: %v", min, max, f)
		}
		dest.Store(f)
		return nil
	}
}
