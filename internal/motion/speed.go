package motion

import (
	"fmt"
	"strings"
)

// Speed is the requested speed class of an Action. The executor maps each
// class to a pause between ticks.
type Speed int

const (
	SpeedVerySlow Speed = iota + 1
	SpeedSlow
	SpeedNormal
	SpeedFast
	SpeedVeryFast
)

// SpeedDefault is used when an action does not request a speed.
const SpeedDefault = SpeedNormal

var speedNames = map[Speed]string{
	SpeedVerySlow: "very_slow",
	SpeedSlow:     "slow",
	SpeedNormal:   "normal",
	SpeedFast:     "fast",
	SpeedVeryFast: "very_fast",
}

// AllSpeeds returns every speed class from slowest to fastest.
func AllSpeeds() []Speed {
	return []Speed{SpeedVerySlow, SpeedSlow, SpeedNormal, SpeedFast, SpeedVeryFast}
}

func (s Speed) String() string {
	if name, ok := speedNames[s]; ok {
		return name
	}
	return fmt.Sprintf("speed(%d)", int(s))
}

// Valid reports whether s is one of the defined classes.
func (s Speed) Valid() bool {
	_, ok := speedNames[s]
	return ok
}

// ParseSpeed converts a name such as "very_fast" (case-insensitive, "-" or
// "_" separated) into a Speed.
func ParseSpeed(name string) (Speed, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for s, n := range speedNames {
		if n == norm {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSpeed, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Speed) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSpeed, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Speed) UnmarshalText(text []byte) error {
	parsed, err := ParseSpeed(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
