// Package gear contains the gear value set and the speed-to-gear policy.
// This package has NO external dependencies (no GPIO, MQTT, OS, or clock).
package gear

import (
	"errors"
	"fmt"
	"strings"
)

// Gear is a discrete transmission setting. Its string form is the name
// used in log output.
type Gear string

const (
	First  Gear = "FIRST"
	Second Gear = "SECOND"
	Third  Gear = "THIRD"
	Fourth Gear = "FOURTH"
)

// All lists every known gear in ascending order.
var All = []Gear{First, Second, Third, Fourth}

// ErrUnknownGear is returned when a gear name is not in the closed set.
var ErrUnknownGear = errors.New("unknown gear")

// Valid reports whether g is one of the known gears.
func (g Gear) Valid() bool {
	for _, known := range All {
		if g == known {
			return true
		}
	}
	return false
}

// String returns the upper-case gear name.
func (g Gear) String() string {
	return string(g)
}

// Parse converts a gear name (case-insensitive) into a Gear.
func Parse(s string) (Gear, error) {
	g := Gear(strings.ToUpper(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownGear, s)
	}
	return g, nil
}

// UnmarshalText lets Gear be decoded from config files.
func (g *Gear) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
