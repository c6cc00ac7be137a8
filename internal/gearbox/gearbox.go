// Package gearbox applies gear commands to the transmission.
// The real implementation drives two shift solenoids over Linux GPIO.
// The fake implementation records commands for tests.
package gearbox

import (
	"errors"
	"fmt"

	"github.com/sweeney/engine-controller/internal/gear"
)

// Gearbox accepts gear-selection commands.
type Gearbox interface {
	SetGear(g gear.Gear) error
}

// Solenoid pin definitions (BCM numbering)
const (
	DefaultPinSolenoidA = 5
	DefaultPinSolenoidB = 6
)

// ErrUnsupportedGear is returned when the solenoid table has no pattern
// for the requested gear.
var ErrUnsupportedGear = errors.New("gearbox: unsupported gear")

// solenoidPatterns is the shift-solenoid truth table, indexed A then B.
var solenoidPatterns = map[gear.Gear][2]int{
	gear.First:  {1, 1},
	gear.Second: {0, 1},
	gear.Third:  {0, 0},
	gear.Fourth: {1, 0},
}

// SolenoidPattern returns the (A, B) output values that engage g.
func SolenoidPattern(g gear.Gear) ([]int, error) {
	p, ok := solenoidPatterns[g]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGear, g)
	}
	return []int{p[0], p[1]}, nil
}
