package gear

import (
	"errors"
	"fmt"
)

// DefaultFirstGearMaxSpeed is the highest average speed (km/h) that still
// selects FIRST under the default policy.
const DefaultFirstGearMaxSpeed = 20.0

// ErrNoGear is returned when no band covers the given speed.
var ErrNoGear = errors.New("no gear for speed")

// Policy maps an average speed to a gear.
//
// Only the FIRST band is known for certain. Anything above it must be
// configured explicitly; the package never guesses further thresholds.
type Policy interface {
	Select(speed float64) (Gear, error)
}

// PolicyFunc adapts a plain function to the Policy interface.
type PolicyFunc func(speed float64) (Gear, error)

// Select calls f(speed).
func (f PolicyFunc) Select(speed float64) (Gear, error) {
	return f(speed)
}

// Band assigns a gear to every speed up to and including MaxSpeed that is
// not claimed by a lower band.
type Band struct {
	Gear     Gear    `yaml:"gear"`
	MaxSpeed float64 `yaml:"max_speed"`
}

// BandPolicy selects the first band whose MaxSpeed is >= the speed.
// Bands must be ordered by strictly increasing MaxSpeed; use NewBandPolicy
// to validate a table built from untrusted input.
type BandPolicy []Band

// Select returns the gear of the lowest band covering speed.
func (p BandPolicy) Select(speed float64) (Gear, error) {
	for _, b := range p {
		if speed <= b.MaxSpeed {
			return b.Gear, nil
		}
	}
	return "", fmt.Errorf("%w: %.2f", ErrNoGear, speed)
}

// DefaultPolicy selects FIRST at or below DefaultFirstGearMaxSpeed and
// fails above it.
func DefaultPolicy() BandPolicy {
	return BandPolicy{{Gear: First, MaxSpeed: DefaultFirstGearMaxSpeed}}
}

// NewBandPolicy validates bands and returns them as a BandPolicy.
func NewBandPolicy(bands []Band) (BandPolicy, error) {
	if len(bands) == 0 {
		return nil, errors.New("gear policy: no bands")
	}

	seen := make(map[Gear]bool, len(bands))
	for i, b := range bands {
		if !b.Gear.Valid() {
			return nil, fmt.Errorf("gear policy: band %d: %w: %q", i, ErrUnknownGear, b.Gear)
		}
		if seen[b.Gear] {
			return nil, fmt.Errorf("gear policy: band %d: duplicate gear %s", i, b.Gear)
		}
		seen[b.Gear] = true

		if i > 0 && b.MaxSpeed <= bands[i-1].MaxSpeed {
			return nil, fmt.Errorf("gear policy: band %d: max speed %.2f not above %.2f", i, b.MaxSpeed, bands[i-1].MaxSpeed)
		}
	}

	out := make(BandPolicy, len(bands))
	copy(out, bands)
	return out, nil
}
