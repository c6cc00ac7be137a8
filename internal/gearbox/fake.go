package gearbox

import "github.com/sweeney/engine-controller/internal/gear"

// FakeGearbox records gear commands for test assertions.
type FakeGearbox struct {
	// Gears contains every gear that was successfully set, in order.
	Gears []gear.Gear

	// Calls counts SetGear invocations, including failed ones.
	Calls int

	// Err, if set, will be returned by SetGear.
	Err error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeGearbox creates a FakeGearbox for testing.
func NewFakeGearbox() *FakeGearbox {
	return &FakeGearbox{}
}

// SetGear records the gear.
func (f *FakeGearbox) SetGear(g gear.Gear) error {
	f.Calls++
	if f.Err != nil {
		return f.Err
	}
	f.Gears = append(f.Gears, g)
	return nil
}

// Current returns the last gear set, or "" if none.
func (f *FakeGearbox) Current() gear.Gear {
	if len(f.Gears) == 0 {
		return ""
	}
	return f.Gears[len(f.Gears)-1]
}

// Close marks the gearbox as closed.
func (f *FakeGearbox) Close() error {
	f.Closed = true
	return nil
}
