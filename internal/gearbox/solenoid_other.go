//go:build !linux

package gearbox

import (
	"errors"

	"github.com/sweeney/engine-controller/internal/gear"
)

// SolenoidGearbox is not available on non-Linux platforms.
type SolenoidGearbox struct{}

// NewSolenoidGearbox returns an error on non-Linux platforms.
func NewSolenoidGearbox(chipName string, pinA, pinB int) (*SolenoidGearbox, error) {
	return nil, errors.New("gearbox: not supported on this platform (requires Linux)")
}

// SetGear is not implemented on non-Linux platforms.
func (s *SolenoidGearbox) SetGear(g gear.Gear) error {
	return errors.New("gearbox: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *SolenoidGearbox) Close() error {
	return nil
}
