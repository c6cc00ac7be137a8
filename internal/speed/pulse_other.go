//go:build !linux

package speed

import (
	"errors"
	"time"
)

// PulseSpeedometer is not available on non-Linux platforms.
type PulseSpeedometer struct{}

// NewPulseSpeedometer returns an error on non-Linux platforms.
func NewPulseSpeedometer(chipName string, pin int, metersPerPulse float64, window time.Duration) (*PulseSpeedometer, error) {
	return nil, errors.New("speed: pulse sensor not supported on this platform (requires Linux)")
}

// Speed is not implemented on non-Linux platforms.
func (p *PulseSpeedometer) Speed() (float64, error) {
	return 0, errors.New("speed: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *PulseSpeedometer) Close() error {
	return nil
}
