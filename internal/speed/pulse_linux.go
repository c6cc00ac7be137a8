//go:build linux

package speed

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// PulseSpeedometer reads a wheel-pulse sensor from actual hardware using
// the Linux GPIO character device.
type PulseSpeedometer struct {
	*PulseCounter
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewPulseSpeedometer requests pin on chipName as a rising-edge input and
// counts pulses into a sliding window.
func NewPulseSpeedometer(chipName string, pin int, metersPerPulse float64, window time.Duration) (*PulseSpeedometer, error) {
	counter, err := NewPulseCounter(metersPerPulse, window, time.Now)
	if err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Hall sensors pull the line low between magnets; count the rising edge.
	line, err := chip.RequestLine(pin,
		gpiocdev.WithPullUp,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			counter.Pulse()
		}))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pulse pin %d: %w", pin, err)
	}

	return &PulseSpeedometer{
		PulseCounter: counter,
		chip:         chip,
		line:         line,
	}, nil
}

// Close releases GPIO resources.
// Reconfigures the pin to input with pull-down (Pi boot default) first.
func (p *PulseSpeedometer) Close() error {
	var errs []error

	if p.line != nil {
		if err := p.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pulse pin: %w", err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pulse pin: %w", err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
