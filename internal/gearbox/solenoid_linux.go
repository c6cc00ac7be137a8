//go:build linux

package gearbox

import (
	"fmt"

	"github.com/sweeney/engine-controller/internal/gear"
	"github.com/warthog618/go-gpiocdev"
)

// SolenoidGearbox drives two shift solenoids using the Linux GPIO
// character device.
type SolenoidGearbox struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
}

// NewSolenoidGearbox requests pinA and pinB as outputs, both de-energised.
func NewSolenoidGearbox(chipName string, pinA, pinB int) (*SolenoidGearbox, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := chip.RequestLines([]int{pinA, pinB}, gpiocdev.AsOutput(0, 0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request solenoid pins %d,%d: %w", pinA, pinB, err)
	}

	return &SolenoidGearbox{
		chip:  chip,
		lines: lines,
	}, nil
}

// SetGear energises the solenoids for g.
func (s *SolenoidGearbox) SetGear(g gear.Gear) error {
	values, err := SolenoidPattern(g)
	if err != nil {
		return err
	}
	if err := s.lines.SetValues(values); err != nil {
		return fmt.Errorf("set solenoids for %s: %w", g, err)
	}
	return nil
}

// Close releases GPIO resources.
// Returns the pins to input with pull-down (Pi boot default) so the
// solenoids are de-energised across reboots.
func (s *SolenoidGearbox) Close() error {
	var errs []error

	if s.lines != nil {
		if err := s.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure solenoid pins: %w", err))
		}
		if err := s.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close solenoid pins: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
