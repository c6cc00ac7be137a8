// Package engine contains the gear-selection controller.
// The controller holds no mutable state: every operation is an independent
// pass over its injected collaborators, and collaborator errors are returned
// to the caller unmodified.
package engine

import (
	"time"

	"github.com/sweeney/engine-controller/internal/clock"
	"github.com/sweeney/engine-controller/internal/gear"
	"github.com/sweeney/engine-controller/internal/gearbox"
	"github.com/sweeney/engine-controller/internal/logsink"
	"github.com/sweeney/engine-controller/internal/speed"
)

// SamplesPerReading is the number of speedometer reads averaged into one
// instantaneous speed.
const SamplesPerReading = 3

// TimestampLayout renders gear-change timestamps as yyyy-MM-dd HH:mm:ss.
const TimestampLayout = "2006-01-02 15:04:05"

// Decision is the outcome of one AdjustGear call. Gear is set only once
// the gearbox has accepted it, so a non-empty Gear is the engaged gear even
// when logging the change failed.
type Decision struct {
	Speed float64
	Gear  gear.Gear
}

// Controller selects gears from sampled speed.
// It is not safe for concurrent use; callers that share one must serialize
// calls so that samples from different decisions do not interleave.
type Controller struct {
	logger      logsink.Logger
	speedometer speed.Speedometer
	gearbox     gearbox.Gearbox
	clock       clock.Clock
	policy      gear.Policy
}

// New creates a Controller using gear.DefaultPolicy.
func New(logger logsink.Logger, speedometer speed.Speedometer, gb gearbox.Gearbox, clk clock.Clock) *Controller {
	return NewWithPolicy(logger, speedometer, gb, clk, nil)
}

// NewWithPolicy creates a Controller with a custom speed-to-gear policy.
// A nil policy selects gear.DefaultPolicy.
func NewWithPolicy(logger logsink.Logger, speedometer speed.Speedometer, gb gearbox.Gearbox, clk clock.Clock, policy gear.Policy) *Controller {
	if policy == nil {
		policy = gear.DefaultPolicy()
	}
	return &Controller{
		logger:      logger,
		speedometer: speedometer,
		gearbox:     gb,
		clock:       clk,
		policy:      policy,
	}
}

// RecordGear logs a timestamped gear-change message.
// The clock is read once; nothing is logged if that read fails.
func (c *Controller) RecordGear(g gear.Gear) error {
	now, err := c.clock.CurrentTime()
	if err != nil {
		return err
	}
	return c.logger.Log(FormatGearChange(now, g))
}

// InstantaneousSpeed returns the mean of SamplesPerReading consecutive
// speedometer readings. Readings are not validated or clamped.
func (c *Controller) InstantaneousSpeed() (float64, error) {
	var sum float64
	for i := 0; i < SamplesPerReading; i++ {
		s, err := c.speedometer.Speed()
		if err != nil {
			return 0, err
		}
		sum += s
	}
	return sum / SamplesPerReading, nil
}

// AdjustGear samples speed, selects a gear, commands the gearbox and logs
// the change. The first failing step aborts the call.
func (c *Controller) AdjustGear() (Decision, error) {
	avg, err := c.InstantaneousSpeed()
	if err != nil {
		return Decision{}, err
	}

	g, err := c.policy.Select(avg)
	if err != nil {
		return Decision{Speed: avg}, err
	}

	if err := c.gearbox.SetGear(g); err != nil {
		return Decision{Speed: avg}, err
	}

	d := Decision{Speed: avg, Gear: g}
	if err := c.RecordGear(g); err != nil {
		return d, err
	}
	return d, nil
}

// FormatGearChange renders the log line for a change to g at t, using the
// local system time zone.
func FormatGearChange(t time.Time, g gear.Gear) string {
	return t.In(time.Local).Format(TimestampLayout) + " Gear changed to " + string(g)
}
