package speed

import (
	"errors"
	"sync"
	"time"
)

// DefaultPulseWindow is the sliding window used to turn pulses into a rate.
const DefaultPulseWindow = time.Second

// PulseCounter converts wheel pulses seen inside a sliding window into km/h.
// Pulse is called from the GPIO event goroutine and Speed from the control
// loop, so both take the lock.
type PulseCounter struct {
	mu             sync.Mutex
	metersPerPulse float64
	window         time.Duration
	now            func() time.Time
	stamps         []time.Time
}

// NewPulseCounter creates a counter. now is injectable for tests; pass
// time.Now in production.
func NewPulseCounter(metersPerPulse float64, window time.Duration, now func() time.Time) (*PulseCounter, error) {
	if metersPerPulse <= 0 {
		return nil, errors.New("speed: meters per pulse must be positive")
	}
	if window <= 0 {
		return nil, errors.New("speed: pulse window must be positive")
	}
	return &PulseCounter{
		metersPerPulse: metersPerPulse,
		window:         window,
		now:            now,
	}, nil
}

// Pulse records one wheel pulse at the current time.
func (c *PulseCounter) Pulse() {
	c.mu.Lock()
	t := c.now()
	c.stamps = append(c.stamps, t)
	c.prune(t)
	c.mu.Unlock()
}

// Speed returns the speed implied by the pulses in the last window.
func (c *PulseCounter) Speed() (float64, error) {
	c.mu.Lock()
	c.prune(c.now())
	n := len(c.stamps)
	c.mu.Unlock()

	metersPerSecond := float64(n) * c.metersPerPulse / c.window.Seconds()
	return metersPerSecond * 3.6, nil
}

// prune drops pulses older than the window. Caller holds mu.
func (c *PulseCounter) prune(now time.Time) {
	cutoff := now.Add(-c.window)
	i := 0
	for i < len(c.stamps) && !c.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		c.stamps = append(c.stamps[:0], c.stamps[i:]...)
	}
}
