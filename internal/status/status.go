// Package status provides a thread-safe status tracker for the engine-controller daemon.
// It is written by the control loop and read by HTTP handlers and MQTT snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/engine-controller/internal/gear"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	SpeedSource string
	ClockSource string
	Bands       []gear.Band
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Gear          gear.Gear
	Speed         float64
	Adjustments   int
	Faults        int
	LastFault     string
	LastAdjust    time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Ready reports whether at least one gear decision has succeeded.
func (s Snapshot) Ready() bool {
	return s.Adjustments > 0
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordAdjustment stores a successful gear decision.
// Called from runLoop on every successful tick.
func (t *Tracker) RecordAdjustment(g gear.Gear, speed float64, at time.Time) {
	t.mu.Lock()
	t.snap.Gear = g
	t.snap.Speed = speed
	t.snap.LastAdjust = at
	t.snap.Adjustments++
	t.mu.Unlock()
}

// RecordGear stores a gear the gearbox engaged on a decision that still
// failed afterwards (clock or log error). Adjustments is not incremented;
// the caller records the fault separately.
func (t *Tracker) RecordGear(g gear.Gear, speed float64, at time.Time) {
	t.mu.Lock()
	t.snap.Gear = g
	t.snap.Speed = speed
	t.snap.LastAdjust = at
	t.mu.Unlock()
}

// RecordFault counts a failed gear decision and keeps its message.
func (t *Tracker) RecordFault(err error) {
	t.mu.Lock()
	t.snap.Faults++
	t.snap.LastFault = err.Error()
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
