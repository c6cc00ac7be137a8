// Package speed provides speed sampling with hardware abstraction.
// The pulse implementation counts wheel-sensor edges on a Linux GPIO line.
// The fake implementation allows testing without hardware.
package speed

// Speedometer supplies instantaneous speed readings in km/h.
// Successive calls may return different values.
type Speedometer interface {
	Speed() (float64, error)
}

// Defaults for the wheel-pulse sensor (BCM numbering).
const (
	DefaultPulsePin       = 17
	DefaultMetersPerPulse = 0.5
)
