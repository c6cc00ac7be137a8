// Package config loads the engine-controller daemon configuration from YAML.
// Values not present in the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/engine-controller/internal/gear"
	"github.com/sweeney/engine-controller/internal/gearbox"
	"github.com/sweeney/engine-controller/internal/gnss"
	"github.com/sweeney/engine-controller/internal/speed"
)

// Source names accepted by speed.source and clock.source.
const (
	SourcePulse  = "pulse"
	SourceGNSS   = "gnss"
	SourceSystem = "system"
)

// DefaultEnvFile is where pi-helper writes network state.
const DefaultEnvFile = "/run/pi-helper.env"

// Config is the full daemon configuration.
type Config struct {
	Poll      time.Duration `yaml:"poll"`
	Heartbeat time.Duration `yaml:"heartbeat"` // 0 disables
	HTTP      string        `yaml:"http"`      // empty disables

	MQTT    MQTTConfig    `yaml:"mqtt"`
	Speed   SpeedConfig   `yaml:"speed"`
	Clock   ClockConfig   `yaml:"clock"`
	Gearbox GearboxConfig `yaml:"gearbox"`
	Gears   []gear.Band   `yaml:"gears"`

	GearLog string `yaml:"gear_log"` // optional append-only file of gear lines
	EnvFile string `yaml:"env_file"`
}

// MQTTConfig holds broker settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// SpeedConfig selects and configures the speed source.
type SpeedConfig struct {
	Source string      `yaml:"source"`
	Pulse  PulseConfig `yaml:"pulse"`
	GNSS   GNSSConfig  `yaml:"gnss"`
}

// PulseConfig configures the wheel-pulse sensor.
type PulseConfig struct {
	Chip           string        `yaml:"chip"`
	Pin            int           `yaml:"pin"`
	MetersPerPulse float64       `yaml:"meters_per_pulse"`
	Window         time.Duration `yaml:"window"`
}

// GNSSConfig configures the serial NMEA receiver. It is shared by the
// speed and clock sources.
type GNSSConfig struct {
	Device string        `yaml:"device"`
	Baud   int           `yaml:"baud"`
	MaxAge time.Duration `yaml:"max_age"`
}

// ClockConfig selects the time source for gear-change lines.
type ClockConfig struct {
	Source string `yaml:"source"`
}

// GearboxConfig configures the shift solenoids.
type GearboxConfig struct {
	Chip      string `yaml:"chip"`
	SolenoidA int    `yaml:"solenoid_a"`
	SolenoidB int    `yaml:"solenoid_b"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Poll:      time.Second,
		Heartbeat: 15 * time.Minute,
		HTTP:      ":80",
		MQTT: MQTTConfig{
			Broker:   "tcp://192.168.1.200:1883",
			ClientID: "engine-controller",
		},
		Speed: SpeedConfig{
			Source: SourcePulse,
			Pulse: PulseConfig{
				Chip:           "gpiochip0",
				Pin:            speed.DefaultPulsePin,
				MetersPerPulse: speed.DefaultMetersPerPulse,
				Window:         speed.DefaultPulseWindow,
			},
			GNSS: GNSSConfig{
				Device: gnss.DefaultDevice,
				Baud:   gnss.DefaultBaud,
				MaxAge: gnss.DefaultMaxAge,
			},
		},
		Clock: ClockConfig{Source: SourceSystem},
		Gearbox: GearboxConfig{
			Chip:      "gpiochip0",
			SolenoidA: gearbox.DefaultPinSolenoidA,
			SolenoidB: gearbox.DefaultPinSolenoidB,
		},
		Gears:   gear.DefaultPolicy(),
		EnvFile: DefaultEnvFile,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if c.Poll <= 0 {
		return fmt.Errorf("config: poll must be positive, got %v", c.Poll)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("config: heartbeat must not be negative, got %v", c.Heartbeat)
	}
	if c.MQTT.Broker == "" {
		return errors.New("config: mqtt.broker is required")
	}

	switch c.Speed.Source {
	case SourcePulse:
		if c.Speed.Pulse.MetersPerPulse <= 0 {
			return fmt.Errorf("config: speed.pulse.meters_per_pulse must be positive, got %v", c.Speed.Pulse.MetersPerPulse)
		}
		if c.Speed.Pulse.Window <= 0 {
			return fmt.Errorf("config: speed.pulse.window must be positive, got %v", c.Speed.Pulse.Window)
		}
	case SourceGNSS:
	default:
		return fmt.Errorf("config: unknown speed.source %q", c.Speed.Source)
	}

	switch c.Clock.Source {
	case SourceSystem, SourceGNSS:
	default:
		return fmt.Errorf("config: unknown clock.source %q", c.Clock.Source)
	}

	if c.UsesGNSS() && c.Speed.GNSS.Device == "" {
		return errors.New("config: speed.gnss.device is required for gnss sources")
	}
	if c.Gearbox.SolenoidA == c.Gearbox.SolenoidB {
		return fmt.Errorf("config: gearbox solenoids share pin %d", c.Gearbox.SolenoidA)
	}

	if _, err := gear.NewBandPolicy(c.Gears); err != nil {
		return fmt.Errorf("config: gears: %w", err)
	}
	return nil
}

// UsesGNSS reports whether any source needs the GNSS receiver.
func (c *Config) UsesGNSS() bool {
	return c.Speed.Source == SourceGNSS || c.Clock.Source == SourceGNSS
}

// Policy returns the validated gear policy.
func (c *Config) Policy() (gear.BandPolicy, error) {
	return gear.NewBandPolicy(c.Gears)
}
