package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Gear          string       `json:"gear"`
	SpeedKmh      float64      `json:"speed_kmh"`
	Ready         bool         `json:"ready"`
	Adjustments   int          `json:"adjustments"`
	Faults        int          `json:"faults"`
	LastFault     string       `json:"last_fault,omitempty"`
	LastAdjust    string       `json:"last_adjust,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// BandJSON is the JSON representation of one gear band.
type BandJSON struct {
	Gear     string  `json:"gear"`
	MaxSpeed float64 `json:"max_speed_kmh"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64      `json:"poll_ms"`
	HeartbeatMs int64      `json:"heartbeat_ms"`
	Broker      string     `json:"broker"`
	HTTPAddr    string     `json:"http_addr"`
	SpeedSource string     `json:"speed_source"`
	ClockSource string     `json:"clock_source"`
	Gears       []BandJSON `json:"gears"`
}

func buildInner(snap Snapshot) StatusInner {
	g := string(snap.Gear)
	if g == "" {
		g = "UNKNOWN"
	}

	inner := StatusInner{
		Gear:          g,
		SpeedKmh:      math.Round(snap.Speed*100) / 100,
		Ready:         snap.Ready(),
		Adjustments:   snap.Adjustments,
		Faults:        snap.Faults,
		LastFault:     snap.LastFault,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			SpeedSource: snap.Config.SpeedSource,
			ClockSource: snap.Config.ClockSource,
			Gears:       make([]BandJSON, 0, len(snap.Config.Bands)),
		},
	}
	if !snap.LastAdjust.IsZero() {
		inner.LastAdjust = snap.LastAdjust.UTC().Format(time.RFC3339)
	}
	for _, b := range snap.Config.Bands {
		inner.Config.Gears = append(inner.Config.Gears, BandJSON{Gear: string(b.Gear), MaxSpeed: b.MaxSpeed})
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
