// Command engine-controller samples vehicle speed, selects a gear and logs
// every gear change to stdout and MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweeney/engine-controller/internal/clock"
	"github.com/sweeney/engine-controller/internal/config"
	"github.com/sweeney/engine-controller/internal/engine"
	"github.com/sweeney/engine-controller/internal/gearbox"
	"github.com/sweeney/engine-controller/internal/gnss"
	"github.com/sweeney/engine-controller/internal/logsink"
	"github.com/sweeney/engine-controller/internal/mqtt"
	"github.com/sweeney/engine-controller/internal/speed"
	"github.com/sweeney/engine-controller/internal/status"
	"github.com/sweeney/engine-controller/internal/web"
)

func main() {
	cfg, printSpeed, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, printSpeed); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// parseFlags loads the optional config file and applies any flags that were
// set explicitly on the command line over it.
func parseFlags(fs *flag.FlagSet, args []string) (*config.Config, bool, error) {
	def := config.Default()

	configPath := fs.String("config", "", "YAML config file (optional)")
	poll := fs.Duration("poll", def.Poll, "Gear adjustment interval")
	broker := fs.String("broker", def.MQTT.Broker, "MQTT broker address")
	heartbeat := fs.Duration("heartbeat", def.Heartbeat, "Heartbeat interval (0 to disable)")
	httpAddr := fs.String("http", def.HTTP, "HTTP status address (empty to disable)")
	printSpeed := fs.Bool("print-speed", false, "Print instantaneous speed and exit")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	cfg := def
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, false, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "poll":
			cfg.Poll = *poll
		case "broker":
			cfg.MQTT.Broker = *broker
		case "heartbeat":
			cfg.Heartbeat = *heartbeat
		case "http":
			cfg.HTTP = *httpAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, *printSpeed, nil
}

func run(cfg *config.Config, printSpeed bool) error {
	if err := loadDotEnv(cfg.EnvFile); err != nil {
		log.Printf("env file %s: %v", cfg.EnvFile, err)
	}

	// GNSS receiver is shared when it serves as both speed and clock source
	var receiver *gnss.Receiver
	if cfg.UsesGNSS() {
		r, err := gnss.Open(cfg.Speed.GNSS.Device, cfg.Speed.GNSS.Baud, cfg.Speed.GNSS.MaxAge)
		if err != nil {
			return fmt.Errorf("init gnss: %w", err)
		}
		defer r.Close()
		receiver = r
	}

	var speedometer speed.Speedometer
	switch cfg.Speed.Source {
	case config.SourceGNSS:
		speedometer = receiver
	default:
		p := cfg.Speed.Pulse
		ps, err := speed.NewPulseSpeedometer(p.Chip, p.Pin, p.MetersPerPulse, p.Window)
		if err != nil {
			return fmt.Errorf("init speed sensor: %w", err)
		}
		defer ps.Close()
		speedometer = ps
	}

	var clk clock.Clock = clock.System{}
	if cfg.Clock.Source == config.SourceGNSS {
		clk = receiver
	}

	// Print speed mode
	if printSpeed {
		ctx, cancel := context.WithTimeout(context.Background(), printSpeedTimeout)
		defer cancel()
		if err := settleSpeed(ctx, cfg, receiver); err != nil {
			return fmt.Errorf("wait for speed: %w", err)
		}
		return writeSpeed(os.Stdout, speedometer)
	}

	gb, err := gearbox.NewSolenoidGearbox(cfg.Gearbox.Chip, cfg.Gearbox.SolenoidA, cfg.Gearbox.SolenoidB)
	if err != nil {
		return fmt.Errorf("init gearbox: %w", err)
	}
	defer gb.Close()

	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	ctrl, closeLog, err := newController(cfg, os.Stdout, publisher, speedometer, gb, clk)
	if err != nil {
		return err
	}
	defer closeLog()

	tracker := status.NewTracker(time.Now(), statusConfig(cfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}

	log.Printf("started: poll=%v broker=%s heartbeat=%v speed=%s clock=%s",
		cfg.Poll, cfg.MQTT.Broker, cfg.Heartbeat, cfg.Speed.Source, cfg.Clock.Source)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, publisher, publisher, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

// printSpeedTimeout bounds how long -print-speed waits for a GNSS fix.
const printSpeedTimeout = 30 * time.Second

// newController builds the controller from cfg. Gear changes go to stdout,
// the publisher and, when configured, the gear log file. The returned func
// closes that file.
func newController(cfg *config.Config, stdout io.Writer, publisher logsink.Logger, speedometer speed.Speedometer, gb gearbox.Gearbox, clk clock.Clock) (*engine.Controller, func(), error) {
	closeLog := func() {}
	sinks := []logsink.Logger{logsink.NewStd(stdout), publisher}
	if cfg.GearLog != "" {
		f, err := logsink.NewFile(cfg.GearLog)
		if err != nil {
			return nil, nil, fmt.Errorf("init gear log: %w", err)
		}
		closeLog = func() { f.Close() }
		sinks = append(sinks, f)
	}

	policy, err := cfg.Policy()
	if err != nil {
		closeLog()
		return nil, nil, fmt.Errorf("init gear policy: %w", err)
	}
	return engine.NewWithPolicy(logsink.NewMulti(sinks...), speedometer, gb, clk, policy), closeLog, nil
}

// settleSpeed waits until the configured speed source has something to
// report: one full window of pulses, or the first GNSS fix.
func settleSpeed(ctx context.Context, cfg *config.Config, receiver *gnss.Receiver) error {
	if cfg.Speed.Source == config.SourceGNSS {
		return receiver.WaitFix(ctx)
	}
	select {
	case <-time.After(cfg.Speed.Pulse.Window):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writeSpeed prints one instantaneous (averaged) speed reading.
func writeSpeed(w io.Writer, speedometer speed.Speedometer) error {
	avg, err := engine.New(nil, speedometer, nil, nil).InstantaneousSpeed()
	if err != nil {
		return fmt.Errorf("read speed: %w", err)
	}
	_, err = fmt.Fprintf(w, "Speed: %.2f km/h\n", avg)
	return err
}

func runLoop(ctrl *engine.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			reason := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    reason,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			d, err := ctrl.AdjustGear()
			if err != nil {
				// A failed decision is reported and retried on the next tick
				log.Printf("adjust gear error: %v", err)
			}

			if tracker != nil {
				if err != nil {
					// The gearbox may already be in the new gear
					if d.Gear != "" {
						tracker.RecordGear(d.Gear, d.Speed, t)
					}
					tracker.RecordFault(err)
				} else {
					tracker.RecordAdjustment(d.Gear, d.Speed, t)
				}
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if heartbeat <= 0 || t.Sub(lastHeartbeat) < heartbeat {
				continue
			}
			lastHeartbeat = t

			hbEvent := mqtt.SystemEvent{
				Timestamp: t,
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
				snap := tracker.Snapshot()
				log.Printf("heartbeat: uptime=%v gear=%s adjustments=%d faults=%d",
					snap.Uptime().Truncate(time.Second), snap.Gear, snap.Adjustments, snap.Faults)
				hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func statusConfig(cfg *config.Config) status.Config {
	return status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP,
		SpeedSource: cfg.Speed.Source,
		ClockSource: cfg.Clock.Source,
		Bands:       cfg.Gears,
	}
}

// loadDotEnv loads pi-helper's env file. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
