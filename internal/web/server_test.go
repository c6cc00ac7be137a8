package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/engine-controller/internal/gear"
	"github.com/sweeney/engine-controller/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:      1000,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
		SpeedSource: "pulse",
		ClockSource: "system",
		Bands:       []gear.Band{{Gear: gear.First, MaxSpeed: 20}},
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.RecordAdjustment(gear.First, 10, time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC))
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Gear != "FIRST" {
		t.Errorf("Gear: got %q, want FIRST", sj.Status.Gear)
	}
	if sj.Status.SpeedKmh != 10 {
		t.Errorf("SpeedKmh: got %v, want 10", sj.Status.SpeedKmh)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Config.PollMs != 1000 {
		t.Errorf("Config.PollMs: got %d, want 1000", sj.Status.Config.PollMs)
	}
}

func TestJSONUnknownGearBeforeFirstAdjustment(t *testing.T) {
	ts, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Gear != "UNKNOWN" {
		t.Errorf("Gear before first adjustment: got %q, want UNKNOWN", sj.Status.Gear)
	}
	if sj.Status.Ready {
		t.Error("expected Ready=false initially")
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.RecordAdjustment(gear.First, 12.5, time.Now())
	tr.RecordFault(errors.New("gnss: no fix"))

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"FIRST", "12.50 km/h", "gnss: no fix", "&le; 20.0 km/h"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "UNKNOWN") {
		t.Error("expected UNKNOWN gear before first adjustment")
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)

	get := func() (int, string) {
		t.Helper()
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	code, body := get()
	if code != http.StatusServiceUnavailable {
		t.Errorf("before first decision: got %d, want 503", code)
	}
	if !strings.Contains(body, "no gear decision yet") {
		t.Errorf("body: got %q", body)
	}

	tr.RecordFault(errors.New("gnss: no fix"))
	code, body = get()
	if code != http.StatusServiceUnavailable {
		t.Errorf("after fault only: got %d, want 503", code)
	}
	if !strings.Contains(body, "gnss: no fix") {
		t.Errorf("body: got %q, want last fault", body)
	}

	tr.RecordAdjustment(gear.First, 8, time.Now())
	code, body = get()
	if code != http.StatusOK {
		t.Errorf("after decision: got %d, want 200", code)
	}
	if body != "ok: gear FIRST at 8.00 km/h\n" {
		t.Errorf("body: got %q", body)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	if getJSON(t, ts.URL+"/index.json").Status.Adjustments != 0 {
		t.Error("expected 0 adjustments initially")
	}

	tr.RecordAdjustment(gear.First, 5, time.Now())
	tr.RecordAdjustment(gear.First, 6, time.Now())
	tr.SetMQTTConnected(true)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Adjustments != 2 {
		t.Errorf("Adjustments: got %d, want 2", sj.Status.Adjustments)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestUptimeFormat(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{2*time.Minute + 3*time.Second, "2m 3s"},
		{3*time.Hour + 4*time.Minute, "3h 4m 0s"},
		{50 * time.Hour, "2d 2h 0m 0s"},
	}

	for _, tt := range tests {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		var sb strings.Builder
		renderHTML(&sb, status.Snapshot{StartTime: start, Now: start.Add(tt.d)})
		if !strings.Contains(sb.String(), "<td>"+tt.want+"</td>") {
			t.Errorf("uptime %v: rendered page missing %q", tt.d, tt.want)
		}
	}
}
