package speed

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestFakeSpeedometerSequence(t *testing.T) {
	f := NewFakeSpeedometer(10, 20, 30)

	for i, want := range []float64{10, 20, 30, 30} {
		got, err := f.Speed()
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d: got %.1f, want %.1f", i, got, want)
		}
	}
	if f.Calls != 4 {
		t.Errorf("Calls: got %d, want 4", f.Calls)
	}
}

func TestFakeSpeedometerNoSamples(t *testing.T) {
	if _, err := NewFakeSpeedometer().Speed(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeSpeedometerError(t *testing.T) {
	f := NewFakeSpeedometer(10)
	f.Err = errors.New("sensor unplugged")

	_, err := f.Speed()
	if err != f.Err {
		t.Errorf("got %v, want %v", err, f.Err)
	}
}

func TestFakeSpeedometerReset(t *testing.T) {
	f := NewFakeSpeedometer(1, 2)
	f.Speed()
	f.Speed()
	f.Reset()

	got, _ := f.Speed()
	if got != 1 {
		t.Errorf("after reset: got %.1f, want 1", got)
	}
	if f.Calls != 1 {
		t.Errorf("Calls after reset: got %d, want 1", f.Calls)
	}
}

// stepClock returns a settable clock for PulseCounter tests.
type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func TestPulseCounterSpeed(t *testing.T) {
	clk := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c, err := NewPulseCounter(0.5, time.Second, clk.now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 10 pulses spread over 900ms: 10 * 0.5m / 1s = 5 m/s = 18 km/h
	for i := 0; i < 10; i++ {
		c.Pulse()
		clk.t = clk.t.Add(100 * time.Millisecond)
	}
	clk.t = clk.t.Add(-100 * time.Millisecond)

	got, err := c.Speed()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-18) > 1e-9 {
		t.Errorf("got %.3f km/h, want 18", got)
	}
}

func TestPulseCounterWindowExpiry(t *testing.T) {
	clk := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c, _ := NewPulseCounter(1, time.Second, clk.now)

	c.Pulse()
	c.Pulse()

	clk.t = clk.t.Add(500 * time.Millisecond)
	c.Pulse()

	// At +1s the first two pulses sit exactly on the cutoff and are dropped.
	clk.t = clk.t.Add(500 * time.Millisecond)
	got, _ := c.Speed()
	if math.Abs(got-3.6) > 1e-9 {
		t.Errorf("got %.3f km/h, want 3.6", got)
	}

	clk.t = clk.t.Add(time.Second)
	got, _ = c.Speed()
	if got != 0 {
		t.Errorf("after window: got %.3f km/h, want 0", got)
	}
}

func TestPulseCounterStandstill(t *testing.T) {
	c, _ := NewPulseCounter(0.5, time.Second, time.Now)
	got, err := c.Speed()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("got %.3f, want 0", got)
	}
}

func TestNewPulseCounterValidation(t *testing.T) {
	if _, err := NewPulseCounter(0, time.Second, time.Now); err == nil {
		t.Error("expected error for zero meters per pulse")
	}
	if _, err := NewPulseCounter(0.5, 0, time.Now); err == nil {
		t.Error("expected error for zero window")
	}
}
