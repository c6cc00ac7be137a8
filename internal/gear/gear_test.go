package gear

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Gear
	}{
		{"FIRST", First},
		{"first", First},
		{" Second ", Second},
		{"third", Third},
		{"FOURTH", Fourth},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("overdrive")
	if !errors.Is(err, ErrUnknownGear) {
		t.Errorf("expected ErrUnknownGear, got %v", err)
	}
}

func TestGearString(t *testing.T) {
	if First.String() != "FIRST" {
		t.Errorf("got %q, want FIRST", First.String())
	}
}

func TestUnmarshalText(t *testing.T) {
	var g Gear
	if err := g.UnmarshalText([]byte("second")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g != Second {
		t.Errorf("got %s, want SECOND", g)
	}

	if err := g.UnmarshalText([]byte("reverse")); err == nil {
		t.Error("expected error for unknown gear")
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name  string
		speed float64
		want  Gear
	}{
		{"standstill", 0, First},
		{"low", 10, First},
		{"at threshold", DefaultFirstGearMaxSpeed, First},
		{"negative passes through", -5, First},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Select(tt.speed)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDefaultPolicyAboveThreshold(t *testing.T) {
	_, err := DefaultPolicy().Select(DefaultFirstGearMaxSpeed + 0.01)
	if !errors.Is(err, ErrNoGear) {
		t.Errorf("expected ErrNoGear, got %v", err)
	}
}

func TestBandPolicySelectsLowestCoveringBand(t *testing.T) {
	p, err := NewBandPolicy([]Band{
		{Gear: First, MaxSpeed: 15},
		{Gear: Second, MaxSpeed: 35},
		{Gear: Third, MaxSpeed: 60},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		speed float64
		want  Gear
	}{
		{15, First},
		{15.5, Second},
		{35, Second},
		{59.9, Third},
	}
	for _, tt := range tests {
		got, err := p.Select(tt.speed)
		if err != nil {
			t.Fatalf("speed %.1f: unexpected error: %v", tt.speed, err)
		}
		if got != tt.want {
			t.Errorf("speed %.1f: got %s, want %s", tt.speed, got, tt.want)
		}
	}

	if _, err := p.Select(61); !errors.Is(err, ErrNoGear) {
		t.Errorf("speed 61: expected ErrNoGear, got %v", err)
	}
}

func TestNewBandPolicyRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name  string
		bands []Band
	}{
		{"empty", nil},
		{"unknown gear", []Band{{Gear: "REVERSE", MaxSpeed: 5}}},
		{"duplicate gear", []Band{{Gear: First, MaxSpeed: 10}, {Gear: First, MaxSpeed: 20}}},
		{"not increasing", []Band{{Gear: First, MaxSpeed: 20}, {Gear: Second, MaxSpeed: 20}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBandPolicy(tt.bands); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewBandPolicyCopiesInput(t *testing.T) {
	bands := []Band{{Gear: First, MaxSpeed: 10}}
	p, err := NewBandPolicy(bands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bands[0].MaxSpeed = 100
	if p[0].MaxSpeed != 10 {
		t.Errorf("policy changed with input slice: got %.1f, want 10", p[0].MaxSpeed)
	}
}

func TestPolicyFunc(t *testing.T) {
	p := PolicyFunc(func(speed float64) (Gear, error) { return Third, nil })
	got, err := p.Select(1)
	if err != nil || got != Third {
		t.Errorf("got (%s, %v), want (THIRD, nil)", got, err)
	}
}
