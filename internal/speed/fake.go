package speed

import "errors"

// FakeSpeedometer is a test double that returns scripted readings.
type FakeSpeedometer struct {
	// Samples contains scripted readings to return.
	// Each call to Speed() consumes the next sample.
	Samples []float64

	// index tracks current position in Samples
	index int

	// Calls counts Speed invocations, including failed ones.
	Calls int

	// Err, if set, will be returned by Speed().
	Err error
}

// NewFakeSpeedometer creates a FakeSpeedometer with the given readings.
func NewFakeSpeedometer(samples ...float64) *FakeSpeedometer {
	return &FakeSpeedometer{Samples: samples}
}

// Speed returns the next scripted reading.
// If readings are exhausted, returns the last one repeatedly.
func (f *FakeSpeedometer) Speed() (float64, error) {
	f.Calls++
	if f.Err != nil {
		return 0, f.Err
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s, nil
}

// Reset rewinds to the first sample and clears the call count.
func (f *FakeSpeedometer) Reset() {
	f.index = 0
	f.Calls = 0
}
