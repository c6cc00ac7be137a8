package clock

import (
	"errors"
	"time"
)

// Fake is a test double that returns scripted instants.
type Fake struct {
	// Times contains scripted values to return.
	// Each call to CurrentTime() consumes the next one.
	Times []time.Time

	// index tracks current position in Times
	index int

	// Calls counts CurrentTime invocations, including failed ones.
	Calls int

	// Err, if set, will be returned by CurrentTime().
	Err error
}

// NewFake creates a Fake with the given instants.
func NewFake(times ...time.Time) *Fake {
	return &Fake{Times: times}
}

// CurrentTime returns the next scripted instant.
// If instants are exhausted, returns the last one repeatedly.
func (f *Fake) CurrentTime() (time.Time, error) {
	f.Calls++
	if f.Err != nil {
		return time.Time{}, f.Err
	}

	if len(f.Times) == 0 {
		return time.Time{}, errors.New("no times configured")
	}

	t := f.Times[f.index]
	if f.index < len(f.Times)-1 {
		f.index++
	}
	return t, nil
}
