// Package clock provides the time source used to stamp gear changes.
// The system implementation wraps time.Now; the fake implementation
// returns scripted instants for tests.
package clock

import "time"

// Clock supplies the current time. Implementations backed by external
// receivers may fail, so the read returns an error.
type Clock interface {
	CurrentTime() (time.Time, error)
}

// System reads the host clock. It never fails.
type System struct{}

// CurrentTime returns time.Now().
func (System) CurrentTime() (time.Time, error) {
	return time.Now(), nil
}

// Func wraps a function as a Clock.
type Func func() time.Time

// CurrentTime calls the wrapped function.
func (f Func) CurrentTime() (time.Time, error) {
	return f(), nil
}
