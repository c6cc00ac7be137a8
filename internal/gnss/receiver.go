package gnss

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Defaults for a u-blox style receiver on the Pi UART.
const (
	DefaultDevice = "/dev/ttyAMA0"
	DefaultBaud   = 9600
	DefaultMaxAge = 3 * time.Second
)

// ErrStaleFix is returned when the last fix is older than the receiver's
// max age.
var ErrStaleFix = errors.New("gnss: stale fix")

// Receiver keeps the latest fix read from an NMEA stream. A background
// goroutine reads the stream; Speed and CurrentTime never block on I/O.
type Receiver struct {
	src    io.ReadCloser
	now    func() time.Time
	maxAge time.Duration

	mu      sync.Mutex
	fix     Fix
	fixAt   time.Time
	haveFix bool

	firstFix chan struct{} // closed on the first valid fix
	gotFix   bool
	done     chan struct{}
}

// Open opens a serial device and starts reading NMEA from it. Zero baud
// or maxAge select the defaults.
func Open(device string, baud int, maxAge time.Duration) (*Receiver, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("nmea open %s: %w", device, err)
	}
	return NewReceiver(port, time.Now, maxAge), nil
}

// NewReceiver starts reading NMEA sentences from src. now is injectable
// for tests. The read loop ends when src returns an error or EOF.
func NewReceiver(src io.ReadCloser, now func() time.Time, maxAge time.Duration) *Receiver {
	r := &Receiver{
		src:      src,
		now:      now,
		maxAge:   maxAge,
		firstFix: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.readLoop()
	return r
}

func (r *Receiver) readLoop() {
	defer close(r.done)

	sc := bufio.NewScanner(r.src)
	for sc.Scan() {
		fix, err := ParseRMC(sc.Text())
		switch {
		case err == nil:
			r.mu.Lock()
			r.fix = fix
			r.fixAt = r.now()
			r.haveFix = true
			if !r.gotFix {
				r.gotFix = true
				close(r.firstFix)
			}
			r.mu.Unlock()
		case errors.Is(err, ErrNoFix):
			r.mu.Lock()
			r.haveFix = false
			r.mu.Unlock()
		}
	}
	if err := sc.Err(); err != nil {
		log.Printf("gnss: read loop ended: %v", err)
	}
}

// latest returns the current fix and when it was received.
func (r *Receiver) latest() (Fix, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.haveFix {
		return Fix{}, time.Time{}, ErrNoFix
	}
	if r.maxAge > 0 && r.now().Sub(r.fixAt) > r.maxAge {
		return Fix{}, time.Time{}, ErrStaleFix
	}
	return r.fix, r.fixAt, nil
}

// Speed returns the latest speed over ground in km/h.
func (r *Receiver) Speed() (float64, error) {
	fix, _, err := r.latest()
	if err != nil {
		return 0, err
	}
	return fix.SpeedKmh(), nil
}

// CurrentTime returns the latest fix time advanced by the local time
// elapsed since it was received.
func (r *Receiver) CurrentTime() (time.Time, error) {
	fix, at, err := r.latest()
	if err != nil {
		return time.Time{}, err
	}
	return fix.Time.Add(r.now().Sub(at)), nil
}

// WaitFix blocks until the first valid fix arrives. It returns ErrNoFix if
// the stream ends first, or ctx.Err() if ctx is done first.
func (r *Receiver) WaitFix(ctx context.Context) error {
	select {
	case <-r.firstFix:
		return nil
	case <-r.done:
		select {
		case <-r.firstFix:
			return nil
		default:
			return ErrNoFix
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the read loop exits.
func (r *Receiver) Done() <-chan struct{} {
	return r.done
}

// Close closes the source and waits for the read loop to exit.
func (r *Receiver) Close() error {
	err := r.src.Close()
	<-r.done
	return err
}
