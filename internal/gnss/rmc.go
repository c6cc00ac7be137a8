// Package gnss reads position fixes from a GNSS receiver speaking NMEA 0183.
// A Receiver serves as both a speed source (speed over ground) and a
// time source (fix time) for the controller.
package gnss

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KnotsToKmh converts NMEA speed over ground to km/h.
const KnotsToKmh = 1.852

var (
	// ErrNotRMC is returned for sentences other than xxRMC.
	ErrNotRMC = errors.New("gnss: not an RMC sentence")
	// ErrChecksum is returned when the sentence checksum does not match.
	ErrChecksum = errors.New("gnss: checksum mismatch")
	// ErrNoFix is returned when the receiver reports no valid fix.
	ErrNoFix = errors.New("gnss: no fix")
)

// Fix is one valid RMC report.
type Fix struct {
	Time       time.Time // UTC
	SpeedKnots float64
}

// SpeedKmh returns the speed over ground in km/h.
func (f Fix) SpeedKmh() float64 {
	return f.SpeedKnots * KnotsToKmh
}

// ParseRMC parses a $GPRMC/$GNRMC sentence.
// Field 1 = hhmmss.ss, 2 = A/V, 7 = speed (knots), 9 = ddmmyy.
func ParseRMC(line string) (Fix, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return Fix{}, ErrNotRMC
	}

	body := line[1:]
	if i := strings.IndexByte(body, '*'); i >= 0 {
		want, err := strconv.ParseUint(body[i+1:], 16, 8)
		if err != nil {
			return Fix{}, fmt.Errorf("%w: bad checksum field %q", ErrChecksum, body[i+1:])
		}
		body = body[:i]
		if Checksum(body) != byte(want) {
			return Fix{}, ErrChecksum
		}
	}

	parts := strings.Split(body, ",")
	if len(parts[0]) != 5 || !strings.HasSuffix(parts[0], "RMC") {
		return Fix{}, ErrNotRMC
	}
	if len(parts) < 10 {
		return Fix{}, fmt.Errorf("gnss: short RMC sentence (%d fields)", len(parts))
	}
	if parts[2] != "A" {
		return Fix{}, ErrNoFix
	}

	t, err := time.ParseInLocation("020106 150405", parts[9]+" "+parts[1], time.UTC)
	if err != nil {
		return Fix{}, fmt.Errorf("gnss: RMC time: %w", err)
	}

	knots, err := strconv.ParseFloat(parts[7], 64)
	if err != nil {
		return Fix{}, fmt.Errorf("gnss: RMC speed: %w", err)
	}

	return Fix{Time: t, SpeedKnots: knots}, nil
}

// Checksum is the XOR of every byte between '$' and '*'.
func Checksum(body string) byte {
	var c byte
	for i := 0; i < len(body); i++ {
		c ^= body[i]
	}
	return c
}
