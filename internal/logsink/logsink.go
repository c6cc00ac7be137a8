// Package logsink provides destinations for pre-formatted gear-change lines.
package logsink

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

// Logger records a single pre-formatted message.
type Logger interface {
	Log(message string) error
}

// Std writes each message as one line to an io.Writer.
// No prefix or timestamp is added; messages carry their own.
type Std struct {
	l      *log.Logger
	closer io.Closer
}

// NewStd creates a Std writing to w.
func NewStd(w io.Writer) *Std {
	return &Std{l: log.New(w, "", 0)}
}

// NewFile opens path for appending (creating it if needed) and returns a
// Std that writes to it. Close releases the file.
func NewFile(path string) (*Std, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open gear log: %w", err)
	}
	return &Std{l: log.New(f, "", 0), closer: f}, nil
}

// Log writes message followed by a newline.
func (s *Std) Log(message string) error {
	return s.l.Output(2, message)
}

// Close releases the underlying file, if any.
func (s *Std) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Multi fans a message out to every sink. All sinks are attempted even if
// one fails; failures are joined.
type Multi []Logger

// NewMulti creates a Multi from the non-nil sinks.
func NewMulti(sinks ...Logger) Multi {
	var m Multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

// Log writes message to every sink.
func (m Multi) Log(message string) error {
	var errs []error
	for _, s := range m {
		if err := s.Log(message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
