package logsink

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStdWritesLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewStd(&buf)

	if err := s.Log("1970-01-01 00:00:00 Gear changed to FIRST"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "1970-01-01 00:00:00 Gear changed to FIRST\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: unexpected error: %v", err)
	}
}

func TestFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gear.log")

	for _, msg := range []string{"one", "two"} {
		s, err := NewFile(path)
		if err != nil {
			t.Fatalf("NewFile: %v", err)
		}
		if err := s.Log(msg); err != nil {
			t.Fatalf("Log: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Errorf("got %q, want %q", data, "one\ntwo\n")
	}
}

func TestNewFileBadPath(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing", "gear.log"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := NewFake(), NewFake()
	m := NewMulti(a, nil, b)

	if len(m) != 2 {
		t.Fatalf("expected nil sink to be skipped, got %d sinks", len(m))
	}
	if err := m.Log("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, f := range []*Fake{a, b} {
		if len(f.Messages) != 1 || f.Messages[0] != "hello" {
			t.Errorf("sink %d: got %v, want [hello]", i, f.Messages)
		}
	}
}

func TestMultiContinuesPastFailure(t *testing.T) {
	a, b := NewFake(), NewFake()
	a.Err = errors.New("broker down")
	m := NewMulti(a, b)

	err := m.Log("hello")
	if !errors.Is(err, a.Err) {
		t.Errorf("expected joined error to contain %v, got %v", a.Err, err)
	}
	if len(b.Messages) != 1 {
		t.Errorf("second sink: got %d messages, want 1", len(b.Messages))
	}
}

func TestFakeError(t *testing.T) {
	f := NewFake()
	f.Err = errors.New("full")

	if err := f.Log("x"); err != f.Err {
		t.Errorf("got %v, want %v", err, f.Err)
	}
	if len(f.Messages) != 0 {
		t.Errorf("expected no messages on error, got %d", len(f.Messages))
	}

	f.Reset()
	if f.Calls != 0 || f.Err != nil {
		t.Error("Reset did not clear state")
	}
}
