package tracelog_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jihwankim/cascadesim/pkg/tracelog"
)

func TestLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := tracelog.New(tracelog.Config{Level: tracelog.LevelInfo, Format: tracelog.FormatJSON, Output: &buf})
	l.Info("run starting", "ticks", 10)

	if !bytes.Contains(buf.Bytes(), []byte(`"ticks":10`)) {
		t.Errorf("expected field in output, got %s", buf.String())
	}
}

func TestLogger_SuppressesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := tracelog.New(tracelog.Config{Level: tracelog.LevelWarn, Format: tracelog.FormatJSON, Output: &buf})
	l.Info("should not appear")

	if buf.Len() != 0 {
		t.Errorf("expected no output below configured level, got %s", buf.String())
	}
}

func TestSink_OpenRunCreatesTimestampedDir(t *testing.T) {
	tmp := t.TempDir()
	now := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)

	s, err := tracelog.OpenRun(tmp, now)
	if err != nil {
		t.Fatalf("OpenRun: %v", err)
	}
	defer s.Close()

	want := filepath.Join(tmp, "20260731-100000")
	if s.Dir != want {
		t.Errorf("Dir = %q, want %q", s.Dir, want)
	}
	if s.RunID == "" {
		t.Error("expected non-empty RunID")
	}
}

func TestSink_LogWritesAndFlushes(t *testing.T) {
	tmp := t.TempDir()
	s, err := tracelog.OpenRun(tmp, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("OpenRun: %v", err)
	}

	s.Log("TICK 1", "glitch applied to %s", "PaymentAPI")
	s.Close()

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Contains(data, []byte("[TICK 1] glitch applied to PaymentAPI")) {
		t.Errorf("expected trace line in file, got %s", data)
	}
}
