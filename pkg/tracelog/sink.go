package tracelog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Sink is the bracket-tagged, human-readable simulation trace written to
// runs/<YYYYMMDD-HHMMSS>/output.log. Every call flushes immediately so a
// crash mid-run leaves a readable partial trace.
type Sink struct {
	RunID string
	Dir   string

	f *os.File
	w *bufio.Writer
}

// OpenRun creates runs/<timestamp>/ under baseDir and opens output.log
// inside it, tagging the run with a fresh random UUID.
func OpenRun(baseDir string, now time.Time) (*Sink, error) {
	dir := filepath.Join(baseDir, now.Format("20060102-150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tracelog: create run dir: %w", err)
	}

	path := filepath.Join(dir, "output.log")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("tracelog: open output log: %w", err)
	}

	return &Sink{
		RunID: uuid.NewString(),
		Dir:   dir,
		f:     f,
		w:     bufio.NewWriter(f),
	}, nil
}

// Log writes one bracket-tagged line, e.g. "[2026-07-31T10:00:00Z] [TICK 3] message".
func (s *Sink) Log(tag, format string, args ...interface{}) {
	ts := time.Now().UTC().Format(time.RFC3339)
	line := fmt.Sprintf("[%s] [%s] %s\n", ts, tag, fmt.Sprintf(format, args...))
	s.w.WriteString(line)
	s.w.Flush()
}

// Raw writes a pre-formatted block verbatim, followed by a newline. Used
// for the final [METRICS] text dump.
func (s *Sink) Raw(block string) {
	s.w.WriteString(block)
	s.w.WriteString("\n")
	s.w.Flush()
}

// Path returns the path of the open log file, joined from the baseDir
// given to OpenRun (relative if baseDir is relative).
func (s *Sink) Path() string {
	return s.f.Name()
}

// Close flushes and closes the underlying file. Safe to call once.
func (s *Sink) Close() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	return s.f.Close()
}
