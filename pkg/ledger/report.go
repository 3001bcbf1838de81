package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Report is a JSON-serializable snapshot of a completed run's ledger,
// saved alongside the trace log.
type Report struct {
	RunID     string         `json:"run_id"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Ticks     int            `json:"ticks"`
	Glitches  []GlitchEvent  `json:"glitches"`
	Failures  []FailureEvent `json:"failures"`
	Incidents []Incident     `json:"incidents"`
}

// BuildReport snapshots the ledger into a Report.
func (l *Ledger) BuildReport(runID string, start, end time.Time, ticks int) Report {
	return Report{
		RunID:     runID,
		StartTime: start,
		EndTime:   end,
		Ticks:     ticks,
		Glitches:  l.glitches,
		Failures:  l.failures,
		Incidents: l.incidents,
	}
}

// SaveReport writes the report as indented JSON under dir, named after
// the run ID, mirroring the teacher's timestamped-report-file convention.
func SaveReport(dir string, report Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("report-%s.json", report.RunID)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
