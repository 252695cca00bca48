package migrate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Report is a serializable summary of a run.
type Report struct {
	RunID      string          `json:"run_id"`
	File       string          `json:"file"`
	Source     string          `json:"source"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Changed    bool            `json:"changed"`
	Written    bool            `json:"written"`
	Backup     string          `json:"backup,omitempty"`
	Stats      Stats           `json:"stats"`
	Findings   []ReportFinding `json:"findings"`
}

// ReportFinding is the serialized form of a Finding.
type ReportFinding struct {
	Pass     string `json:"pass"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Selector string `json:"selector,omitempty"`
}

// NewReport builds a Report from a run result.
func NewReport(res *Result) *Report {
	r := &Report{
		RunID:      res.RunID,
		File:       res.Path,
		Source:     res.SourcePath,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Changed:    res.Changed,
		Written:    res.Written,
		Backup:     res.BackupPath,
		Stats:      res.Stats,
		Findings:   make([]ReportFinding, 0, len(res.Findings)),
	}
	for _, f := range res.Findings {
		r.Findings = append(r.Findings, ReportFinding{
			Pass:     f.Pass,
			Rule:     f.Rule,
			Severity: f.Severity.String(),
			Message:  f.Message,
			Line:     f.Pos.Line,
			Selector: f.Selector,
		})
	}
	return r
}

// SaveReport writes the report as indented JSON, creating parent directories.
func SaveReport(r *Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// LoadReport reads a report written by SaveReport.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &r, nil
}
