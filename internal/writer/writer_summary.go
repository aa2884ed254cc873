package writer

import (
	"FlowMonReport/internal/config"
	"FlowMonReport/internal/factory"
	"FlowMonReport/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func init() {
	factory.RegisterWriter("summary", func(def config.WriterDef) (model.Writer, error) {
		path := def.Summary.Path
		if path == "" {
			path = "summary.json"
		}
		return NewSummaryWriter(path), nil
	})
}

// SummaryData holds the metadata of one report run.
type SummaryData struct {
	RunID           string              `json:"run_id"`
	GeneratedAt     string              `json:"generated_at"`
	Schema          string              `json:"schema"`
	Rows            int                 `json:"rows"`
	FlowsIncluded   int                 `json:"flows_included"`
	FlowsSkipped    int                 `json:"flows_skipped"`
	PacketsSent     int64               `json:"packets_sent"`
	PacketsReceived int64               `json:"packets_received"`
	SkippedFiles    []model.SkippedFile `json:"skipped_files"`
}

// SummaryWriter writes the run summary as indented JSON.
type SummaryWriter struct {
	path string
}

// NewSummaryWriter creates a new writer for the run summary.
func NewSummaryWriter(path string) *SummaryWriter {
	return &SummaryWriter{path: path}
}

func (w *SummaryWriter) Name() string {
	return "summary"
}

// Summarize totals the rows of a report.
func Summarize(report *model.Report) SummaryData {
	summary := SummaryData{
		RunID:        report.RunID,
		GeneratedAt:  report.GeneratedAt.UTC().Format(time.RFC3339),
		Schema:       string(report.Schema),
		Rows:         len(report.Rows),
		SkippedFiles: report.Skipped,
	}
	if summary.SkippedFiles == nil {
		summary.SkippedFiles = []model.SkippedFile{}
	}
	for _, row := range report.Rows {
		summary.FlowsIncluded += row.Metrics.FlowsIncluded
		summary.FlowsSkipped += row.Metrics.FlowsSkipped
		summary.PacketsSent += row.Metrics.PacketsSent
		summary.PacketsReceived += row.Metrics.PacketsReceived
	}
	return summary
}

// Write encodes the summary of the report to the configured path.
func (w *SummaryWriter) Write(ctx context.Context, report *model.Report) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	summaryFile, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	jsonEncoder := json.NewEncoder(summaryFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(Summarize(report)); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}
	return nil
}
