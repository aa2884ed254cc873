package writer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"FlowMonReport/internal/model"
)

func TestSummaryWriter_Write(t *testing.T) {
	// 1. Create a sample report
	report := &model.Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Schema:      model.SchemaNodeFlowRate,
		Rows: []model.ReportRow{
			{File: "wpan-10-5-200.flowmonitor", Metrics: sampleMetrics()},
			{File: "wpan-20-5-200.flowmonitor", Metrics: sampleMetrics()},
		},
		Skipped: []model.SkippedFile{{File: "wpan-x-5-200.flowmonitor", Reason: "malformed filename"}},
	}

	// 2. Write it below a directory that does not exist yet
	path := filepath.Join(t.TempDir(), "out", "summary.json")
	if err := NewSummaryWriter(path).Write(context.Background(), report); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// 3. Verify summary content
	summaryBytes, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read summary.json: %v", err)
	}
	var summary SummaryData
	if err := json.Unmarshal(summaryBytes, &summary); err != nil {
		t.Fatalf("Failed to unmarshal summary.json: %v", err)
	}
	if summary.RunID != "run-1" {
		t.Errorf("Expected RunID to be 'run-1', got '%s'", summary.RunID)
	}
	if summary.GeneratedAt != "2024-03-01T12:00:00Z" {
		t.Errorf("Unexpected GeneratedAt '%s'", summary.GeneratedAt)
	}
	if summary.Rows != 2 {
		t.Errorf("Expected Rows to be 2, got %d", summary.Rows)
	}
	if summary.PacketsSent != 400 || summary.PacketsReceived != 394 {
		t.Errorf("Unexpected packet totals: sent %d, received %d", summary.PacketsSent, summary.PacketsReceived)
	}
	if summary.FlowsIncluded != 4 {
		t.Errorf("Expected FlowsIncluded to be 4, got %d", summary.FlowsIncluded)
	}
	if len(summary.SkippedFiles) != 1 || summary.SkippedFiles[0].File != "wpan-x-5-200.flowmonitor" {
		t.Errorf("Unexpected skipped files: %+v", summary.SkippedFiles)
	}
}

func TestSummarizeEmptyReport(t *testing.T) {
	summary := Summarize(&model.Report{Schema: model.SchemaCoverage})
	if summary.SkippedFiles == nil {
		t.Error("Expected an empty, non-nil skipped file list")
	}
	if summary.Rows != 0 || summary.PacketsSent != 0 {
		t.Errorf("Expected zero totals, got %+v", summary)
	}
}
