// Package writer holds the report writers. Each one registers itself with
// the factory under its config type name.
package writer

import (
	"FlowMonReport/internal/config"
	"FlowMonReport/internal/factory"
	"FlowMonReport/internal/logging"
	"FlowMonReport/internal/model"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/gocarina/gocsv"
)

func init() {
	factory.RegisterWriter("csv", func(def config.WriterDef) (model.Writer, error) {
		if def.CSV.Path == "" {
			return nil, fmt.Errorf("csv writer needs a path")
		}
		return NewCSVWriter(def.CSV.Path), nil
	})
}

// decimal prints a metric cell with a fixed number of decimals.
func decimal(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

type nodeFlowRateRow struct {
	Nodes            int    `csv:"Nodes"`
	Flows            int    `csv:"Flows"`
	PacketsPerSecond int    `csv:"Packets Per Second"`
	Throughput       string `csv:"Throughput"`
	EndToEndDelay    string `csv:"End to End Delay"`
	DeliveryRatio    string `csv:"Delivery Ratio"`
	DropRatio        string `csv:"Drop Ratio"`
}

type algorithmRow struct {
	Algorithm     string `csv:"Algo"`
	Nodes         int    `csv:"Nodes"`
	ErrorRate     int    `csv:"Error Rate"`
	Throughput    string `csv:"Throughput"`
	EndToEndDelay string `csv:"End to End Delay"`
	DeliveryRatio string `csv:"Delivery Ratio"`
	DropRatio     string `csv:"Drop Ratio"`
}

type coverageRow struct {
	Nodes            int    `csv:"Nodes"`
	Flows            int    `csv:"Flows"`
	PacketsPerSecond int    `csv:"Packets Per Second"`
	CoverageRange    int    `csv:"Coverage Range"`
	Throughput       string `csv:"Throughput"`
	EndToEndDelay    string `csv:"End to End Delay"`
	DeliveryRatio    string `csv:"Delivery Ratio"`
	DropRatio        string `csv:"Drop Ratio"`
}

// CSVWriter writes the results table, replacing any existing file.
type CSVWriter struct {
	path string
}

// NewCSVWriter creates a writer for the results table at path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) Name() string {
	return "csv"
}

// Write serializes all rows of the report in one pass.
func (w *CSVWriter) Write(ctx context.Context, report *model.Report) error {
	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create results file '%s': %w", w.path, err)
	}
	defer file.Close()

	if err := MarshalCSV(report, file); err != nil {
		return fmt.Errorf("failed to write results file '%s': %w", w.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close results file '%s': %w", w.path, err)
	}

	logging.Logger.WithFields(log.Fields{
		"path": w.path,
		"rows": len(report.Rows),
	}).Info("wrote results table")
	return nil
}

// MarshalCSV writes the header and rows of the report to out using the
// column set of the report's schema.
func MarshalCSV(report *model.Report, out io.Writer) error {
	p := report.Precision
	metrics := func(m model.AggregateMetrics) (string, string, string, string) {
		return decimal(m.Throughput, p.Throughput),
			decimal(m.EndToEndDelay, p.EndToEndDelay),
			decimal(m.DeliveryRatio, p.Ratio),
			decimal(m.DropRatio, p.Ratio)
	}

	switch report.Schema {
	case model.SchemaNodeFlowRate:
		rows := make([]nodeFlowRateRow, 0, len(report.Rows))
		for _, r := range report.Rows {
			row := nodeFlowRateRow{Nodes: r.Key.Nodes, Flows: r.Key.Flows, PacketsPerSecond: r.Key.PacketsPerSecond}
			row.Throughput, row.EndToEndDelay, row.DeliveryRatio, row.DropRatio = metrics(r.Metrics)
			rows = append(rows, row)
		}
		return gocsv.Marshal(rows, out)
	case model.SchemaAlgorithmNodeErrorRate:
		rows := make([]algorithmRow, 0, len(report.Rows))
		for _, r := range report.Rows {
			row := algorithmRow{Algorithm: r.Key.Algorithm, Nodes: r.Key.Nodes, ErrorRate: r.Key.ErrorRate}
			row.Throughput, row.EndToEndDelay, row.DeliveryRatio, row.DropRatio = metrics(r.Metrics)
			rows = append(rows, row)
		}
		return gocsv.Marshal(rows, out)
	case model.SchemaCoverage:
		rows := make([]coverageRow, 0, len(report.Rows))
		for _, r := range report.Rows {
			row := coverageRow{
				Nodes: r.Key.Nodes, Flows: r.Key.Flows,
				PacketsPerSecond: r.Key.PacketsPerSecond, CoverageRange: r.Key.CoverageRange,
			}
			row.Throughput, row.EndToEndDelay, row.DeliveryRatio, row.DropRatio = metrics(r.Metrics)
			rows = append(rows, row)
		}
		return gocsv.Marshal(rows, out)
	default:
		return fmt.Errorf("no column set for schema %q", report.Schema)
	}
}
