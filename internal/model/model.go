package model

import (
	"time"
)

// Schema identifies how the hyphen-delimited filename stem of a trace file
// maps to experiment parameters.
type Schema string

const (
	// SchemaNodeFlowRate is <label>-<nodes>-<flows>-<packetsPerSecond>.
	SchemaNodeFlowRate Schema = "node-flow-rate"
	// SchemaAlgorithmNodeErrorRate is <label>-<algorithm>-<nodes>-<errorRate>.
	SchemaAlgorithmNodeErrorRate Schema = "algorithm-node-error-rate"
	// SchemaCoverage is <label>-<nodes>-<flows>-<packetsPerSecond>-<range>.
	SchemaCoverage Schema = "coverage"
)

// FlowRecord holds the counters of a single FlowMonitor <Flow> element.
// Time-valued attributes are stored in nanoseconds.
type FlowRecord struct {
	FlowID            int64
	TxPackets         int64
	RxPackets         int64
	RxBytes           int64
	DelaySum          float64
	TimeFirstRxPacket float64
	TimeLastRxPacket  float64
}

// ReceiveWindow returns the time between the first and the last received
// packet, in seconds.
func (r FlowRecord) ReceiveWindow() float64 {
	return (r.TimeLastRxPacket - r.TimeFirstRxPacket) * 1e-9
}

// ExperimentKey holds the experiment parameters decoded from a file name.
// Which fields are meaningful depends on Schema.
type ExperimentKey struct {
	Schema           Schema `json:"schema"`
	Label            string `json:"label"`
	Nodes            int    `json:"nodes"`
	Flows            int    `json:"flows,omitempty"`
	PacketsPerSecond int    `json:"packets_per_second,omitempty"`
	Algorithm        string `json:"algorithm,omitempty"`
	ErrorRate        int    `json:"error_rate,omitempty"`
	CoverageRange    int    `json:"coverage_range,omitempty"`
}

// AggregateMetrics are the metrics derived from the in-scope flows of one file.
type AggregateMetrics struct {
	Throughput    float64 `json:"throughput"`       // kbit/s
	EndToEndDelay float64 `json:"end_to_end_delay"` // us or ms, see aggregator.Options
	DeliveryRatio float64 `json:"delivery_ratio"`   // percent
	DropRatio     float64 `json:"drop_ratio"`       // percent

	PacketsSent     int64 `json:"packets_sent"`
	PacketsReceived int64 `json:"packets_received"`
	FlowsIncluded   int   `json:"flows_included"`
	FlowsSkipped    int   `json:"flows_skipped"`
}

// ReportRow is one line of the results table.
type ReportRow struct {
	File    string           `json:"file"`
	Key     ExperimentKey    `json:"key"`
	Metrics AggregateMetrics `json:"metrics"`
}

// SkippedFile records an input file that was left out of the report.
type SkippedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Report is the outcome of one pass over a trace directory.
type Report struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Schema      Schema        `json:"schema"`
	Precision   Precision     `json:"precision"`
	Rows        []ReportRow   `json:"rows"`
	Skipped     []SkippedFile `json:"skipped"`
}

// Precision is the number of decimal places each metric is rounded to.
type Precision struct {
	Throughput    int `json:"throughput"`
	EndToEndDelay int `json:"end_to_end_delay"`
	Ratio         int `json:"ratio"`
}
