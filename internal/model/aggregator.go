package model

// Aggregator defines the common interface for deriving metrics from the
// in-scope flows of one trace file, allowing the strict and filtered
// policies to be used interchangeably.
type Aggregator interface {
	Aggregate(records []FlowRecord) (AggregateMetrics, error)

	// Precision reports the rounding applied to each metric.
	Precision() Precision
}
