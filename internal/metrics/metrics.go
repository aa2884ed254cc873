// Package metrics defines the prometheus metrics recorded while building reports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesTotal counts trace files by outcome: "ok", or the error kind
	// that kept the file out of the report.
	FilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowreport_files_total",
			Help: "Number of trace files processed, by result.",
		},
		[]string{"result"},
	)
	// FlowsTotal counts in-scope flow records by whether they were summed.
	FlowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowreport_flows_total",
			Help: "Number of in-scope flow records, by outcome.",
		},
		[]string{"outcome"},
	)
	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowreport_build_duration_seconds",
			Help:    "How long building a report over a directory takes.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
	)
	WriterErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowreport_writer_errors_total",
			Help: "Number of failed report writes, by writer type.",
		},
		[]string{"writer"},
	)
)
