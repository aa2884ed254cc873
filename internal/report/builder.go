// Package report runs the filename parser, the flow record extractor and the
// aggregator over every trace file of a directory and hands the finished
// report to the configured writers.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"FlowMonReport/internal/aggregator"
	"FlowMonReport/internal/config"
	"FlowMonReport/internal/experiment"
	"FlowMonReport/internal/flowmon"
	"FlowMonReport/internal/logging"
	"FlowMonReport/internal/metrics"
	"FlowMonReport/internal/model"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// Builder turns a directory of trace files into a model.Report.
type Builder struct {
	schema     model.Schema
	extension  string
	aggregator model.Aggregator
	failFast   bool
}

// NewBuilder creates a Builder.
func NewBuilder(schema model.Schema, extension string, agg model.Aggregator, failFast bool) *Builder {
	return &Builder{
		schema:     schema,
		extension:  extension,
		aggregator: agg,
		failFast:   failFast,
	}
}

// NewBuilderFromConfig creates a Builder from the report and aggregator sections of cfg.
func NewBuilderFromConfig(cfg *config.Config) (*Builder, error) {
	schema, err := experiment.ParseSchema(cfg.Report.Schema)
	if err != nil {
		return nil, err
	}

	opts := aggregator.Options{
		SkipDegenerate:      cfg.Aggregator.Policy == config.PolicyFiltered,
		ThroughputPrecision: cfg.Aggregator.EffectiveThroughputPrecision(),
		DelayUnit:           aggregator.DelayUnit(cfg.Aggregator.DelayUnit),
	}
	agg, err := aggregator.New(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid aggregator config: %w", err)
	}

	return NewBuilder(schema, cfg.Report.Extension, agg, cfg.Report.FailFast), nil
}

// Build processes every file in dir whose name ends with the configured
// extension, in lexicographic order. With fail-fast set the first failing
// file aborts the build; otherwise it is logged, recorded in
// Report.Skipped and the build continues.
func (b *Builder) Build(ctx context.Context, dir string) (*model.Report, error) {
	start := time.Now()
	defer func() {
		metrics.BuildDuration.Observe(time.Since(start).Seconds())
	}()

	files, err := b.listFiles(dir)
	if err != nil {
		return nil, err
	}
	logger := logging.Logger.WithFields(log.Fields{
		"dir":    dir,
		"schema": b.schema,
		"files":  len(files),
	})
	logger.Info("building report")

	report := &model.Report{
		RunID:     uuid.NewString(),
		Schema:    b.schema,
		Precision: b.aggregator.Precision(),
		Rows:      make([]model.ReportRow, 0, len(files)),
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := b.processFile(filepath.Join(dir, name))
		if err != nil {
			metrics.FilesTotal.WithLabelValues(errorKind(err)).Inc()
			if b.failFast {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			logging.Logger.WithField("file", name).WithError(err).Warn("skipping trace file")
			report.Skipped = append(report.Skipped, model.SkippedFile{File: name, Reason: err.Error()})
			continue
		}
		metrics.FilesTotal.WithLabelValues("ok").Inc()
		report.Rows = append(report.Rows, row)
	}

	report.GeneratedAt = time.Now().UTC()
	logger.WithFields(log.Fields{
		"rows":    len(report.Rows),
		"skipped": len(report.Skipped),
		"run_id":  report.RunID,
	}).Info("report built")
	return report, nil
}

func (b *Builder) listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list trace directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), b.extension) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

func (b *Builder) processFile(path string) (model.ReportRow, error) {
	name := filepath.Base(path)

	key, err := experiment.Parse(name, b.schema)
	if err != nil {
		return model.ReportRow{}, err
	}

	group, err := flowmon.Extract(path)
	if err != nil {
		return model.ReportRow{}, err
	}

	m, err := b.aggregator.Aggregate(group.Records)
	if err != nil {
		return model.ReportRow{}, err
	}
	metrics.FlowsTotal.WithLabelValues("included").Add(float64(m.FlowsIncluded))
	metrics.FlowsTotal.WithLabelValues("skipped").Add(float64(m.FlowsSkipped))

	logging.Logger.WithFields(log.Fields{
		"file":      name,
		"group":     group.Name,
		"flows":     group.Total,
		"in_scope":  len(group.Records),
		"skipped":   m.FlowsSkipped,
		"delivered": m.DeliveryRatio,
	}).Debug("processed trace file")

	return model.ReportRow{File: name, Key: key, Metrics: m}, nil
}

// errorKind maps an error to the result label of metrics.FilesTotal.
func errorKind(err error) string {
	switch {
	case errors.Is(err, experiment.ErrMalformedFilename):
		return "malformed_filename"
	case errors.Is(err, flowmon.ErrMalformedDocument):
		return "malformed_document"
	case errors.Is(err, aggregator.ErrZeroDurationFlow):
		return "zero_duration_flow"
	case errors.Is(err, aggregator.ErrDegenerateAggregate):
		return "degenerate_aggregate"
	default:
		return "io_error"
	}
}
