package report

import (
	"context"
	"fmt"
	"io"

	"FlowMonReport/internal/config"
	"FlowMonReport/internal/factory"
	"FlowMonReport/internal/logging"
	"FlowMonReport/internal/metrics"
	"FlowMonReport/internal/model"
	_ "FlowMonReport/internal/writer" // Registers the report writers
)

// Deliver hands the report to every writer in order. A failure of the
// required CSV writer is returned; other failures are logged. Writers that
// implement io.Closer are closed afterwards.
func Deliver(ctx context.Context, report *model.Report, writers []model.Writer) error {
	defer closeWriters(writers)

	for _, w := range writers {
		if err := w.Write(ctx, report); err != nil {
			metrics.WriterErrors.WithLabelValues(w.Name()).Inc()
			if w.Name() == factory.Required {
				return fmt.Errorf("writer %s: %w", w.Name(), err)
			}
			logging.Logger.WithField("writer", w.Name()).WithError(err).Error("failed to write report")
		}
	}
	return nil
}

// Run builds the report for the configured input directory and delivers it
// to the configured writers.
func Run(ctx context.Context, cfg *config.Config) (*model.Report, error) {
	builder, err := NewBuilderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	writers, err := factory.Create(cfg)
	if err != nil {
		return nil, err
	}

	rep, err := builder.Build(ctx, cfg.Report.InputDir)
	if err != nil {
		closeWriters(writers)
		return nil, err
	}

	if err := Deliver(ctx, rep, writers); err != nil {
		return nil, err
	}
	return rep, nil
}

func closeWriters(writers []model.Writer) {
	for _, w := range writers {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logging.Logger.WithField("writer", w.Name()).WithError(err).Warn("failed to close writer")
			}
		}
	}
}
