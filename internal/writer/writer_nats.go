package writer

import (
	"FlowMonReport/internal/config"
	"FlowMonReport/internal/factory"
	"FlowMonReport/internal/logging"
	"FlowMonReport/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func init() {
	factory.RegisterWriter("nats", func(def config.WriterDef) (model.Writer, error) {
		w, err := NewNATSWriter(def.NATS)
		if err != nil {
			return nil, err
		}
		return w, nil
	})
}

const (
	defaultReportSubject = "flowreport.rows"
	flushTimeout         = 5 * time.Second
)

// NATSWriter publishes each report row as a protobuf message.
type NATSWriter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSWriter creates a new NATS publisher.
func NewNATSWriter(cfg config.NATSConfig) (*NATSWriter, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	subject := cfg.Subject
	if subject == "" {
		subject = defaultReportSubject
	}

	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	logging.Logger.WithField("url", url).Info("connected to NATS server")
	return &NATSWriter{nc: nc, subject: subject}, nil
}

func (w *NATSWriter) Name() string {
	return "nats"
}

// rowMessage converts a report row to a protobuf Struct.
func rowMessage(report *model.Report, row model.ReportRow) (*structpb.Struct, error) {
	k, m := row.Key, row.Metrics
	return structpb.NewStruct(map[string]interface{}{
		"run_id":             report.RunID,
		"generated_at":       report.GeneratedAt.UTC().Format(time.RFC3339),
		"file":               row.File,
		"label":              k.Label,
		"schema":             string(k.Schema),
		"algorithm":          k.Algorithm,
		"nodes":              k.Nodes,
		"flows":              k.Flows,
		"packets_per_second": k.PacketsPerSecond,
		"error_rate":         k.ErrorRate,
		"coverage_range":     k.CoverageRange,
		"throughput_kbps":    m.Throughput,
		"end_to_end_delay":   m.EndToEndDelay,
		"delivery_ratio":     m.DeliveryRatio,
		"drop_ratio":         m.DropRatio,
		"packets_sent":       m.PacketsSent,
		"packets_received":   m.PacketsReceived,
	})
}

// Write serializes every row to Protobuf and publishes it to the configured subject.
func (w *NATSWriter) Write(ctx context.Context, report *model.Report) error {
	for _, row := range report.Rows {
		msg, err := rowMessage(report, row)
		if err != nil {
			return fmt.Errorf("failed to convert row for %s: %w", row.File, err)
		}
		data, err := proto.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal row for %s: %w", row.File, err)
		}
		if err := w.nc.Publish(w.subject, data); err != nil {
			return fmt.Errorf("failed to publish row for %s: %w", row.File, err)
		}
	}
	// FlushWithContext requires a deadline.
	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := w.nc.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}

	logging.Logger.WithFields(log.Fields{
		"subject": w.subject,
		"rows":    len(report.Rows),
	}).Info("published report rows")
	return nil
}

// Close drains and closes the NATS connection.
func (w *NATSWriter) Close() error {
	return w.nc.Drain()
}
