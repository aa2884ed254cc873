package writer

import (
	"FlowMonReport/internal/config"
	"FlowMonReport/internal/factory"
	"FlowMonReport/internal/logging"
	"FlowMonReport/internal/model"
	"context"
	"fmt"
	"regexp"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/apex/log"
)

func init() {
	factory.RegisterWriter("clickhouse", func(def config.WriterDef) (model.Writer, error) {
		w, err := NewClickHouseWriter(context.Background(), def.ClickHouse)
		if err != nil {
			return nil, err
		}
		return w, nil
	})
}

const defaultReportTable = "flow_reports"

const createReportTableStatement = `
CREATE TABLE IF NOT EXISTS %s (
    RunID            String,
    GeneratedAt      DateTime,
    File             String,
    Label            String,
    Schema           String,
    Algorithm        String,
    Nodes            UInt32,
    Flows            UInt32,
    PacketsPerSecond UInt32,
    ErrorRate        UInt32,
    CoverageRange    UInt32,
    Throughput       Float64,
    EndToEndDelay    Float64,
    DeliveryRatio    Float64,
    DropRatio        Float64,
    PacketsSent      UInt64,
    PacketsReceived  UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(GeneratedAt)
ORDER BY (Schema, GeneratedAt, File);
`

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ClickHouseWriter appends report rows to a ClickHouse table.
type ClickHouseWriter struct {
	conn  driver.Conn
	table string
}

// NewClickHouseWriter connects to ClickHouse and ensures the report table exists.
func NewClickHouseWriter(ctx context.Context, cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	table := cfg.Table
	if table == "" {
		table = defaultReportTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid clickhouse table name %q", table)
	}

	conn, err := connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(ctx, fmt.Sprintf(createReportTableStatement, table)); err != nil {
		return nil, fmt.Errorf("failed to create %s table: %w", table, err)
	}
	logging.Logger.WithField("table", table).Info("connected to ClickHouse and ensured report table exists")

	return &ClickHouseWriter{conn: conn, table: table}, nil
}

func connect(ctx context.Context, cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

func (w *ClickHouseWriter) Name() string {
	return "clickhouse"
}

// rowValues returns the column values of one row in table order.
func rowValues(report *model.Report, row model.ReportRow) []interface{} {
	k, m := row.Key, row.Metrics
	return []interface{}{
		report.RunID,
		report.GeneratedAt,
		row.File,
		k.Label,
		string(k.Schema),
		k.Algorithm,
		uint32(k.Nodes),
		uint32(k.Flows),
		uint32(k.PacketsPerSecond),
		uint32(k.ErrorRate),
		uint32(k.CoverageRange),
		m.Throughput,
		m.EndToEndDelay,
		m.DeliveryRatio,
		m.DropRatio,
		uint64(m.PacketsSent),
		uint64(m.PacketsReceived),
	}
}

// Write sends all rows of the report in a single batch.
func (w *ClickHouseWriter) Write(ctx context.Context, report *model.Report) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO "+w.table)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, row := range report.Rows {
		if err := batch.Append(rowValues(report, row)...); err != nil {
			return fmt.Errorf("failed to append row for %s to batch: %w", row.File, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	logging.Logger.WithFields(log.Fields{
		"table": w.table,
		"rows":  len(report.Rows),
	}).Info("wrote report rows to ClickHouse")
	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
