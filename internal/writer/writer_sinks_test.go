package writer

import (
	"context"
	"testing"
	"time"

	"FlowMonReport/internal/config"
	"FlowMonReport/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func sampleReport() (*model.Report, model.ReportRow) {
	row := model.ReportRow{
		File: "wpanB-TcpNewReno-20-5.flowmonitor",
		Key: model.ExperimentKey{
			Schema: model.SchemaAlgorithmNodeErrorRate, Label: "wpanB",
			Algorithm: "TcpNewReno", Nodes: 20, ErrorRate: 5,
		},
		Metrics: sampleMetrics(),
	}
	report := &model.Report{
		RunID:       "0f3c",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Schema:      model.SchemaAlgorithmNodeErrorRate,
		Rows:        []model.ReportRow{row},
	}
	return report, row
}

func TestRowValuesMatchTableColumns(t *testing.T) {
	report, row := sampleReport()
	values := rowValues(report, row)

	require.Len(t, values, 17)
	assert.Equal(t, "0f3c", values[0])
	assert.Equal(t, report.GeneratedAt, values[1])
	assert.Equal(t, row.File, values[2])
	assert.Equal(t, "algorithm-node-error-rate", values[4])
	assert.Equal(t, "TcpNewReno", values[5])
	assert.Equal(t, uint32(20), values[6])
	assert.Equal(t, uint32(5), values[9])
	assert.Equal(t, 1953.125, values[11])
	assert.Equal(t, uint64(197), values[16])
}

func TestClickHouseWriterRejectsTableName(t *testing.T) {
	_, err := NewClickHouseWriter(context.Background(), config.ClickHouseConfig{Table: "reports; DROP TABLE x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid clickhouse table name")
}

func TestRowMessageSurvivesWireEncoding(t *testing.T) {
	report, row := sampleReport()
	msg, err := rowMessage(report, row)
	require.NoError(t, err)

	data, err := proto.Marshal(msg)
	require.NoError(t, err)

	var decoded structpb.Struct
	require.NoError(t, proto.Unmarshal(data, &decoded))
	fields := decoded.AsMap()

	assert.Equal(t, "0f3c", fields["run_id"])
	assert.Equal(t, "2024-03-01T12:00:00Z", fields["generated_at"])
	assert.Equal(t, "TcpNewReno", fields["algorithm"])
	assert.Equal(t, 20.0, fields["nodes"])
	assert.Equal(t, 98.5, fields["delivery_ratio"])
	assert.Equal(t, 200.0, fields["packets_sent"])
}
