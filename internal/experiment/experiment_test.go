package experiment

import (
	"errors"
	"testing"

	"FlowMonReport/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		schema model.Schema
		want   model.ExperimentKey
	}{
		{
			name:   "node flow rate",
			file:   "wpan-10-5-200.flowmonitor",
			schema: model.SchemaNodeFlowRate,
			want: model.ExperimentKey{
				Schema: model.SchemaNodeFlowRate, Label: "wpan",
				Nodes: 10, Flows: 5, PacketsPerSecond: 200,
			},
		},
		{
			name:   "algorithm node error rate",
			file:   "run-aodv-20-5.flowmonitor",
			schema: model.SchemaAlgorithmNodeErrorRate,
			want: model.ExperimentKey{
				Schema: model.SchemaAlgorithmNodeErrorRate, Label: "run",
				Algorithm: "aodv", Nodes: 20, ErrorRate: 5,
			},
		},
		{
			name:   "coverage",
			file:   "wpan-40-10-300-4.flowmonitor",
			schema: model.SchemaCoverage,
			want: model.ExperimentKey{
				Schema: model.SchemaCoverage, Label: "wpan",
				Nodes: 40, Flows: 10, PacketsPerSecond: 300, CoverageRange: 4,
			},
		},
		{
			name:   "directory and extra fields are ignored",
			file:   "/tmp/traces/w-20-10-100-2.flowmonitor",
			schema: model.SchemaNodeFlowRate,
			want: model.ExperimentKey{
				Schema: model.SchemaNodeFlowRate, Label: "w",
				Nodes: 20, Flows: 10, PacketsPerSecond: 100,
			},
		},
		{
			name:   "whitespace around fields",
			file:   "wpanB-TcpNewReno- 30 -10.flowmonitor",
			schema: model.SchemaAlgorithmNodeErrorRate,
			want: model.ExperimentKey{
				Schema: model.SchemaAlgorithmNodeErrorRate, Label: "wpanB",
				Algorithm: "TcpNewReno", Nodes: 30, ErrorRate: 10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.file, tt.schema)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		file   string
		schema model.Schema
	}{
		{"wpan-10-5.flowmonitor", model.SchemaNodeFlowRate},
		{"wpan-ten-5-200.flowmonitor", model.SchemaNodeFlowRate},
		{"wpan-10-5-2.5.flowmonitor", model.SchemaCoverage},
		{"run-aodv-20-x.flowmonitor", model.SchemaAlgorithmNodeErrorRate},
		{"run--20-5.flowmonitor", model.SchemaAlgorithmNodeErrorRate},
		{"results.csv", model.SchemaNodeFlowRate},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := Parse(tt.file, tt.schema)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedFilename), "got %v", err)
		})
	}
}

func TestParseSchema(t *testing.T) {
	for in, want := range map[string]model.Schema{
		"A":                         model.SchemaNodeFlowRate,
		"node-flow-rate":            model.SchemaNodeFlowRate,
		"b":                         model.SchemaAlgorithmNodeErrorRate,
		"algorithm-node-error-rate": model.SchemaAlgorithmNodeErrorRate,
		" coverage ":                model.SchemaCoverage,
	} {
		got, err := ParseSchema(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSchema("C")
	assert.Error(t, err)
}
