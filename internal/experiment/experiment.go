// Package experiment decodes the experiment parameters that the simulation
// scripts embed in trace file names, e.g. "wpan-10-5-200.flowmonitor".
package experiment

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"FlowMonReport/internal/model"
)

// ErrMalformedFilename is returned when a file name does not follow the
// configured schema.
var ErrMalformedFilename = errors.New("malformed filename")

// fieldCount is the number of hyphen-delimited fields each schema needs,
// the leading label included.
var fieldCount = map[model.Schema]int{
	model.SchemaNodeFlowRate:           4,
	model.SchemaAlgorithmNodeErrorRate: 4,
	model.SchemaCoverage:               5,
}

// ParseSchema maps a configured schema name to a model.Schema. The short
// names "A" and "B" are accepted for the two classic layouts.
func ParseSchema(s string) (model.Schema, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", string(model.SchemaNodeFlowRate):
		return model.SchemaNodeFlowRate, nil
	case "b", string(model.SchemaAlgorithmNodeErrorRate):
		return model.SchemaAlgorithmNodeErrorRate, nil
	case string(model.SchemaCoverage):
		return model.SchemaCoverage, nil
	default:
		return "", fmt.Errorf("unknown filename schema %q", s)
	}
}

// Parse decodes the experiment parameters of a trace file name. Directories
// are stripped, and the stem ends at the first dot. Trailing fields beyond
// what the schema needs are ignored.
func Parse(name string, schema model.Schema) (model.ExperimentKey, error) {
	want, ok := fieldCount[schema]
	if !ok {
		return model.ExperimentKey{}, fmt.Errorf("unknown filename schema %q", schema)
	}

	base := filepath.Base(name)
	stem, _, _ := strings.Cut(base, ".")
	fields := strings.Split(stem, "-")
	if len(fields) < want {
		return model.ExperimentKey{}, fmt.Errorf("%w: %q has %d fields, schema %s needs %d",
			ErrMalformedFilename, base, len(fields), schema, want)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	key := model.ExperimentKey{Schema: schema, Label: fields[0]}
	p := &fieldParser{name: base, fields: fields}

	switch schema {
	case model.SchemaNodeFlowRate:
		key.Nodes = p.int(1, "nodes")
		key.Flows = p.int(2, "flows")
		key.PacketsPerSecond = p.int(3, "packets per second")
	case model.SchemaAlgorithmNodeErrorRate:
		key.Algorithm = fields[1]
		if key.Algorithm == "" {
			p.fail(1, "algorithm", "empty")
		}
		key.Nodes = p.int(2, "nodes")
		key.ErrorRate = p.int(3, "error rate")
	case model.SchemaCoverage:
		key.Nodes = p.int(1, "nodes")
		key.Flows = p.int(2, "flows")
		key.PacketsPerSecond = p.int(3, "packets per second")
		key.CoverageRange = p.int(4, "coverage range")
	}

	if p.err != nil {
		return model.ExperimentKey{}, p.err
	}
	return key, nil
}

// fieldParser keeps the first conversion error so the schema mapping above
// reads as a flat list of assignments.
type fieldParser struct {
	name   string
	fields []string
	err    error
}

func (p *fieldParser) int(i int, what string) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.fields[i])
	if err != nil {
		p.fail(i, what, fmt.Sprintf("%q is not an integer", p.fields[i]))
		return 0
	}
	return v
}

func (p *fieldParser) fail(i int, what, reason string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %q field %d (%s): %s", ErrMalformedFilename, p.name, i, what, reason)
	}
}
