package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Aggregation policies.
const (
	PolicyStrict   = "strict"
	PolicyFiltered = "filtered"
)

// ReportConfig describes where trace files are read from and how their names
// are interpreted.
type ReportConfig struct {
	InputDir  string `yaml:"input_dir"`
	Extension string `yaml:"extension"`
	Schema    string `yaml:"schema"`
	FailFast  bool   `yaml:"fail_fast"`
}

// AggregatorConfig selects the aggregation policy and rounding.
type AggregatorConfig struct {
	Policy string `yaml:"policy"`
	// ThroughputPrecision overrides the policy default (0 strict, 2 filtered).
	ThroughputPrecision *int   `yaml:"throughput_precision"`
	DelayUnit           string `yaml:"delay_unit"`
}

// CSVConfig holds the configuration for the results table.
type CSVConfig struct {
	Path string `yaml:"path"`
}

// SummaryConfig holds the configuration for the JSON run summary.
type SummaryConfig struct {
	Path string `yaml:"path"`
}

// ClickHouseConfig holds the connection details for ClickHouse.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Table    string `yaml:"table"`
}

// NATSConfig holds the connection details for the NATS publisher.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// WriterDef defines a single report writer from the config file.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	CSV        CSVConfig        `yaml:"csv"`
	Summary    SummaryConfig    `yaml:"summary"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// APIConfig holds the listen addresses of the report API.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	GRPCAddr   string `yaml:"grpc_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Report     ReportConfig     `yaml:"report"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Writers    []WriterDef      `yaml:"writers"`
	Log        LogConfig        `yaml:"log"`
	API        APIConfig        `yaml:"api"`
}

// Default returns the configuration used when no config file is present. It
// reproduces the node/flow/rate report with strict aggregation written to
// results.csv in the working directory.
func Default() *Config {
	return &Config{
		Report: ReportConfig{
			InputDir:  ".",
			Extension: ".flowmonitor",
			Schema:    "node-flow-rate",
		},
		Aggregator: AggregatorConfig{
			Policy:    PolicyStrict,
			DelayUnit: "us",
		},
		Writers: []WriterDef{
			{Type: "csv", Enabled: true, CSV: CSVConfig{Path: "results.csv"}},
		},
		Log: LogConfig{Level: "info", Format: "text"},
		API: APIConfig{ListenAddr: ":8080", GRPCAddr: ":9090"},
	}
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
// Keys missing from the file keep their default values.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like LoadConfig but falls back to Default when the
// file does not exist.
func LoadOrDefault(filePath string) (*Config, error) {
	cfg, err := LoadConfig(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks the enumerated fields and makes sure a CSV writer is configured.
func (c *Config) Validate() error {
	switch c.Aggregator.Policy {
	case PolicyStrict, PolicyFiltered:
	default:
		return fmt.Errorf("invalid aggregator policy %q", c.Aggregator.Policy)
	}
	switch c.Aggregator.DelayUnit {
	case "us", "ms":
	default:
		return fmt.Errorf("invalid delay unit %q", c.Aggregator.DelayUnit)
	}
	if p := c.Aggregator.ThroughputPrecision; p != nil && (*p < 0 || *p > 6) {
		return fmt.Errorf("throughput precision must be between 0 and 6, got %d", *p)
	}
	if c.Report.Extension == "" {
		return fmt.Errorf("report extension must not be empty")
	}

	for _, w := range c.Writers {
		if w.Type == "csv" && w.Enabled {
			return nil
		}
	}
	c.Writers = append(c.Writers, WriterDef{Type: "csv", Enabled: true, CSV: CSVConfig{Path: "results.csv"}})
	return nil
}

// EffectiveThroughputPrecision returns the configured throughput rounding, falling
// back to the policy default.
func (a AggregatorConfig) EffectiveThroughputPrecision() int {
	if a.ThroughputPrecision != nil {
		return *a.ThroughputPrecision
	}
	if a.Policy == PolicyFiltered {
		return 2
	}
	return 0
}
