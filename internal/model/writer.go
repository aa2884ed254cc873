package model

import "context"

// Writer defines a generic interface for persisting a finished report.
type Writer interface {
	// Write takes the report and persists it.
	Write(ctx context.Context, report *Report) error

	// Name returns the configured writer type, used in logs.
	Name() string
}
