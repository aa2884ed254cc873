package factory

import (
	"FlowMonReport/internal/config"
	"FlowMonReport/internal/logging"
	"FlowMonReport/internal/model"
	"fmt"
)

// WriterFactory defines a function that creates a report writer from its
// config definition.
type WriterFactory func(def config.WriterDef) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// Required is the writer type whose failure aborts a run.
const Required = "csv"

// Create creates the enabled writers listed in cfg. Unknown types and
// optional writers that fail to initialise are logged and skipped.
func Create(cfg *config.Config) ([]model.Writer, error) {
	var writers []model.Writer

	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}
		logger := logging.Logger.WithField("writer", def.Type)

		factory, ok := registry[def.Type]
		if !ok {
			if def.Type == Required {
				return nil, fmt.Errorf("writer type '%s' is not registered", def.Type)
			}
			logger.Warn("unknown writer type in config, skipping")
			continue
		}

		writer, err := factory(def)
		if err != nil {
			if def.Type == Required {
				return nil, fmt.Errorf("error creating writer type '%s': %w", def.Type, err)
			}
			logger.WithError(err).Warn("failed to create writer, skipping")
			continue
		}
		logger.Debug("writer created")
		writers = append(writers, writer)
	}

	return writers, nil
}
