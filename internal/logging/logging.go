// Package logging configures the structured logger shared by the binaries.
package logging

import (
	"fmt"
	"io"
	golog "log"
	"net/http"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/gorilla/handlers"
)

// Logger writes structured records on the standard error. It starts at
// info level with text output; Setup reconfigures it from the config file.
var Logger = &log.Logger{
	Handler: text.New(os.Stderr),
	Level:   log.InfoLevel,
}

// Setup sets the level and output format ("text" or "json") of Logger.
func Setup(level, format string) error {
	return setup(Logger, os.Stderr, level, format)
}

func setup(l *log.Logger, w io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch format {
	case "", "text":
		l.Handler = text.New(w)
	case "json":
		l.Handler = json.New(w)
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	l.Level = lvl
	return nil
}

// MakeAccessLogHandler wraps handler so that every request is logged in the
// common log format on the standard error.
func MakeAccessLogHandler(handler http.Handler) http.Handler {
	return handlers.LoggingHandler(golog.Writer(), handler)
}
