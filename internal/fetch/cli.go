package fetch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/okian/polymer/internal/catalog"
	"github.com/okian/polymer/pkg/logger"
)

// SetupLogging initializes the global logger on stderr at level.
func SetupLogging(level string) error {
	if err := logger.InitWriter(os.Stderr); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(context.Background(), "invalid log_level; falling back to info",
			logger.String("log_level", level), logger.Error(err))
		return logger.SetLevelString("info")
	}
	return nil
}

// ShowHelp prints usage information for the polymer command.
func ShowHelp() {
	os.Stdout.WriteString(`Polymer
=======

Dispatch a declared REST endpoint and print the result as JSON.

Usage:
  polymer [options]

Options:
  -endpoint string
        Catalog endpoint name (` + strings.Join(catalog.Names(), ", ") + `)
  -base string
        Base URL, overrides the catalog definition
  -path string
        Path template with :placeholders, e.g. /repos/:owner/:name/issues/:identifier
  -verb string
        HTTP verb: GET, POST, PUT, PATCH, DELETE (default GET)
  -slug string
        JSON slug source, an object or a single scalar
  -params string
        JSON parameters, an object (key=value) or an array (bare tokens)
  -keypath string
        Dotted path to the payload inside the response body
  -append-header
        Merge response headers into the payload under "Header"
  -timeout duration
        HTTP request timeout (default from config, 30s)
  -help
        Show this help message

Configuration:
  POLYMER_CONFIG names an optional YAML file. POLYMER_<FIELD> environment
  variables override it, e.g. POLYMER_TIMEOUT=5s POLYMER_LOG_LEVEL=debug.

Examples:
  # Search Spotify artists
  polymer -endpoint spotify.artists -params '{"q":"beyonce","type":"artist"}'

  # List a repository's issues
  polymer -endpoint github.issues -slug '{"owner":"golang","name":"go"}'

  # Fetch one issue with headers merged in
  polymer -endpoint github.issues -slug '{"owner":"golang","name":"go","identifier":1}' -append-header
`)
}
