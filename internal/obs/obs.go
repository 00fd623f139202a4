// Package obs is the ambient structured-logging collaborator every
// other component and cmd/gqlanalyze accepts rather than logging
// straight to stdout. Grounded on
// _examples/rohankatakam-coderisk's *logrus.Logger-injection pattern
// (internal/risk/calculator.go, internal/ingestion/orchestrator.go).
package obs

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a *logrus.Logger configured for gqlanalyze's CLI and
// server entry points. verbose raises the level to Debug; json selects
// logrus's JSON formatter for log aggregation (the `--format json` CLI
// flag controls the *report* shape separately — this controls the
// *log line* shape).
func New(verbose bool, json bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// Discard returns a logger that drops every entry, for call sites
// (library entry points, tests) that accept a logger but have no
// interest in its output.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// WithFile returns an entry pre-populated with the file path/URI being
// processed, the shared field name every component should use so log
// lines can be correlated (e.g. watch events, lint findings, fetch
// retries for the same file).
func WithFile(log *logrus.Logger, file string) *logrus.Entry {
	return log.WithFields(logrus.Fields{"file": file})
}
