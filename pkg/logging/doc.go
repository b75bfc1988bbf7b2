// Package logging provides structured logging configuration for fakereq.
//
// This package wraps log/slog so that the handler, the fixture loader and the
// CLI log the same way. It supports configurable log levels and output formats.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatText,
//	})
//
//	h := fake.New(fake.WithLogger(logger))
//
// Inside tests, route handler logs through t.Log so they only show up for
// failing or verbose runs:
//
//	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: logging.TestWriter(t)})
//
// # Integration
//
// Components accept a *slog.Logger in their constructor or via an option.
// If no logger is provided, they use logging.Nop().
package logging
