// Package cli implements the fakereq command-line interface.
//
// Commands:
//   - validate: Load fixture files and report every invalid expectation
//   - serve: Serve fixture expectations over HTTP for manual testing
//   - version: Show the fakereq version
//
// Fixture arguments are file paths or globs; ** matches any number of
// directories. Global flags --log-level, --log-format and --json apply to
// every command.
package cli
