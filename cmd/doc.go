// Package cmd implements the command-line interface for flowspace.
//
// This package provides the following commands:
//   - run: Start the trigger runner with a TOML trigger configuration
//   - tasks: List the registered workflow tasks
//   - auth: Authorize a Google account for use by tasks and triggers
//   - version: Display version information
package cmd
