// Package common provides shared utilities for workflow task implementations.
// It contains input extraction helpers, account resolution, and the
// instrumentation wrapper used across all task packages to avoid code
// duplication and ensure consistent behavior.
package common
