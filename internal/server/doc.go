// Package server provides the shared runtime state of a flowspace
// instance.
//
// ServerContext manages Google API clients with lazy initialization and
// caching. Clients are created per account on first use and reused for the
// lifetime of the process.
//
// HealthChecker exposes liveness and readiness endpoints for Kubernetes
// probes. Readiness covers the shutdown state and, when installed, the
// health of the trigger subsystem. MetricsServer serves Prometheus metrics
// on a dedicated port, isolated from application traffic.
package server
