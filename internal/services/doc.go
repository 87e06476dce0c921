// Package services implements the business layer between HTTP handlers and
// the analytics engine.
//
// AnalyticsService resolves every view request against the cached dataset
// snapshot, runs the requested section inside a trace span and records the
// pass in the business metrics. HealthService answers liveness and
// readiness probes; readiness requires a loadable dataset.
//
// Services return domain errors wrapped with %w so handlers can map them
// to problem responses with errors.Is.
package services
