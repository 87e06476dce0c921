// Package analytics turns a daily channel metrics series into the figures
// shown on the dashboard: period totals and deltas, performance KPIs,
// growth, correlation, distribution shape, seasonality and goal progress.
//
// Every analyzer is a pure function of a domain.TimeSeries. Engine resolves
// a ViewRequest into a Window and runs the analyzers over it.
package analytics
