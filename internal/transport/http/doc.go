// Package http implements the HTTP handlers of the analytics API. Handlers
// stay thin: they bind and validate query parameters, call the service
// layer and render the result.
//
// # Endpoints
//
//	GET  /api/v1/dataset                    dataset metadata
//	POST /api/v1/dataset/reload             drop the cached snapshot and reload
//	GET  /api/v1/analytics/report           full report for a view request
//	GET  /api/v1/analytics/periods          aggregated periods
//	GET  /api/v1/analytics/periods/export   periods as CSV or XLSX
//	GET  /api/v1/analytics/{section}        correlations, distribution,
//	                                        seasonality, growth, performance, goal
//	GET  /healthz /readyz /livez /version   health
//
// Every analytics endpoint accepts the same query parameters: start, end
// (YYYY-MM-DD), frequency, metric, goal_metric, goal_target, goal_date,
// bins and window. Unset parameters take the engine defaults.
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem details by the shared
// errors.ErrorHandler, which maps the domain sentinels to status codes:
//
//	{
//	    "type": "/errors/analytics/invalid-range",
//	    "title": "Invalid Date Range",
//	    "status": 400,
//	    "detail": "resolve: invalid date range: 2024-03-01 > 2024-01-01",
//	    "instance": "/api/v1/analytics/report"
//	}
package http
