// Package http implements the HTTP transport for the report API. It provides
// a thin layer between HTTP and the service layer, keeping handlers focused
// solely on request parsing and response formatting.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - the processor owns the analysis
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Report files
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Routes
//
//	GET /api/health                 overall health with report presence
//	GET /api/health/live            liveness probe
//	GET /api/version                build information
//	GET /api/reports                list of generated report files
//	GET /api/reports/cancellations  aggregate cancellation statistics
//	GET /api/reports/absorption     per-project absorption rates
//	GET /api/reports/risk           cancellation risk model report
//	GET /api/reports/districts      district ranking (?top=N)
//	GET /metrics                    prometheus metrics
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/report/not-found",
//	    "title": "Report Not Found",
//	    "status": 404,
//	    "detail": "absorption report has not been generated yet; run the processor first",
//	    "instance": "/api/reports/absorption"
//	}
package http
