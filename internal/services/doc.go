// Package services implements the business logic layer between the HTTP
// handlers and the generated report files.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection for loose coupling
//	3. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
//	- ReportService: serves the JSON reports the processor generated
//	- HealthService: provides system health checks and build info
//
// The report service deliberately does not recompute anything: the processor
// owns the analysis, the web layer owns presentation. A missing report file
// maps to a NOT_FOUND error telling the caller to run the processor first.
//
// # Common Service Pattern
//
// Services typically follow this structure:
//
//	type ServiceName struct {
//	    paths  *config.Paths
//	    logger *slog.Logger
//	}
//
//	func NewServiceName(paths *config.Paths, logger *slog.Logger) *ServiceName {
//	    return &ServiceName{paths: paths, logger: logger}
//	}
//
// # Error Handling
//
// Services return AppError values that the HTTP error handler transforms
// into RFC 7807 problem documents:
//
//	- NOT_FOUND for reports that have not been generated
//	- PARSING for corrupted report files
//	- STORAGE for filesystem failures
package services
