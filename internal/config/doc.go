// Package config provides centralized configuration management for the LVR
// analysis toolchain. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern LVR_* for namespacing:
//
//	LVR_SERVER_PORT=8080
//	LVR_LOGGING_LEVEL=info
//	LVR_PROCESSOR_WORKERS=4
//	LVR_PROCESSOR_TARGET_SEASON=113Y2S
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	rawPath := paths.GetRawPath("lvr_presale_taipei.csv")
//	reportPath := paths.GetReportPath("cancellation_summary.csv")
//
// # Validation
//
// All configuration is validated at load time to ensure required fields are
// present, values are within acceptable ranges and directories can be
// created.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
