// Package exporter writes the analysis reports produced by a pipeline run.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// ReportWriter: Generates the cancellation, absorption, risk and district
// reports in JSON (consumed by the web API) and CSV (consumed by Excel
// users), plus the deduplicated dataset under data/processed.
//
// Example usage:
//
//	writer := exporter.NewReportWriter(paths, metrics, logger)
//
//	// Write every report for a pipeline run
//	err := writer.WriteAll(results)
//
//	// Or individual reports
//	err = writer.WriteAbsorption(results.Absorption)
package exporter
