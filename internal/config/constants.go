package config

import "time"

// Application constants for the LVR analysis toolchain
const (
	// Application Info
	AppName    = "LVR Presale Analyzer"
	AppVersion = "0.2.0"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second
	ScraperTimeout     = 10 * time.Minute
	ProcessorTimeout   = 1 * time.Hour

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultRawDir     = "data/raw"
	DefaultReportsDir = "data/reports"

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	MaxLogFileSize    = 100 * 1024 * 1024 // 100MB
	MaxLogFileAge     = 30                // days
	MaxLogFileBackups = 10

	// Raw export file patterns
	TransactionFilePattern = "lvr_presale*.csv"
	CommunityFilePattern   = "lvr_community_data*"
)

// URLs and Endpoints
const (
	// LVR open data portal
	LVRPortalURL   = "https://plvr.land.moi.gov.tw"
	LVRDownloadURL = "https://plvr.land.moi.gov.tw/DownloadOpenData"

	// API Endpoints (internal)
	APIBasePath          = "/api"
	HealthEndpoint       = "/api/health"
	CancellationEndpoint = "/api/reports/cancellations"
	AbsorptionEndpoint   = "/api/reports/absorption"
	DistrictsEndpoint    = "/api/reports/districts"
	MetricsEndpoint      = "/metrics"
)
