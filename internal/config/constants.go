package config

import "time"

// Application constants
const (
	// Application Info
	AppName = "sustainers"

	// Upload and download limits
	DefaultMaxUploadBytes  = 32 << 20 // 32MB
	DefaultDownloadTTL     = 30 * time.Minute
	DefaultDownloadEntries = 100

	// Preview shown on the form result page
	PreviewRows = 5

	// File Paths (relative to the working directory)
	DefaultOutputDir = "."
	DefaultLogsDir   = "logs"
	CLILogFileName   = "sustainers.log"
	WebLogFileName   = "sustainers-web.log"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
