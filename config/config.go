package config

import (
	"os"
	"strconv"
)

// Config holds the runtime settings for a comparison run. Everything
// comes from the environment; main loads a .env file first, the same
// way the rest of our tooling does.
type Config struct {
	// ReferenceFile and ComparisonFile are JSON arrays of product
	// records, one per scraped site.
	ReferenceFile  string
	ComparisonFile string

	// ReportFile is where results are written; ReportFormat is "json"
	// or "csv".
	ReportFile   string
	ReportFormat string

	// IgnoreColors controls whether color tokens take part in product
	// identity. This is the engine's single semantic knob.
	IgnoreColors bool

	// Workers bounds the matching worker pool. 0 lets the engine pick.
	Workers int

	// WatchSchedule, when non-empty, is a cron expression that re-runs
	// the comparison over the input files on a schedule.
	WatchSchedule string

	// Verbose turns on per-record match event logging.
	Verbose bool
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		ReferenceFile:  getEnv("REFERENCE_FILE", "reference.json"),
		ComparisonFile: getEnv("COMPARISON_FILE", "comparison.json"),
		ReportFile:     getEnv("REPORT_FILE", "report.json"),
		ReportFormat:   getEnv("REPORT_FORMAT", "json"),
		IgnoreColors:   getEnvBool("MATCH_IGNORE_COLORS", true),
		Workers:        getEnvInt("MATCH_WORKERS", 0),
		WatchSchedule:  getEnv("WATCH_SCHEDULE", ""),
		Verbose:        getEnvBool("MATCH_VERBOSE", false),
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
