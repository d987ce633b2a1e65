package logging

// LogEntry represents a structured log record for fitting and pipeline operations.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Fitting-specific fields
	RunID string // The analysis run this entry belongs to
	Stage string // The pipeline stage name, if any

	// General structured data
	Fields map[string]interface{}
}
