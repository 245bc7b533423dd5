package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldSource    = "source"
	FieldEntries   = "entries"
	FieldDuration  = "duration_ms"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"

	// HTTP fields
	FieldMethod = "method"
	FieldStatus = "status"
	FieldRemote = "remote"
)
