package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldProfileID is the profile a request acts on behalf of
	FieldProfileID = "profile_id"

	// FieldSearchType is the discovery pool (flatmate / accommodation)
	FieldSearchType = "search_type"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldFilter is the filter key currently being evaluated
	FieldFilter = "filter"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
