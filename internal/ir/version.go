package ir

// Version constants for the record model and the tool.
const (
	// RecordVersion is the record schema version. Bump it when the JSON
	// shape of ImplRecord changes.
	RecordVersion = "2"

	// ToolVersion is the symm release. Cached expansions are reused only
	// by compatible releases (same major and minor).
	ToolVersion = "0.3.0"
)
