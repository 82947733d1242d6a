// Package logg holds the structured logging field names shared across layers.
package logg

const (
	Layer     = "layer"
	Operation = "operation"
	Action    = "action"
	URL       = "url"
	SessionID = "session_id"
	MarkID    = "mark_id"
	Index     = "index"
	Engine    = "engine"
)
