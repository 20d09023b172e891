package domain

// AuditRepository persists the audit trail.
type AuditRepository interface {
	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)

	// AppendEvent seals event against the current tail of the trail and
	// appends it. Reading the tail and writing the event happen as one step
	// with respect to every other writer.
	AppendEvent(event Event) (Event, error)
}

// WorkspaceRepository manages the .slate/ workspace directory.
type WorkspaceRepository interface {
	AuditRepository
	Initialize() error
	IsInitialized() bool
}
