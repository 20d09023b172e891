package domain

// AuditLogger records auditable actions. Services depend on this interface
// rather than on a storage implementation.
type AuditLogger interface {
	Log(action, actor, projectID string, metadata map[string]any) error
}
