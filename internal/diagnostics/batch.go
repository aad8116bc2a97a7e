package diagnostics

import "github.com/google/uuid"

// NewBatchID returns a fresh identifier for one publish cycle, so a single
// drain-accumulate-publish pass can be correlated across log lines and
// trace spans even when it fans out into several publishDiagnostics
// notifications.
func NewBatchID() string {
	return uuid.NewString()
}
