// Package store persists evaluation records keyed by session id. The
// engine treats the store as an external collaborator: writes are
// last-write-wins updates against rows created by the session-start
// workflow, and write failures never cost the caller the in-memory result.
package store

import "context"

// Store is the persistence collaborator contract.
type Store interface {
	// SaveEvaluation writes the internal record JSON for a session.
	// The session row is assumed to exist; the write is idempotent.
	SaveEvaluation(ctx context.Context, sessionID int, evaluationJSON []byte) error

	// Close releases underlying resources.
	Close() error
}
