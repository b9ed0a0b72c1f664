package storage

import "vsp/internal/domain"

// Store persists per-test-case records. Both operations are fail-soft:
// losing cached status must never be fatal to a run, it only costs
// redundant re-execution.
type Store interface {
	// Load reads the record at path. A missing or corrupt file yields a
	// fresh record with every phase NotRun and an empty log.
	Load(path string) *domain.Record
	// Save writes the record at path. Write failures are logged and
	// swallowed so a read-only work directory cannot abort the run.
	Save(path string, rec *domain.Record)
}
