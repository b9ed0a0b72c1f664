package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"vsp/internal/domain"
)

// JSONStore keeps one JSON status file per test case, combining the
// phase-status map and the captured log text so the report phase can
// read both together.
type JSONStore struct{}

// NewJSONStore returns a Store backed by per-case JSON files.
func NewJSONStore() *JSONStore {
	return &JSONStore{}
}

// Load implements Store. It never fails: any open, read or decode
// problem degrades to a fresh record.
func (s *JSONStore) Load(path string) *domain.Record {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.NewRecord()
	}
	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.NewRecord()
	}
	rec.Normalize()
	return &rec
}

// Save implements Store. Failures are reported as warnings only.
func (s *JSONStore) Save(path string, rec *domain.Record) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		color.Yellow("warning: could not encode status for %s: %v", path, err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		color.Yellow("warning: could not create status dir for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		color.Yellow("warning: could not save status file %s: %v", path, err)
	}
}
