// Package mapper defines the contract that lets the sync engine treat all
// entity types uniformly: a generic converter between the local model and
// its wire DTO, plus identity and timestamp accessors.
package mapper

import "time"

// Mapper converts one entity type between its local model M and wire DTO D.
// Apply overwrites the whole model from the DTO (last-write-wins is
// whole-record, never field-level), and New builds a fresh model the same
// way. Refs lists the foreign keys a DTO carries, as parent table → id, so
// the reconciler can verify parents exist after dependency-ordered pulls.
type Mapper[M, D any] interface {
	Table() string
	ID(*M) string
	LastModified(*M) time.Time
	ToDTO(*M) *D
	Apply(*D, *M) error
	New(*D) (*M, error)
	Refs(*D) map[string]string
}
