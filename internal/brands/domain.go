// Package brands maintains the canonical brand catalog and resolves the
// loose brand references callers attach to orders.
package brands

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Brand is a canonical catalog entry referenced by orders.
type Brand struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reference is a classified brand reference: either an identifier or a
// display name. Exactly one branch is set.
type Reference struct {
	ByID bool
	ID   uuid.UUID
	Name string
}

// ClassifyReference decides whether a raw caller-supplied reference is
// identifier-shaped. Only the canonical 36-character dashed UUID form counts;
// everything else is treated as a display name, trimmed.
func ClassifyReference(raw string) Reference {
	if len(raw) == 36 && strings.Count(raw, "-") == 4 {
		if id, err := uuid.Parse(raw); err == nil {
			return Reference{ByID: true, ID: id}
		}
	}
	return Reference{Name: strings.TrimSpace(raw)}
}

// ErrNotFound is returned when the referenced brand does not exist.
var ErrNotFound = errors.New("brands: brand not found")

// ErrDuplicateName is returned when the name uniqueness constraint fires.
var ErrDuplicateName = errors.New("brands: name already exists")

// ErrInUse is returned when deleting a brand still referenced by orders.
var ErrInUse = errors.New("brands: brand referenced by orders")

// ErrEmptyName rejects blank references before they reach storage.
var ErrEmptyName = errors.New("brands: name required")
