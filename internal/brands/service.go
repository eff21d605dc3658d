package brands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Repository provides brand persistence.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Brand, error)
	GetByName(ctx context.Context, name string) (Brand, error)
	Insert(ctx context.Context, b Brand) error
	List(ctx context.Context) ([]Brand, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service resolves brand references and manages the catalog.
type Service struct {
	repo Repository
}

// NewService constructs a brand service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve maps a caller-supplied reference (identifier or display name) to a
// canonical brand, creating one when no match exists. An identifier-shaped
// reference that matches no row degrades to name-based lookup rather than
// failing the whole submission over a stale id.
//
// Two concurrent resolutions of the same new name can both observe "not
// found"; the name uniqueness constraint is the backstop, and its violation
// is treated as "someone beat us to it" followed by a reselect.
func (s *Service) Resolve(ctx context.Context, raw string) (Brand, error) {
	raw = strings.TrimSpace(raw)
	ref := ClassifyReference(raw)

	if ref.ByID {
		brand, err := s.repo.GetByID(ctx, ref.ID)
		if err == nil {
			return brand, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Brand{}, fmt.Errorf("brands: lookup by id: %w", err)
		}
		// Stale or mistyped identifier: fall back to treating the raw
		// reference as a name, preserving the caller's casing.
		ref = Reference{Name: raw}
	}

	if ref.Name == "" {
		return Brand{}, ErrEmptyName
	}

	brand, err := s.repo.GetByName(ctx, ref.Name)
	if err == nil {
		return brand, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Brand{}, fmt.Errorf("brands: lookup by name: %w", err)
	}

	fresh := Brand{ID: uuid.New(), Name: ref.Name}
	if err := s.repo.Insert(ctx, fresh); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return s.repo.GetByName(ctx, ref.Name)
		}
		return Brand{}, fmt.Errorf("brands: insert: %w", err)
	}
	return s.repo.GetByID(ctx, fresh.ID)
}

// Create adds a brand explicitly. Unlike Resolve it surfaces duplicates.
func (s *Service) Create(ctx context.Context, name string) (Brand, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Brand{}, ErrEmptyName
	}
	brand := Brand{ID: uuid.New(), Name: trimmed}
	if err := s.repo.Insert(ctx, brand); err != nil {
		return Brand{}, err
	}
	return s.repo.GetByID(ctx, brand.ID)
}

// List returns all brands ordered by name.
func (s *Service) List(ctx context.Context) ([]Brand, error) {
	return s.repo.List(ctx)
}

// Delete removes a brand. Storage rejects the delete while any order still
// references it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
