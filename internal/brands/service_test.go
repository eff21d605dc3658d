package brands

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byID   map[uuid.UUID]Brand
	byName map[string]Brand

	insertErr   error
	insertCalls int
	nameMisses  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:   make(map[uuid.UUID]Brand),
		byName: make(map[string]Brand),
	}
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (Brand, error) {
	b, ok := m.byID[id]
	if !ok {
		return Brand{}, ErrNotFound
	}
	return b, nil
}

func (m *mockRepo) GetByName(ctx context.Context, name string) (Brand, error) {
	if m.nameMisses > 0 {
		m.nameMisses--
		return Brand{}, ErrNotFound
	}
	b, ok := m.byName[name]
	if !ok {
		return Brand{}, ErrNotFound
	}
	return b, nil
}

func (m *mockRepo) Insert(ctx context.Context, b Brand) error {
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, exists := m.byName[b.Name]; exists {
		return ErrDuplicateName
	}
	m.byID[b.ID] = b
	m.byName[b.Name] = b
	return nil
}

func (m *mockRepo) List(ctx context.Context) ([]Brand, error) {
	out := make([]Brand, 0, len(m.byID))
	for _, b := range m.byID {
		out = append(out, b)
	}
	return out, nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	b, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	delete(m.byName, b.Name)
	return nil
}

func (m *mockRepo) seed(name string) Brand {
	b := Brand{ID: uuid.New(), Name: name}
	m.byID[b.ID] = b
	m.byName[name] = b
	return b
}

func TestResolveCreatesUnknownName(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	brand, err := svc.Resolve(ctx, "Samsung")
	require.NoError(t, err)
	assert.Equal(t, "Samsung", brand.Name)

	again, err := svc.Resolve(ctx, "Samsung")
	require.NoError(t, err)
	assert.Equal(t, brand.ID, again.ID)
	assert.Len(t, repo.byID, 1)
}

func TestResolveByIdentifier(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	seeded := repo.seed("LG")

	brand, err := svc.Resolve(context.Background(), seeded.ID.String())
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, brand.ID)
}

func TestResolveStaleIdentifierFallsBackToName(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	stale := strings.ToUpper(uuid.New().String())
	brand, err := svc.Resolve(ctx, "  "+stale+"  ")
	require.NoError(t, err)
	// The unmatched identifier becomes the brand name, trimmed but with the
	// caller's casing intact.
	assert.Equal(t, stale, brand.Name)
}

func TestResolveNameNotMistakenForIdentifier(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	brand, err := svc.Resolve(context.Background(), "Bosch-1234-Serie-8000-Edition-Pro-X")
	require.NoError(t, err)
	assert.Equal(t, "Bosch-1234-Serie-8000-Edition-Pro-X", brand.Name)
}

func TestResolveLosingRaceReselects(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	// A concurrent request creates the row between our lookup and our
	// insert: the first name lookup misses, the insert reports a duplicate,
	// and the reselect finds the winner.
	winner := repo.seed("Philips")
	repo.nameMisses = 1
	repo.insertErr = ErrDuplicateName

	brand, err := svc.Resolve(ctx, "Philips")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, brand.ID)
	assert.Equal(t, 1, repo.insertCalls)
}

func TestResolveEmptyReference(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestCreateTrimsName(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	brand, err := svc.Create(context.Background(), "  Samsung  ")
	require.NoError(t, err)
	assert.Equal(t, "Samsung", brand.Name)
}

func TestCreateSurfacesDuplicate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	repo.seed("Samsung")

	_, err := svc.Create(context.Background(), "Samsung")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestDeleteMissingBrand(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassifyReference(t *testing.T) {
	id := uuid.New()
	ref := ClassifyReference(id.String())
	assert.True(t, ref.ByID)
	assert.Equal(t, id, ref.ID)

	ref = ClassifyReference("Samsung")
	assert.False(t, ref.ByID)
	assert.Equal(t, "Samsung", ref.Name)

	// Same length and dash count as a canonical identifier, but not one.
	ref = ClassifyReference("zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz")
	assert.False(t, ref.ByID)
}
