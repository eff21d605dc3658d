package brandshttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oswork-erp/oswork-erp/internal/brands"
)

type stubRepo struct {
	byID   map[uuid.UUID]brands.Brand
	byName map[string]brands.Brand
	inUse  map[uuid.UUID]bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byID:   make(map[uuid.UUID]brands.Brand),
		byName: make(map[string]brands.Brand),
		inUse:  make(map[uuid.UUID]bool),
	}
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (brands.Brand, error) {
	b, ok := s.byID[id]
	if !ok {
		return brands.Brand{}, brands.ErrNotFound
	}
	return b, nil
}

func (s *stubRepo) GetByName(ctx context.Context, name string) (brands.Brand, error) {
	b, ok := s.byName[name]
	if !ok {
		return brands.Brand{}, brands.ErrNotFound
	}
	return b, nil
}

func (s *stubRepo) Insert(ctx context.Context, b brands.Brand) error {
	if _, exists := s.byName[b.Name]; exists {
		return brands.ErrDuplicateName
	}
	s.byID[b.ID] = b
	s.byName[b.Name] = b
	return nil
}

func (s *stubRepo) List(ctx context.Context) ([]brands.Brand, error) {
	out := make([]brands.Brand, 0, len(s.byID))
	for _, b := range s.byID {
		out = append(out, b)
	}
	return out, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.inUse[id] {
		return brands.ErrInUse
	}
	b, ok := s.byID[id]
	if !ok {
		return brands.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byName, b.Name)
	return nil
}

func newTestRouter(repo brands.Repository) http.Handler {
	handler := NewHandler(nil, brands.NewService(repo))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func TestCreateBrand(t *testing.T) {
	router := newTestRouter(newStubRepo())

	req := httptest.NewRequest(http.MethodPost, "/brands", strings.NewReader(`{"name":"  Samsung  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created brands.Brand
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Samsung", created.Name)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestCreateBrandDuplicate(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(repo)

	b := brands.Brand{ID: uuid.New(), Name: "Samsung"}
	require.NoError(t, repo.Insert(context.Background(), b))

	req := httptest.NewRequest(http.MethodPost, "/brands", strings.NewReader(`{"name":"Samsung"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateBrandMissingName(t *testing.T) {
	router := newTestRouter(newStubRepo())

	req := httptest.NewRequest(http.MethodPost, "/brands", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteBrandInUse(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(repo)

	b := brands.Brand{ID: uuid.New(), Name: "LG"}
	require.NoError(t, repo.Insert(context.Background(), b))
	repo.inUse[b.ID] = true

	req := httptest.NewRequest(http.MethodDelete, "/brands/"+b.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteBrandBadID(t *testing.T) {
	router := newTestRouter(newStubRepo())

	req := httptest.NewRequest(http.MethodDelete, "/brands/not-an-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBrands(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(repo)
	require.NoError(t, repo.Insert(context.Background(), brands.Brand{ID: uuid.New(), Name: "Bosch"}))

	req := httptest.NewRequest(http.MethodGet, "/brands", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []brands.Brand
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}
