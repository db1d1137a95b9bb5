package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"freshbonds/backend/internal/api"
	"freshbonds/backend/internal/audit"
	"freshbonds/backend/internal/product/domain"
	productrepo "freshbonds/backend/internal/product/repository"
	"freshbonds/backend/internal/product/service"
	"freshbonds/backend/internal/security"
)

type memoryRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{products: make(map[string]*domain.Product)} }

func (m *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, productrepo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryRepo) snapshot(filter func(*domain.Product) bool) []*domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Product
	for _, p := range m.products {
		if filter(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memoryRepo) ListVisible(_ context.Context, _ int32) ([]*domain.Product, error) {
	return m.snapshot(func(p *domain.Product) bool { return p.IsVisible && p.IsApproved }), nil
}

func (m *memoryRepo) ListAll(_ context.Context, _ int32) ([]*domain.Product, error) {
	return m.snapshot(func(*domain.Product) bool { return true }), nil
}

func (m *memoryRepo) ListByFarmer(_ context.Context, farmerID string) ([]*domain.Product, error) {
	return m.snapshot(func(p *domain.Product) bool { return p.FarmerID == farmerID }), nil
}

func (m *memoryRepo) Create(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memoryRepo) Update(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return productrepo.ErrNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return productrepo.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memoryRepo) IncrementViews(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		p.Views++
	}
	return nil
}

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	router chi.Router
	tokens *security.TokenProvider
	repo   *memoryRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens := security.NewTokenProvider([]byte(testSecret), "freshbonds-auth", 8*time.Hour)
	repo := newMemoryRepo()
	svc := service.NewProductService(repo, audit.Nop{})
	h := New(svc, tokens, api.NewValidator(), zap.NewNop())

	r := chi.NewRouter()
	h.Routes(r)
	return &testEnv{router: r, tokens: tokens, repo: repo}
}

func (e *testEnv) tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	token, _, err := e.tokens.Issue(userID, userID+"@example.com", role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func listingBody() map[string]any {
	return map[string]any{
		"name":           "Organic Tomatoes",
		"description":    "Fresh organic tomatoes from the hill country.",
		"price":          450.0,
		"category":       "Vegetables",
		"image":          "https://example.com/tomatoes.jpg",
		"farmerName":     "Amara Perera",
		"farmerLocation": "Kandy",
		"harvestDate":    time.Now().AddDate(0, 0, -3).Format(time.RFC3339),
		"quantity":       "25",
		"unit":           "kg",
	}
}

func (e *testEnv) createListing(t *testing.T, farmerID string) string {
	t.Helper()
	rec := e.do("POST", "/api/products", e.tokenFor(t, farmerID, "farmer"), listingBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create listing: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res.ID
}

func TestCreateRequiresFarmerRole(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do("POST", "/api/products", "", listingBody()); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}
	if rec := env.do("POST", "/api/products", env.tokenFor(t, "a1", "admin"), listingBody()); rec.Code != http.StatusForbidden {
		t.Errorf("admin: status = %d, want 403", rec.Code)
	}
	if rec := env.do("POST", "/api/products", env.tokenFor(t, "f1", "farmer"), listingBody()); rec.Code != http.StatusCreated {
		t.Errorf("farmer: status = %d, want 201", rec.Code)
	}
}

func TestPublicListingHidesInvisible(t *testing.T) {
	env := newTestEnv(t)
	id := env.createListing(t, "f1")
	env.createListing(t, "f2")

	// Hide f1's listing.
	rec := env.do("PATCH", "/api/products/"+id+"/visibility", env.tokenFor(t, "f1", "farmer"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	public := env.do("GET", "/api/products", "", nil)
	if public.Code != http.StatusOK {
		t.Fatalf("list: status = %d", public.Code)
	}
	var listings []map[string]any
	if err := json.Unmarshal(public.Body.Bytes(), &listings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listings) != 1 {
		t.Errorf("public listings = %d, want 1", len(listings))
	}

	all := env.do("GET", "/api/products/all", env.tokenFor(t, "a1", "admin"), nil)
	var allListings []map[string]any
	_ = json.Unmarshal(all.Body.Bytes(), &allListings)
	if len(allListings) != 2 {
		t.Errorf("admin listings = %d, want 2", len(allListings))
	}
}

func TestAdminListingRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do("GET", "/api/products/all", env.tokenFor(t, "f1", "farmer"), nil); rec.Code != http.StatusForbidden {
		t.Errorf("farmer on /all: status = %d, want 403", rec.Code)
	}
}

func TestDeleteOwnershipMatrix(t *testing.T) {
	env := newTestEnv(t)
	id := env.createListing(t, "owner-farmer")

	// Another producer cannot delete it.
	rec := env.do("DELETE", "/api/products/"+id, env.tokenFor(t, "other-farmer", "farmer"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner: status = %d, want 403", rec.Code)
	}

	// The owner can.
	rec = env.do("DELETE", "/api/products/"+id, env.tokenFor(t, "owner-farmer", "farmer"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// An admin can delete any listing.
	id2 := env.createListing(t, "owner-farmer")
	rec = env.do("DELETE", "/api/products/"+id2, env.tokenFor(t, "any-admin", "admin"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d", rec.Code)
	}
}

func TestUpdateStatusOrdering(t *testing.T) {
	env := newTestEnv(t)
	id := env.createListing(t, "f1")
	token := env.tokenFor(t, "f1", "farmer")

	if rec := env.do("PUT", "/api/products/not-a-uuid", token, listingBody()); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
	missing := "00000000-0000-4000-8000-000000000000"
	if rec := env.do("PUT", "/api/products/"+missing, env.tokenFor(t, "someone", "farmer"), listingBody()); rec.Code != http.StatusNotFound {
		t.Errorf("missing id: status = %d, want 404", rec.Code)
	}
	if rec := env.do("PUT", "/api/products/"+id, env.tokenFor(t, "someone", "farmer"), listingBody()); rec.Code != http.StatusForbidden {
		t.Errorf("non-owner: status = %d, want 403", rec.Code)
	}
	if rec := env.do("PUT", "/api/products/"+id, token, listingBody()); rec.Code != http.StatusOK {
		t.Errorf("owner: status = %d, want 200", rec.Code)
	}
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	id := env.createListing(t, "f1")

	rec := env.do("GET", "/api/products/"+id, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if res["name"] != "Organic Tomatoes" {
		t.Errorf("unexpected product: %v", res)
	}

	if rec := env.do("GET", "/api/products/not-a-uuid", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
}

func TestFarmerListingAccess(t *testing.T) {
	env := newTestEnv(t)
	env.createListing(t, "f1")

	if rec := env.do("GET", "/api/products/farmer/f1", env.tokenFor(t, "f1", "farmer"), nil); rec.Code != http.StatusOK {
		t.Errorf("self: status = %d, want 200", rec.Code)
	}
	if rec := env.do("GET", "/api/products/farmer/f1", env.tokenFor(t, "f2", "farmer"), nil); rec.Code != http.StatusForbidden {
		t.Errorf("other farmer: status = %d, want 403", rec.Code)
	}
	if rec := env.do("GET", "/api/products/farmer/f1", env.tokenFor(t, "a1", "admin"), nil); rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
}

func TestCreateValidationItemized(t *testing.T) {
	env := newTestEnv(t)
	body := listingBody()
	body["name"] = "X"
	body["price"] = -1.0
	body["category"] = "Electronics"
	body["unit"] = "tonnes"

	rec := env.do("POST", "/api/products", env.tokenFor(t, "f1", "farmer"), body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var res struct {
		Details []string `json:"details"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if len(res.Details) < 4 {
		t.Errorf("expected all violations itemized, got %v", res.Details)
	}
}
