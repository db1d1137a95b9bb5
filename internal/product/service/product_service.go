package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"freshbonds/backend/internal/audit"
	"freshbonds/backend/internal/product/domain"
	productrepo "freshbonds/backend/internal/product/repository"
)

// ErrProductNotFound is the service-level sentinel the handler maps to 404.
var ErrProductNotFound = errors.New("product not found")

const (
	publicListLimit = 100
	adminListLimit  = 1000
)

// ListingInput carries the already-validated listing payload for create and
// update. Farmer identity fields are only honored at creation.
type ListingInput struct {
	Name           string
	Description    string
	Price          float64
	Category       string
	Image          string
	FarmerName     string
	FarmerLocation string
	FarmerMobile   string
	InStock        *bool
	IsVisible      *bool
	Organic        bool
	HarvestDate    time.Time
	Quantity       string
	Unit           string
}

// ProductService implements the listing operations for the product service.
type ProductService struct {
	repo  productrepo.Repository
	audit audit.Recorder
	now   func() time.Time
}

func NewProductService(repo productrepo.Repository, auditor audit.Recorder) *ProductService {
	return &ProductService{repo: repo, audit: auditor, now: time.Now}
}

// ListVisible returns the public storefront listings.
func (s *ProductService) ListVisible(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.ListVisible(ctx, publicListLimit)
}

// ListAll returns every listing including hidden ones. The handler gates
// this behind the admin role.
func (s *ProductService) ListAll(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.ListAll(ctx, adminListLimit)
}

// Get returns one listing and bumps its view counter best-effort.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, productrepo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	_ = s.repo.IncrementViews(ctx, id)
	return p, nil
}

// ListByFarmer returns a farmer's listings including hidden ones. Callers
// other than the farmer themselves must be admins; the handler enforces
// that before calling.
func (s *ProductService) ListByFarmer(ctx context.Context, farmerID string) ([]*domain.Product, error) {
	return s.repo.ListByFarmer(ctx, farmerID)
}

// Create builds a listing owned by farmerID and persists it.
func (s *ProductService) Create(ctx context.Context, farmerID string, in ListingInput) (*domain.Product, error) {
	now := s.now().UTC()
	p := &domain.Product{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		Price:          roundPrice(in.Price),
		Category:       in.Category,
		Image:          in.Image,
		FarmerID:       farmerID,
		FarmerName:     strings.TrimSpace(in.FarmerName),
		FarmerLocation: strings.TrimSpace(in.FarmerLocation),
		FarmerMobile:   strings.TrimSpace(in.FarmerMobile),
		InStock:        boolOr(in.InStock, true),
		IsVisible:      boolOr(in.IsVisible, true),
		IsApproved:     true,
		Organic:        in.Organic,
		HarvestDate:    in.HarvestDate,
		Quantity:       strings.TrimSpace(in.Quantity),
		Unit:           in.Unit,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.Validate(now); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, farmerID, audit.ActionProductCreate, "products/"+p.ID, p.Name)
	return p, nil
}

// Update applies the mutable fields to an already-authorized listing. The
// farmer identity columns never change.
func (s *ProductService) Update(ctx context.Context, p *domain.Product, actorID string, in ListingInput) (*domain.Product, error) {
	now := s.now().UTC()
	updated := *p
	updated.Name = strings.TrimSpace(in.Name)
	updated.Description = strings.TrimSpace(in.Description)
	updated.Price = roundPrice(in.Price)
	updated.Category = in.Category
	updated.Image = in.Image
	updated.InStock = boolOr(in.InStock, p.InStock)
	updated.IsVisible = boolOr(in.IsVisible, p.IsVisible)
	updated.Organic = in.Organic
	updated.HarvestDate = in.HarvestDate
	updated.Quantity = strings.TrimSpace(in.Quantity)
	updated.Unit = in.Unit
	updated.UpdatedAt = now

	if err := updated.Validate(now); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, productrepo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.audit.LogEvent(ctx, actorID, audit.ActionProductUpdate, "products/"+updated.ID, updated.Name)
	return &updated, nil
}

// ToggleVisibility flips the listing's visibility flag.
func (s *ProductService) ToggleVisibility(ctx context.Context, p *domain.Product, actorID string) (*domain.Product, error) {
	updated := *p
	updated.IsVisible = !p.IsVisible
	updated.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, productrepo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.audit.LogEvent(ctx, actorID, audit.ActionProductUpdate, "products/"+updated.ID, "visibility toggled")
	return &updated, nil
}

// Delete removes the listing permanently.
func (s *ProductService) Delete(ctx context.Context, id, actorID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, productrepo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.audit.LogEvent(ctx, actorID, audit.ActionProductDelete, "products/"+id, "")
	return nil
}

// Owner loads a listing for the ownership middleware.
func (s *ProductService) Owner(ctx context.Context, id string) (*domain.Product, string, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, productrepo.ErrNotFound) {
			return nil, "", ErrProductNotFound
		}
		return nil, "", err
	}
	return p, p.FarmerID, nil
}

func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
