package repository

import (
	"context"
	"errors"

	"freshbonds/backend/internal/product/domain"
)

// ErrNotFound is returned when no product matches the lookup.
var ErrNotFound = errors.New("product not found")

// Repository defines persistence for products.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// ListVisible returns visible, approved listings, newest first.
	ListVisible(ctx context.Context, limit int32) ([]*domain.Product, error)
	// ListAll returns every listing regardless of visibility. Admin only.
	ListAll(ctx context.Context, limit int32) ([]*domain.Product, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}
