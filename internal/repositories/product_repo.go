package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductFilter narrows GetAll; zero values match everything.
type ProductFilter struct {
	SellerID string
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	CountBySeller(ctx context.Context, sellerID string) (int64, error)
}
