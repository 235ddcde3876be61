package services

import (
	"context"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

// ProductService handles the catalog, reviews and the seller dashboard.
type ProductService struct {
	repo   repositories.ProductRepository
	logger *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// GetAllProducts retrieves products matching filter.
func (s *ProductService) GetAllProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list products")
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Product not found", "failed to load product")
	}
	return product, nil
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name         string   `json:"name" validate:"required,min=3,max=100"`
	Image        string   `json:"image"`
	Images       []string `json:"images"`
	Brand        string   `json:"brand" validate:"omitempty,max=100"`
	Category     string   `json:"category" validate:"omitempty,max=100"`
	Description  string   `json:"description" validate:"omitempty,max=2000"`
	Price        float64  `json:"price" validate:"gte=0"`
	CountInStock int      `json:"countInStock" validate:"gte=0"`
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Image = in.Image
	p.Images = in.Images
	p.Brand = in.Brand
	p.Category = in.Category
	p.Description = in.Description
	p.Price = in.Price
	p.CountInStock = in.CountInStock
}

// CreateProduct creates a product owned by caller.
func (s *ProductService) CreateProduct(ctx context.Context, caller *models.User, in ProductInput) (*models.Product, error) {
	if !caller.IsAdmin && !caller.IsSeller {
		return nil, apperr.Forbidden("Not authorized as a seller")
	}
	product := &models.Product{SellerID: caller.ID}
	in.apply(product)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperr.Internal(err, "failed to create product")
	}
	s.logger.Info("product created", zap.String("product_id", product.ID), zap.String("seller_id", caller.ID))
	return product, nil
}

// UpdateProduct replaces the writable fields of a product the caller may manage.
func (s *ProductService) UpdateProduct(ctx context.Context, caller *models.User, id string, in ProductInput) (*models.Product, error) {
	product, err := s.manageable(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	in.apply(product)

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, lookupErr(err, "Product not found", "failed to update product")
	}
	return product, nil
}

// DeleteProduct deletes a product the caller may manage.
func (s *ProductService) DeleteProduct(ctx context.Context, caller *models.User, id string) error {
	if _, err := s.manageable(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupErr(err, "Product not found", "failed to delete product")
	}
	s.logger.Info("product deleted", zap.String("product_id", id), zap.String("by", caller.ID))
	return nil
}

// ReviewInput is a rating with an optional comment.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// CreateReview adds the caller's review and recomputes the aggregate rating.
// A user may review a product once.
func (s *ProductService) CreateReview(ctx context.Context, caller *models.User, id string, in ReviewInput) (*models.Product, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("Rating must be between 1 and 5")
	}
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, r := range product.Reviews {
		if r.UserID == caller.ID {
			return nil, apperr.Conflict("Product already reviewed")
		}
	}

	product.Reviews = append(product.Reviews, models.Review{
		UserID:    caller.ID,
		Name:      caller.Name,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: time.Now().UTC(),
	})
	product.NumReviews = len(product.Reviews)
	product.Rating = averageRating(product.Reviews)

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, lookupErr(err, "Product not found", "failed to save review")
	}
	return product, nil
}

// SellerDashboard is the seller landing summary.
type SellerDashboard struct {
	Message      string `json:"message"`
	SellerID     string `json:"sellerId"`
	ProductCount int64  `json:"productCount"`
}

// Dashboard summarizes the caller's listings.
func (s *ProductService) Dashboard(ctx context.Context, seller *models.User) (*SellerDashboard, error) {
	count, err := s.repo.CountBySeller(ctx, seller.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to count products")
	}
	return &SellerDashboard{
		Message:      "Welcome to your seller dashboard, " + seller.Name,
		SellerID:     seller.ID,
		ProductCount: count,
	}, nil
}

func (s *ProductService) manageable(ctx context.Context, caller *models.User, id string) (*models.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin || (caller.IsSeller && product.SellerID == caller.ID) {
		return product, nil
	}
	return nil, apperr.Forbidden("Not authorized to modify this product")
}

func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
