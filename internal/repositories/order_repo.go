package repositories

import (
	"context"
	"time"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// never deleted; the only mutations are the two one-way status flags.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	// MarkPaid flips isPaid once; an already-paid order is returned unchanged.
	MarkPaid(ctx context.Context, id string, at time.Time, result *models.PaymentResult) (*models.Order, error)
	// MarkDelivered flips isDelivered once; an already-delivered order is returned unchanged.
	MarkDelivered(ctx context.Context, id string, at time.Time) (*models.Order, error)
}
