package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	return db
}

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(openTestDB(t))

	user := &models.User{Name: "Ada", Email: "ada@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Empty(t, byEmail.Addresses)

	byEmail.Addresses = []models.Address{{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US", Label: "Home"}}
	byEmail.DefaultAddress = 0
	byEmail.IsSeller = true
	require.NoError(t, repo.Update(ctx, byEmail))

	reloaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsSeller)
	require.Len(t, reloaded.Addresses, 1)
	assert.Equal(t, "Springfield", reloaded.Addresses[0].City)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = repo.Update(ctx, &models.User{ID: "missing", Name: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), apperr.ErrNotFound)
}

func TestGORMProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.Product{Name: "Laptop", Price: 1200, CountInStock: 3, SellerID: "seller-1"}))
	require.NoError(t, repo.Create(ctx, &models.Product{Name: "Mouse", Price: 25, CountInStock: 10, SellerID: "seller-2"}))

	all, err := repo.GetAll(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := repo.GetAll(ctx, repositories.ProductFilter{SellerID: "seller-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Laptop", mine[0].Name)

	count, err := repo.CountBySeller(ctx, "seller-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	mine[0].Reviews = append(mine[0].Reviews, models.Review{UserID: "u1", Name: "Ada", Rating: 4, Comment: "ok"})
	mine[0].NumReviews = 1
	mine[0].Rating = 4
	require.NoError(t, repo.Update(ctx, &mine[0]))

	got, err := repo.GetByID(ctx, mine[0].ID)
	require.NoError(t, err)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, 4.0, got.Rating)

	require.NoError(t, repo.Delete(ctx, got.ID))
	_, err = repo.GetByID(ctx, got.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGORMOrderRepository_FlagsAreMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openTestDB(t))

	order := &models.Order{
		UserID:          "user-1",
		OrderItems:      []models.OrderItem{{ProductID: "p1", Name: "Mouse", Quantity: 2, UnitPrice: 25}},
		ShippingAddress: models.Address{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		PaymentMethod:   models.PaymentPayPal,
		ItemsPrice:      50,
		ShippingPrice:   10,
		TaxPrice:        7.5,
		TotalPrice:      67.5,
	}
	require.NoError(t, repo.Create(ctx, order))

	firstPaidAt := time.Now().UTC().Truncate(time.Second)
	paid, err := repo.MarkPaid(ctx, order.ID, firstPaidAt, &models.PaymentResult{ID: "tx-1", Status: "COMPLETED"})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.PaymentResult)
	assert.Equal(t, "tx-1", paid.PaymentResult.ID)

	again, err := repo.MarkPaid(ctx, order.ID, firstPaidAt.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.True(t, again.IsPaid)
	assert.True(t, again.PaidAt.Equal(*paid.PaidAt))

	delivered, err := repo.MarkDelivered(ctx, order.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	assert.NotNil(t, delivered.DeliveredAt)

	_, err = repo.MarkPaid(ctx, "missing", time.Now(), nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	mine, err := repo.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mouse", mine[0].OrderItems[0].Name)
	assert.Equal(t, "Springfield", mine[0].ShippingAddress.City)

	others, err := repo.GetByUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, others)
}
