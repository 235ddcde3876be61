package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The MongoDB adapters need a live server; set MONGO_URI to run them.
func openTestMongo(t *testing.T) repositories.Set {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	client, db, err := repositories.OpenMongo(ctx, uri, "storefront_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return repositories.NewMongoSet(db)
}

func TestMongoUserRepository(t *testing.T) {
	set := openTestMongo(t)
	ctx := context.Background()

	user := &models.User{Name: "Ada", Email: "ada@example.com", Password: "hash"}
	require.NoError(t, set.Users.Create(ctx, user))

	user.Addresses = append(user.Addresses, models.Address{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"})
	require.NoError(t, set.Users.Update(ctx, user))

	got, err := set.Users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, got.Addresses, 1)

	_, err = set.Users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMongoOrderRepository_FlagsAreMonotonic(t *testing.T) {
	set := openTestMongo(t)
	ctx := context.Background()

	order := &models.Order{UserID: "user-1", PaymentMethod: models.PaymentUPI, TotalPrice: 20}
	require.NoError(t, set.Orders.Create(ctx, order))

	at := time.Now().UTC().Truncate(time.Millisecond)
	paid, err := set.Orders.MarkPaid(ctx, order.ID, at, nil)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	again, err := set.Orders.MarkPaid(ctx, order.ID, at.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.True(t, again.PaidAt.Equal(*paid.PaidAt))

	_, err = set.Orders.MarkDelivered(ctx, "missing", at)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
