package services_test

import (
	"context"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := services.NewUserService(repo, zap.NewNop())

	repo.On("GetByID", ctx, "admin-1").Return(&models.User{ID: "admin-1", IsAdmin: true}, nil)
	repo.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1"}, nil)
	repo.On("GetByID", ctx, "missing").Return(nil, apperr.ErrNotFound)
	repo.On("Delete", ctx, "user-1").Return(nil).Once()

	err := svc.DeleteUser(ctx, "admin-1")
	assert.EqualError(t, err, "Cannot delete admin user")
	assert.Equal(t, 400, apperr.KindOf(err).HTTPStatus())

	assert.NoError(t, svc.DeleteUser(ctx, "user-1"))
	assert.True(t, apperr.Is(svc.DeleteUser(ctx, "missing"), apperr.KindNotFound))
	repo.AssertExpectations(t)
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := services.NewUserService(repo, zap.NewNop())

	repo.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1", Name: "Ada", Email: "ada@example.com"}, nil)
	repo.On("GetByEmail", ctx, "root@example.com").Return(&models.User{ID: "admin-1"}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	_, err := svc.UpdateUser(ctx, "user-1", services.AdminUserUpdate{Email: "root@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	promote := true
	user, err := svc.UpdateUser(ctx, "user-1", services.AdminUserUpdate{Name: "Ada Lovelace", IsAdmin: &promote})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.True(t, user.IsAdmin)
}

func TestUserService_MakeSeller(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := services.NewUserService(repo, zap.NewNop())

	repo.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1"}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.MakeSeller(ctx, "user-1", services.SellerProfile{BrandName: "Acme"})
	require.NoError(t, err)
	assert.True(t, user.IsSeller)
	assert.Equal(t, "Acme", user.BrandName)
}
