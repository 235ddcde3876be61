package services

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

// UserService covers the admin user-management operations.
type UserService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// ListUsers returns every user.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list users")
	}
	return users, nil
}

// GetUser returns one user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "User not found", "failed to load user")
	}
	return user, nil
}

// AdminUserUpdate is what an admin may change on another user.
type AdminUserUpdate struct {
	Name    string `json:"name" validate:"omitempty,min=2,max=100"`
	Email   string `json:"email" validate:"omitempty,email"`
	IsAdmin *bool  `json:"isAdmin"`
}

// UpdateUser applies an AdminUserUpdate.
func (s *UserService) UpdateUser(ctx context.Context, id string, in AdminUserUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		user.Name = strings.TrimSpace(in.Name)
	}
	if in.Email != "" {
		email := normalizeEmail(in.Email)
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return nil, apperr.Conflict("User already exists")
			}
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Internal(err, "failed to check email")
			}
			user.Email = email
		}
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, lookupErr(err, "User not found", "failed to update user")
	}
	s.logger.Info("user updated by admin", zap.String("user_id", user.ID), zap.Bool("is_admin", user.IsAdmin))
	return user, nil
}

// DeleteUser removes a non-admin user.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return apperr.Validation("Cannot delete admin user")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return lookupErr(err, "User not found", "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// SellerProfile is the optional storefront identity set when promoting a
// user to seller.
type SellerProfile struct {
	BrandName string `json:"brandName" validate:"omitempty,max=100"`
	Location  string `json:"location" validate:"omitempty,max=100"`
}

// MakeSeller grants the seller role.
func (s *UserService) MakeSeller(ctx context.Context, id string, profile SellerProfile) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsSeller = true
	if profile.BrandName != "" {
		user.BrandName = profile.BrandName
	}
	if profile.Location != "" {
		user.Location = profile.Location
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, lookupErr(err, "User not found", "failed to update user")
	}
	s.logger.Info("user promoted to seller", zap.String("user_id", user.ID))
	return user, nil
}
