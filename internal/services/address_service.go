package services

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

// AddressService edits the address book embedded in a user's record.
// Each edit rewrites the whole user; concurrent edits are last-write-wins.
type AddressService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewAddressService creates a new AddressService.
func NewAddressService(userRepo repositories.UserRepository, logger *zap.Logger) *AddressService {
	return &AddressService{userRepo: userRepo, logger: logger}
}

// List returns the caller's addresses and default index.
func (s *AddressService) List(ctx context.Context, userID string) (models.AddressBook, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return models.AddressBook{}, err
	}
	return bookOf(user), nil
}

// Add appends an address. The first address becomes the default.
func (s *AddressService) Add(ctx context.Context, userID string, addr models.Address) (models.AddressBook, error) {
	if !addr.Complete() {
		return models.AddressBook{}, apperr.Validation("Address, city, postal code and country are required")
	}
	return s.edit(ctx, userID, func(u *models.User) error {
		u.Addresses = append(u.Addresses, addr)
		if len(u.Addresses) == 1 {
			u.DefaultAddress = 0
		}
		return nil
	})
}

// Update replaces the address at idx.
func (s *AddressService) Update(ctx context.Context, userID string, idx int, addr models.Address) (models.AddressBook, error) {
	if !addr.Complete() {
		return models.AddressBook{}, apperr.Validation("Address, city, postal code and country are required")
	}
	return s.edit(ctx, userID, func(u *models.User) error {
		if !inRange(u, idx) {
			return apperr.NotFound("Address not found")
		}
		u.Addresses[idx] = addr
		return nil
	})
}

// Remove deletes the address at idx, resetting the default to 0 when it
// would point past the end.
func (s *AddressService) Remove(ctx context.Context, userID string, idx int) (models.AddressBook, error) {
	return s.edit(ctx, userID, func(u *models.User) error {
		if !inRange(u, idx) {
			return apperr.NotFound("Address not found")
		}
		u.Addresses = append(u.Addresses[:idx:idx], u.Addresses[idx+1:]...)
		if u.DefaultAddress >= len(u.Addresses) {
			u.DefaultAddress = 0
		}
		return nil
	})
}

// SetDefault marks the address at idx as the default.
func (s *AddressService) SetDefault(ctx context.Context, userID string, idx int) (models.AddressBook, error) {
	return s.edit(ctx, userID, func(u *models.User) error {
		if !inRange(u, idx) {
			return apperr.NotFound("Address not found")
		}
		u.DefaultAddress = idx
		return nil
	})
}

func (s *AddressService) load(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "failed to load user")
	}
	return user, nil
}

func (s *AddressService) edit(ctx context.Context, userID string, mutate func(*models.User) error) (models.AddressBook, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return models.AddressBook{}, err
	}
	if err := mutate(user); err != nil {
		return models.AddressBook{}, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return models.AddressBook{}, lookupErr(err, "User not found", "failed to save addresses")
	}
	s.logger.Debug("address book saved", zap.String("user_id", userID), zap.Int("count", len(user.Addresses)))
	return bookOf(user), nil
}

func inRange(u *models.User, idx int) bool {
	return idx >= 0 && idx < len(u.Addresses)
}

func bookOf(u *models.User) models.AddressBook {
	addresses := u.Addresses
	if addresses == nil {
		addresses = []models.Address{}
	}
	return models.AddressBook{Addresses: addresses, DefaultAddress: u.DefaultAddress}
}
