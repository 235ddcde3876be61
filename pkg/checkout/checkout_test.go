package checkout_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/services"
	"storefront/pkg/cart"
	"storefront/pkg/checkout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Addresses(ctx context.Context) (models.AddressBook, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.AddressBook), args.Error(1)
}

func (m *MockAPI) AddAddress(ctx context.Context, addr models.Address) (models.AddressBook, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(models.AddressBook), args.Error(1)
}

func (m *MockAPI) CreateOrder(ctx context.Context, req services.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

var (
	home   = models.Address{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US", Label: "Home"}
	work   = models.Address{Address: "9 Office Rd", City: "Capital City", PostalCode: "99999", Country: "US", Label: "Work"}
	mouse  = cart.Product{ID: "p1", Name: "Mouse", Price: 20, CountInStock: 10, Image: "/img/mouse.jpg"}
	pad    = cart.Product{ID: "p2", Name: "Pad", Price: 30, CountInStock: 5}
	ctx    = context.Background()
	anyCtx = mock.Anything
)

func filledCart(t *testing.T) (*cart.Store, *cart.MemoryStorage) {
	t.Helper()
	storage := cart.NewMemoryStorage()
	store, err := cart.New(storage, pricing.DefaultPolicy)
	require.NoError(t, err)
	require.NoError(t, store.AddItem(mouse, 2))
	require.NoError(t, store.AddItem(pad, 1))
	return store, storage
}

// toReview walks a started wizard to the review stage.
func toReview(t *testing.T, w *checkout.Wizard) {
	t.Helper()
	require.NoError(t, w.Next())
	require.NoError(t, w.ChoosePayment(models.PaymentCashOnDelivery))
	require.NoError(t, w.Next())
	require.Equal(t, checkout.StageReview, w.Stage())
}

func TestStartPreselectsDefaultAddress(t *testing.T) {
	api := new(MockAPI)
	api.On("Addresses", anyCtx).Return(models.AddressBook{Addresses: []models.Address{home, work}, DefaultAddress: 1}, nil)
	store, _ := filledCart(t)

	w := checkout.New(api, store, nil)
	require.NoError(t, w.Start(ctx))

	assert.Equal(t, checkout.StageAddress, w.Stage())
	assert.Equal(t, work, w.Summary().Address)
	assert.Len(t, w.Addresses(), 2)

	require.NoError(t, w.UseSavedAddress(0))
	assert.Equal(t, home, w.Summary().Address)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(w.UseSavedAddress(2)))
}

func TestAddressStageRequiresAddress(t *testing.T) {
	api := new(MockAPI)
	api.On("Addresses", anyCtx).Return(models.AddressBook{}, nil)
	store, _ := filledCart(t)

	w := checkout.New(api, store, nil)
	require.NoError(t, w.Start(ctx))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(w.Next()))
	assert.Equal(t, checkout.StageAddress, w.Stage())

	err := w.CreateAddress(ctx, models.Address{City: "Nowhere"})
	assert.EqualError(t, err, "Shipping address is incomplete")
	api.AssertNotCalled(t, "AddAddress", anyCtx, mock.Anything)
}

func TestCreateAddressPersistsAndSelects(t *testing.T) {
	api := new(MockAPI)
	api.On("Addresses", anyCtx).Return(models.AddressBook{Addresses: []models.Address{home}}, nil)
	api.On("AddAddress", anyCtx, work).Return(models.AddressBook{Addresses: []models.Address{home, work}}, nil)
	store, _ := filledCart(t)

	w := checkout.New(api, store, nil)
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.CreateAddress(ctx, work))

	assert.Equal(t, work, w.Summary().Address)
	assert.Len(t, w.Addresses(), 2)
	require.NoError(t, w.Next())
	assert.Equal(t, checkout.StagePayment, w.Stage())
	api.AssertExpectations(t)
}

func TestPaymentStage(t *testing.T) {
	api := new(MockAPI)
	api.On("Addresses", anyCtx).Return(models.AddressBook{Addresses: []models.Address{home}}, nil)
	store, _ := filledCart(t)

	w := checkout.New(api, store, nil)
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Next())

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(w.Next()))
	assert.EqualError(t, w.ChoosePayment("Bitcoin"), `Unknown payment method "Bitcoin"`)
	require.NoError(t, w.ChoosePayment(models.PaymentUPI))
	require.NoError(t, w.Next())
	assert.Equal(t, checkout.StageReview, w.Stage())

	summary := w.Summary()
	assert.Equal(t, models.PaymentUPI, summary.PaymentMethod)
	assert.Len(t, summary.Lines, 2)
	_, _, _, total := summary.Totals.Strings()
	assert.Equal(t, "90.50", total)
}

func TestBackKeepsSelections(t *testing.T) {
	api := new(MockAPI)
	api.On("Addresses", anyCtx).Return(models.AddressBook{Addresses: []models.Address{home}}, nil)
	store, _ := filledCart(t)

	w := checkout.New(api, store, nil)
	require.NoError(t, w.Start(ctx))
	toReview(t, w)

	w.Back()
	assert.Equal(t, checkout.StagePayment, w.Stage())
	w.Back()
	w.Back()
	assert.Equal(t, checkout.StageAddress, w.Stage())

	summary := w.Summary()
	assert.Equal(t, home, summary.Address)
	assert.Equal(t, models.PaymentCashOnDelivery, summary.PaymentMethod)
	assert.Len(t, store.Lines(), 2)
	api.AssertNotCalled(t, "CreateOrder", anyCtx, mock.Anything)
}

func TestSubmitSendsSnapshotAndClearsCart(t *testing.T) {
	api := new(MockAPI)
	api.On("Addresses", anyCtx).Return(models.AddressBook{Addresses: []models.Address{home}}, nil)
	store, storage := filledCart(t)

	want := services.CreateOrderRequest{
		OrderItems: []models.OrderItem{
			{ProductID: "p1", Name: "Mouse", Quantity: 2, Image: "/img/mouse.jpg", UnitPrice: 20},
			{ProductID: "p2", Name: "Pad", Quantity: 1, UnitPrice: 30},
		},
		ShippingAddress: home,
		PaymentMethod:   models.PaymentCashOnDelivery,
		ItemsPrice:      70,
		ShippingPrice:   10,
		TaxPrice:        10.5,
		TotalPrice:      90.5,
	}
	api.On("CreateOrder", anyCtx, want).Return(&models.Order{ID: "o1", TotalPrice: 90.5}, nil).Once()

	w := checkout.New(api, store, nil)
	require.NoError(t, w.Start(ctx))
	_, err := w.Submit(ctx)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "submitting before review")

	toReview(t, w)
	order, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, checkout.StageDone, w.Stage())
	assert.Same(t, order, w.Order())

	assert.Empty(t, store.Lines())
	raw, ok, err := storage.Load(cart.KeyCartItems)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", raw)

	again, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Same(t, order, again)
	api.AssertExpectations(t)
}

func TestSubmitFailureLeavesCartUntouched(t *testing.T) {
	api := new(MockAPI)
	api.On("Addresses", anyCtx).Return(models.AddressBook{Addresses: []models.Address{home}}, nil)
	api.On("CreateOrder", anyCtx, mock.Anything).Return(nil, errors.New("Price mismatch")).Once()
	store, storage := filledCart(t)

	w := checkout.New(api, store, nil)
	require.NoError(t, w.Start(ctx))
	toReview(t, w)

	_, err := w.Submit(ctx)
	assert.EqualError(t, err, "Price mismatch")
	assert.Equal(t, checkout.StageReview, w.Stage())
	assert.Nil(t, w.Order())
	assert.Len(t, store.Lines(), 2)
	raw, _, _ := storage.Load(cart.KeyTotalPrice)
	assert.Equal(t, "90.50", raw)
	assert.Equal(t, home, w.Summary().Address)
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	api := new(MockAPI)
	api.On("Addresses", anyCtx).Return(models.AddressBook{Addresses: []models.Address{home}}, nil)
	store, _ := filledCart(t)

	w := checkout.New(api, store, nil)
	require.NoError(t, w.Start(ctx))
	toReview(t, w)
	require.NoError(t, store.Clear())

	_, err := w.Submit(ctx)
	assert.EqualError(t, err, "Your cart is empty")
	api.AssertNotCalled(t, "CreateOrder", anyCtx, mock.Anything)
}

func TestStartPropagatesAPIError(t *testing.T) {
	api := new(MockAPI)
	api.On("Addresses", anyCtx).Return(models.AddressBook{}, errors.New("offline"))
	store, _ := filledCart(t)

	w := checkout.New(api, store, nil)
	assert.EqualError(t, w.Start(ctx), "offline")
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "address", checkout.StageAddress.String())
	assert.Equal(t, "review", checkout.StageReview.String())
	assert.Equal(t, "stage(9)", checkout.Stage(9).String())
}
