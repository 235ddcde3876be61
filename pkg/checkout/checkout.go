// Package checkout drives order placement from a cart: choose a shipping
// address, choose a payment method, review, submit. Only Submit and
// CreateAddress talk to the server; moving between stages changes nothing
// else.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/services"
	"storefront/pkg/cart"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Stage is a step of the wizard.
type Stage int

const (
	StageAddress Stage = iota
	StagePayment
	StageReview
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageAddress:
		return "address"
	case StagePayment:
		return "payment"
	case StageReview:
		return "review"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// API is the part of the storefront API checkout needs. *client.Client
// implements it.
type API interface {
	Addresses(ctx context.Context) (models.AddressBook, error)
	AddAddress(ctx context.Context, addr models.Address) (models.AddressBook, error)
	CreateOrder(ctx context.Context, req services.CreateOrderRequest) (*models.Order, error)
}

// Summary is the read-only view shown before submitting.
type Summary struct {
	Lines         []cart.Line
	Address       models.Address
	PaymentMethod models.PaymentMethod
	Totals        pricing.Breakdown
}

// Wizard holds one checkout in progress. It is safe for concurrent use.
type Wizard struct {
	mu        sync.Mutex
	api       API
	cart      *cart.Store
	validate  *validator.Validate
	logger    *zap.Logger
	stage     Stage
	addresses []models.Address
	address   *models.Address
	method    models.PaymentMethod
	order     *models.Order
}

// New creates a Wizard for the cart in store. logger may be nil.
func New(api API, store *cart.Store, logger *zap.Logger) *Wizard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wizard{
		api:      api,
		cart:     store,
		validate: validator.New(),
		logger:   logger,
		stage:    StageAddress,
	}
}

// Start loads the saved addresses and preselects the default one.
func (w *Wizard) Start(ctx context.Context) error {
	book, err := w.api.Addresses(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.addresses = append([]models.Address(nil), book.Addresses...)
	w.address = nil
	if idx := book.DefaultAddress; idx >= 0 && idx < len(w.addresses) {
		selected := w.addresses[idx]
		w.address = &selected
	}
	w.stage = StageAddress
	return nil
}

// Stage reports the current step.
func (w *Wizard) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Addresses returns the saved addresses loaded by Start.
func (w *Wizard) Addresses() []models.Address {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Address(nil), w.addresses...)
}

// UseSavedAddress selects the saved address at idx.
func (w *Wizard) UseSavedAddress(idx int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx < 0 || idx >= len(w.addresses) {
		return apperr.NotFound("Address not found")
	}
	selected := w.addresses[idx]
	w.address = &selected
	return nil
}

// CreateAddress saves addr to the address book and selects it.
func (w *Wizard) CreateAddress(ctx context.Context, addr models.Address) error {
	if err := w.checkAddress(addr); err != nil {
		return err
	}
	book, err := w.api.AddAddress(ctx, addr)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.addresses = append([]models.Address(nil), book.Addresses...)
	selected := addr
	if n := len(w.addresses); n > 0 {
		selected = w.addresses[n-1]
	}
	w.address = &selected
	return nil
}

// ChoosePayment records the payment method label.
func (w *Wizard) ChoosePayment(method models.PaymentMethod) error {
	if !method.Valid() {
		return apperr.Validation("Unknown payment method %q", method)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.method = method
	return nil
}

// Next advances one stage once the current stage is resolved.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.stage {
	case StageAddress:
		if w.address == nil {
			return apperr.Validation("Select a shipping address")
		}
		if err := w.checkAddress(*w.address); err != nil {
			return err
		}
		w.stage = StagePayment
	case StagePayment:
		if w.method == "" {
			return apperr.Validation("Select a payment method")
		}
		w.stage = StageReview
	case StageReview:
		return apperr.Validation("Submit the order to continue")
	}
	return nil
}

// Back returns to the previous stage. Selections are kept.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage == StagePayment || w.stage == StageReview {
		w.stage--
	}
}

// Summary returns what Submit would send.
func (w *Wizard) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Summary{
		Lines:         w.cart.Lines(),
		PaymentMethod: w.method,
		Totals:        w.cart.Totals(),
	}
	if w.address != nil {
		s.Address = *w.address
	}
	return s
}

// Submit places the order. On success the cart is cleared and the wizard
// moves to StageDone; on failure the cart and selections are left as they
// were so the caller can retry.
func (w *Wizard) Submit(ctx context.Context) (*models.Order, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage == StageDone {
		return w.order, nil
	}
	if w.stage != StageReview {
		return nil, apperr.Validation("Review the order before submitting")
	}

	lines := w.cart.Lines()
	if len(lines) == 0 {
		return nil, apperr.Validation("Your cart is empty")
	}
	if w.address == nil {
		return nil, apperr.Validation("Select a shipping address")
	}
	if err := w.checkAddress(*w.address); err != nil {
		return nil, err
	}
	if w.method == "" {
		return nil, apperr.Validation("Select a payment method")
	}

	req := buildRequest(lines, *w.address, w.method, w.cart.Totals())
	order, err := w.api.CreateOrder(ctx, req)
	if err != nil {
		w.logger.Warn("Order submission failed", zap.Error(err))
		return nil, err
	}

	w.order = order
	w.stage = StageDone
	if err := w.cart.Clear(); err != nil {
		w.logger.Error("Failed to clear cart after order", zap.String("order_id", order.ID), zap.Error(err))
		return order, fmt.Errorf("order %s placed but the cart was not cleared: %w", order.ID, err)
	}
	w.logger.Info("Order placed", zap.String("order_id", order.ID), zap.Float64("total", order.TotalPrice))
	return order, nil
}

// Order returns the order placed by Submit, or nil.
func (w *Wizard) Order() *models.Order {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.order
}

func (w *Wizard) checkAddress(addr models.Address) error {
	if err := w.validate.Struct(addr); err != nil {
		return apperr.Validation("Shipping address is incomplete")
	}
	return nil
}

func buildRequest(lines []cart.Line, addr models.Address, method models.PaymentMethod, totals pricing.Breakdown) services.CreateOrderRequest {
	items := make([]models.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = models.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Image:     l.Image,
			UnitPrice: l.UnitPrice,
		}
	}
	itemsPrice, shipping, tax, total := totals.Floats()
	return services.CreateOrderRequest{
		OrderItems:      items,
		ShippingAddress: addr,
		PaymentMethod:   method,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   shipping,
		TaxPrice:        tax,
		TotalPrice:      total,
	}
}
