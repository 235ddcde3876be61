package services

import (
	"context"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"

	"go.uber.org/zap"
)

// EventPublisher receives order lifecycle events. *rabbitmq.Client
// implements it.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event rabbitmq.OrderEvent) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	policy    pricing.Policy
	publisher EventPublisher // nil disables event publication
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, userRepo repositories.UserRepository, policy pricing.Policy, publisher EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrderRequest is the order snapshot submitted at checkout.
type CreateOrderRequest struct {
	OrderItems      []models.OrderItem   `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress models.Address       `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod" validate:"required"`
	ItemsPrice      float64              `json:"itemsPrice" validate:"gte=0"`
	ShippingPrice   float64              `json:"shippingPrice" validate:"gte=0"`
	TaxPrice        float64              `json:"taxPrice" validate:"gte=0"`
	TotalPrice      float64              `json:"totalPrice" validate:"gte=0"`
}

// CreateOrder stores an order for owner after checking the request against
// the server's own price computation. Items and address are copied, so later
// product or address-book edits never reach the order.
func (s *OrderService) CreateOrder(ctx context.Context, owner *models.User, req CreateOrderRequest) (*models.Order, error) {
	if len(req.OrderItems) == 0 {
		return nil, apperr.Validation("No order items")
	}
	lines := make([]pricing.Line, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		if item.ProductID == "" {
			return nil, apperr.Validation("Order item is missing a product")
		}
		if item.Quantity <= 0 {
			return nil, apperr.Validation("Quantity must be at least 1 for %s", item.Name)
		}
		if item.UnitPrice < 0 {
			return nil, apperr.Validation("Price cannot be negative for %s", item.Name)
		}
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	if !req.ShippingAddress.Complete() {
		return nil, apperr.Validation("Shipping address is incomplete")
	}
	if !req.PaymentMethod.Valid() {
		return nil, apperr.Validation("Unknown payment method %q", req.PaymentMethod)
	}

	computed := s.policy.Compute(lines)
	submitted := pricing.FromFloats(req.ItemsPrice, req.ShippingPrice, req.TaxPrice, req.TotalPrice)
	if !computed.Matches(submitted) {
		_, _, _, want := computed.Strings()
		s.logger.Warn("order price mismatch",
			zap.String("user_id", owner.ID),
			zap.Float64("submitted_total", req.TotalPrice),
			zap.String("computed_total", want))
		return nil, apperr.Validation("Price mismatch")
	}
	items, shipping, tax, total := computed.Floats()

	order := &models.Order{
		UserID:          owner.ID,
		OrderItems:      append([]models.OrderItem(nil), req.OrderItems...),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      items,
		ShippingPrice:   shipping,
		TaxPrice:        tax,
		TotalPrice:      total,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, apperr.Internal(err, "failed to create order")
	}

	s.logger.Info("order created", zap.String("order_id", order.ID), zap.String("user_id", owner.ID), zap.Float64("total", order.TotalPrice))
	s.publish(ctx, rabbitmq.EventOrderCreated, order)
	return order, nil
}

// GetOrder returns an order visible to caller: its owner or an admin.
func (s *OrderService) GetOrder(ctx context.Context, caller *models.User, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Order not found", "failed to load order")
	}
	if !caller.IsAdmin && order.UserID != caller.ID {
		return nil, apperr.Forbidden("Not authorized to view this order")
	}
	return order, nil
}

// MyOrders lists the caller's orders, newest first.
func (s *OrderService) MyOrders(ctx context.Context, caller *models.User) ([]models.Order, error) {
	orders, err := s.orderRepo.GetByUser(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list orders")
	}
	return orders, nil
}

// AllOrders lists every order with its owner's name and email attached.
func (s *OrderService) AllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list orders")
	}

	owners := make(map[string]*models.OrderOwner)
	for i := range orders {
		uid := orders[i].UserID
		owner, seen := owners[uid]
		if !seen {
			if u, err := s.userRepo.GetByID(ctx, uid); err == nil {
				owner = &models.OrderOwner{ID: u.ID, Name: u.Name, Email: u.Email}
			} else {
				s.logger.Debug("order owner not found", zap.String("order_id", orders[i].ID), zap.String("user_id", uid))
			}
			owners[uid] = owner
		}
		orders[i].Owner = owner
	}
	return orders, nil
}

// MarkPaid records payment on an order owned by caller (or any order for an
// admin). Repeating it leaves the original paidAt in place.
func (s *OrderService) MarkPaid(ctx context.Context, caller *models.User, id string, result *models.PaymentResult) (*models.Order, error) {
	current, err := s.GetOrder(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.MarkPaid(ctx, id, s.now(), result)
	if err != nil {
		return nil, lookupErr(err, "Order not found", "failed to update order")
	}
	if !current.IsPaid {
		s.logger.Info("order paid", zap.String("order_id", id), zap.String("by", caller.ID))
		s.publish(ctx, rabbitmq.EventOrderPaid, order)
	}
	return order, nil
}

// MarkDelivered records delivery. Only paid orders can be delivered.
func (s *OrderService) MarkDelivered(ctx context.Context, id string) (*models.Order, error) {
	current, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Order not found", "failed to load order")
	}
	if !current.IsPaid {
		return nil, apperr.Validation("Order has not been paid")
	}

	order, err := s.orderRepo.MarkDelivered(ctx, id, s.now())
	if err != nil {
		return nil, lookupErr(err, "Order not found", "failed to update order")
	}
	if !current.IsDelivered {
		s.logger.Info("order delivered", zap.String("order_id", id))
		s.publish(ctx, rabbitmq.EventOrderDelivered, order)
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := rabbitmq.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalPrice:  order.TotalPrice,
		IsPaid:      order.IsPaid,
		IsDelivered: order.IsDelivered,
		OccurredAt:  s.now(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish order event", zap.String("type", eventType), zap.String("order_id", order.ID), zap.Error(err))
	}
}
