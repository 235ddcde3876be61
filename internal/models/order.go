package models

import "time"

// PaymentMethod is the label recorded on an order; no payment is processed.
type PaymentMethod string

const (
	PaymentPayPal         PaymentMethod = "PayPal"
	PaymentCreditCard     PaymentMethod = "CreditCard"
	PaymentUPI            PaymentMethod = "UPI"
	PaymentCashOnDelivery PaymentMethod = "CashOnDelivery"
)

// PaymentMethods lists the accepted methods in display order.
var PaymentMethods = []PaymentMethod{PaymentPayPal, PaymentCreditCard, PaymentUPI, PaymentCashOnDelivery}

// Valid reports whether m is one of PaymentMethods.
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// OrderItem is a line-item snapshot taken when the order is placed.
type OrderItem struct {
	ProductID string  `json:"product" bson:"product" validate:"required"`
	Name      string  `json:"name" bson:"name" validate:"required"`
	Quantity  int     `json:"qty" bson:"qty" validate:"gt=0"`
	Image     string  `json:"image" bson:"image"`
	UnitPrice float64 `json:"price" bson:"price" validate:"gte=0"` // price at the time of order
}

// PaymentResult is the optional confirmation payload sent with "mark paid".
type PaymentResult struct {
	ID           string `json:"id" bson:"id"`
	Status       string `json:"status" bson:"status"`
	UpdateTime   string `json:"update_time" bson:"updateTime"`
	EmailAddress string `json:"email_address" bson:"emailAddress"`
}

// OrderOwner is the owner summary attached to admin order listings.
type OrderOwner struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order is immutable after creation except for the paid and delivered flags.
type Order struct {
	ID              string         `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string         `json:"user" bson:"user" gorm:"index;type:varchar(36)"`
	OrderItems      []OrderItem    `json:"orderItems" bson:"orderItems" gorm:"serializer:json"`
	ShippingAddress Address        `json:"shippingAddress" bson:"shippingAddress" gorm:"serializer:json"`
	PaymentMethod   PaymentMethod  `json:"paymentMethod" bson:"paymentMethod" gorm:"type:varchar(32)"`
	PaymentResult   *PaymentResult `json:"paymentResult,omitempty" bson:"paymentResult,omitempty" gorm:"serializer:json"`
	ItemsPrice      float64        `json:"itemsPrice" bson:"itemsPrice"`
	ShippingPrice   float64        `json:"shippingPrice" bson:"shippingPrice"`
	TaxPrice        float64        `json:"taxPrice" bson:"taxPrice"`
	TotalPrice      float64        `json:"totalPrice" bson:"totalPrice"`
	IsPaid          bool           `json:"isPaid" bson:"isPaid" gorm:"not null;default:false"`
	PaidAt          *time.Time     `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	IsDelivered     bool           `json:"isDelivered" bson:"isDelivered" gorm:"not null;default:false"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updatedAt"`

	Owner *OrderOwner `json:"owner,omitempty" bson:"-" gorm:"-"`
}
