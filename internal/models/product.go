package models

import "time"

// Review is a single user's rating of a product.
type Review struct {
	UserID    string    `json:"user" bson:"user"`
	Name      string    `json:"name" bson:"name"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Product represents a product in the store.
type Product struct {
	ID           string    `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	SellerID     string    `json:"seller" bson:"seller" gorm:"index;type:varchar(36)"`
	Name         string    `json:"name" bson:"name" validate:"required,min=3,max=100"`
	Image        string    `json:"image" bson:"image"`
	Images       []string  `json:"images" bson:"images" gorm:"serializer:json"`
	Brand        string    `json:"brand" bson:"brand" validate:"omitempty,max=100"`
	Category     string    `json:"category" bson:"category" validate:"omitempty,max=100"`
	Description  string    `json:"description" bson:"description" validate:"omitempty,max=2000"`
	Price        float64   `json:"price" bson:"price" validate:"gte=0"`
	CountInStock int       `json:"countInStock" bson:"countInStock" validate:"gte=0"`
	Rating       float64   `json:"rating" bson:"rating"`
	NumReviews   int       `json:"numReviews" bson:"numReviews"`
	Reviews      []Review  `json:"reviews" bson:"reviews" gorm:"serializer:json"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}
