package models

import "time"

// Address is a saved shipping address. It is embedded in the owning user's
// record and copied verbatim into orders.
type Address struct {
	Address    string `json:"address" bson:"address" validate:"required"`
	City       string `json:"city" bson:"city" validate:"required"`
	PostalCode string `json:"postalCode" bson:"postalCode" validate:"required"`
	Country    string `json:"country" bson:"country" validate:"required"`
	Label      string `json:"label,omitempty" bson:"label,omitempty" validate:"omitempty,max=50"`
}

// Complete reports whether all required fields are present.
func (a Address) Complete() bool {
	return a.Address != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// User represents a user of the store.
type User struct {
	ID             string    `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name           string    `json:"name" bson:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email          string    `json:"email" bson:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password       string    `json:"-" bson:"password" gorm:"type:varchar(255)"`
	IsAdmin        bool      `json:"isAdmin" bson:"isAdmin" gorm:"not null;default:false"`
	IsSeller       bool      `json:"isSeller" bson:"isSeller" gorm:"not null;default:false"`
	BrandName      string    `json:"brandName,omitempty" bson:"brandName,omitempty"`
	Location       string    `json:"location,omitempty" bson:"location,omitempty"`
	Addresses      []Address `json:"addresses" bson:"addresses" gorm:"serializer:json"`
	DefaultAddress int       `json:"defaultAddress" bson:"defaultAddress" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// AddressBook is the response shape of every address-book operation.
type AddressBook struct {
	Addresses      []Address `json:"addresses"`
	DefaultAddress int       `json:"defaultAddress"`
}
