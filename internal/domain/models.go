package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          string          `db:"id" json:"id"`
	SellerID    string          `db:"seller_id" json:"sellerId"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	Active      bool            `db:"active" json:"active"`
	CreatedAt   string          `db:"created_at" json:"createdAt"`
	UpdatedAt   string          `db:"updated_at" json:"updatedAt"`
}

// Address is an address-book entry. Orders keep their own snapshot; this
// row can be edited or deleted without touching order history.
type Address struct {
	ID             string `db:"id" json:"id"`
	UserID         string `db:"user_id" json:"userId"`
	Street         string `db:"street" json:"address"`
	City           string `db:"city" json:"city"`
	State          string `db:"state" json:"state"`
	ZipCode        string `db:"zip_code" json:"zipCode"`
	AlternatePhone string `db:"alternate_phone" json:"alternatePhone,omitempty"`
	IsDefault      bool   `db:"is_default" json:"isDefault"`
	CreatedAt      string `db:"created_at" json:"createdAt"`
}

type Notification struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"userId"`
	Title     string `db:"title" json:"title"`
	Body      string `db:"body" json:"body"`
	Read      bool   `db:"is_read" json:"read"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}
