package models

import "time"

const (
	CategorySupplements = "supplements"
	CategoryEquipment   = "equipment"
	CategoryClothing    = "clothing"
	CategoryAccessories = "accessories"
)

var ProductCategories = []string{CategorySupplements, CategoryEquipment, CategoryClothing, CategoryAccessories}

type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Image       *string   `json:"image,omitempty" db:"image"`
	Category    string    `json:"category" db:"category"`
	Available   bool      `json:"available" db:"available"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type ProductFilters struct {
	Category  string
	Available *bool
	Search    string
}
