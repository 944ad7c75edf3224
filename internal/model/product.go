package model

import "time"

// Product is a rental listing. Title, description, price and city are
// required non-empty; price must be positive. The main image and the
// gallery images are stored as public path strings.
type Product struct {
	ID          uint64         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	City        string         `json:"city"`
	Latitude    *float64       `json:"latitude,omitempty"`
	Longitude   *float64       `json:"longitude,omitempty"`
	Active      bool           `json:"active"`
	Image       *string        `json:"image,omitempty"` // main image path
	Images      []ProductImage `json:"images"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ProductImage is one gallery image of a product. Rows are removed together
// with their product through the schema-level cascade.
type ProductImage struct {
	ID        uint64 `json:"id"`
	ProductID uint64 `json:"productId"`
	URL       string `json:"url"`
}
