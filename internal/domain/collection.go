package domain

import (
	"slices"
	"time"
)

// Collection is an ordered, curated list of products ("Desk setup under $200").
type Collection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Published   bool      `json:"published"`
	ProductIDs  []string  `json:"productIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AddProduct appends a product if not already present.
func (c *Collection) AddProduct(productID string) bool {
	if slices.Contains(c.ProductIDs, productID) {
		return false
	}
	c.ProductIDs = append(c.ProductIDs, productID)
	return true
}

// RemoveProduct removes a product, preserving the order of the rest.
func (c *Collection) RemoveProduct(productID string) bool {
	i := slices.Index(c.ProductIDs, productID)
	if i < 0 {
		return false
	}
	c.ProductIDs = slices.Delete(c.ProductIDs, i, i+1)
	return true
}

// ContainsProduct checks if a product is in this collection.
func (c *Collection) ContainsProduct(productID string) bool {
	return slices.Contains(c.ProductIDs, productID)
}
