package domain

import (
	"slices"
	"time"
)

// Product is a catalog gadget with an affiliate link.
type Product struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Brand        string    `json:"brand,omitempty"`
	Description  string    `json:"description,omitempty"` // Markdown
	Summary      string    `json:"summary,omitempty"`     // plain-text excerpt of Description
	PriceCents   int64     `json:"priceCents"`
	Currency     string    `json:"currency"`
	AffiliateURL string    `json:"affiliateUrl,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Published    bool      `json:"published"`
	TagIDs       []string  `json:"tagIds"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProductSnapshot is the denormalized product shape attached to recipe payloads
// and handed to the pin renderer. Only ID and Title are required.
type ProductSnapshot struct {
	ID           string `json:"id"`
	Slug         string `json:"slug,omitempty"`
	Title        string `json:"title"`
	Brand        string `json:"brand,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	AffiliateURL string `json:"affiliateUrl,omitempty"`
	PriceCents   int64  `json:"priceCents,omitempty"`
	Currency     string `json:"currency,omitempty"`
}

// Snapshot returns the denormalized form of p.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Brand:        p.Brand,
		ImageURL:     p.ImageURL,
		AffiliateURL: p.AffiliateURL,
		PriceCents:   p.PriceCents,
		Currency:     p.Currency,
	}
}

// HasTag reports whether the product carries tagID.
func (p *Product) HasTag(tagID string) bool {
	return slices.Contains(p.TagIDs, tagID)
}

// Touch updates the UpdatedAt timestamp.
func (p *Product) Touch() {
	p.UpdatedAt = time.Now()
}
