// Package search provides full-text storefront search using Bleve.
// Products, recipes and collections share one index and are told apart by a
// type field, so a single query can return all three.
package search

import (
	"github.com/pinshelf/pinshelf-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeProduct    DocType = "product"
	DocTypeRecipe     DocType = "recipe"
	DocTypeCollection DocType = "collection"
)

// SearchDocument is the unified document structure for the Bleve index.
// Only published entities are indexed; callers remove a document when its
// entity is unpublished or deleted.
type SearchDocument struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`
	Slug string  `json:"slug"`

	// Product title, recipe title or collection title.
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`

	// Tag slugs, for exact filtering.
	Tags []string `json:"tags,omitempty"`

	PriceCents int64 `json:"price_cents,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"slug":       d.Slug,
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.Brand != "" {
		m["brand"] = d.Brand
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.ImageURL != "" {
		m["image_url"] = d.ImageURL
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.PriceCents > 0 {
		m["price_cents"] = d.PriceCents
	}
	return m
}

// ProductToSearchDocument converts a product. Tag slugs are resolved by the
// caller since the search package does not read the store.
func ProductToSearchDocument(p *domain.Product, tagSlugs []string) *SearchDocument {
	desc := p.Summary
	if desc == "" {
		desc = p.Description
	}
	return &SearchDocument{
		ID:          p.ID,
		Type:        DocTypeProduct,
		Slug:        p.Slug,
		Name:        p.Title,
		Brand:       p.Brand,
		Description: desc,
		ImageURL:    p.ImageURL,
		Tags:        tagSlugs,
		PriceCents:  p.PriceCents,
		CreatedAt:   p.CreatedAt.UnixMilli(),
		UpdatedAt:   p.UpdatedAt.UnixMilli(),
	}
}

// RecipeToSearchDocument converts a recipe.
func RecipeToSearchDocument(r *domain.Recipe) *SearchDocument {
	doc := &SearchDocument{
		ID:          r.ID,
		Type:        DocTypeRecipe,
		Slug:        r.Slug,
		Name:        r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UnixMilli(),
		UpdatedAt:   r.UpdatedAt.UnixMilli(),
	}
	if base := r.BaseImage(); base != nil {
		doc.ImageURL = base.URL
	}
	return doc
}

// CollectionToSearchDocument converts a collection.
func CollectionToSearchDocument(c *domain.Collection) *SearchDocument {
	return &SearchDocument{
		ID:          c.ID,
		Type:        DocTypeCollection,
		Slug:        c.Slug,
		Name:        c.Title,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.UnixMilli(),
		UpdatedAt:   c.UpdatedAt.UnixMilli(),
	}
}
