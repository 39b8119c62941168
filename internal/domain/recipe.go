// Package domain contains the catalog entities: recipes and their pins, products, tags and collections.
package domain

import "time"

// Recipe is an image annotated with pins, owned by one user.
// Drafts are visible only to the owner; Published gates the storefront.
type Recipe struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Description string        `json:"description,omitempty"`
	Images      []RecipeImage `json:"images"`
	Published   bool          `json:"published"`
	PublishedAt *time.Time    `json:"publishedAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// RecipeImage is one image of a recipe. The first image by Position is the base
// image pins are laid over. Width and Height are the intrinsic size in pixels.
type RecipeImage struct {
	ID       string `json:"id"`
	RecipeID string `json:"recipeId"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BlurHash string `json:"blurHash,omitempty"`
	Position int    `json:"position"`
}

// BaseImage returns the display image, or nil when the recipe has no images.
func (r *Recipe) BaseImage() *RecipeImage {
	if len(r.Images) == 0 {
		return nil
	}
	return &r.Images[0]
}

// IsOwnedBy reports whether userID owns the recipe.
func (r *Recipe) IsOwnedBy(userID string) bool {
	return userID != "" && r.UserID == userID
}

// Publish marks the recipe public. PublishedAt keeps the first publish time.
func (r *Recipe) Publish(now time.Time) {
	r.Published = true
	if r.PublishedAt == nil {
		r.PublishedAt = &now
	}
	r.UpdatedAt = now
}

// Unpublish returns the recipe to draft.
func (r *Recipe) Unpublish(now time.Time) {
	r.Published = false
	r.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp.
func (r *Recipe) Touch() {
	r.UpdatedAt = time.Now()
}
