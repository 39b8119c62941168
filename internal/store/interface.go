// Package store defines the persistence interface for the pinshelf server.
//
// Backends live in subpackages (sqlite, postgres). They return domain values
// as stored: pin style fields stay nil when unset and are defaulted later by
// pin.Normalize. Ownership checks are the caller's job.
package store

import (
	"context"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	RecipeStore
	PinStore
	ProductStore
	TagStore
	CollectionStore
}

// RecipeStore persists recipes and their ordered images.
type RecipeStore interface {
	// CreateRecipe inserts the recipe and its images.
	CreateRecipe(ctx context.Context, r *domain.Recipe) error
	GetRecipe(ctx context.Context, id string) (*domain.Recipe, error)
	GetRecipeBySlug(ctx context.Context, slug string) (*domain.Recipe, error)
	ListRecipesByUser(ctx context.Context, userID string) ([]*domain.Recipe, error)
	// ListPublishedRecipes pages published recipes, newest first.
	ListPublishedRecipes(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Recipe], error)
	// ListRecipeIDsByProduct returns the recipes with at least one pin linking productID.
	ListRecipeIDsByProduct(ctx context.Context, productID string, publishedOnly bool) ([]string, error)
	// UpdateRecipe writes scalar fields; images are replaced with SetRecipeImages.
	UpdateRecipe(ctx context.Context, r *domain.Recipe) error
	// DeleteRecipe removes the recipe with its images and pins.
	DeleteRecipe(ctx context.Context, id string) error
	SetRecipeImages(ctx context.Context, recipeID string, images []domain.RecipeImage) error
	UpdateRecipeImage(ctx context.Context, img *domain.RecipeImage) error
}

// PinStore persists recipe pins in stored order.
type PinStore interface {
	CreatePin(ctx context.Context, p *domain.RecipePin) error
	GetPin(ctx context.Context, id string) (*domain.RecipePin, error)
	ListPins(ctx context.Context, recipeID string) ([]*domain.RecipePin, error)
	UpdatePin(ctx context.Context, p *domain.RecipePin) error
	DeletePin(ctx context.Context, id string) error
	// ReplacePins swaps every pin of a recipe in one transaction. Positions are
	// rewritten to the slice order.
	ReplacePins(ctx context.Context, recipeID string, pins []*domain.RecipePin) error
}

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	PublishedOnly bool
	TagID         string
}

// ProductStore persists catalog products and their tag links.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	// GetProductsByIDs returns the products that exist, in no particular order.
	GetProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// TagStore persists tags and tag groups.
type TagStore interface {
	CreateTagGroup(ctx context.Context, g *domain.TagGroup) error
	GetTagGroup(ctx context.Context, id string) (*domain.TagGroup, error)
	ListTagGroups(ctx context.Context) ([]*domain.TagGroup, error)
	UpdateTagGroup(ctx context.Context, g *domain.TagGroup) error
	// DeleteTagGroup removes the group and leaves its tags ungrouped.
	DeleteTagGroup(ctx context.Context, id string) error

	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	GetTagsByIDs(ctx context.Context, ids []string) ([]*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	UpdateTag(ctx context.Context, t *domain.Tag) error
	DeleteTag(ctx context.Context, id string) error
}

// CollectionStore persists curated product collections.
type CollectionStore interface {
	CreateCollection(ctx context.Context, c *domain.Collection) error
	GetCollection(ctx context.Context, id string) (*domain.Collection, error)
	GetCollectionBySlug(ctx context.Context, slug string) (*domain.Collection, error)
	ListCollectionsByUser(ctx context.Context, userID string) ([]*domain.Collection, error)
	ListPublishedCollections(ctx context.Context) ([]*domain.Collection, error)
	// UpdateCollection writes fields and replaces the ordered product list.
	UpdateCollection(ctx context.Context, c *domain.Collection) error
	DeleteCollection(ctx context.Context, id string) error
}
