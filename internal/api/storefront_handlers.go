package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pinshelf/pinshelf-server/internal/search"
	"github.com/pinshelf/pinshelf-server/internal/service"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// maxSearchLimit caps public search page size.
const maxSearchLimit = 100

func (s *Server) registerStorefrontRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/recipes",
		Summary:     "List published recipes",
		Description: "Pages published recipes, newest first",
		Tags:        []string{"Storefront"},
	}, s.handleListPublicRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicRecipe",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/recipes/{idOrSlug}",
		Summary:     "Get published recipe",
		Description: "Returns a recipe with normalized pins and pinned products. A positive width adds the resolved overlay",
		Tags:        []string{"Storefront"},
	}, s.handleGetPublicRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicProducts",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/products",
		Summary:     "List published products",
		Description: "Returns published products in the shallow or deep view, optionally by tag",
		Tags:        []string{"Storefront"},
	}, s.handleListPublicProducts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicProduct",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/products/{idOrSlug}",
		Summary:     "Get published product",
		Description: "Returns the deep view of a published product",
		Tags:        []string{"Storefront"},
	}, s.handleGetPublicProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicCollections",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/collections",
		Summary:     "List published collections",
		Description: "Returns published collections with their published products",
		Tags:        []string{"Storefront"},
	}, s.handleListPublicCollections)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicCollection",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/collections/{slug}",
		Summary:     "Get published collection",
		Description: "Returns a published collection by slug",
		Tags:        []string{"Storefront"},
	}, s.handleGetPublicCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/tags",
		Summary:     "List tags",
		Description: "Returns tag groups and tags for storefront navigation",
		Tags:        []string{"Storefront"},
	}, s.handleListPublicTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/search",
		Summary:     "Search catalog",
		Description: "Full-text search over published products, recipes and collections",
		Tags:        []string{"Storefront"},
	}, s.handleSearch)
}

// === DTOs ===

// ListPublicRecipesInput pages published recipes.
type ListPublicRecipesInput struct {
	Limit  int    `query:"limit" doc:"Page size (default 50, at most 500)"`
	Cursor string `query:"cursor" doc:"Cursor from the previous page"`
}

// ListPublicRecipesOutput wraps a recipe page for Huma.
type ListPublicRecipesOutput struct {
	Body *store.PaginatedResult[service.RecipeSummary]
}

// GetPublicRecipeInput addresses a published recipe.
type GetPublicRecipeInput struct {
	IDOrSlug string `path:"idOrSlug" doc:"Recipe ID or slug"`
	Width    int    `query:"width" doc:"Rendered image width in pixels; 0 omits the overlay"`
}

// RecipeViewOutput wraps a recipe view for Huma.
type RecipeViewOutput struct {
	Body *service.RecipeView
}

// ListPublicProductsInput filters published products.
type ListPublicProductsInput struct {
	View string `query:"view" doc:"Projection: shallow (default) or deep"`
	Tag  string `query:"tag" doc:"Only products carrying this tag slug"`
}

// PublicProductsResponse contains published products.
type PublicProductsResponse struct {
	Products []service.ProductView `json:"products" doc:"Published products"`
}

// PublicProductsOutput wraps the product list for Huma.
type PublicProductsOutput struct {
	Body PublicProductsResponse
}

// IDOrSlugInput addresses an entity by ID or slug.
type IDOrSlugInput struct {
	IDOrSlug string `path:"idOrSlug" doc:"ID or slug"`
}

// PublicProductOutput wraps a product view for Huma.
type PublicProductOutput struct {
	Body *service.ProductView
}

// PublicCollectionsResponse contains published collections.
type PublicCollectionsResponse struct {
	Collections []service.CollectionView `json:"collections" doc:"Published collections"`
}

// PublicCollectionsOutput wraps the collection list for Huma.
type PublicCollectionsOutput struct {
	Body PublicCollectionsResponse
}

// SlugInput addresses an entity by slug.
type SlugInput struct {
	Slug string `path:"slug" doc:"Slug"`
}

// PublicCollectionOutput wraps a collection view for Huma.
type PublicCollectionOutput struct {
	Body *service.CollectionView
}

// PublicTagsOutput wraps the tag navigation for Huma.
type PublicTagsOutput struct {
	Body *service.TagsView
}

// SearchInput contains storefront search parameters.
type SearchInput struct {
	Query    string   `query:"q" doc:"Search text"`
	Types    []string `query:"type" doc:"Document types: product, recipe, collection"`
	Tags     []string `query:"tag" doc:"Tag slugs; products carrying any of them match"`
	MinPrice int64    `query:"minPrice" doc:"Minimum price in cents"`
	MaxPrice int64    `query:"maxPrice" doc:"Maximum price in cents; 0 is unbounded"`
	Sort     string   `query:"sort" doc:"Sort field: relevance, name, recent or price"`
	Order    string   `query:"order" doc:"Sort order: asc or desc"`
	Limit    int      `query:"limit" doc:"Page size (default 20, at most 100)"`
	Offset   int      `query:"offset" doc:"Hits to skip"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

// === Handlers ===

func (s *Server) handleListPublicRecipes(ctx context.Context, input *ListPublicRecipesInput) (*ListPublicRecipesOutput, error) {
	params := store.PaginationParams{Limit: input.Limit, Cursor: input.Cursor}
	params.Validate()

	page, err := s.services.Storefront.ListRecipes(ctx, params)
	if err != nil {
		return nil, err
	}

	return &ListPublicRecipesOutput{Body: page}, nil
}

func (s *Server) handleGetPublicRecipe(ctx context.Context, input *GetPublicRecipeInput) (*RecipeViewOutput, error) {
	view, err := s.services.Storefront.GetRecipe(ctx, input.IDOrSlug, input.Width)
	if err != nil {
		return nil, err
	}

	return &RecipeViewOutput{Body: view}, nil
}

func (s *Server) handleListPublicProducts(ctx context.Context, input *ListPublicProductsInput) (*PublicProductsOutput, error) {
	products, err := s.services.Storefront.ListProducts(ctx, input.View, input.Tag)
	if err != nil {
		return nil, err
	}

	return &PublicProductsOutput{Body: PublicProductsResponse{Products: nonNil(products)}}, nil
}

func (s *Server) handleGetPublicProduct(ctx context.Context, input *IDOrSlugInput) (*PublicProductOutput, error) {
	p, err := s.services.Storefront.GetProduct(ctx, input.IDOrSlug)
	if err != nil {
		return nil, err
	}

	return &PublicProductOutput{Body: p}, nil
}

func (s *Server) handleListPublicCollections(ctx context.Context, _ *struct{}) (*PublicCollectionsOutput, error) {
	collections, err := s.services.Storefront.ListCollections(ctx)
	if err != nil {
		return nil, err
	}

	return &PublicCollectionsOutput{Body: PublicCollectionsResponse{Collections: nonNil(collections)}}, nil
}

func (s *Server) handleGetPublicCollection(ctx context.Context, input *SlugInput) (*PublicCollectionOutput, error) {
	c, err := s.services.Storefront.GetCollection(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	return &PublicCollectionOutput{Body: c}, nil
}

func (s *Server) handleListPublicTags(ctx context.Context, _ *struct{}) (*PublicTagsOutput, error) {
	tags, err := s.services.Storefront.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	return &PublicTagsOutput{Body: tags}, nil
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Types = input.Types
	params.TagSlugs = input.Tags
	params.MinPrice = input.MinPrice
	params.MaxPrice = input.MaxPrice
	params.Offset = max(input.Offset, 0)
	if input.Limit > 0 {
		params.Limit = min(input.Limit, maxSearchLimit)
	}
	if input.Sort != "" {
		params.SortBy = input.Sort
	}
	if input.Order != "" {
		params.SortOrder = input.Order
	}

	result, err := s.services.Storefront.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: result}, nil
}
