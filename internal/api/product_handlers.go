package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

func (s *Server) registerProductRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProducts",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Description: "Returns every catalog product, drafts included",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListProducts)

	huma.Register(s.api, huma.Operation{
		OperationID: "createProduct",
		Method:      http.MethodPost,
		Path:        "/api/v1/products",
		Summary:     "Create product",
		Description: "Adds a product. HTML descriptions are stored as Markdown",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProduct",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}",
		Summary:     "Get product",
		Description: "Returns a product by ID",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProduct",
		Method:      http.MethodPatch,
		Path:        "/api/v1/products/{id}",
		Summary:     "Update product",
		Description: "Updates the given fields. Recipes pinning the product are re-rendered",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProduct",
		Method:      http.MethodDelete,
		Path:        "/api/v1/products/{id}",
		Summary:     "Delete product",
		Description: "Deletes a product. Pins linking it stay in place and render inert",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteProduct)
}

// === DTOs ===

// ListProductsInput filters the product list.
type ListProductsInput struct {
	TagID string `query:"tag" doc:"Only products carrying this tag ID"`
}

// ListProductsResponse contains catalog products.
type ListProductsResponse struct {
	Products []*domain.Product `json:"products" doc:"Products ordered by title"`
}

// ListProductsOutput wraps the product list for Huma.
type ListProductsOutput struct {
	Body ListProductsResponse
}

// ProductOutput wraps a product for Huma.
type ProductOutput struct {
	Body *domain.Product
}

// CreateProductInput wraps the create product request for Huma.
type CreateProductInput struct {
	Body service.CreateProductRequest
}

// UpdateProductInput wraps the update product request for Huma.
type UpdateProductInput struct {
	ID   string `path:"id" doc:"Product ID"`
	Body service.UpdateProductRequest
}

// === Handlers ===

func (s *Server) handleListProducts(ctx context.Context, input *ListProductsInput) (*ListProductsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	products, err := s.services.Product.ListProducts(ctx, input.TagID)
	if err != nil {
		return nil, err
	}

	return &ListProductsOutput{Body: ListProductsResponse{Products: nonNil(products)}}, nil
}

func (s *Server) handleCreateProduct(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	p, err := s.services.Product.CreateProduct(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: p}, nil
}

func (s *Server) handleGetProduct(ctx context.Context, input *IDInput) (*ProductOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	p, err := s.services.Product.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: p}, nil
}

func (s *Server) handleUpdateProduct(ctx context.Context, input *UpdateProductInput) (*ProductOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	p, err := s.services.Product.UpdateProduct(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: p}, nil
}

func (s *Server) handleDeleteProduct(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Product.DeleteProduct(ctx, input.ID); err != nil {
		return nil, err
	}

	return messageOutput("Product deleted"), nil
}
