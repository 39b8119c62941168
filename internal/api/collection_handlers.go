package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

func (s *Server) registerCollectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCollections",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections",
		Summary:     "List collections",
		Description: "Returns the current owner's collections",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCollections)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCollection",
		Method:      http.MethodPost,
		Path:        "/api/v1/collections",
		Summary:     "Create collection",
		Description: "Creates a curated product list",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCollection",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{id}",
		Summary:     "Get collection",
		Description: "Returns a collection by ID",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCollection",
		Method:      http.MethodPut,
		Path:        "/api/v1/collections/{id}",
		Summary:     "Update collection",
		Description: "Replaces a collection's fields and product order",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCollection",
		Method:      http.MethodDelete,
		Path:        "/api/v1/collections/{id}",
		Summary:     "Delete collection",
		Description: "Deletes a collection. Its products are untouched",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "addCollectionProduct",
		Method:      http.MethodPut,
		Path:        "/api/v1/collections/{id}/products/{productId}",
		Summary:     "Add product to collection",
		Description: "Appends a product. Adding a product twice is a no-op",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddCollectionProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeCollectionProduct",
		Method:      http.MethodDelete,
		Path:        "/api/v1/collections/{id}/products/{productId}",
		Summary:     "Remove product from collection",
		Description: "Removes a product, keeping the order of the rest",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveCollectionProduct)
}

// === DTOs ===

// ListCollectionsResponse contains the owner's collections.
type ListCollectionsResponse struct {
	Collections []*domain.Collection `json:"collections" doc:"Collections ordered by title"`
}

// ListCollectionsOutput wraps the collection list for Huma.
type ListCollectionsOutput struct {
	Body ListCollectionsResponse
}

// CollectionOutput wraps a collection for Huma.
type CollectionOutput struct {
	Body *domain.Collection
}

// CreateCollectionInput wraps the create request for Huma.
type CreateCollectionInput struct {
	Body service.CollectionRequest
}

// UpdateCollectionInput wraps the update request for Huma.
type UpdateCollectionInput struct {
	ID   string `path:"id" doc:"Collection ID"`
	Body service.CollectionRequest
}

// CollectionProductInput addresses one product of a collection.
type CollectionProductInput struct {
	ID        string `path:"id" doc:"Collection ID"`
	ProductID string `path:"productId" doc:"Product ID"`
}

// === Handlers ===

func (s *Server) handleListCollections(ctx context.Context, _ *struct{}) (*ListCollectionsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	collections, err := s.services.Collection.ListCollections(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListCollectionsOutput{Body: ListCollectionsResponse{Collections: nonNil(collections)}}, nil
}

func (s *Server) handleCreateCollection(ctx context.Context, input *CreateCollectionInput) (*CollectionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Collection.CreateCollection(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &CollectionOutput{Body: c}, nil
}

func (s *Server) handleGetCollection(ctx context.Context, input *IDInput) (*CollectionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Collection.GetCollection(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &CollectionOutput{Body: c}, nil
}

func (s *Server) handleUpdateCollection(ctx context.Context, input *UpdateCollectionInput) (*CollectionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Collection.UpdateCollection(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &CollectionOutput{Body: c}, nil
}

func (s *Server) handleDeleteCollection(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Collection.DeleteCollection(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return messageOutput("Collection deleted"), nil
}

func (s *Server) handleAddCollectionProduct(ctx context.Context, input *CollectionProductInput) (*CollectionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Collection.AddProduct(ctx, userID, input.ID, input.ProductID)
	if err != nil {
		return nil, err
	}

	return &CollectionOutput{Body: c}, nil
}

func (s *Server) handleRemoveCollectionProduct(ctx context.Context, input *CollectionProductInput) (*CollectionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Collection.RemoveProduct(ctx, userID, input.ID, input.ProductID)
	if err != nil {
		return nil, err
	}

	return &CollectionOutput{Body: c}, nil
}
