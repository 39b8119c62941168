package service

import (
	"context"
	"log/slog"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	domainerrors "github.com/pinshelf/pinshelf-server/internal/errors"
	"github.com/pinshelf/pinshelf-server/internal/id"
	"github.com/pinshelf/pinshelf-server/internal/sse"
	"github.com/pinshelf/pinshelf-server/internal/store"
	"github.com/pinshelf/pinshelf-server/internal/validation"
)

// CollectionService manages an owner's curated product lists.
type CollectionService struct {
	store     store.Store
	events    Emitter
	search    *SearchService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewCollectionService creates a new collection service.
func NewCollectionService(st store.Store, events Emitter, search *SearchService, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		store:     st,
		events:    events,
		search:    search,
		logger:    logger,
		validator: validation.New(),
	}
}

// CollectionRequest contains fields for creating or replacing a collection.
type CollectionRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Slug        string   `json:"slug,omitempty" validate:"omitempty,slug,max=80"`
	Description string   `json:"description,omitempty" validate:"max=5000"`
	Published   bool     `json:"published,omitempty"`
	ProductIDs  []string `json:"productIds,omitempty" validate:"max=500"`
}

// CreateCollection creates a collection owned by userID.
func (s *CollectionService) CreateCollection(ctx context.Context, userID string, req CollectionRequest) (*domain.Collection, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	productIDs, err := s.checkProducts(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}
	collectionID, err := id.Generate(id.PrefixCollection)
	if err != nil {
		return nil, err
	}

	ts := now()
	c := &domain.Collection{
		ID:          collectionID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Published:   req.Published,
		ProductIDs:  productIDs,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	err = insertWithSlug(req.Slug, req.Title, func(slug string) error {
		c.Slug = slug
		return s.store.CreateCollection(ctx, c)
	})
	if err != nil {
		return nil, storeError(err, "collection")
	}

	s.changed(ctx, c, sse.EventCollectionCreated)
	s.logger.Info("collection created", "collection_id", c.ID, "user_id", userID)
	return c, nil
}

// GetCollection returns one of the owner's collections.
func (s *CollectionService) GetCollection(ctx context.Context, userID, collectionID string) (*domain.Collection, error) {
	c, err := s.store.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, storeError(err, "collection")
	}
	if c.UserID != userID {
		return nil, domainerrors.NotFound("collection not found")
	}
	return c, nil
}

// ListCollections returns the owner's collections.
func (s *CollectionService) ListCollections(ctx context.Context, userID string) ([]*domain.Collection, error) {
	return s.store.ListCollectionsByUser(ctx, userID)
}

// UpdateCollection replaces a collection's fields and product list.
func (s *CollectionService) UpdateCollection(ctx context.Context, userID, collectionID string, req CollectionRequest) (*domain.Collection, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	c, err := s.GetCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}
	productIDs, err := s.checkProducts(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}

	c.Title = req.Title
	if req.Slug != "" {
		c.Slug = req.Slug
	}
	c.Description = req.Description
	c.Published = req.Published
	c.ProductIDs = productIDs
	return c, s.save(ctx, c)
}

// AddProduct appends a product. Adding a product already present is a no-op.
func (s *CollectionService) AddProduct(ctx context.Context, userID, collectionID, productID string) (*domain.Collection, error) {
	c, err := s.GetCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.checkProducts(ctx, []string{productID}); err != nil {
		return nil, err
	}
	if !c.AddProduct(productID) {
		return c, nil
	}
	return c, s.save(ctx, c)
}

// RemoveProduct removes a product, keeping the order of the rest.
func (s *CollectionService) RemoveProduct(ctx context.Context, userID, collectionID, productID string) (*domain.Collection, error) {
	c, err := s.GetCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}
	if !c.RemoveProduct(productID) {
		return c, nil
	}
	return c, s.save(ctx, c)
}

// DeleteCollection deletes a collection. Its products are untouched.
func (s *CollectionService) DeleteCollection(ctx context.Context, userID, collectionID string) error {
	c, err := s.GetCollection(ctx, userID, collectionID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCollection(ctx, c.ID); err != nil {
		return storeError(err, "collection")
	}
	if err := s.search.Remove(c.ID); err != nil {
		s.logger.Warn("failed to remove collection from search index", "collection_id", c.ID, "error", err)
	}
	s.events.Emit(sse.NewDeletedEvent(sse.EventCollectionDeleted, c.UserID, c.ID))
	return nil
}

func (s *CollectionService) save(ctx context.Context, c *domain.Collection) error {
	c.UpdatedAt = now()
	if err := s.store.UpdateCollection(ctx, c); err != nil {
		return storeError(err, "collection")
	}
	s.changed(ctx, c, sse.EventCollectionUpdated)
	return nil
}

func (s *CollectionService) changed(ctx context.Context, c *domain.Collection, event sse.EventType) {
	if err := s.search.IndexCollection(ctx, c); err != nil {
		s.logger.Warn("failed to index collection", "collection_id", c.ID, "error", err)
	}
	s.events.Emit(sse.NewCollectionEvent(event, c))
}

// checkProducts dedups ids keeping first occurrence and verifies each exists.
func (s *CollectionService) checkProducts(ctx context.Context, ids []string) ([]string, error) {
	c := &domain.Collection{ProductIDs: []string{}}
	for _, pid := range ids {
		if pid != "" {
			c.AddProduct(pid)
		}
	}
	if len(c.ProductIDs) == 0 {
		return c.ProductIDs, nil
	}
	found, err := s.store.GetProductsByIDs(ctx, c.ProductIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(c.ProductIDs) {
		return nil, domainerrors.Validation("collection references an unknown product")
	}
	return c.ProductIDs, nil
}
