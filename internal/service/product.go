package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	domainerrors "github.com/pinshelf/pinshelf-server/internal/errors"
	"github.com/pinshelf/pinshelf-server/internal/id"
	"github.com/pinshelf/pinshelf-server/internal/sse"
	"github.com/pinshelf/pinshelf-server/internal/store"
	"github.com/pinshelf/pinshelf-server/internal/util"
	"github.com/pinshelf/pinshelf-server/internal/validation"
)

// summaryLength bounds the plain-text excerpt kept next to a description.
const summaryLength = 240

// ProductService manages the shared product catalog. Products have no owner;
// any authenticated admin may edit them.
type ProductService struct {
	store     store.Store
	events    Emitter
	search    *SearchService
	views     *ViewCache
	logger    *slog.Logger
	validator *validation.Validator
}

// NewProductService creates a new product service.
func NewProductService(st store.Store, events Emitter, search *SearchService, views *ViewCache, logger *slog.Logger) *ProductService {
	return &ProductService{
		store:     st,
		events:    events,
		search:    search,
		views:     views,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateProductRequest contains fields for creating a product.
type CreateProductRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Slug         string   `json:"slug,omitempty" validate:"omitempty,slug,max=80"`
	Brand        string   `json:"brand,omitempty" validate:"max=100"`
	Description  string   `json:"description,omitempty" validate:"max=20000"`
	PriceCents   int64    `json:"priceCents,omitempty" validate:"gte=0"`
	Currency     string   `json:"currency,omitempty" validate:"omitempty,iso4217"`
	AffiliateURL string   `json:"affiliateUrl,omitempty" validate:"omitempty,http_url"`
	ImageURL     string   `json:"imageUrl,omitempty" validate:"omitempty,http_url"`
	Published    bool     `json:"published,omitempty"`
	TagIDs       []string `json:"tagIds,omitempty" validate:"max=50"`
}

// UpdateProductRequest contains the fields to change; nil fields are kept.
type UpdateProductRequest struct {
	Title        *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Slug         *string   `json:"slug,omitempty" validate:"omitempty,slug,max=80"`
	Brand        *string   `json:"brand,omitempty" validate:"omitempty,max=100"`
	Description  *string   `json:"description,omitempty" validate:"omitempty,max=20000"`
	PriceCents   *int64    `json:"priceCents,omitempty" validate:"omitempty,gte=0"`
	Currency     *string   `json:"currency,omitempty" validate:"omitempty,iso4217"`
	AffiliateURL *string   `json:"affiliateUrl,omitempty" validate:"omitempty,http_url"`
	ImageURL     *string   `json:"imageUrl,omitempty" validate:"omitempty,http_url"`
	Published    *bool     `json:"published,omitempty"`
	TagIDs       *[]string `json:"tagIds,omitempty" validate:"omitempty,max=50"`
}

// CreateProduct adds a product to the catalog. HTML descriptions are stored
// as Markdown.
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	req.Currency = strings.ToUpper(req.Currency)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	tagIDs, err := s.checkTags(ctx, req.TagIDs)
	if err != nil {
		return nil, err
	}

	productID, err := id.Generate(id.PrefixProduct)
	if err != nil {
		return nil, err
	}
	ts := now()
	p := &domain.Product{
		ID:           productID,
		Title:        req.Title,
		Brand:        req.Brand,
		PriceCents:   req.PriceCents,
		Currency:     currencyOr(req.Currency),
		AffiliateURL: req.AffiliateURL,
		ImageURL:     req.ImageURL,
		Published:    req.Published,
		TagIDs:       tagIDs,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	setDescription(p, req.Description)

	err = insertWithSlug(req.Slug, req.Title, func(slug string) error {
		p.Slug = slug
		return s.store.CreateProduct(ctx, p)
	})
	if err != nil {
		return nil, storeError(err, "product")
	}

	if err := s.search.IndexProduct(ctx, p); err != nil {
		s.logger.Warn("failed to index product", "product_id", p.ID, "error", err)
	}
	s.events.Emit(sse.NewProductEvent(sse.EventProductCreated, p))
	s.logger.Info("product created", "product_id", p.ID, "slug", p.Slug)
	return p, nil
}

// GetProduct returns a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := s.store.GetProduct(ctx, productID)
	return p, storeError(err, "product")
}

// ListProducts returns products, optionally only those carrying tagID.
func (s *ProductService) ListProducts(ctx context.Context, tagID string) ([]*domain.Product, error) {
	return s.store.ListProducts(ctx, store.ProductFilter{TagID: tagID})
}

// UpdateProduct changes a product. Every recipe pinning it is re-rendered
// on its next storefront read.
func (s *ProductService) UpdateProduct(ctx context.Context, productID string, req UpdateProductRequest) (*domain.Product, error) {
	if req.Currency != nil {
		upper := strings.ToUpper(*req.Currency)
		req.Currency = &upper
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Slug != nil {
		p.Slug = *req.Slug
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.Description != nil {
		setDescription(p, *req.Description)
	}
	if req.PriceCents != nil {
		p.PriceCents = *req.PriceCents
	}
	if req.Currency != nil {
		p.Currency = currencyOr(*req.Currency)
	}
	if req.AffiliateURL != nil {
		p.AffiliateURL = *req.AffiliateURL
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.Published != nil {
		p.Published = *req.Published
	}
	if req.TagIDs != nil {
		if p.TagIDs, err = s.checkTags(ctx, *req.TagIDs); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = now()

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, storeError(err, "product")
	}

	s.invalidatePinningRecipes(ctx, p.ID)
	if err := s.search.IndexProduct(ctx, p); err != nil {
		s.logger.Warn("failed to index product", "product_id", p.ID, "error", err)
	}
	s.events.Emit(sse.NewProductEvent(sse.EventProductUpdated, p))
	return p, nil
}

// DeleteProduct removes a product. Pins linking it stay in place and render
// inert.
func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	// Collected first: the links are gone once the product is.
	recipeIDs, err := s.store.ListRecipeIDsByProduct(ctx, productID, false)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, productID); err != nil {
		return storeError(err, "product")
	}

	s.views.InvalidateRecipes(ctx, recipeIDs...)
	if err := s.search.Remove(productID); err != nil {
		s.logger.Warn("failed to remove product from search index", "product_id", productID, "error", err)
	}
	s.events.Emit(sse.NewDeletedEvent(sse.EventProductDeleted, "", productID))
	s.logger.Info("product deleted", "product_id", productID, "pinned_by", len(recipeIDs))
	return nil
}

func (s *ProductService) invalidatePinningRecipes(ctx context.Context, productID string) {
	recipeIDs, err := s.store.ListRecipeIDsByProduct(ctx, productID, false)
	if err != nil {
		s.logger.Warn("failed to list recipes pinning product", "product_id", productID, "error", err)
		return
	}
	s.views.InvalidateRecipes(ctx, recipeIDs...)
}

// checkTags dedups tagIDs and verifies each exists.
func (s *ProductService) checkTags(ctx context.Context, tagIDs []string) ([]string, error) {
	out := make([]string, 0, len(tagIDs))
	seen := make(map[string]bool, len(tagIDs))
	for _, t := range tagIDs {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return out, nil
	}
	tags, err := s.store.GetTagsByIDs(ctx, out)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(out) {
		return nil, domainerrors.Validation("product references an unknown tag")
	}
	return out, nil
}

// setDescription stores desc as Markdown and derives the plain-text summary.
func setDescription(p *domain.Product, desc string) {
	p.Description = util.ToMarkdown(desc)
	p.Summary = util.Summarize(p.Description, summaryLength)
}

func currencyOr(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}
