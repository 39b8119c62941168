package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/search"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// SearchService keeps the storefront index in step with the store. Only
// published entities are indexed. A nil index disables indexing and search.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a storefront query.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if s.index == nil {
		return &search.SearchResult{Query: params.Query, Hits: []search.SearchHit{}}, nil
	}
	return s.index.Search(ctx, params)
}

// IndexProduct indexes a published product or removes a draft one.
func (s *SearchService) IndexProduct(ctx context.Context, p *domain.Product) error {
	if s.index == nil {
		return nil
	}
	if !p.Published {
		return s.Remove(p.ID)
	}

	slugs, err := s.tagSlugs(ctx, p.TagIDs)
	if err != nil {
		return err
	}
	if err := s.index.IndexDocument(search.ProductToSearchDocument(p, slugs)); err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	s.logger.Debug("indexed product", "id", p.ID, "title", p.Title)
	return nil
}

// IndexRecipe indexes a published recipe or removes a draft one.
func (s *SearchService) IndexRecipe(_ context.Context, r *domain.Recipe) error {
	if s.index == nil {
		return nil
	}
	if !r.Published {
		return s.Remove(r.ID)
	}
	if err := s.index.IndexDocument(search.RecipeToSearchDocument(r)); err != nil {
		return fmt.Errorf("index recipe: %w", err)
	}
	s.logger.Debug("indexed recipe", "id", r.ID, "title", r.Title)
	return nil
}

// IndexCollection indexes a published collection or removes a draft one.
func (s *SearchService) IndexCollection(_ context.Context, c *domain.Collection) error {
	if s.index == nil {
		return nil
	}
	if !c.Published {
		return s.Remove(c.ID)
	}
	if err := s.index.IndexDocument(search.CollectionToSearchDocument(c)); err != nil {
		return fmt.Errorf("index collection: %w", err)
	}
	return nil
}

// DocumentCount reports the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	if s.index == nil {
		return 0, nil
	}
	return s.index.DocumentCount()
}

// Remove deletes a document. Removing a missing document is not an error.
func (s *SearchService) Remove(id string) error {
	if s.index == nil {
		return nil
	}
	return s.index.DeleteDocument(id)
}

// Reindex rebuilds every document from the store.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}

	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tags: %w", err)
	}
	slugByID := make(map[string]string, len(tags))
	for _, t := range tags {
		slugByID[t.ID] = t.Slug
	}

	var docs []*search.SearchDocument

	products, err := s.store.ListProducts(ctx, store.ProductFilter{PublishedOnly: true})
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	for _, p := range products {
		slugs := make([]string, 0, len(p.TagIDs))
		for _, id := range p.TagIDs {
			if slug, ok := slugByID[id]; ok {
				slugs = append(slugs, slug)
			}
		}
		docs = append(docs, search.ProductToSearchDocument(p, slugs))
	}

	params := store.PaginationParams{Limit: 500}
	for {
		page, err := s.store.ListPublishedRecipes(ctx, params)
		if err != nil {
			return 0, fmt.Errorf("list recipes: %w", err)
		}
		for _, r := range page.Items {
			docs = append(docs, search.RecipeToSearchDocument(r))
		}
		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}

	collections, err := s.store.ListPublishedCollections(ctx)
	if err != nil {
		return 0, fmt.Errorf("list collections: %w", err)
	}
	for _, c := range collections {
		docs = append(docs, search.CollectionToSearchDocument(c))
	}

	// Documents for unpublished or deleted entities drop out with the old index.
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index documents: %w", err)
	}
	s.logger.Info("search index rebuilt", "documents", len(docs))
	return len(docs), nil
}

func (s *SearchService) tagSlugs(ctx context.Context, tagIDs []string) ([]string, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	tags, err := s.store.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	slugs := make([]string, 0, len(tags))
	for _, t := range tags {
		slugs = append(slugs, t.Slug)
	}
	return slugs, nil
}
