package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// CreateProduct inserts a product and its tag links.
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := toProductRow(p)
		if err := tx.Create(&row).Error; err != nil {
			return mapError(err)
		}
		return insertProductTags(tx, p.ID, p.TagIDs)
	})
}

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.getProduct(ctx, "id = ?", id)
}

// GetProductBySlug retrieves a product by slug.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.getProduct(ctx, "slug = ?", slug)
}

func (s *Store) getProduct(ctx context.Context, cond, arg string) (*domain.Product, error) {
	db := s.db.WithContext(ctx)
	var row productRow
	if err := db.Where(cond, arg).First(&row).Error; err != nil {
		return nil, mapError(err)
	}
	products, err := productsWithTags(db, []productRow{row})
	if err != nil {
		return nil, err
	}
	return products[0], nil
}

// GetProductsByIDs returns the products that exist among ids.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}
	db := s.db.WithContext(ctx)
	var rows []productRow
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsWithTags(db, rows)
}

// ListProducts returns products ordered by title.
func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter) ([]*domain.Product, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&productRow{})
	if filter.PublishedOnly {
		q = q.Where("published = ?", true)
	}
	if filter.TagID != "" {
		q = q.Where("EXISTS (SELECT 1 FROM product_tags pt WHERE pt.product_id = products.id AND pt.tag_id = ?)", filter.TagID)
	}
	var rows []productRow
	if err := q.Order("LOWER(title) ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsWithTags(db, rows)
}

// UpdateProduct updates a product and replaces its tag links.
func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := toProductRow(p)
		res := tx.Model(&productRow{}).Where("id = ?", p.ID).Updates(map[string]any{
			"slug":          row.Slug,
			"title":         row.Title,
			"brand":         row.Brand,
			"description":   row.Description,
			"summary":       row.Summary,
			"price_cents":   row.PriceCents,
			"currency":      row.Currency,
			"affiliate_url": row.AffiliateURL,
			"image_url":     row.ImageURL,
			"published":     row.Published,
			"updated_at":    row.UpdatedAt,
		})
		if err := requireAffected(res); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&productTagRow{}).Error; err != nil {
			return fmt.Errorf("delete product_tags: %w", err)
		}
		return insertProductTags(tx, p.ID, p.TagIDs)
	})
}

// DeleteProduct deletes a product; pins linking it render inert afterwards.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return requireAffected(s.db.WithContext(ctx).Where("id = ?", id).Delete(&productRow{}))
}

func insertProductTags(tx *gorm.DB, productID string, tagIDs []string) error {
	seen := make(map[string]bool, len(tagIDs))
	rows := make([]productTagRow, 0, len(tagIDs))
	for i, tagID := range tagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		rows = append(rows, productTagRow{ProductID: productID, TagID: tagID, Position: i})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert product_tags: %w", mapError(err))
	}
	return nil
}

func productsWithTags(db *gorm.DB, rows []productRow) ([]*domain.Product, error) {
	products := make([]*domain.Product, len(rows))
	if len(rows) == 0 {
		return products, nil
	}
	byID := make(map[string]*domain.Product, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		products[i] = row.toDomain()
		byID[row.ID] = products[i]
		ids[i] = row.ID
	}

	var links []productTagRow
	if err := db.Where("product_id IN ?", ids).Order("product_id, position").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load product tags: %w", err)
	}
	for _, l := range links {
		if p, ok := byID[l.ProductID]; ok {
			p.TagIDs = append(p.TagIDs, l.TagID)
		}
	}
	return products, nil
}

// CreateTagGroup inserts a tag group.
func (s *Store) CreateTagGroup(ctx context.Context, g *domain.TagGroup) error {
	row := toTagGroupRow(g)
	return mapError(s.db.WithContext(ctx).Create(&row).Error)
}

// GetTagGroup retrieves a tag group by ID.
func (s *Store) GetTagGroup(ctx context.Context, id string) (*domain.TagGroup, error) {
	var row tagGroupRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapError(err)
	}
	return row.toDomain(), nil
}

// ListTagGroups returns all groups ordered by position, then name.
func (s *Store) ListTagGroups(ctx context.Context) ([]*domain.TagGroup, error) {
	var rows []tagGroupRow
	if err := s.db.WithContext(ctx).Order("position ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	groups := make([]*domain.TagGroup, len(rows))
	for i, row := range rows {
		groups[i] = row.toDomain()
	}
	return groups, nil
}

// UpdateTagGroup updates a tag group.
func (s *Store) UpdateTagGroup(ctx context.Context, g *domain.TagGroup) error {
	row := toTagGroupRow(g)
	return requireAffected(s.db.WithContext(ctx).Model(&tagGroupRow{}).Where("id = ?", g.ID).Updates(map[string]any{
		"name":       row.Name,
		"slug":       row.Slug,
		"color":      row.Color,
		"position":   row.Position,
		"updated_at": row.UpdatedAt,
	}))
}

// DeleteTagGroup deletes a group; ON DELETE SET NULL detaches its tags.
func (s *Store) DeleteTagGroup(ctx context.Context, id string) error {
	return requireAffected(s.db.WithContext(ctx).Where("id = ?", id).Delete(&tagGroupRow{}))
}

// CreateTag inserts a tag.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	row := toTagRow(t)
	return mapError(s.db.WithContext(ctx).Create(&row).Error)
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	return s.getTag(ctx, "id = ?", id)
}

// GetTagBySlug retrieves a tag by slug.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	return s.getTag(ctx, "slug = ?", slug)
}

func (s *Store) getTag(ctx context.Context, cond, arg string) (*domain.Tag, error) {
	var row tagRow
	if err := s.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
		return nil, mapError(err)
	}
	return row.toDomain(), nil
}

// GetTagsByIDs returns the tags that exist among ids, ordered by slug.
func (s *Store) GetTagsByIDs(ctx context.Context, ids []string) ([]*domain.Tag, error) {
	if len(ids) == 0 {
		return []*domain.Tag{}, nil
	}
	return s.findTags(s.db.WithContext(ctx).Where("id IN ?", ids))
}

// ListTags returns all tags ordered by slug.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.findTags(s.db.WithContext(ctx))
}

func (s *Store) findTags(q *gorm.DB) ([]*domain.Tag, error) {
	var rows []tagRow
	if err := q.Order("slug ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	tags := make([]*domain.Tag, len(rows))
	for i, row := range rows {
		tags[i] = row.toDomain()
	}
	return tags, nil
}

// UpdateTag updates a tag.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	row := toTagRow(t)
	return requireAffected(s.db.WithContext(ctx).Model(&tagRow{}).Where("id = ?", t.ID).Updates(map[string]any{
		"group_id":   row.GroupID,
		"name":       row.Name,
		"slug":       row.Slug,
		"color":      row.Color,
		"updated_at": row.UpdatedAt,
	}))
}

// DeleteTag deletes a tag and its product links.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	return requireAffected(s.db.WithContext(ctx).Where("id = ?", id).Delete(&tagRow{}))
}

// CreateCollection inserts a collection and its product list.
func (s *Store) CreateCollection(ctx context.Context, c *domain.Collection) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := toCollectionRow(c)
		if err := tx.Create(&row).Error; err != nil {
			return mapError(err)
		}
		return insertCollectionProducts(tx, c.ID, c.ProductIDs)
	})
}

// GetCollection retrieves a collection by ID.
func (s *Store) GetCollection(ctx context.Context, id string) (*domain.Collection, error) {
	return s.getCollection(ctx, "id = ?", id)
}

// GetCollectionBySlug retrieves a collection by slug.
func (s *Store) GetCollectionBySlug(ctx context.Context, slug string) (*domain.Collection, error) {
	return s.getCollection(ctx, "slug = ?", slug)
}

func (s *Store) getCollection(ctx context.Context, cond, arg string) (*domain.Collection, error) {
	db := s.db.WithContext(ctx)
	var row collectionRow
	if err := db.Where(cond, arg).First(&row).Error; err != nil {
		return nil, mapError(err)
	}
	collections, err := collectionsWithProducts(db, []collectionRow{row})
	if err != nil {
		return nil, err
	}
	return collections[0], nil
}

// ListCollectionsByUser returns a user's collections ordered by title.
func (s *Store) ListCollectionsByUser(ctx context.Context, userID string) ([]*domain.Collection, error) {
	db := s.db.WithContext(ctx)
	var rows []collectionRow
	if err := db.Where("user_id = ?", userID).Order("title ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return collectionsWithProducts(db, rows)
}

// ListPublishedCollections returns published collections ordered by title.
func (s *Store) ListPublishedCollections(ctx context.Context) ([]*domain.Collection, error) {
	db := s.db.WithContext(ctx)
	var rows []collectionRow
	if err := db.Where("published = ?", true).Order("title ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return collectionsWithProducts(db, rows)
}

// UpdateCollection updates a collection and replaces its product list.
func (s *Store) UpdateCollection(ctx context.Context, c *domain.Collection) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := toCollectionRow(c)
		res := tx.Model(&collectionRow{}).Where("id = ?", c.ID).Updates(map[string]any{
			"title":       row.Title,
			"slug":        row.Slug,
			"description": row.Description,
			"published":   row.Published,
			"updated_at":  row.UpdatedAt,
		})
		if err := requireAffected(res); err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", c.ID).Delete(&collectionProductRow{}).Error; err != nil {
			return err
		}
		return insertCollectionProducts(tx, c.ID, c.ProductIDs)
	})
}

// DeleteCollection deletes a collection and its product list.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	return requireAffected(s.db.WithContext(ctx).Where("id = ?", id).Delete(&collectionRow{}))
}

func insertCollectionProducts(tx *gorm.DB, collectionID string, productIDs []string) error {
	seen := make(map[string]bool, len(productIDs))
	rows := make([]collectionProductRow, 0, len(productIDs))
	for i, productID := range productIDs {
		if seen[productID] {
			continue
		}
		seen[productID] = true
		rows = append(rows, collectionProductRow{CollectionID: collectionID, ProductID: productID, Position: i})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert collection_products: %w", mapError(err))
	}
	return nil
}

func collectionsWithProducts(db *gorm.DB, rows []collectionRow) ([]*domain.Collection, error) {
	collections := make([]*domain.Collection, len(rows))
	if len(rows) == 0 {
		return collections, nil
	}
	byID := make(map[string]*domain.Collection, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		collections[i] = row.toDomain()
		byID[row.ID] = collections[i]
		ids[i] = row.ID
	}

	var links []collectionProductRow
	if err := db.Where("collection_id IN ?", ids).Order("collection_id, position").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load collection products: %w", err)
	}
	for _, l := range links {
		if c, ok := byID[l.CollectionID]; ok {
			c.ProductIDs = append(c.ProductIDs, l.ProductID)
		}
	}
	return collections, nil
}
