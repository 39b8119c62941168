package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// productColumns is the ordered list of columns selected in product queries.
// Must match the scan order in scanProduct.
const productColumns = `id, slug, title, brand, description, summary, price_cents, currency, affiliate_url, image_url, published, created_at, updated_at`

// scanProduct scans a product row. TagIDs are loaded separately.
func scanProduct(scanner interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	var p domain.Product

	var (
		published int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.Slug,
		&p.Title,
		&p.Brand,
		&p.Description,
		&p.Summary,
		&p.PriceCents,
		&p.Currency,
		&p.AffiliateURL,
		&p.ImageURL,
		&published,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Published = published != 0
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	p.TagIDs = []string{}

	return &p, nil
}

// CreateProduct inserts a product and its tag links.
// Returns store.ErrAlreadyExists on duplicate ID or slug, and
// store.ErrMissingReference for an unknown tag.
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID,
			p.Slug,
			p.Title,
			p.Brand,
			p.Description,
			p.Summary,
			p.PriceCents,
			p.Currency,
			p.AffiliateURL,
			p.ImageURL,
			boolToInt(p.Published),
			formatTime(p.CreatedAt),
			formatTime(p.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertProductTags(ctx, tx, p.ID, p.TagIDs)
	})
}

// GetProduct retrieves a product by ID.
// Returns store.ErrNotFound if the product does not exist.
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.getProduct(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
}

// GetProductBySlug retrieves a product by slug.
// Returns store.ErrNotFound if the product does not exist.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.getProduct(ctx, `SELECT `+productColumns+` FROM products WHERE slug = ?`, slug)
}

func (s *Store) getProduct(ctx context.Context, query string, arg string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.loadProductTags(ctx, []*domain.Product{p}); err != nil {
		return nil, fmt.Errorf("load product tags: %w", err)
	}
	return p, nil
}

// GetProductsByIDs returns the products that exist among ids.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}
	return s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
}

// ListProducts returns products ordered by title.
func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE 1 = 1`
	var args []any
	if filter.PublishedOnly {
		query += ` AND p.published = 1`
	}
	if filter.TagID != "" {
		query += ` AND EXISTS (SELECT 1 FROM product_tags pt WHERE pt.product_id = p.id AND pt.tag_id = ?)`
		args = append(args, filter.TagID)
	}
	query += ` ORDER BY p.title COLLATE NOCASE ASC, p.id ASC`
	return s.queryProducts(ctx, query, args...)
}

// UpdateProduct updates a product and replaces its tag links.
// Returns store.ErrNotFound if the product does not exist.
func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE products SET
				slug = ?,
				title = ?,
				brand = ?,
				description = ?,
				summary = ?,
				price_cents = ?,
				currency = ?,
				affiliate_url = ?,
				image_url = ?,
				published = ?,
				updated_at = ?
			WHERE id = ?`,
			p.Slug,
			p.Title,
			p.Brand,
			p.Description,
			p.Summary,
			p.PriceCents,
			p.Currency,
			p.AffiliateURL,
			p.ImageURL,
			boolToInt(p.Published),
			formatTime(p.UpdatedAt),
			p.ID,
		)
		if err != nil {
			return mapError(err)
		}
		if err := requireAffected(result); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = ?`, p.ID); err != nil {
			return fmt.Errorf("delete product_tags: %w", err)
		}
		return insertProductTags(ctx, tx, p.ID, p.TagIDs)
	})
}

// DeleteProduct deletes a product. Pins linking it are left in place and
// render inert from then on.
// Returns store.ErrNotFound if the product does not exist.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func insertProductTags(ctx context.Context, tx *sql.Tx, productID string, tagIDs []string) error {
	for i, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO product_tags (product_id, tag_id, position)
			VALUES (?, ?, ?)`,
			productID, tagID, i,
		)
		if err != nil {
			return fmt.Errorf("insert product_tag %s: %w", tagID, mapError(err))
		}
	}
	return nil
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadProductTags(ctx, products); err != nil {
		return nil, fmt.Errorf("load product tags: %w", err)
	}
	return products, nil
}

func (s *Store) loadProductTags(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Product, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, tag_id FROM product_tags
		WHERE product_id IN (`+placeholders(len(ids))+`)
		ORDER BY product_id, position`,
		stringArgs(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var productID, tagID string
		if err := rows.Scan(&productID, &tagID); err != nil {
			return err
		}
		if p, ok := byID[productID]; ok {
			p.TagIDs = append(p.TagIDs, tagID)
		}
	}
	return rows.Err()
}
