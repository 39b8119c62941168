package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

// collectionColumns is the ordered list of columns selected in collection queries.
// Must match the scan order in scanCollection.
const collectionColumns = `id, user_id, title, slug, description, published, created_at, updated_at`

// scanCollection scans a sql.Row (or sql.Rows via its Scan method) into a domain.Collection.
func scanCollection(scanner interface{ Scan(dest ...any) error }) (*domain.Collection, error) {
	var c domain.Collection

	var (
		published int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&c.ID,
		&c.UserID,
		&c.Title,
		&c.Slug,
		&c.Description,
		&published,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Published = published != 0
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	c.ProductIDs = []string{}

	return &c, nil
}

// CreateCollection inserts a collection and its product list in a transaction.
// Returns store.ErrAlreadyExists on duplicate ID or slug.
func (s *Store) CreateCollection(ctx context.Context, c *domain.Collection) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collections (`+collectionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID,
			c.UserID,
			c.Title,
			c.Slug,
			c.Description,
			boolToInt(c.Published),
			formatTime(c.CreatedAt),
			formatTime(c.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertCollectionProducts(ctx, tx, c.ID, c.ProductIDs)
	})
}

// GetCollection retrieves a collection by ID and loads its ProductIDs.
// Returns store.ErrNotFound if the collection does not exist.
func (s *Store) GetCollection(ctx context.Context, id string) (*domain.Collection, error) {
	return s.getCollection(ctx, `SELECT `+collectionColumns+` FROM collections WHERE id = ?`, id)
}

// GetCollectionBySlug retrieves a collection by slug.
// Returns store.ErrNotFound if the collection does not exist.
func (s *Store) GetCollectionBySlug(ctx context.Context, slug string) (*domain.Collection, error) {
	return s.getCollection(ctx, `SELECT `+collectionColumns+` FROM collections WHERE slug = ?`, slug)
}

func (s *Store) getCollection(ctx context.Context, query, arg string) (*domain.Collection, error) {
	c, err := scanCollection(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, mapError(err)
	}
	c.ProductIDs, err = queryStrings(ctx, s.db,
		`SELECT product_id FROM collection_products WHERE collection_id = ? ORDER BY position`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("load product IDs: %w", err)
	}
	return c, nil
}

// ListCollectionsByUser returns a user's collections ordered by title.
func (s *Store) ListCollectionsByUser(ctx context.Context, userID string) ([]*domain.Collection, error) {
	return s.queryCollections(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE user_id = ? ORDER BY title ASC`, userID)
}

// ListPublishedCollections returns published collections ordered by title.
func (s *Store) ListPublishedCollections(ctx context.Context) ([]*domain.Collection, error) {
	return s.queryCollections(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE published = 1 ORDER BY title ASC`)
}

// UpdateCollection updates a collection row and replaces its product list in a transaction.
// Returns store.ErrNotFound if the collection does not exist.
func (s *Store) UpdateCollection(ctx context.Context, c *domain.Collection) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE collections SET
				title = ?,
				slug = ?,
				description = ?,
				published = ?,
				updated_at = ?
			WHERE id = ?`,
			c.Title,
			c.Slug,
			c.Description,
			boolToInt(c.Published),
			formatTime(c.UpdatedAt),
			c.ID,
		)
		if err != nil {
			return mapError(err)
		}
		if err := requireAffected(result); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM collection_products WHERE collection_id = ?`, c.ID); err != nil {
			return err
		}
		return insertCollectionProducts(ctx, tx, c.ID, c.ProductIDs)
	})
}

// DeleteCollection deletes a collection and its product list.
// Returns store.ErrNotFound if the collection does not exist.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func insertCollectionProducts(ctx context.Context, tx *sql.Tx, collectionID string, productIDs []string) error {
	for i, productID := range productIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO collection_products (collection_id, product_id, position)
			VALUES (?, ?, ?)`,
			collectionID, productID, i,
		)
		if err != nil {
			return fmt.Errorf("insert collection_product %s: %w", productID, mapError(err))
		}
	}
	return nil
}

func (s *Store) queryCollections(ctx context.Context, query string, args ...any) ([]*domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	collections := []*domain.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		collections = append(collections, c)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for _, c := range collections {
		c.ProductIDs, err = queryStrings(ctx, s.db,
			`SELECT product_id FROM collection_products WHERE collection_id = ? ORDER BY position`, c.ID)
		if err != nil {
			return nil, fmt.Errorf("load product IDs for %s: %w", c.ID, err)
		}
	}
	return collections, nil
}
