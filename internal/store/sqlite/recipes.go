package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// recipeColumns is the ordered list of columns selected in recipe queries.
// Must match the scan order in scanRecipe.
const recipeColumns = `id, user_id, title, slug, description, published, published_at, created_at, updated_at`

const imageColumns = `id, recipe_id, url, width, height, blurhash, position`

// scanRecipe scans a sql.Row (or sql.Rows via its Scan method) into a domain.Recipe.
// Images are loaded separately.
func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var r domain.Recipe

	var (
		published   int
		publishedAt sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.Slug,
		&r.Description,
		&published,
		&publishedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Published = published != 0
	if r.PublishedAt, err = parseNullableTime(publishedAt); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	r.Images = []domain.RecipeImage{}

	return &r, nil
}

func scanImage(scanner interface{ Scan(dest ...any) error }) (domain.RecipeImage, error) {
	var img domain.RecipeImage
	err := scanner.Scan(
		&img.ID,
		&img.RecipeID,
		&img.URL,
		&img.Width,
		&img.Height,
		&img.BlurHash,
		&img.Position,
	)
	return img, err
}

// CreateRecipe inserts a recipe and its images in a transaction.
// Returns store.ErrAlreadyExists on duplicate ID or slug.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipes (
				id, user_id, title, slug, description, published, published_at, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID,
			r.UserID,
			r.Title,
			r.Slug,
			r.Description,
			boolToInt(r.Published),
			nullTimeString(r.PublishedAt),
			formatTime(r.CreatedAt),
			formatTime(r.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertImages(ctx, tx, r.ID, r.Images)
	})
}

// GetRecipe retrieves a recipe with its images by ID.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	return s.getRecipe(ctx, row)
}

// GetRecipeBySlug retrieves a recipe with its images by slug.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) GetRecipeBySlug(ctx context.Context, slug string) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE slug = ?`, slug)
	return s.getRecipe(ctx, row)
}

func (s *Store) getRecipe(ctx context.Context, row *sql.Row) (*domain.Recipe, error) {
	r, err := scanRecipe(row)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.loadImages(ctx, []*domain.Recipe{r}); err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	return r, nil
}

// ListRecipesByUser returns a user's recipes, most recently updated first.
func (s *Store) ListRecipesByUser(ctx context.Context, userID string) ([]*domain.Recipe, error) {
	return s.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE user_id = ? ORDER BY updated_at DESC, id ASC`,
		userID)
}

// ListPublishedRecipes pages published recipes, newest first.
func (s *Store) ListPublishedRecipes(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Recipe], error) {
	params.Validate()
	offset, err := params.Offset()
	if err != nil {
		return nil, store.ErrInvalidInput.WithCause(err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE published = 1`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count published recipes: %w", err)
	}

	recipes, err := s.queryRecipes(ctx, `
		SELECT `+recipeColumns+` FROM recipes
		WHERE published = 1
		ORDER BY published_at DESC, id ASC
		LIMIT ? OFFSET ?`,
		params.Limit+1, offset)
	if err != nil {
		return nil, err
	}
	return store.NewPage(recipes, params.Limit, offset, total), nil
}

// ListRecipeIDsByProduct returns the recipes that pin productID.
func (s *Store) ListRecipeIDsByProduct(ctx context.Context, productID string, publishedOnly bool) ([]string, error) {
	query := `
		SELECT DISTINCT r.id FROM recipes r
		JOIN recipe_pins p ON p.recipe_id = r.id
		WHERE p.product_id = ?`
	if publishedOnly {
		query += ` AND r.published = 1`
	}
	query += ` ORDER BY r.id`
	return queryStrings(ctx, s.db, query, productID)
}

// UpdateRecipe updates a recipe's scalar fields.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) UpdateRecipe(ctx context.Context, r *domain.Recipe) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE recipes SET
			title = ?,
			slug = ?,
			description = ?,
			published = ?,
			published_at = ?,
			updated_at = ?
		WHERE id = ?`,
		r.Title,
		r.Slug,
		r.Description,
		boolToInt(r.Published),
		nullTimeString(r.PublishedAt),
		formatTime(r.UpdatedAt),
		r.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// DeleteRecipe deletes a recipe. Images and pins go with it via ON DELETE CASCADE.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// SetRecipeImages replaces a recipe's images. Positions follow slice order.
func (s *Store) SetRecipeImages(ctx context.Context, recipeID string, images []domain.RecipeImage) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM recipes WHERE id = ?`, recipeID).Scan(&exists)
		if err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_images WHERE recipe_id = ?`, recipeID); err != nil {
			return fmt.Errorf("delete recipe_images: %w", err)
		}
		return insertImages(ctx, tx, recipeID, images)
	})
}

// UpdateRecipeImage updates one image's URL, dimensions and blurhash.
// Returns store.ErrNotFound if the image does not exist.
func (s *Store) UpdateRecipeImage(ctx context.Context, img *domain.RecipeImage) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE recipe_images SET url = ?, width = ?, height = ?, blurhash = ?
		WHERE id = ? AND recipe_id = ?`,
		img.URL, img.Width, img.Height, img.BlurHash, img.ID, img.RecipeID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func insertImages(ctx context.Context, tx *sql.Tx, recipeID string, images []domain.RecipeImage) error {
	for i := range images {
		img := &images[i]
		img.RecipeID = recipeID
		img.Position = i
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_images (`+imageColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			img.ID, recipeID, img.URL, img.Width, img.Height, img.BlurHash, img.Position,
		)
		if err != nil {
			return fmt.Errorf("insert recipe_image %s: %w", img.ID, mapError(err))
		}
	}
	return nil
}

func (s *Store) queryRecipes(ctx context.Context, query string, args ...any) ([]*domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []*domain.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadImages(ctx, recipes); err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	return recipes, nil
}

// loadImages fills Images for every recipe with one query.
func (s *Store) loadImages(ctx context.Context, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Recipe, len(recipes))
	ids := make([]string, 0, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+imageColumns+` FROM recipe_images
		WHERE recipe_id IN (`+placeholders(len(ids))+`)
		ORDER BY recipe_id, position`,
		stringArgs(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return err
		}
		if r, ok := byID[img.RecipeID]; ok {
			r.Images = append(r.Images, img)
		}
	}
	return rows.Err()
}
