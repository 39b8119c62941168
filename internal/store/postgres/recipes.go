package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// CreateRecipe inserts a recipe and its images in a transaction.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := toRecipeRow(r)
		if err := tx.Create(&row).Error; err != nil {
			return mapError(err)
		}
		return insertImages(tx, r.ID, r.Images)
	})
}

// GetRecipe retrieves a recipe with its images by ID.
func (s *Store) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	return s.getRecipe(ctx, "id = ?", id)
}

// GetRecipeBySlug retrieves a recipe with its images by slug.
func (s *Store) GetRecipeBySlug(ctx context.Context, slug string) (*domain.Recipe, error) {
	return s.getRecipe(ctx, "slug = ?", slug)
}

func (s *Store) getRecipe(ctx context.Context, cond string, arg string) (*domain.Recipe, error) {
	db := s.db.WithContext(ctx)
	var row recipeRow
	if err := db.Where(cond, arg).First(&row).Error; err != nil {
		return nil, mapError(err)
	}
	r := row.toDomain()
	if err := loadImages(db, []*domain.Recipe{r}); err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	return r, nil
}

// ListRecipesByUser returns a user's recipes, most recently updated first.
func (s *Store) ListRecipesByUser(ctx context.Context, userID string) ([]*domain.Recipe, error) {
	db := s.db.WithContext(ctx)
	var rows []recipeRow
	if err := db.Where("user_id = ?", userID).Order("updated_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return recipesWithImages(db, rows)
}

// ListPublishedRecipes pages published recipes, newest first.
func (s *Store) ListPublishedRecipes(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Recipe], error) {
	params.Validate()
	offset, err := params.Offset()
	if err != nil {
		return nil, store.ErrInvalidInput.WithCause(err)
	}

	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&recipeRow{}).Where("published = ?", true).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count published recipes: %w", err)
	}

	var rows []recipeRow
	err = db.Where("published = ?", true).
		Order("published_at DESC NULLS LAST, id ASC").
		Limit(params.Limit + 1).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	recipes, err := recipesWithImages(db, rows)
	if err != nil {
		return nil, err
	}
	return store.NewPage(recipes, params.Limit, offset, int(total)), nil
}

// ListRecipeIDsByProduct returns the recipes that pin productID.
func (s *Store) ListRecipeIDsByProduct(ctx context.Context, productID string, publishedOnly bool) ([]string, error) {
	q := s.db.WithContext(ctx).
		Table("recipes r").
		Distinct("r.id").
		Joins("JOIN recipe_pins p ON p.recipe_id = r.id").
		Where("p.product_id = ?", productID)
	if publishedOnly {
		q = q.Where("r.published = ?", true)
	}
	ids := []string{}
	if err := q.Order("r.id").Pluck("r.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateRecipe updates a recipe's scalar fields.
func (s *Store) UpdateRecipe(ctx context.Context, r *domain.Recipe) error {
	row := toRecipeRow(r)
	tx := s.db.WithContext(ctx).Model(&recipeRow{}).Where("id = ?", r.ID).Updates(map[string]any{
		"title":        row.Title,
		"slug":         row.Slug,
		"description":  row.Description,
		"published":    row.Published,
		"published_at": row.PublishedAt,
		"updated_at":   row.UpdatedAt,
	})
	return requireAffected(tx)
}

// DeleteRecipe deletes a recipe; images and pins cascade.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	return requireAffected(s.db.WithContext(ctx).Where("id = ?", id).Delete(&recipeRow{}))
}

// SetRecipeImages replaces a recipe's images. Positions follow slice order.
func (s *Store) SetRecipeImages(ctx context.Context, recipeID string, images []domain.RecipeImage) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &recipeRow{}, recipeID); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&imageRow{}).Error; err != nil {
			return fmt.Errorf("delete recipe_images: %w", err)
		}
		return insertImages(tx, recipeID, images)
	})
}

// UpdateRecipeImage updates one image's URL, dimensions and blurhash.
func (s *Store) UpdateRecipeImage(ctx context.Context, img *domain.RecipeImage) error {
	tx := s.db.WithContext(ctx).Model(&imageRow{}).
		Where("id = ? AND recipe_id = ?", img.ID, img.RecipeID).
		Updates(map[string]any{
			"url":      img.URL,
			"width":    img.Width,
			"height":   img.Height,
			"blurhash": img.BlurHash,
		})
	return requireAffected(tx)
}

func insertImages(tx *gorm.DB, recipeID string, images []domain.RecipeImage) error {
	if len(images) == 0 {
		return nil
	}
	rows := make([]imageRow, len(images))
	for i := range images {
		images[i].RecipeID = recipeID
		images[i].Position = i
		rows[i] = toImageRow(images[i])
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert recipe_images: %w", mapError(err))
	}
	return nil
}

func recipesWithImages(db *gorm.DB, rows []recipeRow) ([]*domain.Recipe, error) {
	recipes := make([]*domain.Recipe, len(rows))
	for i, row := range rows {
		recipes[i] = row.toDomain()
	}
	if err := loadImages(db, recipes); err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	return recipes, nil
}

func loadImages(db *gorm.DB, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Recipe, len(recipes))
	ids := make([]string, 0, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	var rows []imageRow
	if err := db.Where("recipe_id IN ?", ids).Order("recipe_id, position").Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		if r, ok := byID[row.RecipeID]; ok {
			r.Images = append(r.Images, row.toDomain())
		}
	}
	return nil
}
