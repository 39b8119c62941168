package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

// CreatePin inserts a pin.
func (s *Store) CreatePin(ctx context.Context, p *domain.RecipePin) error {
	row, err := toPinRow(p)
	if err != nil {
		return err
	}
	return mapError(s.db.WithContext(ctx).Create(&row).Error)
}

// GetPin retrieves a pin by ID.
func (s *Store) GetPin(ctx context.Context, id string) (*domain.RecipePin, error) {
	var row pinRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapError(err)
	}
	return row.toDomain(), nil
}

// ListPins returns a recipe's pins in stored order.
func (s *Store) ListPins(ctx context.Context, recipeID string) ([]*domain.RecipePin, error) {
	var rows []pinRow
	err := s.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	pins := make([]*domain.RecipePin, len(rows))
	for i, row := range rows {
		pins[i] = row.toDomain()
	}
	return pins, nil
}

// UpdatePin updates a pin's link, geometry, position and style.
func (s *Store) UpdatePin(ctx context.Context, p *domain.RecipePin) error {
	row, err := toPinRow(p)
	if err != nil {
		return err
	}
	tx := s.db.WithContext(ctx).Model(&pinRow{}).Where("id = ?", p.ID).Updates(map[string]any{
		"product_id":    row.ProductID,
		"position":      row.Position,
		"dot_x_percent": row.DotXPercent,
		"dot_y_percent": row.DotYPercent,
		"tag_x_percent": row.TagXPercent,
		"tag_y_percent": row.TagYPercent,
		"style":         row.Style,
		"updated_at":    row.UpdatedAt,
	})
	return requireAffected(tx)
}

// DeletePin deletes a pin.
func (s *Store) DeletePin(ctx context.Context, id string) error {
	return requireAffected(s.db.WithContext(ctx).Where("id = ?", id).Delete(&pinRow{}))
}

// ReplacePins deletes every pin of a recipe and inserts pins in slice order.
func (s *Store) ReplacePins(ctx context.Context, recipeID string, pins []*domain.RecipePin) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &recipeRow{}, recipeID); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&pinRow{}).Error; err != nil {
			return fmt.Errorf("delete recipe_pins: %w", err)
		}
		if len(pins) == 0 {
			return nil
		}

		rows := make([]pinRow, len(pins))
		for i, p := range pins {
			p.RecipeID = recipeID
			p.Position = i
			row, err := toPinRow(p)
			if err != nil {
				return err
			}
			rows[i] = row
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert recipe_pins: %w", mapError(err))
		}
		return nil
	})
}
