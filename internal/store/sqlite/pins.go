package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/pin"
)

// pinColumns is the ordered list of columns selected in pin queries.
// Must match the scan order in scanPin.
const pinColumns = `id, recipe_id, product_id, position, dot_x_percent, dot_y_percent, tag_x_percent, tag_y_percent, style, created_at, updated_at`

// scanPin scans a pin row. The style blob is decoded loosely: rows written by
// older clients or edited by hand still load, with bad fields left unset.
func scanPin(scanner interface{ Scan(dest ...any) error }) (*domain.RecipePin, error) {
	var p domain.RecipePin

	var (
		productID sql.NullString
		style     string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.RecipeID,
		&productID,
		&p.Position,
		&p.DotXPercent,
		&p.DotYPercent,
		&p.TagXPercent,
		&p.TagYPercent,
		&style,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ProductID = stringPtr(productID)
	if decoded, err := pin.DecodeStyle([]byte(style)); err == nil {
		p.PinStyle = decoded
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func encodeStyle(s domain.PinStyle) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode pin style: %w", err)
	}
	return string(data), nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertPin(ctx context.Context, db execer, p *domain.RecipePin) error {
	style, err := encodeStyle(p.PinStyle)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO recipe_pins (`+pinColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.RecipeID,
		nullableString(p.ProductID),
		p.Position,
		p.DotXPercent,
		p.DotYPercent,
		p.TagXPercent,
		p.TagYPercent,
		style,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	return mapError(err)
}

// CreatePin inserts a pin.
// Returns store.ErrMissingReference when the recipe does not exist.
func (s *Store) CreatePin(ctx context.Context, p *domain.RecipePin) error {
	return insertPin(ctx, s.db, p)
}

// GetPin retrieves a pin by ID.
// Returns store.ErrNotFound if the pin does not exist.
func (s *Store) GetPin(ctx context.Context, id string) (*domain.RecipePin, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pinColumns+` FROM recipe_pins WHERE id = ?`, id)

	p, err := scanPin(row)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// ListPins returns a recipe's pins in stored order.
func (s *Store) ListPins(ctx context.Context, recipeID string) ([]*domain.RecipePin, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pinColumns+` FROM recipe_pins WHERE recipe_id = ? ORDER BY position ASC, created_at ASC`,
		recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pins := []*domain.RecipePin{}
	for rows.Next() {
		p, err := scanPin(rows)
		if err != nil {
			return nil, err
		}
		pins = append(pins, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pins, nil
}

// UpdatePin updates a pin's link, geometry, position and style.
// Returns store.ErrNotFound if the pin does not exist.
func (s *Store) UpdatePin(ctx context.Context, p *domain.RecipePin) error {
	style, err := encodeStyle(p.PinStyle)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE recipe_pins SET
			product_id = ?,
			position = ?,
			dot_x_percent = ?,
			dot_y_percent = ?,
			tag_x_percent = ?,
			tag_y_percent = ?,
			style = ?,
			updated_at = ?
		WHERE id = ?`,
		nullableString(p.ProductID),
		p.Position,
		p.DotXPercent,
		p.DotYPercent,
		p.TagXPercent,
		p.TagYPercent,
		style,
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// DeletePin deletes a pin.
// Returns store.ErrNotFound if the pin does not exist.
func (s *Store) DeletePin(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recipe_pins WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ReplacePins deletes every pin of a recipe and inserts pins in slice order.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) ReplacePins(ctx context.Context, recipeID string, pins []*domain.RecipePin) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM recipes WHERE id = ?`, recipeID).Scan(&exists)
		if err != nil {
			return mapError(err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_pins WHERE recipe_id = ?`, recipeID); err != nil {
			return fmt.Errorf("delete recipe_pins: %w", err)
		}
		for i, p := range pins {
			p.RecipeID = recipeID
			p.Position = i
			if err := insertPin(ctx, tx, p); err != nil {
				return fmt.Errorf("insert pin %s: %w", p.ID, err)
			}
		}
		return nil
	})
}
