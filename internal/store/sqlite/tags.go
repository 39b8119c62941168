package sqlite

import (
	"context"
	"database/sql"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

// tagGroupColumns must match the scan order in scanTagGroup.
const tagGroupColumns = `id, name, slug, color, position, created_at, updated_at`

// tagColumns must match the scan order in scanTag.
const tagColumns = `id, group_id, name, slug, color, created_at, updated_at`

func scanTagGroup(scanner interface{ Scan(dest ...any) error }) (*domain.TagGroup, error) {
	var g domain.TagGroup
	var createdAt, updatedAt string

	err := scanner.Scan(&g.ID, &g.Name, &g.Slug, &g.Color, &g.Position, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	var (
		groupID              sql.NullString
		createdAt, updatedAt string
	)

	err := scanner.Scan(&t.ID, &groupID, &t.Name, &t.Slug, &t.Color, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.GroupID = stringPtr(groupID)
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTagGroup inserts a tag group.
// Returns store.ErrAlreadyExists on duplicate ID or slug.
func (s *Store) CreateTagGroup(ctx context.Context, g *domain.TagGroup) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tag_groups (`+tagGroupColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Slug, g.Color, g.Position,
		formatTime(g.CreatedAt), formatTime(g.UpdatedAt),
	)
	return mapError(err)
}

// GetTagGroup retrieves a tag group by ID.
// Returns store.ErrNotFound if the group does not exist.
func (s *Store) GetTagGroup(ctx context.Context, id string) (*domain.TagGroup, error) {
	g, err := scanTagGroup(s.db.QueryRowContext(ctx,
		`SELECT `+tagGroupColumns+` FROM tag_groups WHERE id = ?`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return g, nil
}

// ListTagGroups returns all groups ordered by position, then name.
func (s *Store) ListTagGroups(ctx context.Context) ([]*domain.TagGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagGroupColumns+` FROM tag_groups ORDER BY position ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []*domain.TagGroup{}
	for rows.Next() {
		g, err := scanTagGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// UpdateTagGroup updates a tag group.
// Returns store.ErrNotFound if the group does not exist.
func (s *Store) UpdateTagGroup(ctx context.Context, g *domain.TagGroup) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tag_groups SET name = ?, slug = ?, color = ?, position = ?, updated_at = ?
		WHERE id = ?`,
		g.Name, g.Slug, g.Color, g.Position, formatTime(g.UpdatedAt), g.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// DeleteTagGroup deletes a group. Its tags survive with group_id set to NULL.
// Returns store.ErrNotFound if the group does not exist.
func (s *Store) DeleteTagGroup(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tag_groups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// CreateTag inserts a tag.
// Returns store.ErrAlreadyExists on duplicate slug and
// store.ErrMissingReference for an unknown group.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (`+tagColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, nullableString(t.GroupID), t.Name, t.Slug, t.Color,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	return mapError(err)
}

// GetTag retrieves a tag by ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	t, err := scanTag(s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// GetTagBySlug retrieves a tag by its slug.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	t, err := scanTag(s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE slug = ?`, slug))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// GetTagsByIDs returns the tags that exist among ids, ordered by slug.
func (s *Store) GetTagsByIDs(ctx context.Context, ids []string) ([]*domain.Tag, error) {
	if len(ids) == 0 {
		return []*domain.Tag{}, nil
	}
	return s.queryTags(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id IN (`+placeholders(len(ids))+`) ORDER BY slug ASC`,
		stringArgs(ids)...)
}

// ListTags returns all tags ordered by slug.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.queryTags(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY slug ASC`)
}

// UpdateTag updates a tag.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tags SET group_id = ?, name = ?, slug = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		nullableString(t.GroupID), t.Name, t.Slug, t.Color, formatTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// DeleteTag deletes a tag and its product links.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (s *Store) queryTags(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
