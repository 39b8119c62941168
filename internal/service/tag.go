package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/pinshelf/pinshelf-server/internal/color"
	"github.com/pinshelf/pinshelf-server/internal/domain"
	domainerrors "github.com/pinshelf/pinshelf-server/internal/errors"
	"github.com/pinshelf/pinshelf-server/internal/id"
	"github.com/pinshelf/pinshelf-server/internal/sse"
	"github.com/pinshelf/pinshelf-server/internal/store"
	"github.com/pinshelf/pinshelf-server/internal/validation"
)

// TagService manages tags and tag groups. Tags are catalog-wide.
type TagService struct {
	store     store.Store
	events    Emitter
	search    *SearchService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewTagService creates a new tag service.
func NewTagService(st store.Store, events Emitter, search *SearchService, logger *slog.Logger) *TagService {
	return &TagService{
		store:     st,
		events:    events,
		search:    search,
		logger:    logger,
		validator: validation.New(),
	}
}

// TagGroupRequest contains fields for creating or replacing a tag group.
type TagGroupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Slug     string `json:"slug,omitempty" validate:"omitempty,slug,max=80"`
	Color    string `json:"color,omitempty" validate:"omitempty,rgbhex"`
	Position int    `json:"position,omitempty" validate:"gte=0"`
}

// TagRequest contains fields for creating or replacing a tag.
type TagRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Slug    string `json:"slug,omitempty" validate:"omitempty,slug,max=80"`
	Color   string `json:"color,omitempty" validate:"omitempty,rgbhex"`
	GroupID string `json:"groupId,omitempty"`
}

// ListTagGroups returns groups in display order.
func (s *TagService) ListTagGroups(ctx context.Context) ([]*domain.TagGroup, error) {
	return s.store.ListTagGroups(ctx)
}

// CreateTagGroup creates a tag group. The color defaults to one derived from the ID.
func (s *TagService) CreateTagGroup(ctx context.Context, req TagGroupRequest) (*domain.TagGroup, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	groupID, err := id.Generate(id.PrefixTagGroup)
	if err != nil {
		return nil, err
	}
	ts := now()
	g := &domain.TagGroup{
		ID:        groupID,
		Name:      req.Name,
		Color:     colorOr(req.Color, groupID),
		Position:  req.Position,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	err = insertWithSlug(req.Slug, req.Name, func(slug string) error {
		g.Slug = slug
		return s.store.CreateTagGroup(ctx, g)
	})
	if err != nil {
		return nil, storeError(err, "tag group")
	}

	s.events.Emit(sse.NewTagGroupEvent(sse.EventTagGroupCreated, g))
	s.logger.Info("tag group created", "group_id", g.ID, "slug", g.Slug)
	return g, nil
}

// UpdateTagGroup replaces a group's fields. An empty slug keeps the current one.
func (s *TagService) UpdateTagGroup(ctx context.Context, groupID string, req TagGroupRequest) (*domain.TagGroup, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	g, err := s.store.GetTagGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "tag group")
	}

	g.Name = req.Name
	if req.Slug != "" {
		g.Slug = req.Slug
	}
	g.Color = colorOr(req.Color, g.ID)
	g.Position = req.Position
	g.UpdatedAt = now()
	if err := s.store.UpdateTagGroup(ctx, g); err != nil {
		return nil, storeError(err, "tag group")
	}

	s.events.Emit(sse.NewTagGroupEvent(sse.EventTagGroupUpdated, g))
	return g, nil
}

// DeleteTagGroup deletes a group; its tags become ungrouped.
func (s *TagService) DeleteTagGroup(ctx context.Context, groupID string) error {
	if err := s.store.DeleteTagGroup(ctx, groupID); err != nil {
		return storeError(err, "tag group")
	}
	s.events.Emit(sse.NewDeletedEvent(sse.EventTagGroupDeleted, "", groupID))
	s.logger.Info("tag group deleted", "group_id", groupID)
	return nil
}

// ListTags returns every tag.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx)
}

// GetTagBySlug returns a tag by its slug.
func (s *TagService) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	t, err := s.store.GetTagBySlug(ctx, slug)
	return t, storeError(err, "tag")
}

// CreateTag creates a tag, optionally inside a group.
func (s *TagService) CreateTag(ctx context.Context, req TagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	groupID, err := s.checkGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, err
	}

	ts := now()
	t := &domain.Tag{
		ID:        tagID,
		GroupID:   groupID,
		Name:      req.Name,
		Color:     colorOr(req.Color, tagID),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	err = insertWithSlug(req.Slug, req.Name, func(slug string) error {
		t.Slug = slug
		return s.store.CreateTag(ctx, t)
	})
	if err != nil {
		return nil, storeError(err, "tag")
	}

	s.events.Emit(sse.NewTagEvent(sse.EventTagCreated, t))
	s.logger.Info("tag created", "tag_id", t.ID, "slug", t.Slug)
	return t, nil
}

// UpdateTag replaces a tag's fields. A slug change is pushed into the search
// documents of the tag's products.
func (s *TagService) UpdateTag(ctx context.Context, tagID string, req TagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	t, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, storeError(err, "tag")
	}
	groupID, err := s.checkGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	oldSlug := t.Slug
	t.Name = req.Name
	if req.Slug != "" {
		t.Slug = req.Slug
	}
	t.Color = colorOr(req.Color, t.ID)
	t.GroupID = groupID
	t.Touch()
	if err := s.store.UpdateTag(ctx, t); err != nil {
		return nil, storeError(err, "tag")
	}

	if t.Slug != oldSlug {
		s.reindexProducts(ctx, t.ID)
	}
	s.events.Emit(sse.NewTagEvent(sse.EventTagUpdated, t))
	return t, nil
}

// DeleteTag deletes a tag and unlinks it from products.
func (s *TagService) DeleteTag(ctx context.Context, tagID string) error {
	products, err := s.store.ListProducts(ctx, store.ProductFilter{TagID: tagID})
	if err != nil {
		return err
	}
	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return storeError(err, "tag")
	}

	for _, p := range products {
		p.TagIDs = slices.DeleteFunc(p.TagIDs, func(v string) bool { return v == tagID })
		if err := s.search.IndexProduct(ctx, p); err != nil {
			s.logger.Warn("failed to reindex product", "product_id", p.ID, "error", err)
		}
	}
	s.events.Emit(sse.NewDeletedEvent(sse.EventTagDeleted, "", tagID))
	s.logger.Info("tag deleted", "tag_id", tagID, "products", len(products))
	return nil
}

func (s *TagService) reindexProducts(ctx context.Context, tagID string) {
	products, err := s.store.ListProducts(ctx, store.ProductFilter{TagID: tagID})
	if err != nil {
		s.logger.Warn("failed to list tagged products", "tag_id", tagID, "error", err)
		return
	}
	for _, p := range products {
		if err := s.search.IndexProduct(ctx, p); err != nil {
			s.logger.Warn("failed to reindex product", "product_id", p.ID, "error", err)
		}
	}
}

func (s *TagService) checkGroup(ctx context.Context, groupID string) (*string, error) {
	if groupID == "" {
		return nil, nil
	}
	if _, err := s.store.GetTagGroup(ctx, groupID); err != nil {
		if domainErr := storeError(err, "tag group"); domainerrors.Is(domainErr, domainerrors.ErrNotFound) {
			return nil, domainerrors.Validation("tag group does not exist")
		}
		return nil, err
	}
	return &groupID, nil
}

func colorOr(c, entityID string) string {
	if c == "" {
		return color.ForID(entityID)
	}
	return c
}
