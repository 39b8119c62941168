package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTagGroups",
		Method:      http.MethodGet,
		Path:        "/api/v1/tag-groups",
		Summary:     "List tag groups",
		Description: "Returns tag groups in display order",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTagGroups)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTagGroup",
		Method:      http.MethodPost,
		Path:        "/api/v1/tag-groups",
		Summary:     "Create tag group",
		Description: "Creates a tag group",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTagGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTagGroup",
		Method:      http.MethodPut,
		Path:        "/api/v1/tag-groups/{id}",
		Summary:     "Update tag group",
		Description: "Replaces a tag group's fields",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTagGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTagGroup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tag-groups/{id}",
		Summary:     "Delete tag group",
		Description: "Deletes a tag group. Its tags are kept without a group",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTagGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Description: "Creates a new tag",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPut,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Update tag",
		Description: "Replaces a tag's fields. Products carrying it are reindexed",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Description: "Deletes a tag and detaches it from products",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)
}

// === DTOs ===

// ListTagGroupsResponse contains tag groups.
type ListTagGroupsResponse struct {
	Groups []*domain.TagGroup `json:"groups" doc:"Tag groups in display order"`
}

// ListTagGroupsOutput wraps the group list for Huma.
type ListTagGroupsOutput struct {
	Body ListTagGroupsResponse
}

// TagGroupOutput wraps a tag group for Huma.
type TagGroupOutput struct {
	Body *domain.TagGroup
}

// TagGroupInput wraps a tag group request for Huma.
type TagGroupInput struct {
	Body service.TagGroupRequest
}

// UpdateTagGroupInput wraps a tag group update for Huma.
type UpdateTagGroupInput struct {
	ID   string `path:"id" doc:"Tag group ID"`
	Body service.TagGroupRequest
}

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []*domain.Tag `json:"tags" doc:"List of tags"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// TagOutput wraps the tag response for Huma.
type TagOutput struct {
	Body *domain.Tag
}

// TagInput wraps a tag request for Huma.
type TagInput struct {
	Body service.TagRequest
}

// UpdateTagInput wraps a tag update for Huma.
type UpdateTagInput struct {
	ID   string `path:"id" doc:"Tag ID"`
	Body service.TagRequest
}

// === Handlers ===

func (s *Server) handleListTagGroups(ctx context.Context, _ *struct{}) (*ListTagGroupsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	groups, err := s.services.Tag.ListTagGroups(ctx)
	if err != nil {
		return nil, err
	}

	return &ListTagGroupsOutput{Body: ListTagGroupsResponse{Groups: nonNil(groups)}}, nil
}

func (s *Server) handleCreateTagGroup(ctx context.Context, input *TagGroupInput) (*TagGroupOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	g, err := s.services.Tag.CreateTagGroup(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &TagGroupOutput{Body: g}, nil
}

func (s *Server) handleUpdateTagGroup(ctx context.Context, input *UpdateTagGroupInput) (*TagGroupOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	g, err := s.services.Tag.UpdateTagGroup(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &TagGroupOutput{Body: g}, nil
}

func (s *Server) handleDeleteTagGroup(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Tag.DeleteTagGroup(ctx, input.ID); err != nil {
		return nil, err
	}

	return messageOutput("Tag group deleted"), nil
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: nonNil(tags)}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *TagInput) (*TagOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	t, err := s.services.Tag.CreateTag(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: t}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	t, err := s.services.Tag.UpdateTag(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: t}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Tag.DeleteTag(ctx, input.ID); err != nil {
		return nil, err
	}

	return messageOutput("Tag deleted"), nil
}
