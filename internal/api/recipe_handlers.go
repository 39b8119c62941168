package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes",
		Summary:     "List recipes",
		Description: "Returns the current owner's recipes, drafts included",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "createRecipe",
		Method:      http.MethodPost,
		Path:        "/api/v1/recipes",
		Summary:     "Create recipe",
		Description: "Creates a draft recipe. Images without dimensions are probed",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns a recipe by ID",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Update recipe",
		Description: "Updates title, slug or description",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRecipe",
		Method:      http.MethodDelete,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Delete recipe",
		Description: "Deletes a recipe with its images and pins",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "setRecipeImages",
		Method:      http.MethodPut,
		Path:        "/api/v1/recipes/{id}/images",
		Summary:     "Replace recipe images",
		Description: "Replaces the ordered image list. The first image is the pin canvas",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetRecipeImages)

	huma.Register(s.api, huma.Operation{
		OperationID: "publishRecipe",
		Method:      http.MethodPost,
		Path:        "/api/v1/recipes/{id}/publish",
		Summary:     "Publish recipe",
		Description: "Makes a recipe visible on the storefront. Requires a base image",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePublishRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "unpublishRecipe",
		Method:      http.MethodPost,
		Path:        "/api/v1/recipes/{id}/unpublish",
		Summary:     "Unpublish recipe",
		Description: "Returns a recipe to draft",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnpublishRecipe)
}

// === DTOs ===

// ListRecipesResponse contains the owner's recipes.
type ListRecipesResponse struct {
	Recipes []*domain.Recipe `json:"recipes" doc:"Recipes, most recently updated first"`
}

// ListRecipesOutput wraps the list recipes response for Huma.
type ListRecipesOutput struct {
	Body ListRecipesResponse
}

// RecipeOutput wraps a recipe for Huma.
type RecipeOutput struct {
	Body *domain.Recipe
}

// CreateRecipeInput wraps the create recipe request for Huma.
type CreateRecipeInput struct {
	Body service.CreateRecipeRequest
}

// UpdateRecipeInput wraps the update recipe request for Huma.
type UpdateRecipeInput struct {
	ID   string `path:"id" doc:"Recipe ID"`
	Body service.UpdateRecipeRequest
}

// SetRecipeImagesRequest is the ordered image list.
type SetRecipeImagesRequest struct {
	Images []service.ImageRequest `json:"images" doc:"Images in display order; the first is the base image"`
}

// SetRecipeImagesInput wraps the image list for Huma.
type SetRecipeImagesInput struct {
	ID   string `path:"id" doc:"Recipe ID"`
	Body SetRecipeImagesRequest
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, _ *struct{}) (*ListRecipesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipe.ListRecipes(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListRecipesOutput{Body: ListRecipesResponse{Recipes: nonNil(recipes)}}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.services.Recipe.CreateRecipe(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: r}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *IDInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.services.Recipe.GetRecipe(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: r}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.services.Recipe.UpdateRecipe(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: r}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recipe.DeleteRecipe(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return messageOutput("Recipe deleted"), nil
}

func (s *Server) handleSetRecipeImages(ctx context.Context, input *SetRecipeImagesInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.services.Recipe.SetImages(ctx, userID, input.ID, input.Body.Images)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: r}, nil
}

func (s *Server) handlePublishRecipe(ctx context.Context, input *IDInput) (*RecipeOutput, error) {
	return s.setPublished(ctx, input.ID, true)
}

func (s *Server) handleUnpublishRecipe(ctx context.Context, input *IDInput) (*RecipeOutput, error) {
	return s.setPublished(ctx, input.ID, false)
}

func (s *Server) setPublished(ctx context.Context, recipeID string, published bool) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.services.Recipe.SetPublished(ctx, userID, recipeID, published)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: r}, nil
}
