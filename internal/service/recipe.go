package service

import (
	"context"
	"log/slog"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	domainerrors "github.com/pinshelf/pinshelf-server/internal/errors"
	"github.com/pinshelf/pinshelf-server/internal/id"
	"github.com/pinshelf/pinshelf-server/internal/media/images"
	"github.com/pinshelf/pinshelf-server/internal/sse"
	"github.com/pinshelf/pinshelf-server/internal/store"
	"github.com/pinshelf/pinshelf-server/internal/validation"
)

// ImageProber measures a remote image. *images.Fetcher implements it.
type ImageProber interface {
	Fetch(ctx context.Context, imageID, url string) (*images.Probe, error)
}

// RecipeService manages an owner's recipes. Every method is scoped by userID;
// another user's recipe is reported as not found.
type RecipeService struct {
	store     store.Store
	prober    ImageProber
	events    Emitter
	search    *SearchService
	views     *ViewCache
	logger    *slog.Logger
	validator *validation.Validator
}

// NewRecipeService creates a new recipe service. prober may be nil, in which
// case images without dimensions keep zero width and height.
func NewRecipeService(st store.Store, prober ImageProber, events Emitter, search *SearchService, views *ViewCache, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		store:     st,
		prober:    prober,
		events:    events,
		search:    search,
		views:     views,
		logger:    logger,
		validator: validation.New(),
	}
}

// ImageRequest describes one recipe image.
type ImageRequest struct {
	URL    string `json:"url" validate:"required,http_url"`
	Width  int    `json:"width,omitempty" validate:"gte=0"`
	Height int    `json:"height,omitempty" validate:"gte=0"`
}

// CreateRecipeRequest contains fields for creating a recipe.
type CreateRecipeRequest struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Slug        string         `json:"slug,omitempty" validate:"omitempty,slug,max=80"`
	Description string         `json:"description,omitempty" validate:"max=5000"`
	Images      []ImageRequest `json:"images,omitempty" validate:"max=20,dive"`
}

// UpdateRecipeRequest contains the fields to change; nil fields are kept.
type UpdateRecipeRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Slug        *string `json:"slug,omitempty" validate:"omitempty,slug,max=80"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
}

// CreateRecipe creates a draft recipe owned by userID.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID string, req CreateRecipeRequest) (*domain.Recipe, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	recipeID, err := id.Generate(id.PrefixRecipe)
	if err != nil {
		return nil, err
	}
	imgs, err := s.buildImages(ctx, req.Images)
	if err != nil {
		return nil, err
	}

	ts := now()
	r := &domain.Recipe{
		ID:          recipeID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Images:      imgs,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	err = insertWithSlug(req.Slug, req.Title, func(slug string) error {
		r.Slug = slug
		return s.store.CreateRecipe(ctx, r)
	})
	if err != nil {
		return nil, storeError(err, "recipe")
	}

	s.events.Emit(sse.NewRecipeEvent(sse.EventRecipeCreated, r))
	s.logger.Info("recipe created", "recipe_id", r.ID, "user_id", userID, "slug", r.Slug)
	return r, nil
}

// GetRecipe returns one of the owner's recipes.
func (s *RecipeService) GetRecipe(ctx context.Context, userID, recipeID string) (*domain.Recipe, error) {
	r, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, storeError(err, "recipe")
	}
	if !r.IsOwnedBy(userID) {
		return nil, domainerrors.NotFound("recipe not found")
	}
	return r, nil
}

// ListRecipes returns the owner's recipes, drafts included.
func (s *RecipeService) ListRecipes(ctx context.Context, userID string) ([]*domain.Recipe, error) {
	return s.store.ListRecipesByUser(ctx, userID)
}

// UpdateRecipe changes a recipe's title, slug or description.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID string, req UpdateRecipeRequest) (*domain.Recipe, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	r, err := s.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		r.Title = *req.Title
	}
	if req.Slug != nil {
		r.Slug = *req.Slug
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	r.UpdatedAt = now()

	if err := s.store.UpdateRecipe(ctx, r); err != nil {
		return nil, storeError(err, "recipe")
	}
	s.changed(ctx, r, sse.EventRecipeUpdated)
	return r, nil
}

// SetImages replaces a recipe's images. The first image becomes the base image.
func (s *RecipeService) SetImages(ctx context.Context, userID, recipeID string, reqs []ImageRequest) (*domain.Recipe, error) {
	if err := s.validator.Validate(struct {
		Images []ImageRequest `json:"images" validate:"max=20,dive"`
	}{reqs}); err != nil {
		return nil, err
	}
	r, err := s.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	imgs, err := s.buildImages(ctx, reqs)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetRecipeImages(ctx, recipeID, imgs); err != nil {
		return nil, storeError(err, "recipe")
	}
	r.Images = imgs
	r.UpdatedAt = now()
	if err := s.store.UpdateRecipe(ctx, r); err != nil {
		return nil, storeError(err, "recipe")
	}

	s.changed(ctx, r, sse.EventRecipeUpdated)
	return r, nil
}

// SetPublished publishes or unpublishes a recipe.
func (s *RecipeService) SetPublished(ctx context.Context, userID, recipeID string, published bool) (*domain.Recipe, error) {
	r, err := s.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if r.Published == published {
		return r, nil
	}

	if published {
		if r.BaseImage() == nil {
			return nil, domainerrors.Validation("a recipe needs an image before it can be published")
		}
		r.Publish(now())
	} else {
		r.Unpublish(now())
	}
	if err := s.store.UpdateRecipe(ctx, r); err != nil {
		return nil, storeError(err, "recipe")
	}

	s.changed(ctx, r, sse.EventRecipePublished)
	s.logger.Info("recipe publication changed", "recipe_id", r.ID, "published", published)
	return r, nil
}

// DeleteRecipe deletes a recipe with its images and pins.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID string) error {
	r, err := s.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRecipe(ctx, recipeID); err != nil {
		return storeError(err, "recipe")
	}

	s.views.InvalidateRecipes(ctx, recipeID)
	if err := s.search.Remove(recipeID); err != nil {
		s.logger.Warn("failed to remove recipe from search index", "recipe_id", recipeID, "error", err)
	}
	s.events.Emit(sse.NewDeletedEvent(sse.EventRecipeDeleted, r.UserID, recipeID).ForRecipe(recipeID))
	s.logger.Info("recipe deleted", "recipe_id", recipeID, "user_id", userID)
	return nil
}

// MeasureImages probes published recipe images that are still missing
// dimensions or a blurhash, typically after a failed probe at write time.
// Author-supplied dimensions are kept. Returns the number of images updated.
func (s *RecipeService) MeasureImages(ctx context.Context) (int, error) {
	if s.prober == nil {
		return 0, nil
	}

	measured := 0
	params := store.PaginationParams{Limit: 100}
	for {
		page, err := s.store.ListPublishedRecipes(ctx, params)
		if err != nil {
			return measured, storeError(err, "recipe")
		}
		for _, r := range page.Items {
			updated := false
			for i := range r.Images {
				if err := ctx.Err(); err != nil {
					return measured, err
				}
				img := &r.Images[i]
				if img.Width > 0 && img.Height > 0 && img.BlurHash != "" {
					continue
				}
				probe, err := s.prober.Fetch(ctx, img.ID, img.URL)
				if err != nil {
					s.logger.Debug("recipe image still unreachable", "image_id", img.ID, "error", err)
					continue
				}
				if img.Width <= 0 || img.Height <= 0 {
					img.Width, img.Height = probe.Width, probe.Height
				}
				img.BlurHash = probe.BlurHash
				if err := s.store.UpdateRecipeImage(ctx, img); err != nil {
					return measured, storeError(err, "recipe image")
				}
				measured++
				updated = true
			}
			if updated {
				s.views.InvalidateRecipes(ctx, r.ID)
			}
		}
		if !page.HasMore {
			return measured, nil
		}
		params.Cursor = page.NextCursor
	}
}

// changed propagates a recipe write to the cache, index and event stream.
func (s *RecipeService) changed(ctx context.Context, r *domain.Recipe, event sse.EventType) {
	s.views.InvalidateRecipes(ctx, r.ID)
	if err := s.search.IndexRecipe(ctx, r); err != nil {
		s.logger.Warn("failed to index recipe", "recipe_id", r.ID, "error", err)
	}
	s.events.Emit(sse.NewRecipeEvent(event, r))
}

// buildImages assigns IDs and fills in missing dimensions by probing. A failed
// probe leaves the image unmeasured; the renderer then lays it out as a square.
func (s *RecipeService) buildImages(ctx context.Context, reqs []ImageRequest) ([]domain.RecipeImage, error) {
	imgs := make([]domain.RecipeImage, len(reqs))
	for i, req := range reqs {
		imgID, err := id.Generate(id.PrefixRecipeImage)
		if err != nil {
			return nil, err
		}
		img := domain.RecipeImage{ID: imgID, URL: req.URL, Width: req.Width, Height: req.Height, Position: i}

		if s.prober != nil && (img.Width <= 0 || img.Height <= 0) {
			probe, err := s.prober.Fetch(ctx, imgID, req.URL)
			if err != nil {
				s.logger.Warn("failed to probe recipe image", "url", req.URL, "error", err)
			} else {
				img.Width, img.Height, img.BlurHash = probe.Width, probe.Height, probe.BlurHash
			}
		}
		imgs[i] = img
	}
	return imgs, nil
}
