package service

import (
	"context"
	"log/slog"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	domainerrors "github.com/pinshelf/pinshelf-server/internal/errors"
	"github.com/pinshelf/pinshelf-server/internal/id"
	"github.com/pinshelf/pinshelf-server/internal/sse"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// maxPinsPerRecipe bounds a single recipe's annotation count.
const maxPinsPerRecipe = 200

// PinService manages the pins of an owner's recipes. Styles are stored as the
// author sent them; defaults are applied when the storefront reads them.
type PinService struct {
	store   store.Store
	recipes *RecipeService
	events  Emitter
	views   *ViewCache
	logger  *slog.Logger
}

// NewPinService creates a new pin service.
func NewPinService(st store.Store, recipes *RecipeService, events Emitter, views *ViewCache, logger *slog.Logger) *PinService {
	return &PinService{
		store:   st,
		recipes: recipes,
		events:  events,
		views:   views,
		logger:  logger,
	}
}

// PinRequest is a pin as sent by the editor.
type PinRequest struct {
	// ProductID links the pin; nil or "" leaves it inert.
	ProductID   *string         `json:"productId,omitempty"`
	DotXPercent float64         `json:"dotXPercent"`
	DotYPercent float64         `json:"dotYPercent"`
	TagXPercent float64         `json:"tagXPercent"`
	TagYPercent float64         `json:"tagYPercent"`
	Style       domain.PinStyle `json:"style,omitempty"`
}

// ListPins returns a recipe's pins in stored order, styles as stored.
func (s *PinService) ListPins(ctx context.Context, userID, recipeID string) ([]*domain.RecipePin, error) {
	if _, err := s.recipes.GetRecipe(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	return s.store.ListPins(ctx, recipeID)
}

// CreatePin appends a pin to a recipe.
func (s *PinService) CreatePin(ctx context.Context, userID, recipeID string, req PinRequest) (*domain.RecipePin, error) {
	r, err := s.recipes.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkProducts(ctx, []PinRequest{req}); err != nil {
		return nil, err
	}
	existing, err := s.store.ListPins(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxPinsPerRecipe {
		return nil, domainerrors.Validationf("a recipe holds at most %d pins", maxPinsPerRecipe)
	}

	p, err := newPin(recipeID, len(existing), req)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePin(ctx, p); err != nil {
		return nil, storeError(err, "pin")
	}

	s.changed(ctx, r, sse.NewPinEvent(sse.EventPinCreated, r.UserID, p))
	s.logger.Info("pin created", "pin_id", p.ID, "recipe_id", recipeID)
	return p, nil
}

// UpdatePin rewrites a pin's link, geometry and style. Position is kept.
func (s *PinService) UpdatePin(ctx context.Context, userID, pinID string, req PinRequest) (*domain.RecipePin, error) {
	p, r, err := s.ownedPin(ctx, userID, pinID)
	if err != nil {
		return nil, err
	}
	if err := s.checkProducts(ctx, []PinRequest{req}); err != nil {
		return nil, err
	}

	applyPinRequest(p, req)
	p.UpdatedAt = now()
	if err := s.store.UpdatePin(ctx, p); err != nil {
		return nil, storeError(err, "pin")
	}

	s.changed(ctx, r, sse.NewPinEvent(sse.EventPinUpdated, r.UserID, p))
	return p, nil
}

// DeletePin removes a pin.
func (s *PinService) DeletePin(ctx context.Context, userID, pinID string) error {
	p, r, err := s.ownedPin(ctx, userID, pinID)
	if err != nil {
		return err
	}
	if err := s.store.DeletePin(ctx, p.ID); err != nil {
		return storeError(err, "pin")
	}

	s.changed(ctx, r, sse.NewDeletedEvent(sse.EventPinDeleted, r.UserID, p.ID).ForRecipe(r.ID))
	s.logger.Info("pin deleted", "pin_id", p.ID, "recipe_id", r.ID)
	return nil
}

// ReplacePins swaps all of a recipe's pins for reqs, in order. The editor
// saves with this so reordering and bulk edits land atomically.
func (s *PinService) ReplacePins(ctx context.Context, userID, recipeID string, reqs []PinRequest) ([]*domain.RecipePin, error) {
	r, err := s.recipes.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if len(reqs) > maxPinsPerRecipe {
		return nil, domainerrors.Validationf("a recipe holds at most %d pins", maxPinsPerRecipe)
	}
	if err := s.checkProducts(ctx, reqs); err != nil {
		return nil, err
	}

	pins := make([]*domain.RecipePin, len(reqs))
	for i, req := range reqs {
		if pins[i], err = newPin(recipeID, i, req); err != nil {
			return nil, err
		}
	}
	if err := s.store.ReplacePins(ctx, recipeID, pins); err != nil {
		return nil, storeError(err, "recipe")
	}

	s.changed(ctx, r, sse.NewPinsReplacedEvent(r.UserID, recipeID, pins))
	s.logger.Info("pins replaced", "recipe_id", recipeID, "count", len(pins))
	return pins, nil
}

// ownedPin loads a pin and its recipe, hiding pins of other owners.
func (s *PinService) ownedPin(ctx context.Context, userID, pinID string) (*domain.RecipePin, *domain.Recipe, error) {
	p, err := s.store.GetPin(ctx, pinID)
	if err != nil {
		return nil, nil, storeError(err, "pin")
	}
	r, err := s.recipes.GetRecipe(ctx, userID, p.RecipeID)
	if err != nil {
		return nil, nil, domainerrors.NotFound("pin not found")
	}
	return p, r, nil
}

// checkProducts rejects links to products that do not exist. Products deleted
// later leave their pins inert rather than failing reads.
func (s *PinService) checkProducts(ctx context.Context, reqs []PinRequest) error {
	var ids []string
	seen := make(map[string]bool)
	for _, req := range reqs {
		if req.ProductID == nil || *req.ProductID == "" || seen[*req.ProductID] {
			continue
		}
		seen[*req.ProductID] = true
		ids = append(ids, *req.ProductID)
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}
	have := make(map[string]bool, len(found))
	for _, p := range found {
		have[p.ID] = true
	}
	missing := make(map[string]string)
	for _, pid := range ids {
		if !have[pid] {
			missing[pid] = "product does not exist"
		}
	}
	return domainerrors.ValidationWithDetails("pin links an unknown product", missing)
}

func (s *PinService) changed(ctx context.Context, r *domain.Recipe, event sse.Event) {
	r.Touch()
	if err := s.store.UpdateRecipe(ctx, r); err != nil {
		s.logger.Warn("failed to touch recipe", "recipe_id", r.ID, "error", err)
	}
	s.views.InvalidateRecipes(ctx, r.ID)
	s.events.Emit(event)
}

func newPin(recipeID string, position int, req PinRequest) (*domain.RecipePin, error) {
	pinID, err := id.Generate(id.PrefixPin)
	if err != nil {
		return nil, err
	}
	ts := now()
	p := &domain.RecipePin{
		ID:        pinID,
		RecipeID:  recipeID,
		Position:  position,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	applyPinRequest(p, req)
	return p, nil
}

func applyPinRequest(p *domain.RecipePin, req PinRequest) {
	p.ProductID = nil
	if req.ProductID != nil && *req.ProductID != "" {
		pid := *req.ProductID
		p.ProductID = &pid
	}
	p.DotXPercent = req.DotXPercent
	p.DotYPercent = req.DotYPercent
	p.TagXPercent = req.TagXPercent
	p.TagYPercent = req.TagYPercent
	p.PinStyle = req.Style
}
