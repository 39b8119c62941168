package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

func (s *Server) registerPinRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPins",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}/pins",
		Summary:     "List pins",
		Description: "Returns a recipe's pins in stored order with styles as saved",
		Tags:        []string{"Pins"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPins)

	huma.Register(s.api, huma.Operation{
		OperationID: "createPin",
		Method:      http.MethodPost,
		Path:        "/api/v1/recipes/{id}/pins",
		Summary:     "Create pin",
		Description: "Appends a pin to a recipe",
		Tags:        []string{"Pins"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePin)

	huma.Register(s.api, huma.Operation{
		OperationID: "replacePins",
		Method:      http.MethodPut,
		Path:        "/api/v1/recipes/{id}/pins",
		Summary:     "Replace pins",
		Description: "Replaces every pin of a recipe in one step. Order is kept",
		Tags:        []string{"Pins"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplacePins)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePin",
		Method:      http.MethodPut,
		Path:        "/api/v1/pins/{id}",
		Summary:     "Update pin",
		Description: "Overwrites a pin's coordinates, product link and style. Position is kept",
		Tags:        []string{"Pins"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePin)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePin",
		Method:      http.MethodDelete,
		Path:        "/api/v1/pins/{id}",
		Summary:     "Delete pin",
		Description: "Deletes a pin",
		Tags:        []string{"Pins"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePin)
}

// === DTOs ===

// ListPinsResponse contains a recipe's pins.
type ListPinsResponse struct {
	Pins []*domain.RecipePin `json:"pins" doc:"Pins in stored order"`
}

// ListPinsOutput wraps the pin list for Huma.
type ListPinsOutput struct {
	Body ListPinsResponse
}

// PinOutput wraps a pin for Huma.
type PinOutput struct {
	Body *domain.RecipePin
}

// PinInput wraps a pin request addressed by recipe or pin ID.
type PinInput struct {
	ID   string `path:"id" doc:"Recipe ID for create, pin ID for update"`
	Body service.PinRequest
}

// ReplacePinsRequest is the full pin list of a recipe.
type ReplacePinsRequest struct {
	Pins []service.PinRequest `json:"pins" doc:"Pins in display order"`
}

// ReplacePinsInput wraps the replace request for Huma.
type ReplacePinsInput struct {
	ID   string `path:"id" doc:"Recipe ID"`
	Body ReplacePinsRequest
}

// === Handlers ===

func (s *Server) handleListPins(ctx context.Context, input *IDInput) (*ListPinsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	pins, err := s.services.Pin.ListPins(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ListPinsOutput{Body: ListPinsResponse{Pins: nonNil(pins)}}, nil
}

func (s *Server) handleCreatePin(ctx context.Context, input *PinInput) (*PinOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.services.Pin.CreatePin(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &PinOutput{Body: p}, nil
}

func (s *Server) handleReplacePins(ctx context.Context, input *ReplacePinsInput) (*ListPinsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	pins, err := s.services.Pin.ReplacePins(ctx, userID, input.ID, input.Body.Pins)
	if err != nil {
		return nil, err
	}

	return &ListPinsOutput{Body: ListPinsResponse{Pins: nonNil(pins)}}, nil
}

func (s *Server) handleUpdatePin(ctx context.Context, input *PinInput) (*PinOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.services.Pin.UpdatePin(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &PinOutput{Body: p}, nil
}

func (s *Server) handleDeletePin(ctx context.Context, input *IDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Pin.DeletePin(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return messageOutput("Pin deleted"), nil
}
