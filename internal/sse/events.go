// Package sse streams catalog change events to connected admin clients.
package sse

import (
	"time"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

// EventType represents the type of an SSE event.
type EventType string

const (
	EventRecipeCreated   EventType = "recipe.created"
	EventRecipeUpdated   EventType = "recipe.updated"
	EventRecipeDeleted   EventType = "recipe.deleted"
	EventRecipePublished EventType = "recipe.published"

	EventPinCreated  EventType = "pin.created"
	EventPinUpdated  EventType = "pin.updated"
	EventPinDeleted  EventType = "pin.deleted"
	EventPinsReplace EventType = "pin.replaced"

	EventProductCreated EventType = "product.created"
	EventProductUpdated EventType = "product.updated"
	EventProductDeleted EventType = "product.deleted"

	EventTagCreated EventType = "tag.created"
	EventTagUpdated EventType = "tag.updated"
	EventTagDeleted EventType = "tag.deleted"

	EventTagGroupCreated EventType = "tag_group.created"
	EventTagGroupUpdated EventType = "tag_group.updated"
	EventTagGroupDeleted EventType = "tag_group.deleted"

	EventCollectionCreated EventType = "collection.created"
	EventCollectionUpdated EventType = "collection.updated"
	EventCollectionDeleted EventType = "collection.deleted"

	// EventHeartbeat keeps idle connections open through proxies.
	EventHeartbeat EventType = "heartbeat"
)

// Event is a single SSE message.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID scopes delivery to one owner's clients. Empty broadcasts to all.
	UserID string `json:"-"`
	// RecipeID names the recipe the event touches, if any. Clients watching a
	// single recipe skip events about other recipes.
	RecipeID string `json:"-"`
}

// ForRecipe returns a copy of e attributed to recipeID.
func (e Event) ForRecipe(recipeID string) Event {
	e.RecipeID = recipeID
	return e
}

// RecipeEventData is the payload of recipe events.
type RecipeEventData struct {
	Recipe *domain.Recipe `json:"recipe"`
}

// PinEventData is the payload of single-pin events.
type PinEventData struct {
	RecipeID string            `json:"recipeId"`
	Pin      *domain.RecipePin `json:"pin"`
}

// PinsReplacedEventData is the payload of a bulk pin replacement.
type PinsReplacedEventData struct {
	RecipeID string              `json:"recipeId"`
	Pins     []*domain.RecipePin `json:"pins"`
}

// ProductEventData is the payload of product events.
type ProductEventData struct {
	Product *domain.Product `json:"product"`
}

// TagEventData is the payload of tag events.
type TagEventData struct {
	Tag *domain.Tag `json:"tag"`
}

// TagGroupEventData is the payload of tag group events.
type TagGroupEventData struct {
	Group *domain.TagGroup `json:"group"`
}

// CollectionEventData is the payload of collection events.
type CollectionEventData struct {
	Collection *domain.Collection `json:"collection"`
}

// DeletedEventData is the payload of every delete event.
type DeletedEventData struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}

// HeartbeatEventData is the payload of heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

func newEvent(t EventType, userID string, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now(), UserID: userID}
}

// NewRecipeEvent creates a recipe event visible to the recipe's owner.
func NewRecipeEvent(t EventType, r *domain.Recipe) Event {
	return newEvent(t, r.UserID, RecipeEventData{Recipe: r}).ForRecipe(r.ID)
}

// NewPinEvent creates a pin event for the owner of the pin's recipe.
func NewPinEvent(t EventType, userID string, p *domain.RecipePin) Event {
	return newEvent(t, userID, PinEventData{RecipeID: p.RecipeID, Pin: p}).ForRecipe(p.RecipeID)
}

// NewPinsReplacedEvent creates a bulk pin replacement event.
func NewPinsReplacedEvent(userID, recipeID string, pins []*domain.RecipePin) Event {
	return newEvent(EventPinsReplace, userID, PinsReplacedEventData{RecipeID: recipeID, Pins: pins}).ForRecipe(recipeID)
}

// NewProductEvent creates a catalog-wide product event.
func NewProductEvent(t EventType, p *domain.Product) Event {
	return newEvent(t, "", ProductEventData{Product: p})
}

// NewTagEvent creates a catalog-wide tag event.
func NewTagEvent(t EventType, tag *domain.Tag) Event {
	return newEvent(t, "", TagEventData{Tag: tag})
}

// NewTagGroupEvent creates a catalog-wide tag group event.
func NewTagGroupEvent(t EventType, g *domain.TagGroup) Event {
	return newEvent(t, "", TagGroupEventData{Group: g})
}

// NewCollectionEvent creates a collection event for its owner.
func NewCollectionEvent(t EventType, c *domain.Collection) Event {
	return newEvent(t, c.UserID, CollectionEventData{Collection: c})
}

// NewDeletedEvent creates a delete event of any type.
func NewDeletedEvent(t EventType, userID, id string) Event {
	return newEvent(t, userID, DeletedEventData{ID: id, DeletedAt: time.Now()})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{Type: EventHeartbeat, Timestamp: now, Data: HeartbeatEventData{ServerTime: now}}
}
