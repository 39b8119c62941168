package domain

import "time"

// TagGroup groups tags for storefront navigation ("Category", "Budget", ...).
type TagGroup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tag labels products. GroupID is nil for ungrouped tags; deleting a group
// detaches its tags rather than deleting them.
type Tag struct {
	ID        string    `json:"id"`
	GroupID   *string   `json:"groupId"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}
