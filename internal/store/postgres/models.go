package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	"github.com/pinshelf/pinshelf-server/internal/pin"
)

// Row types mirror schema.sql. They stay private; the store converts to and
// from domain values at the boundary.

type recipeRow struct {
	ID          string `gorm:"primaryKey"`
	UserID      string
	Title       string
	Slug        string
	Description string
	Published   bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (recipeRow) TableName() string { return "recipes" }

type imageRow struct {
	ID       string `gorm:"primaryKey"`
	RecipeID string
	URL      string `gorm:"column:url"`
	Width    int
	Height   int
	BlurHash string `gorm:"column:blurhash"`
	Position int
}

func (imageRow) TableName() string { return "recipe_images" }

type pinRow struct {
	ID          string `gorm:"primaryKey"`
	RecipeID    string
	ProductID   *string
	Position    int
	DotXPercent float64 `gorm:"column:dot_x_percent"`
	DotYPercent float64 `gorm:"column:dot_y_percent"`
	TagXPercent float64 `gorm:"column:tag_x_percent"`
	TagYPercent float64 `gorm:"column:tag_y_percent"`
	Style       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (pinRow) TableName() string { return "recipe_pins" }

type productRow struct {
	ID           string `gorm:"primaryKey"`
	Slug         string
	Title        string
	Brand        string
	Description  string
	Summary      string
	PriceCents   int64
	Currency     string
	AffiliateURL string `gorm:"column:affiliate_url"`
	ImageURL     string `gorm:"column:image_url"`
	Published    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (productRow) TableName() string { return "products" }

type productTagRow struct {
	ProductID string `gorm:"primaryKey"`
	TagID     string `gorm:"primaryKey"`
	Position  int
}

func (productTagRow) TableName() string { return "product_tags" }

type tagGroupRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Slug      string
	Color     string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (tagGroupRow) TableName() string { return "tag_groups" }

type tagRow struct {
	ID        string `gorm:"primaryKey"`
	GroupID   *string
	Name      string
	Slug      string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (tagRow) TableName() string { return "tags" }

type collectionRow struct {
	ID          string `gorm:"primaryKey"`
	UserID      string
	Title       string
	Slug        string
	Description string
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (collectionRow) TableName() string { return "collections" }

type collectionProductRow struct {
	CollectionID string `gorm:"primaryKey"`
	ProductID    string `gorm:"primaryKey"`
	Position     int
}

func (collectionProductRow) TableName() string { return "collection_products" }

func toRecipeRow(r *domain.Recipe) recipeRow {
	return recipeRow{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		Published:   r.Published,
		PublishedAt: utcPtr(r.PublishedAt),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (row recipeRow) toDomain() *domain.Recipe {
	return &domain.Recipe{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Slug:        row.Slug,
		Description: row.Description,
		Images:      []domain.RecipeImage{},
		Published:   row.Published,
		PublishedAt: row.PublishedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toImageRow(img domain.RecipeImage) imageRow {
	return imageRow{
		ID:       img.ID,
		RecipeID: img.RecipeID,
		URL:      img.URL,
		Width:    img.Width,
		Height:   img.Height,
		BlurHash: img.BlurHash,
		Position: img.Position,
	}
}

func (row imageRow) toDomain() domain.RecipeImage {
	return domain.RecipeImage{
		ID:       row.ID,
		RecipeID: row.RecipeID,
		URL:      row.URL,
		Width:    row.Width,
		Height:   row.Height,
		BlurHash: row.BlurHash,
		Position: row.Position,
	}
}

func toPinRow(p *domain.RecipePin) (pinRow, error) {
	style, err := json.Marshal(p.PinStyle)
	if err != nil {
		return pinRow{}, fmt.Errorf("encode pin style: %w", err)
	}
	var productID *string
	if p.HasProduct() {
		v := *p.ProductID
		productID = &v
	}
	return pinRow{
		ID:          p.ID,
		RecipeID:    p.RecipeID,
		ProductID:   productID,
		Position:    p.Position,
		DotXPercent: p.DotXPercent,
		DotYPercent: p.DotYPercent,
		TagXPercent: p.TagXPercent,
		TagYPercent: p.TagYPercent,
		Style:       string(style),
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}, nil
}

// toDomain decodes the style loosely; a corrupt blob yields an empty style.
func (row pinRow) toDomain() *domain.RecipePin {
	p := &domain.RecipePin{
		ID:          row.ID,
		RecipeID:    row.RecipeID,
		ProductID:   row.ProductID,
		Position:    row.Position,
		DotXPercent: row.DotXPercent,
		DotYPercent: row.DotYPercent,
		TagXPercent: row.TagXPercent,
		TagYPercent: row.TagYPercent,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if style, err := pin.DecodeStyle([]byte(row.Style)); err == nil {
		p.PinStyle = style
	}
	return p
}

func toProductRow(p *domain.Product) productRow {
	return productRow{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Brand:        p.Brand,
		Description:  p.Description,
		Summary:      p.Summary,
		PriceCents:   p.PriceCents,
		Currency:     p.Currency,
		AffiliateURL: p.AffiliateURL,
		ImageURL:     p.ImageURL,
		Published:    p.Published,
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
	}
}

func (row productRow) toDomain() *domain.Product {
	return &domain.Product{
		ID:           row.ID,
		Slug:         row.Slug,
		Title:        row.Title,
		Brand:        row.Brand,
		Description:  row.Description,
		Summary:      row.Summary,
		PriceCents:   row.PriceCents,
		Currency:     row.Currency,
		AffiliateURL: row.AffiliateURL,
		ImageURL:     row.ImageURL,
		Published:    row.Published,
		TagIDs:       []string{},
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toTagGroupRow(g *domain.TagGroup) tagGroupRow {
	return tagGroupRow{
		ID:        g.ID,
		Name:      g.Name,
		Slug:      g.Slug,
		Color:     g.Color,
		Position:  g.Position,
		CreatedAt: g.CreatedAt.UTC(),
		UpdatedAt: g.UpdatedAt.UTC(),
	}
}

func (row tagGroupRow) toDomain() *domain.TagGroup {
	return &domain.TagGroup{
		ID:        row.ID,
		Name:      row.Name,
		Slug:      row.Slug,
		Color:     row.Color,
		Position:  row.Position,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toTagRow(t *domain.Tag) tagRow {
	return tagRow{
		ID:        t.ID,
		GroupID:   t.GroupID,
		Name:      t.Name,
		Slug:      t.Slug,
		Color:     t.Color,
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

func (row tagRow) toDomain() *domain.Tag {
	return &domain.Tag{
		ID:        row.ID,
		GroupID:   row.GroupID,
		Name:      row.Name,
		Slug:      row.Slug,
		Color:     row.Color,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toCollectionRow(c *domain.Collection) collectionRow {
	return collectionRow{
		ID:          c.ID,
		UserID:      c.UserID,
		Title:       c.Title,
		Slug:        c.Slug,
		Description: c.Description,
		Published:   c.Published,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func (row collectionRow) toDomain() *domain.Collection {
	return &domain.Collection{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Slug:        row.Slug,
		Description: row.Description,
		Published:   row.Published,
		ProductIDs:  []string{},
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
