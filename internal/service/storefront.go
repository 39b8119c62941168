package service

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/pinshelf/pinshelf-server/internal/domain"
	domainerrors "github.com/pinshelf/pinshelf-server/internal/errors"
	"github.com/pinshelf/pinshelf-server/internal/id"
	"github.com/pinshelf/pinshelf-server/internal/pin"
	"github.com/pinshelf/pinshelf-server/internal/preview"
	"github.com/pinshelf/pinshelf-server/internal/search"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// Product view modes for ListProducts.
const (
	ViewShallow = "shallow"
	ViewDeep    = "deep"
)

// defaultPreviewWidth is used when neither the request nor the base image
// carries a width.
const defaultPreviewWidth = 800

// ImageLoader decodes a recipe image. *images.Fetcher implements it.
type ImageLoader interface {
	Load(ctx context.Context, imageID, url string) (image.Image, error)
}

// RecipeSummary is the shallow public shape of a recipe.
type RecipeSummary struct {
	ID          string              `json:"id"`
	Slug        string              `json:"slug"`
	Title       string              `json:"title"`
	BaseImage   *domain.RecipeImage `json:"baseImage,omitempty"`
	PublishedAt *time.Time          `json:"publishedAt,omitempty"`
}

// PublicRecipe is a published recipe without owner details.
type PublicRecipe struct {
	ID          string               `json:"id"`
	Slug        string               `json:"slug"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Images      []domain.RecipeImage `json:"images"`
	PublishedAt *time.Time           `json:"publishedAt,omitempty"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// RecipeView is the storefront payload of one recipe at one rendered width.
// Overlay is set only for a positive width on a recipe with a base image.
type RecipeView struct {
	Recipe  PublicRecipe             `json:"recipe"`
	Pins    []pin.Pin                `json:"pins"`
	Items   []domain.ProductSnapshot `json:"items"`
	Width   int                      `json:"width"`
	Overlay *pin.Overlay             `json:"overlay,omitempty"`
}

// ProductView is a public product. Deep fields are empty in the shallow view.
type ProductView struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Brand        string `json:"brand,omitempty"`
	Summary      string `json:"summary,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	AffiliateURL string `json:"affiliateUrl,omitempty"`
	PriceCents   int64  `json:"priceCents"`
	Currency     string `json:"currency"`

	Description string        `json:"description,omitempty"`
	Tags        []*domain.Tag `json:"tags,omitempty"`
	RecipeIDs   []string      `json:"recipeIds,omitempty"`
}

// CollectionView is a published collection with its published products.
type CollectionView struct {
	ID          string        `json:"id"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Products    []ProductView `json:"products"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TagsView lists tag groups and tags for storefront navigation.
type TagsView struct {
	Groups []*domain.TagGroup `json:"groups"`
	Tags   []*domain.Tag      `json:"tags"`
}

// StorefrontService serves the read-only public catalog. Drafts are reported
// as not found.
type StorefrontService struct {
	store    store.Store
	views    *ViewCache
	renderer *pin.Renderer
	preview  *preview.Renderer
	loader   ImageLoader
	search   *SearchService
	maxWidth int
	logger   *slog.Logger
}

// StorefrontOptions configures a StorefrontService.
type StorefrontOptions struct {
	Preview  *preview.Renderer // nil disables PNG previews
	Loader   ImageLoader       // nil draws previews on a blank canvas
	MaxWidth int               // largest accepted rendered width
}

// NewStorefrontService creates a new storefront service.
func NewStorefrontService(st store.Store, views *ViewCache, search *SearchService, opts StorefrontOptions, logger *slog.Logger) *StorefrontService {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = preview.MaxWidth
	}
	return &StorefrontService{
		store:    st,
		views:    views,
		renderer: pin.NewRenderer(),
		preview:  opts.Preview,
		loader:   opts.Loader,
		search:   search,
		maxWidth: opts.MaxWidth,
		logger:   logger,
	}
}

// ListRecipes pages published recipes in their shallow form.
func (s *StorefrontService) ListRecipes(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[RecipeSummary], error) {
	page, err := s.store.ListPublishedRecipes(ctx, params)
	if err != nil {
		return nil, storeError(err, "recipe")
	}
	items := make([]RecipeSummary, len(page.Items))
	for i, r := range page.Items {
		items[i] = RecipeSummary{
			ID:          r.ID,
			Slug:        r.Slug,
			Title:       r.Title,
			BaseImage:   r.BaseImage(),
			PublishedAt: r.PublishedAt,
		}
	}
	return &store.PaginatedResult[RecipeSummary]{
		Items:      items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
		Total:      page.Total,
	}, nil
}

// GetRecipe returns the view of a published recipe at width. A width of zero
// returns pins and items without an overlay.
func (s *StorefrontService) GetRecipe(ctx context.Context, idOrSlug string, width int) (*RecipeView, error) {
	if err := s.checkWidth(width); err != nil {
		return nil, err
	}
	r, err := s.publishedRecipe(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	key := s.views.key(r.ID, width)
	if view, ok := s.views.recipeView(ctx, key); ok {
		return view, nil
	}

	view, err := s.buildView(ctx, r, width)
	if err != nil {
		return nil, err
	}
	s.views.storeRecipeView(ctx, key, view)
	return view, nil
}

// RenderPage writes the HTML page of a published recipe. Without a width the
// overlay is deferred and the page shows the base image alone.
func (s *StorefrontService) RenderPage(ctx context.Context, w io.Writer, idOrSlug string, width int) error {
	view, err := s.GetRecipe(ctx, idOrSlug, width)
	if err != nil {
		return err
	}
	overlay := view.Overlay
	if overlay == nil {
		base := view.baseImage()
		if base == nil {
			return domainerrors.NotFound("recipe has no image")
		}
		overlay = s.renderer.Render(pin.Input{Image: *base, Pins: view.Pins, Items: view.Items})
	}
	return writePage(w, view, overlay)
}

// RenderPreview writes a PNG of a published recipe with its pins. A zero
// width uses the base image's intrinsic width, capped at the maximum.
func (s *StorefrontService) RenderPreview(ctx context.Context, w io.Writer, idOrSlug string, width int) error {
	if s.preview == nil {
		return domainerrors.Internal("preview rendering is not configured")
	}
	if err := s.checkWidth(width); err != nil {
		return err
	}
	r, err := s.publishedRecipe(ctx, idOrSlug)
	if err != nil {
		return err
	}
	base := r.BaseImage()
	if base == nil {
		return domainerrors.NotFound("recipe has no image")
	}
	if width == 0 {
		width = min(base.Width, s.maxWidth)
		if width <= 0 {
			width = defaultPreviewWidth
		}
	}

	view, err := s.GetRecipe(ctx, r.ID, width)
	if err != nil {
		return err
	}
	err = s.preview.EncodePNG(w, s.loadBase(ctx, base), view.Overlay)
	if errors.Is(err, preview.ErrTooLarge) {
		return domainerrors.Validationf("preview of %dx%d image at width %d is too large", base.Width, base.Height, width).WithCause(err)
	}
	return err
}

// ListProducts returns published products, optionally filtered by tag slug.
func (s *StorefrontService) ListProducts(ctx context.Context, view, tagSlug string) ([]ProductView, error) {
	if view == "" {
		view = ViewShallow
	}
	if view != ViewShallow && view != ViewDeep {
		return nil, domainerrors.Validationf("view must be %q or %q", ViewShallow, ViewDeep)
	}

	filter := store.ProductFilter{PublishedOnly: true}
	if tagSlug != "" {
		tag, err := s.store.GetTagBySlug(ctx, tagSlug)
		if err != nil {
			return nil, storeError(err, "tag")
		}
		filter.TagID = tag.ID
	}
	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]ProductView, len(products))
	if view == ViewShallow {
		for i, p := range products {
			out[i] = shallowProduct(p)
		}
		return out, nil
	}

	tags, err := s.tagsByID(ctx)
	if err != nil {
		return nil, err
	}
	for i, p := range products {
		if out[i], err = s.deepProduct(ctx, p, tags); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetProduct returns the deep view of a published product.
func (s *StorefrontService) GetProduct(ctx context.Context, idOrSlug string) (*ProductView, error) {
	var (
		p   *domain.Product
		err error
	)
	if id.HasPrefix(idOrSlug, id.PrefixProduct) {
		p, err = s.store.GetProduct(ctx, idOrSlug)
	} else {
		p, err = s.store.GetProductBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, storeError(err, "product")
	}
	if !p.Published {
		return nil, domainerrors.NotFound("product not found")
	}

	tags, err := s.tagsByID(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.deepProduct(ctx, p, tags)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListCollections returns published collections without their products.
func (s *StorefrontService) ListCollections(ctx context.Context) ([]CollectionView, error) {
	collections, err := s.store.ListPublishedCollections(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CollectionView, len(collections))
	for i, c := range collections {
		out[i] = collectionView(c, []ProductView{})
	}
	return out, nil
}

// GetCollection returns a published collection with its published products in
// collection order.
func (s *StorefrontService) GetCollection(ctx context.Context, slug string) (*CollectionView, error) {
	c, err := s.store.GetCollectionBySlug(ctx, slug)
	if err != nil {
		return nil, storeError(err, "collection")
	}
	if !c.Published {
		return nil, domainerrors.NotFound("collection not found")
	}

	products, err := s.publishedProducts(ctx, c.ProductIDs)
	if err != nil {
		return nil, err
	}
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = shallowProduct(p)
	}
	view := collectionView(c, views)
	return &view, nil
}

// ListTags returns every tag group and tag.
func (s *StorefrontService) ListTags(ctx context.Context) (*TagsView, error) {
	groups, err := s.store.ListTagGroups(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return &TagsView{Groups: groups, Tags: tags}, nil
}

// Search queries the storefront index.
func (s *StorefrontService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.search.Search(ctx, params)
}

func (s *StorefrontService) checkWidth(width int) error {
	if width < 0 || width > s.maxWidth {
		return domainerrors.Validationf("width must be between 0 and %d", s.maxWidth)
	}
	return nil
}

func (s *StorefrontService) publishedRecipe(ctx context.Context, idOrSlug string) (*domain.Recipe, error) {
	var (
		r   *domain.Recipe
		err error
	)
	if id.HasPrefix(idOrSlug, id.PrefixRecipe) {
		r, err = s.store.GetRecipe(ctx, idOrSlug)
	} else {
		r, err = s.store.GetRecipeBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, storeError(err, "recipe")
	}
	if !r.Published {
		return nil, domainerrors.NotFound("recipe not found")
	}
	return r, nil
}

func (s *StorefrontService) buildView(ctx context.Context, r *domain.Recipe, width int) (*RecipeView, error) {
	stored, err := s.store.ListPins(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	raw := make([]domain.RecipePin, len(stored))
	var productIDs []string
	seen := make(map[string]bool)
	for i, p := range stored {
		raw[i] = *p
		if pid := p.LinkedProductID(); pid != "" && !seen[pid] {
			seen[pid] = true
			productIDs = append(productIDs, pid)
		}
	}

	// Draft products are left out of Items, so pins linking them render inert.
	products, err := s.publishedProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ProductSnapshot, len(products))
	for i, p := range products {
		items[i] = p.Snapshot()
	}

	view := &RecipeView{
		Recipe: PublicRecipe{
			ID:          r.ID,
			Slug:        r.Slug,
			Title:       r.Title,
			Description: r.Description,
			Images:      r.Images,
			PublishedAt: r.PublishedAt,
			UpdatedAt:   r.UpdatedAt,
		},
		Pins:  pin.NormalizeAll(raw),
		Items: items,
		Width: width,
	}
	if base := r.BaseImage(); base != nil && width > 0 {
		view.Overlay = s.renderer.Render(pin.Input{
			Image:         *base,
			Pins:          view.Pins,
			Items:         view.Items,
			RenderedWidth: float64(width),
		})
	}
	return view, nil
}

// publishedProducts fetches ids and keeps the published ones in ids order.
func (s *StorefrontService) publishedProducts(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]*domain.Product, 0, len(ids))
	for _, pid := range ids {
		if p, ok := byID[pid]; ok && p.Published {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *StorefrontService) deepProduct(ctx context.Context, p *domain.Product, tags map[string]*domain.Tag) (ProductView, error) {
	view := shallowProduct(p)
	view.Description = p.Description
	view.Tags = make([]*domain.Tag, 0, len(p.TagIDs))
	for _, tagID := range p.TagIDs {
		if t, ok := tags[tagID]; ok {
			view.Tags = append(view.Tags, t)
		}
	}
	recipeIDs, err := s.store.ListRecipeIDsByProduct(ctx, p.ID, true)
	if err != nil {
		return ProductView{}, err
	}
	view.RecipeIDs = recipeIDs
	return view, nil
}

func (s *StorefrontService) tagsByID(ctx context.Context) (map[string]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}
	return byID, nil
}

// loadBase returns the decoded base image, or nil to draw on a blank canvas.
func (s *StorefrontService) loadBase(ctx context.Context, base *domain.RecipeImage) image.Image {
	if s.loader == nil {
		return nil
	}
	img, err := s.loader.Load(ctx, base.ID, base.URL)
	if err != nil {
		s.logger.Warn("failed to load base image for preview", "image_id", base.ID, "error", err)
		return nil
	}
	return img
}

func (v *RecipeView) baseImage() *domain.RecipeImage {
	if len(v.Recipe.Images) == 0 {
		return nil
	}
	return &v.Recipe.Images[0]
}

func shallowProduct(p *domain.Product) ProductView {
	return ProductView{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Brand:        p.Brand,
		Summary:      p.Summary,
		ImageURL:     p.ImageURL,
		AffiliateURL: p.AffiliateURL,
		PriceCents:   p.PriceCents,
		Currency:     p.Currency,
	}
}

func collectionView(c *domain.Collection, products []ProductView) CollectionView {
	return CollectionView{
		ID:          c.ID,
		Slug:        c.Slug,
		Title:       c.Title,
		Description: c.Description,
		Products:    products,
		UpdatedAt:   c.UpdatedAt,
	}
}
