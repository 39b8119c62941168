package main

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/pinshelf/pinshelf-server/internal/pin"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

// seedFile is the YAML layout accepted by `pinctl seed`. Groups and tags are
// referenced by name, products by key; a product's key defaults to its title.
type seedFile struct {
	Owner       string           `yaml:"owner"`
	TagGroups   []seedTagGroup   `yaml:"tagGroups"`
	Tags        []seedTag        `yaml:"tags"`
	Products    []seedProduct    `yaml:"products"`
	Recipes     []seedRecipe     `yaml:"recipes"`
	Collections []seedCollection `yaml:"collections"`
}

type seedTagGroup struct {
	Name     string `yaml:"name"`
	Slug     string `yaml:"slug"`
	Color    string `yaml:"color"`
	Position int    `yaml:"position"`
}

type seedTag struct {
	Name  string `yaml:"name"`
	Slug  string `yaml:"slug"`
	Color string `yaml:"color"`
	Group string `yaml:"group"`
}

type seedProduct struct {
	Key          string   `yaml:"key"`
	Title        string   `yaml:"title"`
	Slug         string   `yaml:"slug"`
	Brand        string   `yaml:"brand"`
	Description  string   `yaml:"description"`
	PriceCents   int64    `yaml:"priceCents"`
	Currency     string   `yaml:"currency"`
	AffiliateURL string   `yaml:"affiliateUrl"`
	ImageURL     string   `yaml:"imageUrl"`
	Published    bool     `yaml:"published"`
	Tags         []string `yaml:"tags"`
}

type seedImage struct {
	URL    string `yaml:"url"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type seedRecipe struct {
	Title       string      `yaml:"title"`
	Slug        string      `yaml:"slug"`
	Description string      `yaml:"description"`
	Images      []seedImage `yaml:"images"`
	Published   bool        `yaml:"published"`
	// Pins are loosely typed: coordinates and style attributes use the same
	// names as the JSON API, plus an optional product key.
	Pins []map[string]any `yaml:"pins"`
}

type seedCollection struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Description string   `yaml:"description"`
	Published   bool     `yaml:"published"`
	Products    []string `yaml:"products"`
}

// seedServices is the part of the service layer the seeder writes through.
type seedServices struct {
	Tag        *service.TagService
	Product    *service.ProductService
	Recipe     *service.RecipeService
	Pin        *service.PinService
	Collection *service.CollectionService
}

// seedSummary counts what a seed run created.
type seedSummary struct {
	Tags        int
	Products    int
	Recipes     int
	Pins        int
	Collections int
}

func parseSeed(r io.Reader) (*seedFile, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// pinRequest turns a loosely typed pin entry into a PinRequest. The product
// key wins over a literal productId.
func pinRequest(raw map[string]any, productIDs map[string]string) (service.PinRequest, error) {
	rp := pin.PinFromMap(raw)
	req := service.PinRequest{
		ProductID:   rp.ProductID,
		DotXPercent: rp.DotXPercent,
		DotYPercent: rp.DotYPercent,
		TagXPercent: rp.TagXPercent,
		TagYPercent: rp.TagYPercent,
		Style:       rp.PinStyle,
	}

	key, ok := raw["product"].(string)
	if !ok || key == "" {
		return req, nil
	}
	id, ok := productIDs[key]
	if !ok {
		return req, fmt.Errorf("unknown product key %q", key)
	}
	req.ProductID = &id
	return req, nil
}

// seed creates everything in f in dependency order: tag groups and tags,
// products, recipes with their pins, then collections.
func seed(ctx context.Context, svc seedServices, f *seedFile, owner string) (seedSummary, error) {
	var sum seedSummary

	groupIDs := make(map[string]string, len(f.TagGroups))
	for _, sg := range f.TagGroups {
		g, err := svc.Tag.CreateTagGroup(ctx, service.TagGroupRequest{
			Name:     sg.Name,
			Slug:     sg.Slug,
			Color:    sg.Color,
			Position: sg.Position,
		})
		if err != nil {
			return sum, fmt.Errorf("tag group %q: %w", sg.Name, err)
		}
		groupIDs[sg.Name] = g.ID
	}

	tagIDs := make(map[string]string, len(f.Tags))
	for _, st := range f.Tags {
		req := service.TagRequest{Name: st.Name, Slug: st.Slug, Color: st.Color}
		if st.Group != "" {
			id, ok := groupIDs[st.Group]
			if !ok {
				return sum, fmt.Errorf("tag %q: unknown group %q", st.Name, st.Group)
			}
			req.GroupID = id
		}
		t, err := svc.Tag.CreateTag(ctx, req)
		if err != nil {
			return sum, fmt.Errorf("tag %q: %w", st.Name, err)
		}
		tagIDs[st.Name] = t.ID
		sum.Tags++
	}

	productIDs := make(map[string]string, len(f.Products))
	for _, sp := range f.Products {
		tags, err := resolveKeys(sp.Tags, tagIDs, "tag")
		if err != nil {
			return sum, fmt.Errorf("product %q: %w", sp.Title, err)
		}
		p, err := svc.Product.CreateProduct(ctx, service.CreateProductRequest{
			Title:        sp.Title,
			Slug:         sp.Slug,
			Brand:        sp.Brand,
			Description:  sp.Description,
			PriceCents:   sp.PriceCents,
			Currency:     sp.Currency,
			AffiliateURL: sp.AffiliateURL,
			ImageURL:     sp.ImageURL,
			Published:    sp.Published,
			TagIDs:       tags,
		})
		if err != nil {
			return sum, fmt.Errorf("product %q: %w", sp.Title, err)
		}
		key := sp.Key
		if key == "" {
			key = sp.Title
		}
		productIDs[key] = p.ID
		sum.Products++
	}

	for _, sr := range f.Recipes {
		images := make([]service.ImageRequest, 0, len(sr.Images))
		for _, img := range sr.Images {
			images = append(images, service.ImageRequest{URL: img.URL, Width: img.Width, Height: img.Height})
		}

		r, err := svc.Recipe.CreateRecipe(ctx, owner, service.CreateRecipeRequest{
			Title:       sr.Title,
			Slug:        sr.Slug,
			Description: sr.Description,
			Images:      images,
		})
		if err != nil {
			return sum, fmt.Errorf("recipe %q: %w", sr.Title, err)
		}
		sum.Recipes++

		reqs := make([]service.PinRequest, 0, len(sr.Pins))
		for n, raw := range sr.Pins {
			req, err := pinRequest(raw, productIDs)
			if err != nil {
				return sum, fmt.Errorf("recipe %q pin %d: %w", sr.Title, n, err)
			}
			reqs = append(reqs, req)
		}
		if len(reqs) > 0 {
			pins, err := svc.Pin.ReplacePins(ctx, owner, r.ID, reqs)
			if err != nil {
				return sum, fmt.Errorf("recipe %q pins: %w", sr.Title, err)
			}
			sum.Pins += len(pins)
		}

		if sr.Published {
			if _, err := svc.Recipe.SetPublished(ctx, owner, r.ID, true); err != nil {
				return sum, fmt.Errorf("publish recipe %q: %w", sr.Title, err)
			}
		}
	}

	for _, sc := range f.Collections {
		ids, err := resolveKeys(sc.Products, productIDs, "product")
		if err != nil {
			return sum, fmt.Errorf("collection %q: %w", sc.Title, err)
		}
		if _, err := svc.Collection.CreateCollection(ctx, owner, service.CollectionRequest{
			Title:       sc.Title,
			Slug:        sc.Slug,
			Description: sc.Description,
			Published:   sc.Published,
			ProductIDs:  ids,
		}); err != nil {
			return sum, fmt.Errorf("collection %q: %w", sc.Title, err)
		}
		sum.Collections++
	}

	return sum, nil
}

func resolveKeys(keys []string, ids map[string]string, kind string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		id, ok := ids[key]
		if !ok {
			return nil, fmt.Errorf("unknown %s key %q", kind, key)
		}
		out = append(out, id)
	}
	return out, nil
}
