package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pinshelf/pinshelf-server/internal/errors"
	"github.com/pinshelf/pinshelf-server/internal/id"
	"github.com/pinshelf/pinshelf-server/internal/media/images"
	"github.com/pinshelf/pinshelf-server/internal/sse"
)

type stubProber struct {
	probe *images.Probe
	calls int
}

func (p *stubProber) Fetch(context.Context, string, string) (*images.Probe, error) {
	p.calls++
	return p.probe, nil
}

func TestRecipeService_CreateRecipe(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	r, err := env.recipes.CreateRecipe(ctx, ownerID, CreateRecipeRequest{
		Title:  "Desk Setup",
		Images: []ImageRequest{{URL: "https://cdn.example.com/desk.jpg", Width: 1600, Height: 1200}},
	})
	require.NoError(t, err)

	assert.True(t, id.HasPrefix(r.ID, id.PrefixRecipe))
	assert.Equal(t, "desk-setup", r.Slug)
	assert.False(t, r.Published)
	require.NotNil(t, r.BaseImage())
	assert.Equal(t, 1600, r.BaseImage().Width)
	assert.Equal(t, []sse.EventType{sse.EventRecipeCreated}, env.events.types())

	second, err := env.recipes.CreateRecipe(ctx, ownerID, CreateRecipeRequest{Title: "Desk Setup"})
	require.NoError(t, err)
	assert.Equal(t, "desk-setup-2", second.Slug)
}

func TestRecipeService_CreateRecipe_Validation(t *testing.T) {
	env := setupServices(t)

	_, err := env.recipes.CreateRecipe(context.Background(), ownerID, CreateRecipeRequest{
		Title:  "",
		Images: []ImageRequest{{URL: "not a url"}},
	})
	assertCode(t, err, domainerrors.CodeValidation)
}

func TestRecipeService_CreateRecipe_ProbesMissingDimensions(t *testing.T) {
	env := setupServices(t)
	prober := &stubProber{probe: &images.Probe{Width: 640, Height: 480, BlurHash: "LEHV6nWB2yk8"}}
	env.recipes.prober = prober

	r, err := env.recipes.CreateRecipe(context.Background(), ownerID, CreateRecipeRequest{
		Title: "Probed",
		Images: []ImageRequest{
			{URL: "https://cdn.example.com/a.jpg"},
			{URL: "https://cdn.example.com/b.jpg", Width: 100, Height: 100},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, prober.calls)
	assert.Equal(t, 640, r.Images[0].Width)
	assert.Equal(t, "LEHV6nWB2yk8", r.Images[0].BlurHash)
	assert.Equal(t, 100, r.Images[1].Width)
}

func TestRecipeService_OwnershipHidesOtherUsers(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	r, err := env.recipes.CreateRecipe(ctx, ownerID, CreateRecipeRequest{Title: "Mine"})
	require.NoError(t, err)

	_, err = env.recipes.GetRecipe(ctx, otherID, r.ID)
	assertCode(t, err, domainerrors.CodeNotFound)

	_, err = env.recipes.UpdateRecipe(ctx, otherID, r.ID, UpdateRecipeRequest{Title: strPtr("Theirs")})
	assertCode(t, err, domainerrors.CodeNotFound)

	assertCode(t, env.recipes.DeleteRecipe(ctx, otherID, r.ID), domainerrors.CodeNotFound)

	list, err := env.recipes.ListRecipes(ctx, otherID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecipeService_UpdateRecipe(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	r, err := env.recipes.CreateRecipe(ctx, ownerID, CreateRecipeRequest{Title: "Before", Description: "keep me"})
	require.NoError(t, err)

	updated, err := env.recipes.UpdateRecipe(ctx, ownerID, r.ID, UpdateRecipeRequest{Title: strPtr("After")})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, "keep me", updated.Description)
	assert.Equal(t, "before", updated.Slug)

	_, err = env.recipes.UpdateRecipe(ctx, ownerID, r.ID, UpdateRecipeRequest{Slug: strPtr("Not A Slug")})
	assertCode(t, err, domainerrors.CodeValidation)
}

func TestRecipeService_SetPublished(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	r, err := env.recipes.CreateRecipe(ctx, ownerID, CreateRecipeRequest{Title: "No Image"})
	require.NoError(t, err)

	_, err = env.recipes.SetPublished(ctx, ownerID, r.ID, true)
	assertCode(t, err, domainerrors.CodeValidation)

	_, err = env.recipes.SetImages(ctx, ownerID, r.ID, []ImageRequest{{URL: "https://cdn.example.com/x.png", Width: 10, Height: 10}})
	require.NoError(t, err)

	published, err := env.recipes.SetPublished(ctx, ownerID, r.ID, true)
	require.NoError(t, err)
	assert.True(t, published.Published)
	require.NotNil(t, published.PublishedAt)

	res, err := env.search.Search(ctx, searchQuery("image"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Total)

	draft, err := env.recipes.SetPublished(ctx, ownerID, r.ID, false)
	require.NoError(t, err)
	assert.False(t, draft.Published)

	res, err = env.search.Search(ctx, searchQuery("image"))
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestRecipeService_DeleteRecipe(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	r := env.createPublishedRecipe(t, "Gone Soon")

	require.NoError(t, env.recipes.DeleteRecipe(ctx, ownerID, r.ID))

	_, err := env.recipes.GetRecipe(ctx, ownerID, r.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
	_, err = env.storefront.GetRecipe(ctx, r.Slug, 0)
	assertCode(t, err, domainerrors.CodeNotFound)

	events := env.events.types()
	assert.Equal(t, sse.EventRecipeDeleted, events[len(events)-1])
}

func TestRecipeService_MeasureImages(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	// Created without a prober, so the image has no blurhash yet.
	r := env.createPublishedRecipe(t, "Unmeasured")
	require.Empty(t, r.Images[0].BlurHash)

	prober := &stubProber{probe: &images.Probe{Width: 1024, Height: 768, BlurHash: "LEHV6nWB2yk8"}}
	env.recipes.prober = prober

	n, err := env.recipes.MeasureImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := env.recipes.GetRecipe(ctx, ownerID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "LEHV6nWB2yk8", got.Images[0].BlurHash)
	// Author-supplied dimensions win over the probe.
	assert.Equal(t, 800, got.Images[0].Width)
	assert.Equal(t, 600, got.Images[0].Height)

	// A second pass has nothing left to do.
	n, err = env.recipes.MeasureImages(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, prober.calls)
}
