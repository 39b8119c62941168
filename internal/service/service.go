// Package service holds the catalog's business logic. Services enforce
// ownership and validation on top of the store, then keep the derived state in
// step: search documents, cached storefront payloads and SSE events.
package service

import (
	"errors"
	"time"

	domainerrors "github.com/pinshelf/pinshelf-server/internal/errors"
	"github.com/pinshelf/pinshelf-server/internal/sse"
	"github.com/pinshelf/pinshelf-server/internal/store"
	"github.com/pinshelf/pinshelf-server/internal/util"
)

// Emitter receives catalog change events. *sse.Manager implements it.
type Emitter interface {
	Emit(event sse.Event)
}

// NopEmitter drops every event.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(sse.Event) {}

// maxSlugAttempts bounds the numeric suffixes tried for a derived slug.
const maxSlugAttempts = 20

// storeError converts store sentinels into domain errors naming entity.
func storeError(err error, entity string) error {
	var domainErr *domainerrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", entity)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExistsf("%s already exists", entity).WithCause(err)
	case errors.Is(err, store.ErrMissingReference):
		return domainerrors.Validationf("%s references a missing resource", entity).WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation(err.Error())
	default:
		return err
	}
}

// insertWithSlug runs insert with slug, or with a slug derived from title when
// slug is empty. A derived slug that collides is retried with a numeric
// suffix; an explicit one is reported as a conflict.
func insertWithSlug(slug, title string, insert func(slug string) error) error {
	if slug != "" {
		return insert(slug)
	}

	base := util.Slugify(title)
	if base == "" {
		return domainerrors.Validation("title must contain letters or digits")
	}
	var err error
	for n := 1; n <= maxSlugAttempts; n++ {
		err = insert(util.SlugWithSuffix(base, n))
		if !errors.Is(err, store.ErrAlreadyExists) {
			return err
		}
	}
	return err
}

// now is the service clock. Stored timestamps are UTC.
func now() time.Time {
	return time.Now().UTC()
}
