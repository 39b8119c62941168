package api

import (
	"github.com/pinshelf/pinshelf-server/internal/auth"
	"github.com/pinshelf/pinshelf-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Recipe     *service.RecipeService
	Pin        *service.PinService
	Product    *service.ProductService
	Tag        *service.TagService
	Collection *service.CollectionService
	Storefront *service.StorefrontService
	Search     *service.SearchService
	Tokens     *auth.TokenService // verifies owner bearer tokens
}
