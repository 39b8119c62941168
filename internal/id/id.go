// Package id generates prefixed identifiers for catalog entities.
//
// An ID is "<prefix>-<nanoid>", where the nanoid part is 21 characters of the
// URL-safe alphabet, e.g. "rcp-V1StGXR8_Z5jdHi6B-myT".
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes.
const (
	PrefixRecipe      = "rcp"
	PrefixRecipeImage = "img"
	PrefixPin         = "pin"
	PrefixProduct     = "prd"
	PrefixTag         = "tag"
	PrefixTagGroup    = "tgp"
	PrefixCollection  = "col"
)

const nanoidLength = 21

// Generate returns a new ID with the given prefix. It fails only when the
// system random source does.
func Generate(prefix string) (string, error) {
	suffix, err := gonanoid.New(nanoidLength)
	if err != nil {
		return "", fmt.Errorf("generate %s id: %w", prefix, err)
	}
	return prefix + "-" + suffix, nil
}

// HasPrefix reports whether s has the shape of an ID with the given prefix.
// Handlers use it to tell an ID from a slug in "{idOrSlug}" path params.
func HasPrefix(s, prefix string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"-")
	return ok && len(rest) == nanoidLength
}
