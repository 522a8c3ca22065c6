// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/pantrymatch/server/internal/domain/pantry"
)

// SuggestionService defines the pantry matching use cases.
// HTTP handlers and other driving adapters only talk to this port.
type SuggestionService interface {
	// SuggestRecipes ranks active recipes by how well they match the raw
	// pantry items. Unknown items are ignored; an empty result is not an error.
	SuggestRecipes(ctx context.Context, items []pantry.Item, opts SuggestOptions) ([]pantry.Suggestion, error)

	// GetRecipe returns an active recipe with its steps and ingredients
	GetRecipe(ctx context.Context, id string) (*pantry.Recipe, error)

	// ListIngredients returns the canonical ingredient catalogue
	ListIngredients(ctx context.Context) ([]pantry.Ingredient, error)
}

// SuggestOptions tunes a single suggestion run
type SuggestOptions struct {
	// MaxResults caps the number of suggestions. Zero or less means the
	// matcher default.
	MaxResults int
}
