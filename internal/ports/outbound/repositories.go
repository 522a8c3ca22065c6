// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to reach the catalogue store
package outbound

import (
	"context"
	"time"

	"github.com/pantrymatch/server/internal/domain/pantry"
)

// AliasRepository resolves normalized alias keys to canonical ingredients.
// Lookup is exact match on the stored (already normalized) alias.
type AliasRepository interface {
	FindByNames(ctx context.Context, names []string) ([]pantry.AliasMatch, error)
}

// RecipeOverlap is one row of the overlap ranking: how many of the pantry's
// ingredients a recipe references.
type RecipeOverlap struct {
	RecipeID   string
	MatchCount int
}

// RecipeRepository defines the interface for recipe persistence
type RecipeRepository interface {
	// RankByIngredientOverlap counts, per recipe, the links whose ingredient is
	// in ingredientIDs. Rows are ordered by count descending then recipe id and
	// capped at limit. Inactive recipes are counted too.
	RankByIngredientOverlap(ctx context.Context, ingredientIDs []string, limit int) ([]RecipeOverlap, error)

	// FindActiveByIDs loads the active recipes among ids with their ingredient
	// links, each link's ingredient and the ordered steps.
	FindActiveByIDs(ctx context.Context, ids []string) ([]*pantry.Recipe, error)

	// FindActiveByID returns nil, nil when the recipe is missing or inactive.
	FindActiveByID(ctx context.Context, id string) (*pantry.Recipe, error)
}

// IngredientRepository lists the canonical ingredient catalogue
type IngredientRepository interface {
	List(ctx context.Context) ([]pantry.Ingredient, error)
}

// SuggestionMetrics records matcher outcomes
type SuggestionMetrics interface {
	RecordSuggestion(resolved, candidates, returned int, duration time.Duration, err error)
}
