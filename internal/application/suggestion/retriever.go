package suggestion

import (
	"context"

	"github.com/pantrymatch/server/internal/domain/pantry"
	"github.com/pantrymatch/server/internal/ports/outbound"
	"github.com/pantrymatch/server/pkg/errors"
)

// CandidateRetriever finds active recipes sharing ingredients with the pantry
type CandidateRetriever struct {
	recipes outbound.RecipeRepository
	limit   int
}

// NewCandidateRetriever creates a retriever capped at limit candidates.
// A non-positive limit uses pantry.DefaultCandidateLimit.
func NewCandidateRetriever(recipes outbound.RecipeRepository, limit int) *CandidateRetriever {
	if limit <= 0 {
		limit = pantry.DefaultCandidateLimit
	}
	return &CandidateRetriever{recipes: recipes, limit: limit}
}

// FindCandidates runs the two-phase lookup: rank recipe ids by overlap, then
// load the active ones in full. Recipes without overlap never appear.
func (r *CandidateRetriever) FindCandidates(ctx context.Context, ingredientIDs []string) ([]*pantry.Recipe, error) {
	if len(ingredientIDs) == 0 {
		return []*pantry.Recipe{}, nil
	}

	overlaps, err := r.recipes.RankByIngredientOverlap(ctx, ingredientIDs, r.limit)
	if err != nil {
		return nil, errors.NewDatabaseError("rank recipes by ingredient overlap", err)
	}
	if len(overlaps) == 0 {
		return []*pantry.Recipe{}, nil
	}

	ids := make([]string, len(overlaps))
	for i, o := range overlaps {
		ids[i] = o.RecipeID
	}

	recipes, err := r.recipes.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, errors.NewDatabaseError("load candidate recipes", err)
	}
	return recipes, nil
}

// Limit returns the candidate cap in use
func (r *CandidateRetriever) Limit() int {
	return r.limit
}
