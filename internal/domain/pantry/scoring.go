package pantry

import (
	"cmp"
	"slices"
)

// PantrySet is the set of ingredient ids available to a suggestion run.
type PantrySet map[string]struct{}

// NewPantrySet builds the pantry set from resolved ingredients
func NewPantrySet(resolved []ResolvedIngredient) PantrySet {
	set := make(PantrySet, len(resolved))
	for _, r := range resolved {
		set[r.IngredientID] = struct{}{}
	}
	return set
}

// Has reports whether the pantry holds the ingredient
func (p PantrySet) Has(ingredientID string) bool {
	_, ok := p[ingredientID]
	return ok
}

// ScoreRecipe scores one candidate against the pantry. The second return value
// is false when the recipe is not eligible, i.e. none of its required
// ingredients is in the pantry.
func ScoreRecipe(recipe *Recipe, pantry PantrySet) (Suggestion, bool) {
	required := recipe.Required()
	optional := recipe.OptionalIngredients()

	usedRequired, missingRequired := partition(required, pantry)
	usedOptional, missingOptional := partition(optional, pantry)

	if len(usedRequired) == 0 {
		return Suggestion{}, false
	}

	score := RequiredWeight*ratio(len(usedRequired), len(required)) +
		OptionalWeight*ratio(len(usedOptional), len(optional))

	used := make([]UsedIngredient, 0, len(usedRequired)+len(usedOptional))
	for _, link := range append(usedRequired, usedOptional...) {
		used = append(used, UsedIngredient{Name: link.Ingredient.CanonicalName})
	}

	missing := make([]MissingIngredient, 0, len(missingRequired)+len(missingOptional))
	for _, link := range append(missingRequired, missingOptional...) {
		missing = append(missing, MissingIngredient{
			Name:     link.Ingredient.CanonicalName,
			Optional: link.Optional,
		})
	}

	return Suggestion{
		ID:                 recipe.ID,
		Title:              recipe.Title,
		Score:              score,
		Description:        recipe.Description,
		TimeMinutes:        recipe.TimeMinutes,
		Difficulty:         recipe.Difficulty,
		Steps:              []string{},
		UsedIngredients:    used,
		MissingIngredients: missing,
	}, true
}

// Rank scores every candidate, drops ineligible recipes and returns at most
// maxResults suggestions ordered by score descending. Equal scores are ordered
// by recipe id so that results are reproducible. A non-positive maxResults
// falls back to DefaultMaxResults.
func Rank(resolved []ResolvedIngredient, candidates []*Recipe, maxResults int) []Suggestion {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	pantry := NewPantrySet(resolved)
	scored := make([]Suggestion, 0, len(candidates))
	for _, recipe := range candidates {
		if recipe == nil {
			continue
		}
		if s, ok := ScoreRecipe(recipe, pantry); ok {
			scored = append(scored, s)
		}
	}

	slices.SortStableFunc(scored, func(a, b Suggestion) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	return scored
}

func partition(links []RecipeIngredient, pantry PantrySet) (used, missing []RecipeIngredient) {
	for _, link := range links {
		if pantry.Has(link.IngredientID) {
			used = append(used, link)
		} else {
			missing = append(missing, link)
		}
	}
	return used, missing
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
