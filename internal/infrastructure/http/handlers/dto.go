package handlers

import (
	"github.com/pantrymatch/server/internal/domain/pantry"
)

// SuggestRequest is the body of POST /api/v1/recipes/suggest
type SuggestRequest struct {
	Items      []PantryItemRequest `json:"items" validate:"max=100,dive"`
	MaxResults *int                `json:"maxResults,omitempty"`
}

// PantryItemRequest is one raw pantry entry
type PantryItemRequest struct {
	Name string   `json:"name" validate:"required,notblank,max=200"`
	Qty  *float64 `json:"qty,omitempty" validate:"omitempty,gte=0"`
	Unit string   `json:"unit,omitempty" validate:"max=32"`
}

// SuggestResponse wraps the ranked suggestions
type SuggestResponse struct {
	Recipes []SuggestedRecipe `json:"recipes"`
}

// SuggestedRecipe is the wire form of a suggestion
type SuggestedRecipe struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Score              float64             `json:"score"`
	Description        *string             `json:"description,omitempty"`
	TimeMinutes        *int                `json:"timeMinutes,omitempty"`
	Difficulty         *string             `json:"difficulty,omitempty"`
	Steps              []string            `json:"steps"`
	UsedIngredients    []UsedIngredient    `json:"usedIngredients"`
	MissingIngredients []MissingIngredient `json:"missingIngredients"`
}

type UsedIngredient struct {
	Name string `json:"name"`
}

type MissingIngredient struct {
	Name     string `json:"name"`
	Optional bool   `json:"optional"`
}

// RecipeResponse is the recipe detail view
type RecipeResponse struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Description *string                  `json:"description,omitempty"`
	TimeMinutes *int                     `json:"timeMinutes,omitempty"`
	Difficulty  *string                  `json:"difficulty,omitempty"`
	Steps       []string                 `json:"steps"`
	Ingredients []RecipeIngredientResult `json:"ingredients"`
}

type RecipeIngredientResult struct {
	IngredientID string   `json:"ingredientId"`
	Name         string   `json:"name"`
	Amount       *float64 `json:"amount,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	Optional     bool     `json:"optional"`
}

// IngredientListResponse is the canonical catalogue
type IngredientListResponse struct {
	Ingredients []IngredientResult `json:"ingredients"`
}

type IngredientResult struct {
	ID            string   `json:"id"`
	CanonicalName string   `json:"canonicalName"`
	Aliases       []string `json:"aliases"`
}

func (r SuggestRequest) toItems() []pantry.Item {
	items := make([]pantry.Item, len(r.Items))
	for i, it := range r.Items {
		items[i] = pantry.Item{Name: it.Name, Qty: it.Qty, Unit: it.Unit}
	}
	return items
}

func toSuggestedRecipes(suggestions []pantry.Suggestion) []SuggestedRecipe {
	out := make([]SuggestedRecipe, len(suggestions))
	for i, s := range suggestions {
		used := make([]UsedIngredient, len(s.UsedIngredients))
		for j, u := range s.UsedIngredients {
			used[j] = UsedIngredient{Name: u.Name}
		}
		missing := make([]MissingIngredient, len(s.MissingIngredients))
		for j, m := range s.MissingIngredients {
			missing[j] = MissingIngredient{Name: m.Name, Optional: m.Optional}
		}
		steps := s.Steps
		if steps == nil {
			steps = []string{}
		}

		out[i] = SuggestedRecipe{
			ID:                 s.ID,
			Title:              s.Title,
			Score:              s.Score,
			Description:        s.Description,
			TimeMinutes:        s.TimeMinutes,
			Difficulty:         difficultyString(s.Difficulty),
			Steps:              steps,
			UsedIngredients:    used,
			MissingIngredients: missing,
		}
	}
	return out
}

func toRecipeResponse(r *pantry.Recipe) RecipeResponse {
	steps := r.Steps
	if steps == nil {
		steps = []string{}
	}
	ingredients := make([]RecipeIngredientResult, len(r.Ingredients))
	for i, link := range r.Ingredients {
		ingredients[i] = RecipeIngredientResult{
			IngredientID: link.IngredientID,
			Name:         link.Ingredient.CanonicalName,
			Amount:       link.Amount,
			Unit:         link.Unit,
			Optional:     link.Optional,
		}
	}
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		TimeMinutes: r.TimeMinutes,
		Difficulty:  difficultyString(r.Difficulty),
		Steps:       steps,
		Ingredients: ingredients,
	}
}

func toIngredientResults(ingredients []pantry.Ingredient) []IngredientResult {
	out := make([]IngredientResult, len(ingredients))
	for i, ing := range ingredients {
		aliases := ing.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		out[i] = IngredientResult{ID: ing.ID, CanonicalName: ing.CanonicalName, Aliases: aliases}
	}
	return out
}

func difficultyString(d *pantry.Difficulty) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
