// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"github.com/pantrymatch/server/internal/domain/pantry"
)

// IngredientToDomain converts an ingredient model to a domain ingredient.
// Aliases are only filled when they were preloaded.
func IngredientToDomain(m *IngredientModel) pantry.Ingredient {
	ing := pantry.Ingredient{
		ID:            m.ID,
		CanonicalName: m.CanonicalName,
	}
	if len(m.Aliases) > 0 {
		ing.Aliases = make([]string, len(m.Aliases))
		for i, a := range m.Aliases {
			ing.Aliases[i] = a.AliasName
		}
	}
	return ing
}

// IngredientToModel converts a domain ingredient with its aliases to a model.
// The canonical name is always stored as an alias as well.
func IngredientToModel(ing pantry.Ingredient) *IngredientModel {
	model := &IngredientModel{
		ID:            ing.ID,
		CanonicalName: pantry.NormalizeKey(ing.CanonicalName),
	}

	seen := make(map[string]struct{}, len(ing.Aliases)+1)
	for _, alias := range append([]string{ing.CanonicalName}, ing.Aliases...) {
		key := pantry.NormalizeKey(alias)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		model.Aliases = append(model.Aliases, IngredientAliasModel{
			AliasName:    key,
			IngredientID: ing.ID,
		})
	}
	return model
}

// RecipeToDomain converts a recipe model with preloaded links and steps
func RecipeToDomain(m *RecipeModel) *pantry.Recipe {
	r := &pantry.Recipe{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		TimeMinutes: m.TimeMinutes,
		IsActive:    m.IsActive,
		Steps:       make([]string, len(m.Steps)),
		Ingredients: make([]pantry.RecipeIngredient, len(m.Ingredients)),
	}
	if m.Difficulty != nil {
		r.Difficulty = pantry.ParseDifficulty(*m.Difficulty)
	}
	for i, s := range m.Steps {
		r.Steps[i] = s.Text
	}
	for i, link := range m.Ingredients {
		r.Ingredients[i] = pantry.RecipeIngredient{
			IngredientID: link.IngredientID,
			Ingredient:   IngredientToDomain(&link.Ingredient),
			Amount:       link.Amount,
			Unit:         link.Unit,
			Optional:     link.Optional,
		}
	}
	return r
}

// RecipeToModel converts a domain recipe to a model. Positions follow the
// slice order of steps and ingredient links.
func RecipeToModel(r *pantry.Recipe) *RecipeModel {
	model := &RecipeModel{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		TimeMinutes: r.TimeMinutes,
		IsActive:    r.IsActive,
	}
	if r.Difficulty != nil {
		d := r.Difficulty.String()
		model.Difficulty = &d
	}
	for i, text := range r.Steps {
		model.Steps = append(model.Steps, RecipeStepModel{
			RecipeID: r.ID,
			Position: i,
			Text:     text,
		})
	}
	for i, link := range r.Ingredients {
		model.Ingredients = append(model.Ingredients, RecipeIngredientModel{
			RecipeID:     r.ID,
			IngredientID: link.IngredientID,
			Position:     i,
			Amount:       link.Amount,
			Unit:         link.Unit,
			Optional:     link.Optional,
		})
	}
	return model
}
