// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/pantrymatch/server/internal/domain/pantry"
)

// CatalogFactory provides methods to create test ingredients and recipes
type CatalogFactory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewCatalogFactory creates a new catalogue factory with seeded faker
func NewCatalogFactory(seed int64) *CatalogFactory {
	return &CatalogFactory{
		faker: gofakeit.New(seed),
	}
}

// Ingredient creates an ingredient with a unique canonical name and a couple
// of aliases. The canonical name is always one of the aliases.
func (f *CatalogFactory) Ingredient() pantry.Ingredient {
	f.seq++
	name := fmt.Sprintf("%s %d", f.faker.Vegetable(), f.seq)
	return pantry.Ingredient{
		ID:            uuid.NewString(),
		CanonicalName: pantry.NormalizeKey(name),
		Aliases: []string{
			pantry.NormalizeKey(name),
			pantry.NormalizeKey(name + "s"),
		},
	}
}

// Ingredients creates n distinct ingredients
func (f *CatalogFactory) Ingredients(n int) []pantry.Ingredient {
	out := make([]pantry.Ingredient, n)
	for i := range out {
		out[i] = f.Ingredient()
	}
	return out
}

// Recipe starts a builder with a random title and description
func (f *CatalogFactory) Recipe() *RecipeBuilder {
	return NewRecipeBuilder(uuid.NewString()).
		WithTitle(f.faker.Sentence(3)).
		WithDescription(f.faker.Sentence(8)).
		WithTime(f.faker.Number(5, 90))
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	recipe pantry.Recipe
}

// NewRecipeBuilder creates an active recipe with the given id
func NewRecipeBuilder(id string) *RecipeBuilder {
	return &RecipeBuilder{
		recipe: pantry.Recipe{
			ID:       id,
			Title:    id,
			IsActive: true,
			Steps:    []string{},
		},
	}
}

// WithTitle sets the title
func (rb *RecipeBuilder) WithTitle(title string) *RecipeBuilder {
	rb.recipe.Title = title
	return rb
}

// WithDescription sets the description
func (rb *RecipeBuilder) WithDescription(description string) *RecipeBuilder {
	rb.recipe.Description = &description
	return rb
}

// WithTime sets the preparation time in minutes
func (rb *RecipeBuilder) WithTime(minutes int) *RecipeBuilder {
	rb.recipe.TimeMinutes = &minutes
	return rb
}

// WithDifficulty sets the difficulty
func (rb *RecipeBuilder) WithDifficulty(d pantry.Difficulty) *RecipeBuilder {
	rb.recipe.Difficulty = &d
	return rb
}

// WithSteps sets the ordered steps
func (rb *RecipeBuilder) WithSteps(steps ...string) *RecipeBuilder {
	rb.recipe.Steps = steps
	return rb
}

// Requires appends required ingredient links
func (rb *RecipeBuilder) Requires(ingredients ...pantry.Ingredient) *RecipeBuilder {
	for _, ing := range ingredients {
		rb.recipe.Ingredients = append(rb.recipe.Ingredients, pantry.RecipeIngredient{
			IngredientID: ing.ID,
			Ingredient:   ing,
		})
	}
	return rb
}

// Optionally appends optional ingredient links
func (rb *RecipeBuilder) Optionally(ingredients ...pantry.Ingredient) *RecipeBuilder {
	for _, ing := range ingredients {
		rb.recipe.Ingredients = append(rb.recipe.Ingredients, pantry.RecipeIngredient{
			IngredientID: ing.ID,
			Ingredient:   ing,
			Optional:     true,
		})
	}
	return rb
}

// Inactive marks the recipe as hidden from matching
func (rb *RecipeBuilder) Inactive() *RecipeBuilder {
	rb.recipe.IsActive = false
	return rb
}

// Build returns a copy of the recipe
func (rb *RecipeBuilder) Build() *pantry.Recipe {
	r := rb.recipe
	r.Ingredients = append([]pantry.RecipeIngredient(nil), rb.recipe.Ingredients...)
	r.Steps = append([]string{}, rb.recipe.Steps...)
	return &r
}

// AliasMatches expands ingredients into the rows an alias lookup would return
// for the given normalized names
func AliasMatches(ingredients []pantry.Ingredient, names []string) []pantry.AliasMatch {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	var out []pantry.AliasMatch
	for _, ing := range ingredients {
		for _, alias := range ing.Aliases {
			if _, ok := wanted[alias]; ok {
				out = append(out, pantry.AliasMatch{Alias: alias, Ingredient: ing})
			}
		}
	}
	return out
}

// SampleCatalog returns the starter catalogue keyed by id
func SampleCatalog() (map[string]pantry.Ingredient, map[string]*pantry.Recipe) {
	ingredients, recipes := pantry.SampleCatalog()
	ings := make(map[string]pantry.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		ings[ing.ID] = ing
	}
	recs := make(map[string]*pantry.Recipe, len(recipes))
	for i := range recipes {
		recs[recipes[i].ID] = &recipes[i]
	}
	return ings, recs
}
