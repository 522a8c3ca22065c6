// Package pantry contains the ingredient-matching domain: the catalogue
// entities, the ingredient key normalizer and the recipe scorer.
package pantry

// Ingredient is a canonical pantry item. Every alias resolves to exactly one
// ingredient.
type Ingredient struct {
	ID            string
	CanonicalName string
	Aliases       []string
}

// RecipeIngredient links a recipe to an ingredient of the catalogue.
type RecipeIngredient struct {
	IngredientID string
	Ingredient   Ingredient
	Amount       *float64
	Unit         *string
	Optional     bool
}

// Recipe is an immutable input to a scoring pass.
type Recipe struct {
	ID          string
	Title       string
	Description *string
	TimeMinutes *int
	Difficulty  *Difficulty
	IsActive    bool
	Steps       []string
	Ingredients []RecipeIngredient
}

// Required returns the links that gate eligibility, in recipe order.
func (r *Recipe) Required() []RecipeIngredient {
	out := make([]RecipeIngredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if !ing.Optional {
			out = append(out, ing)
		}
	}
	return out
}

// OptionalIngredients returns the garnish-class links, in recipe order.
func (r *Recipe) OptionalIngredients() []RecipeIngredient {
	out := make([]RecipeIngredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if ing.Optional {
			out = append(out, ing)
		}
	}
	return out
}

// Item is a raw pantry entry as typed by the user. It is not yet resolved to
// an ingredient.
type Item struct {
	Name string
	Qty  *float64
	Unit string
}

// ResolvedIngredient is a pantry entry that matched an alias.
type ResolvedIngredient struct {
	IngredientID string
	Name         string
}

// AliasMatch pairs a stored alias with the ingredient that owns it.
type AliasMatch struct {
	Alias      string
	Ingredient Ingredient
}

// UsedIngredient is an ingredient of a suggestion that the pantry covers.
type UsedIngredient struct {
	Name string
}

// MissingIngredient is an ingredient of a suggestion that the pantry lacks.
type MissingIngredient struct {
	Name     string
	Optional bool
}

// Suggestion is one ranked recipe returned by the matcher.
type Suggestion struct {
	ID                 string
	Title              string
	Score              float64
	Description        *string
	TimeMinutes        *int
	Difficulty         *Difficulty
	Steps              []string
	UsedIngredients    []UsedIngredient
	MissingIngredients []MissingIngredient
}
