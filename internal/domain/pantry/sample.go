package pantry

// SampleCatalog returns the starter catalogue used for development and
// demo databases. Canonical names are listed among the aliases so that
// typing the canonical name resolves.
func SampleCatalog() ([]Ingredient, []Recipe) {
	ingredients := []Ingredient{
		{ID: "tomato", CanonicalName: "tomato", Aliases: []string{"tomato", "tomatoes", "roma tomato", "roma tomatoes"}},
		{ID: "pasta", CanonicalName: "pasta", Aliases: []string{"pasta", "spaghetti", "penne", "macaroni"}},
		{ID: "olive_oil", CanonicalName: "olive oil", Aliases: []string{"olive oil", "extra virgin olive oil"}},
		{ID: "garlic", CanonicalName: "garlic", Aliases: []string{"garlic", "garlic clove", "garlic cloves"}},
		{ID: "egg", CanonicalName: "egg", Aliases: []string{"egg", "eggs"}},
		{ID: "cheese", CanonicalName: "cheese", Aliases: []string{"cheese", "parmesan", "mozzarella", "cheddar"}},
	}

	byID := make(map[string]Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}
	link := func(id string, optional bool) RecipeIngredient {
		return RecipeIngredient{IngredientID: id, Ingredient: byID[id], Optional: optional}
	}

	easy := DifficultyEasy
	pastaDesc := "A quick pasta with tomatoes, garlic, and olive oil."
	eggsDesc := "Soft scrambled eggs with cheese."
	twenty, ten := 20, 10

	recipes := []Recipe{
		{
			ID:          "simple-tomato-pasta",
			Title:       "Simple Tomato Pasta",
			Description: &pastaDesc,
			TimeMinutes: &twenty,
			Difficulty:  &easy,
			IsActive:    true,
			Steps: []string{
				"Boil pasta in salted water.",
				"Sauté garlic in olive oil.",
				"Add chopped tomatoes and cook until saucy.",
				"Toss pasta with sauce and top with cheese.",
			},
			Ingredients: []RecipeIngredient{
				link("pasta", false),
				link("tomato", false),
				link("olive_oil", false),
				link("garlic", true),
				link("cheese", true),
			},
		},
		{
			ID:          "cheesy-eggs",
			Title:       "Cheesy Scrambled Eggs",
			Description: &eggsDesc,
			TimeMinutes: &ten,
			Difficulty:  &easy,
			IsActive:    true,
			Steps: []string{
				"Beat eggs in a bowl.",
				"Heat a pan with a bit of oil.",
				"Cook eggs on low heat, stirring gently.",
				"Stir in cheese before serving.",
			},
			Ingredients: []RecipeIngredient{
				link("egg", false),
				link("cheese", false),
				link("olive_oil", true),
			},
		},
	}

	return ingredients, recipes
}
