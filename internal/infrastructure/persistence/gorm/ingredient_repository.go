package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/pantrymatch/server/internal/domain/pantry"
	"github.com/pantrymatch/server/internal/ports/outbound"
)

// IngredientRepository implements the ingredient catalogue using GORM
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) outbound.IngredientRepository {
	return &IngredientRepository{db: db}
}

// List returns every ingredient with its aliases, ordered by name
func (r *IngredientRepository) List(ctx context.Context) ([]pantry.Ingredient, error) {
	var models []IngredientModel
	result := r.db.WithContext(ctx).
		Preload("Aliases", func(db *gorm.DB) *gorm.DB {
			return db.Order("alias_name ASC")
		}).
		Order("canonical_name ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	ingredients := make([]pantry.Ingredient, len(models))
	for i := range models {
		ingredients[i] = IngredientToDomain(&models[i])
	}
	return ingredients, nil
}
