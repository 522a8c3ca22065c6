package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/pantrymatch/server/internal/domain/pantry"
	"github.com/pantrymatch/server/internal/ports/outbound"
)

// AliasRepository implements alias lookup using GORM
type AliasRepository struct {
	db *gorm.DB
}

// NewAliasRepository creates a new alias repository
func NewAliasRepository(db *gorm.DB) outbound.AliasRepository {
	return &AliasRepository{db: db}
}

// FindByNames returns the aliases whose stored name equals one of names,
// each with its owning ingredient
func (r *AliasRepository) FindByNames(ctx context.Context, names []string) ([]pantry.AliasMatch, error) {
	if len(names) == 0 {
		return []pantry.AliasMatch{}, nil
	}

	var models []IngredientAliasModel
	result := r.db.WithContext(ctx).
		Preload("Ingredient").
		Where("alias_name IN ?", names).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	matches := make([]pantry.AliasMatch, len(models))
	for i := range models {
		matches[i] = pantry.AliasMatch{
			Alias:      models[i].AliasName,
			Ingredient: IngredientToDomain(&models[i].Ingredient),
		}
	}
	return matches, nil
}
