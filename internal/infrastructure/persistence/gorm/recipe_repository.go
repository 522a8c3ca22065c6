// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pantrymatch/server/internal/domain/pantry"
	"github.com/pantrymatch/server/internal/ports/outbound"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

type overlapRow struct {
	RecipeID   string
	MatchCount int
}

// RankByIngredientOverlap groups recipe links by recipe and counts how many
// of the given ingredients each recipe references
func (r *RecipeRepository) RankByIngredientOverlap(ctx context.Context, ingredientIDs []string, limit int) ([]outbound.RecipeOverlap, error) {
	if len(ingredientIDs) == 0 || limit <= 0 {
		return []outbound.RecipeOverlap{}, nil
	}

	var rows []overlapRow
	result := r.db.WithContext(ctx).
		Model(&RecipeIngredientModel{}).
		Select("recipe_id, COUNT(*) AS match_count").
		Where("ingredient_id IN ?", ingredientIDs).
		Group("recipe_id").
		Order("match_count DESC, recipe_id ASC").
		Limit(limit).
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	overlaps := make([]outbound.RecipeOverlap, len(rows))
	for i, row := range rows {
		overlaps[i] = outbound.RecipeOverlap{RecipeID: row.RecipeID, MatchCount: row.MatchCount}
	}
	return overlaps, nil
}

// FindActiveByIDs loads active recipes in the order of ids. Unknown and
// inactive ids are skipped.
func (r *RecipeRepository) FindActiveByIDs(ctx context.Context, ids []string) ([]*pantry.Recipe, error) {
	if len(ids) == 0 {
		return []*pantry.Recipe{}, nil
	}

	var models []RecipeModel
	result := r.withDetails(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	byID := make(map[string]*RecipeModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	recipes := make([]*pantry.Recipe, 0, len(models))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			recipes = append(recipes, RecipeToDomain(m))
			delete(byID, id)
		}
	}
	return recipes, nil
}

// FindActiveByID finds an active recipe by ID
func (r *RecipeRepository) FindActiveByID(ctx context.Context, id string) (*pantry.Recipe, error) {
	var model RecipeModel

	result := r.withDetails(ctx).
		Where("is_active = ?", true).
		First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return RecipeToDomain(&model), nil
}

func (r *RecipeRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Ingredients.Ingredient")
}
