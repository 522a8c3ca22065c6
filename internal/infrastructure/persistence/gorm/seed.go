package gorm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pantrymatch/server/internal/domain/pantry"
)

// SeedCatalog inserts ingredients, aliases and recipes in one transaction.
// Rows that already exist are left untouched, so seeding twice is a no-op.
func SeedCatalog(ctx context.Context, db *gorm.DB, ingredients []pantry.Ingredient, recipes []pantry.Recipe, logger *zap.Logger) error {
	var created int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ing := range ingredients {
			model := IngredientToModel(ing)
			aliases := model.Aliases
			model.Aliases = nil

			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model)
			if result.Error != nil {
				return fmt.Errorf("seed ingredient %q: %w", ing.CanonicalName, result.Error)
			}
			if result.RowsAffected == 0 {
				var existing IngredientModel
				if err := tx.Where("id = ? OR canonical_name = ?", model.ID, model.CanonicalName).First(&existing).Error; err != nil {
					return fmt.Errorf("seed ingredient %q: %w", ing.CanonicalName, err)
				}
				model.ID = existing.ID
			}
			for i := range aliases {
				aliases[i].IngredientID = model.ID
			}
			if len(aliases) > 0 {
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&aliases).Error; err != nil {
					return fmt.Errorf("seed aliases of %q: %w", ing.CanonicalName, err)
				}
			}
		}

		for i := range recipes {
			var count int64
			if err := tx.Model(&RecipeModel{}).Where("id = ?", recipes[i].ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(RecipeToModel(&recipes[i])).Error; err != nil {
				return fmt.Errorf("seed recipe %q: %w", recipes[i].Title, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Catalog seeded",
		zap.Int("ingredients", len(ingredients)),
		zap.Int("recipes_created", created),
	)
	return nil
}

// SeedSampleCatalog seeds the starter catalogue
func SeedSampleCatalog(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	ingredients, recipes := pantry.SampleCatalog()
	return SeedCatalog(ctx, db, ingredients, recipes, logger)
}
