// Package gorm provides GORM model definitions for the application
package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrymatch/server/internal/domain/pantry"
)

// IngredientModel represents the GORM model for canonical ingredients
type IngredientModel struct {
	ID            string `gorm:"type:varchar(64);primaryKey"`
	CanonicalName string `gorm:"type:varchar(200);uniqueIndex;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Relationships
	Aliases []IngredientAliasModel `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

// IngredientAliasModel maps one normalized spelling to its ingredient
type IngredientAliasModel struct {
	ID           string `gorm:"type:varchar(64);primaryKey"`
	AliasName    string `gorm:"type:varchar(200);uniqueIndex;not null"`
	IngredientID string `gorm:"type:varchar(64);not null;index"`
	CreatedAt    time.Time

	Ingredient IngredientModel `gorm:"foreignKey:IngredientID"`
}

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID          string  `gorm:"type:varchar(64);primaryKey"`
	Title       string  `gorm:"type:varchar(255);not null"`
	Description *string `gorm:"type:text"`
	TimeMinutes *int
	Difficulty  *string `gorm:"type:varchar(20)"`
	IsActive    bool    `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships
	Steps       []RecipeStepModel       `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredientModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// RecipeStepModel is one ordered instruction of a recipe
type RecipeStepModel struct {
	ID       string `gorm:"type:varchar(64);primaryKey"`
	RecipeID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_recipe_step_position"`
	Position int    `gorm:"not null;uniqueIndex:idx_recipe_step_position"`
	Text     string `gorm:"type:text;not null"`
}

// RecipeIngredientModel links a recipe to an ingredient
type RecipeIngredientModel struct {
	ID           string   `gorm:"type:varchar(64);primaryKey"`
	RecipeID     string   `gorm:"type:varchar(64);not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID string   `gorm:"type:varchar(64);not null;uniqueIndex:idx_recipe_ingredient;index"`
	Position     int      `gorm:"not null"`
	Amount       *float64
	Unit         *string `gorm:"type:varchar(50)"`
	Optional     bool    `gorm:"not null"`

	Ingredient IngredientModel `gorm:"foreignKey:IngredientID"`
}

// TableName specifies the table name for IngredientModel
func (IngredientModel) TableName() string {
	return "ingredients"
}

// TableName specifies the table name for IngredientAliasModel
func (IngredientAliasModel) TableName() string {
	return "ingredient_aliases"
}

// TableName specifies the table name for RecipeModel
func (RecipeModel) TableName() string {
	return "recipes"
}

// TableName specifies the table name for RecipeStepModel
func (RecipeStepModel) TableName() string {
	return "recipe_steps"
}

// TableName specifies the table name for RecipeIngredientModel
func (RecipeIngredientModel) TableName() string {
	return "recipe_ingredients"
}

// AllModels lists every model in dependency order for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&IngredientModel{},
		&IngredientAliasModel{},
		&RecipeModel{},
		&RecipeStepModel{},
		&RecipeIngredientModel{},
	}
}

// BeforeCreate hook for IngredientModel
func (m *IngredientModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave keeps stored aliases in lookup-key form
func (m *IngredientAliasModel) BeforeSave(tx *gorm.DB) error {
	m.AliasName = pantry.NormalizeKey(m.AliasName)
	return nil
}

// BeforeCreate hook for IngredientAliasModel
func (m *IngredientAliasModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate hook for RecipeModel
func (m *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate hook for RecipeStepModel
func (m *RecipeStepModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate hook for RecipeIngredientModel
func (m *RecipeIngredientModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
