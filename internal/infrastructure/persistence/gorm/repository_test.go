package gorm_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrymatch/server/internal/domain/pantry"
	"github.com/pantrymatch/server/internal/infrastructure/config"
	gormModels "github.com/pantrymatch/server/internal/infrastructure/persistence/gorm"
	"github.com/pantrymatch/server/internal/infrastructure/persistence/sqlite"
	"github.com/pantrymatch/server/internal/ports/outbound"
	"github.com/pantrymatch/server/test/testutils"
)

// RepositoryTestSuite runs the GORM repositories against an in-memory SQLite
// database seeded with the sample catalogue
type RepositoryTestSuite struct {
	suite.Suite
	ctx         context.Context
	db          *gorm.DB
	aliases     outbound.AliasRepository
	recipes     outbound.RecipeRepository
	ingredients outbound.IngredientRepository
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := sqlite.SetupDatabase(s.ctx, config.DatabaseConfig{
		Database:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		AutoMigrate:       true,
		SeedSampleCatalog: true,
		LogLevel:          "silent",
	}, zap.NewNop())
	require.NoError(s.T(), err)

	s.db = db
	s.aliases = gormModels.NewAliasRepository(db)
	s.recipes = gormModels.NewRecipeRepository(db)
	s.ingredients = gormModels.NewIngredientRepository(db)
}

func (s *RepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	require.NoError(s.T(), err)
	_ = sqlDB.Close()
}

func (s *RepositoryTestSuite) seedExtra(recipes ...*pantry.Recipe) {
	values := make([]pantry.Recipe, len(recipes))
	for i, r := range recipes {
		values[i] = *r
	}
	require.NoError(s.T(), gormModels.SeedCatalog(s.ctx, s.db, nil, values, zap.NewNop()))
}

func (s *RepositoryTestSuite) TestAliasRepository_FindByNames() {
	// Act
	matches, err := s.aliases.FindByNames(s.ctx, []string{"tomatoes", "parmesan", "olive oil", "unicorn meat"})

	// Assert
	require.NoError(s.T(), err)
	got := make(map[string]string, len(matches))
	for _, m := range matches {
		got[m.Alias] = m.Ingredient.ID
	}
	assert.Equal(s.T(), map[string]string{
		"tomatoes":  "tomato",
		"parmesan":  "cheese",
		"olive oil": "olive_oil",
	}, got)
	for _, m := range matches {
		assert.NotEmpty(s.T(), m.Ingredient.CanonicalName)
	}
}

func (s *RepositoryTestSuite) TestAliasRepository_EmptyInput() {
	matches, err := s.aliases.FindByNames(s.ctx, nil)

	require.NoError(s.T(), err)
	assert.Empty(s.T(), matches)
}

func (s *RepositoryTestSuite) TestAliasModel_StoresNormalizedKey() {
	alias := gormModels.IngredientAliasModel{AliasName: "  [Sun-Dried  TOMATO], ", IngredientID: "tomato"}

	require.NoError(s.T(), s.db.Create(&alias).Error)

	matches, err := s.aliases.FindByNames(s.ctx, []string{"sun-dried tomato"})
	require.NoError(s.T(), err)
	require.Len(s.T(), matches, 1)
	assert.Equal(s.T(), "tomato", matches[0].Ingredient.ID)
}

func (s *RepositoryTestSuite) TestRecipeRepository_RankByIngredientOverlap() {
	s.Run("OrdersByCountThenID", func() {
		overlaps, err := s.recipes.RankByIngredientOverlap(s.ctx, []string{"tomato", "pasta", "olive_oil"}, 200)

		require.NoError(s.T(), err)
		assert.Equal(s.T(), []outbound.RecipeOverlap{
			{RecipeID: "simple-tomato-pasta", MatchCount: 3},
			{RecipeID: "cheesy-eggs", MatchCount: 1},
		}, overlaps)
	})

	s.Run("HonoursLimit", func() {
		overlaps, err := s.recipes.RankByIngredientOverlap(s.ctx, []string{"olive_oil"}, 1)

		require.NoError(s.T(), err)
		assert.Equal(s.T(), []outbound.RecipeOverlap{{RecipeID: "cheesy-eggs", MatchCount: 1}}, overlaps)
	})

	s.Run("NoOverlap", func() {
		overlaps, err := s.recipes.RankByIngredientOverlap(s.ctx, []string{"saffron"}, 200)

		require.NoError(s.T(), err)
		assert.Empty(s.T(), overlaps)
	})
}

func (s *RepositoryTestSuite) TestRecipeRepository_FindActiveByIDs() {
	ings, _ := testutils.SampleCatalog()
	hidden := testutils.NewRecipeBuilder("hidden-omelette").
		WithTitle("Hidden Omelette").
		Requires(ings["egg"]).
		Inactive().
		Build()
	s.seedExtra(hidden)

	// the inactive recipe still counts in the overlap ranking
	overlaps, err := s.recipes.RankByIngredientOverlap(s.ctx, []string{"egg"}, 200)
	require.NoError(s.T(), err)
	assert.Len(s.T(), overlaps, 2)

	recipes, err := s.recipes.FindActiveByIDs(s.ctx, []string{"simple-tomato-pasta", "hidden-omelette", "cheesy-eggs", "missing"})

	require.NoError(s.T(), err)
	require.Len(s.T(), recipes, 2)
	assert.Equal(s.T(), "simple-tomato-pasta", recipes[0].ID)
	assert.Equal(s.T(), "cheesy-eggs", recipes[1].ID)

	pasta := recipes[0]
	require.Len(s.T(), pasta.Ingredients, 5)
	assert.Equal(s.T(), "pasta", pasta.Ingredients[0].IngredientID)
	assert.Equal(s.T(), "olive oil", pasta.Ingredients[2].Ingredient.CanonicalName)
	assert.True(s.T(), pasta.Ingredients[3].Optional)
	assert.Equal(s.T(), "Boil pasta in salted water.", pasta.Steps[0])
	require.NotNil(s.T(), pasta.Difficulty)
	assert.Equal(s.T(), pantry.DifficultyEasy, *pasta.Difficulty)
	require.NotNil(s.T(), pasta.TimeMinutes)
	assert.Equal(s.T(), 20, *pasta.TimeMinutes)
}

func (s *RepositoryTestSuite) TestRecipeRepository_FindActiveByID() {
	ings, _ := testutils.SampleCatalog()
	s.seedExtra(testutils.NewRecipeBuilder("retired").Requires(ings["pasta"]).Inactive().Build())

	found, err := s.recipes.FindActiveByID(s.ctx, "cheesy-eggs")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), found)
	assert.Equal(s.T(), []string{
		"Beat eggs in a bowl.",
		"Heat a pan with a bit of oil.",
		"Cook eggs on low heat, stirring gently.",
		"Stir in cheese before serving.",
	}, found.Steps)

	inactive, err := s.recipes.FindActiveByID(s.ctx, "retired")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), inactive)

	missing, err := s.recipes.FindActiveByID(s.ctx, "nope")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), missing)
}

func (s *RepositoryTestSuite) TestIngredientRepository_List() {
	ingredients, err := s.ingredients.List(s.ctx)

	require.NoError(s.T(), err)
	require.Len(s.T(), ingredients, 6)
	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = ing.CanonicalName
		assert.Contains(s.T(), ing.Aliases, ing.CanonicalName)
	}
	assert.Equal(s.T(), []string{"cheese", "egg", "garlic", "olive oil", "pasta", "tomato"}, names)
}

func (s *RepositoryTestSuite) TestSeedCatalog_IsIdempotent() {
	require.NoError(s.T(), gormModels.SeedSampleCatalog(s.ctx, s.db, zap.NewNop()))

	var ingredients, aliases, recipes, links, steps int64
	s.db.Model(&gormModels.IngredientModel{}).Count(&ingredients)
	s.db.Model(&gormModels.IngredientAliasModel{}).Count(&aliases)
	s.db.Model(&gormModels.RecipeModel{}).Count(&recipes)
	s.db.Model(&gormModels.RecipeIngredientModel{}).Count(&links)
	s.db.Model(&gormModels.RecipeStepModel{}).Count(&steps)

	assert.EqualValues(s.T(), 6, ingredients)
	assert.EqualValues(s.T(), 19, aliases)
	assert.EqualValues(s.T(), 2, recipes)
	assert.EqualValues(s.T(), 8, links)
	assert.EqualValues(s.T(), 8, steps)
}

func (s *RepositoryTestSuite) TestSeedCatalog_GeneratedIDs() {
	factory := testutils.NewCatalogFactory(11)
	ing := factory.Ingredient()
	ing.ID = ""

	require.NoError(s.T(), gormModels.SeedCatalog(s.ctx, s.db, []pantry.Ingredient{ing}, nil, zap.NewNop()))

	matches, err := s.aliases.FindByNames(s.ctx, ing.Aliases)
	require.NoError(s.T(), err)
	require.Len(s.T(), matches, len(ing.Aliases))
	_, err = uuid.Parse(matches[0].Ingredient.ID)
	assert.NoError(s.T(), err)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
