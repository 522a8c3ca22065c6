package suggestion_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/pantrymatch/server/internal/application/suggestion"
	"github.com/pantrymatch/server/internal/domain/pantry"
	"github.com/pantrymatch/server/internal/ports/inbound"
	"github.com/pantrymatch/server/internal/ports/outbound"
	"github.com/pantrymatch/server/pkg/errors"
	"github.com/pantrymatch/server/test/testutils"
)

// SuggestionServiceTestSuite drives the façade over mocked repositories
type SuggestionServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	aliases     *testutils.MockAliasRepository
	recipes     *testutils.MockRecipeRepository
	ingredients *testutils.MockIngredientRepository
	metrics     *testutils.RecordingMetrics
	catalogIngs map[string]pantry.Ingredient
	catalogRecs map[string]*pantry.Recipe
	service     inbound.SuggestionService
}

func (s *SuggestionServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.aliases = testutils.NewMockAliasRepository()
	s.recipes = testutils.NewMockRecipeRepository()
	s.ingredients = testutils.NewMockIngredientRepository()
	s.metrics = &testutils.RecordingMetrics{}
	s.catalogIngs, s.catalogRecs = testutils.SampleCatalog()
	s.service = suggestion.NewService(s.aliases, s.recipes, s.ingredients, s.metrics, suggestion.Config{}, zap.NewNop())
}

func (s *SuggestionServiceTestSuite) sampleIngredients() []pantry.Ingredient {
	out := make([]pantry.Ingredient, 0, len(s.catalogIngs))
	for _, ing := range s.catalogIngs {
		out = append(out, ing)
	}
	return out
}

// expectAliases makes the alias mock answer like the store would for the
// sample catalogue
func (s *SuggestionServiceTestSuite) expectAliases(names []string) {
	s.aliases.On("FindByNames", mock.Anything, names).
		Return(testutils.AliasMatches(s.sampleIngredients(), names), nil).Once()
}

func items(names ...string) []pantry.Item {
	out := make([]pantry.Item, len(names))
	for i, n := range names {
		out[i] = pantry.Item{Name: n}
	}
	return out
}

func (s *SuggestionServiceTestSuite) TestSuggestRecipes() {
	s.Run("EmptyPantry_DoesNotTouchTheStore", func() {
		s.SetupTest()

		// Act
		got, err := s.service.SuggestRecipes(s.ctx, nil, inbound.SuggestOptions{})

		// Assert
		require.NoError(s.T(), err)
		assert.NotNil(s.T(), got)
		assert.Empty(s.T(), got)
		s.aliases.AssertNotCalled(s.T(), "FindByNames", mock.Anything, mock.Anything)
		s.recipes.AssertNotCalled(s.T(), "RankByIngredientOverlap", mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("OnlyUnusableNames_DoesNotTouchTheStore", func() {
		s.SetupTest()

		got, err := s.service.SuggestRecipes(s.ctx, items("", "  ", "[]", `""`), inbound.SuggestOptions{})

		require.NoError(s.T(), err)
		assert.Empty(s.T(), got)
		s.aliases.AssertNotCalled(s.T(), "FindByNames", mock.Anything, mock.Anything)
	})

	s.Run("NothingResolves_DoesNotRetrieveCandidates", func() {
		s.SetupTest()
		s.expectAliases([]string{"unicorn meat"})

		got, err := s.service.SuggestRecipes(s.ctx, items("Unicorn Meat"), inbound.SuggestOptions{})

		require.NoError(s.T(), err)
		assert.Empty(s.T(), got)
		s.recipes.AssertNotCalled(s.T(), "RankByIngredientOverlap", mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("TomatoPasta_UnknownItemIgnored", func() {
		s.SetupTest()
		// Arrange
		s.expectAliases([]string{"tomatoes", "spaghetti", "extra virgin olive oil", "unicorn meat"})
		s.recipes.On("RankByIngredientOverlap", mock.Anything, []string{"tomato", "pasta", "olive_oil"}, pantry.DefaultCandidateLimit).
			Return([]outbound.RecipeOverlap{{RecipeID: "simple-tomato-pasta", MatchCount: 3}, {RecipeID: "cheesy-eggs", MatchCount: 1}}, nil).Once()
		s.recipes.On("FindActiveByIDs", mock.Anything, []string{"simple-tomato-pasta", "cheesy-eggs"}).
			Return([]*pantry.Recipe{s.catalogRecs["simple-tomato-pasta"], s.catalogRecs["cheesy-eggs"]}, nil).Once()

		// Act
		got, err := s.service.SuggestRecipes(s.ctx,
			items("Tomatoes", "(spaghetti)", "Extra Virgin Olive Oil,", "unicorn meat"),
			inbound.SuggestOptions{})

		// Assert
		require.NoError(s.T(), err)
		require.Len(s.T(), got, 1)
		assert.Equal(s.T(), "Simple Tomato Pasta", got[0].Title)
		assert.InDelta(s.T(), 0.7, got[0].Score, 1e-9)
		assert.Equal(s.T(), []pantry.MissingIngredient{
			{Name: "garlic", Optional: true},
			{Name: "cheese", Optional: true},
		}, got[0].MissingIngredients)
		s.aliases.AssertExpectations(s.T())
		s.recipes.AssertExpectations(s.T())
	})

	s.Run("DuplicateAliases_CollapseToOneIngredient", func() {
		s.SetupTest()
		s.expectAliases([]string{"tomatoes", "roma tomato", "tomato", "eggs"})
		s.recipes.On("RankByIngredientOverlap", mock.Anything, []string{"tomato", "egg"}, pantry.DefaultCandidateLimit).
			Return([]outbound.RecipeOverlap{}, nil).Once()

		got, err := s.service.SuggestRecipes(s.ctx,
			items("Tomatoes", "roma tomato", "TOMATO", "eggs", "tomatoes"),
			inbound.SuggestOptions{})

		require.NoError(s.T(), err)
		assert.Empty(s.T(), got)
		s.recipes.AssertExpectations(s.T())
		s.recipes.AssertNotCalled(s.T(), "FindActiveByIDs", mock.Anything, mock.Anything)
	})

	s.Run("AliasStoreFailure_IsDatabaseError", func() {
		s.SetupTest()
		s.aliases.On("FindByNames", mock.Anything, []string{"egg"}).Return(nil, assert.AnError).Once()

		got, err := s.service.SuggestRecipes(s.ctx, items("egg"), inbound.SuggestOptions{})

		require.Error(s.T(), err)
		assert.Nil(s.T(), got)
		assert.True(s.T(), errors.Is(err, errors.CodeDatabaseError))
		assert.ErrorIs(s.T(), err, assert.AnError)
	})

	s.Run("CandidateLoadFailure_IsDatabaseError", func() {
		s.SetupTest()
		s.expectAliases([]string{"egg"})
		s.recipes.On("RankByIngredientOverlap", mock.Anything, []string{"egg"}, pantry.DefaultCandidateLimit).
			Return([]outbound.RecipeOverlap{{RecipeID: "cheesy-eggs", MatchCount: 1}}, nil).Once()
		s.recipes.On("FindActiveByIDs", mock.Anything, []string{"cheesy-eggs"}).Return(nil, assert.AnError).Once()

		_, err := s.service.SuggestRecipes(s.ctx, items("egg"), inbound.SuggestOptions{})

		assert.True(s.T(), errors.Is(err, errors.CodeDatabaseError))
		records := s.metrics.Records()
		require.Len(s.T(), records, 1)
		assert.Error(s.T(), records[0].Err)
	})
}

func (s *SuggestionServiceTestSuite) TestSuggestRecipes_Limits() {
	eggs := s.catalogIngs["egg"]
	var candidates []*pantry.Recipe
	var overlaps []outbound.RecipeOverlap
	for i := 0; i < 8; i++ {
		r := testutils.NewRecipeBuilder(string(rune('a'+i)) + "-omelette").Requires(eggs).Build()
		candidates = append(candidates, r)
		overlaps = append(overlaps, outbound.RecipeOverlap{RecipeID: r.ID, MatchCount: 1})
	}
	ids := make([]string, len(overlaps))
	for i, o := range overlaps {
		ids[i] = o.RecipeID
	}

	s.Run("DefaultMaxResultsIsFive", func() {
		s.SetupTest()
		s.expectAliases([]string{"egg"})
		s.recipes.On("RankByIngredientOverlap", mock.Anything, []string{"egg"}, pantry.DefaultCandidateLimit).Return(overlaps, nil).Once()
		s.recipes.On("FindActiveByIDs", mock.Anything, ids).Return(candidates, nil).Once()

		got, err := s.service.SuggestRecipes(s.ctx, items("egg"), inbound.SuggestOptions{})

		require.NoError(s.T(), err)
		assert.Len(s.T(), got, pantry.DefaultMaxResults)
		assert.Equal(s.T(), "a-omelette", got[0].ID)
	})

	s.Run("ConfiguredLimitsAreHonoured", func() {
		s.SetupTest()
		s.service = suggestion.NewService(s.aliases, s.recipes, s.ingredients, nil,
			suggestion.Config{CandidateLimit: 3, DefaultMaxResults: 2}, zap.NewNop())
		s.expectAliases([]string{"egg"})
		s.recipes.On("RankByIngredientOverlap", mock.Anything, []string{"egg"}, 3).Return(overlaps[:3], nil).Once()
		s.recipes.On("FindActiveByIDs", mock.Anything, ids[:3]).Return(candidates[:3], nil).Once()

		got, err := s.service.SuggestRecipes(s.ctx, items("egg"), inbound.SuggestOptions{})

		require.NoError(s.T(), err)
		assert.Len(s.T(), got, 2)
		s.recipes.AssertExpectations(s.T())
	})

	s.Run("ExplicitMaxResultsWins", func() {
		s.SetupTest()
		s.expectAliases([]string{"egg"})
		s.recipes.On("RankByIngredientOverlap", mock.Anything, []string{"egg"}, pantry.DefaultCandidateLimit).Return(overlaps, nil).Once()
		s.recipes.On("FindActiveByIDs", mock.Anything, ids).Return(candidates, nil).Once()

		got, err := s.service.SuggestRecipes(s.ctx, items("egg"), inbound.SuggestOptions{MaxResults: 7})

		require.NoError(s.T(), err)
		assert.Len(s.T(), got, 7)
		records := s.metrics.Records()
		require.Len(s.T(), records, 1)
		assert.Equal(s.T(), testutils.SuggestionRecord{
			Resolved: 1, Candidates: 8, Returned: 7, Duration: records[0].Duration,
		}, records[0])
	})
}

func (s *SuggestionServiceTestSuite) TestGetRecipe() {
	s.Run("Found", func() {
		s.SetupTest()
		s.recipes.On("FindActiveByID", mock.Anything, "cheesy-eggs").Return(s.catalogRecs["cheesy-eggs"], nil).Once()

		got, err := s.service.GetRecipe(s.ctx, "cheesy-eggs")

		require.NoError(s.T(), err)
		assert.Len(s.T(), got.Steps, 4)
	})

	s.Run("Missing", func() {
		s.SetupTest()
		s.recipes.On("FindActiveByID", mock.Anything, "nope").Return(nil, nil).Once()

		_, err := s.service.GetRecipe(s.ctx, "nope")

		assert.True(s.T(), errors.Is(err, errors.CodeRecipeNotFound))
	})

	s.Run("EmptyID", func() {
		s.SetupTest()

		_, err := s.service.GetRecipe(s.ctx, "")

		assert.True(s.T(), errors.Is(err, errors.CodeValidationFailed))
		s.recipes.AssertNotCalled(s.T(), "FindActiveByID", mock.Anything, mock.Anything)
	})
}

func (s *SuggestionServiceTestSuite) TestListIngredients() {
	s.ingredients.On("List", mock.Anything).Return(nil, assert.AnError).Once()

	_, err := s.service.ListIngredients(s.ctx)

	assert.True(s.T(), errors.Is(err, errors.CodeDatabaseError))
}

func TestSuggestionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SuggestionServiceTestSuite))
}
