// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pantrymatch/server/internal/domain/pantry"
	"github.com/pantrymatch/server/internal/ports/inbound"
	"github.com/pantrymatch/server/internal/ports/outbound"
)

// MockAliasRepository provides a mock implementation of AliasRepository
type MockAliasRepository struct {
	mock.Mock
}

// NewMockAliasRepository creates a new mock alias repository
func NewMockAliasRepository() *MockAliasRepository {
	return &MockAliasRepository{}
}

// FindByNames looks up aliases
func (m *MockAliasRepository) FindByNames(ctx context.Context, names []string) ([]pantry.AliasMatch, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pantry.AliasMatch), args.Error(1)
}

// MockRecipeRepository provides a mock implementation of RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

// NewMockRecipeRepository creates a new mock recipe repository
func NewMockRecipeRepository() *MockRecipeRepository {
	return &MockRecipeRepository{}
}

// RankByIngredientOverlap ranks recipe ids
func (m *MockRecipeRepository) RankByIngredientOverlap(ctx context.Context, ingredientIDs []string, limit int) ([]outbound.RecipeOverlap, error) {
	args := m.Called(ctx, ingredientIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]outbound.RecipeOverlap), args.Error(1)
}

// FindActiveByIDs loads recipes
func (m *MockRecipeRepository) FindActiveByIDs(ctx context.Context, ids []string) ([]*pantry.Recipe, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pantry.Recipe), args.Error(1)
}

// FindActiveByID loads one recipe
func (m *MockRecipeRepository) FindActiveByID(ctx context.Context, id string) (*pantry.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pantry.Recipe), args.Error(1)
}

// MockIngredientRepository provides a mock implementation of IngredientRepository
type MockIngredientRepository struct {
	mock.Mock
}

// NewMockIngredientRepository creates a new mock ingredient repository
func NewMockIngredientRepository() *MockIngredientRepository {
	return &MockIngredientRepository{}
}

// List returns the catalogue
func (m *MockIngredientRepository) List(ctx context.Context) ([]pantry.Ingredient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pantry.Ingredient), args.Error(1)
}

// MockSuggestionService provides a mock implementation of the inbound port
type MockSuggestionService struct {
	mock.Mock
}

// SuggestRecipes records the call
func (m *MockSuggestionService) SuggestRecipes(ctx context.Context, items []pantry.Item, opts inbound.SuggestOptions) ([]pantry.Suggestion, error) {
	args := m.Called(ctx, items, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pantry.Suggestion), args.Error(1)
}

// GetRecipe records the call
func (m *MockSuggestionService) GetRecipe(ctx context.Context, id string) (*pantry.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pantry.Recipe), args.Error(1)
}

// ListIngredients records the call
func (m *MockSuggestionService) ListIngredients(ctx context.Context) ([]pantry.Ingredient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pantry.Ingredient), args.Error(1)
}

// SuggestionRecord is one call captured by RecordingMetrics
type SuggestionRecord struct {
	Resolved   int
	Candidates int
	Returned   int
	Duration   time.Duration
	Err        error
}

// RecordingMetrics captures suggestion metrics in memory
type RecordingMetrics struct {
	mu      sync.Mutex
	records []SuggestionRecord
}

// RecordSuggestion stores the observation
func (r *RecordingMetrics) RecordSuggestion(resolved, candidates, returned int, duration time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, SuggestionRecord{
		Resolved:   resolved,
		Candidates: candidates,
		Returned:   returned,
		Duration:   duration,
		Err:        err,
	})
}

// Records returns a copy of what has been recorded
func (r *RecordingMetrics) Records() []SuggestionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SuggestionRecord, len(r.records))
	copy(out, r.records)
	return out
}
