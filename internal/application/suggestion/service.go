// Package suggestion provides the application layer for pantry matching
// This implements the use cases defined in the inbound ports
package suggestion

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pantrymatch/server/internal/domain/pantry"
	"github.com/pantrymatch/server/internal/ports/inbound"
	"github.com/pantrymatch/server/internal/ports/outbound"
	"github.com/pantrymatch/server/pkg/errors"
)

const tracerName = "github.com/pantrymatch/server/internal/application/suggestion"

// Config holds the matcher limits
type Config struct {
	CandidateLimit    int
	DefaultMaxResults int
}

// Service implements the suggestion use cases
type Service struct {
	normalizer  *PantryNormalizer
	retriever   *CandidateRetriever
	recipes     outbound.RecipeRepository
	ingredients outbound.IngredientRepository
	metrics     outbound.SuggestionMetrics
	defaultMax  int
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewService creates a new suggestion service. metrics may be nil.
func NewService(
	aliases outbound.AliasRepository,
	recipes outbound.RecipeRepository,
	ingredients outbound.IngredientRepository,
	metrics outbound.SuggestionMetrics,
	cfg Config,
	logger *zap.Logger,
) inbound.SuggestionService {
	defaultMax := cfg.DefaultMaxResults
	if defaultMax <= 0 {
		defaultMax = pantry.DefaultMaxResults
	}
	return &Service{
		normalizer:  NewPantryNormalizer(aliases, logger),
		retriever:   NewCandidateRetriever(recipes, cfg.CandidateLimit),
		recipes:     recipes,
		ingredients: ingredients,
		metrics:     metrics,
		defaultMax:  defaultMax,
		tracer:      otel.Tracer(tracerName),
		logger:      logger.Named("suggestion-service"),
	}
}

// SuggestRecipes normalizes the pantry, retrieves overlapping recipes and
// ranks them
func (s *Service) SuggestRecipes(ctx context.Context, items []pantry.Item, opts inbound.SuggestOptions) (result []pantry.Suggestion, err error) {
	ctx, span := s.tracer.Start(ctx, "SuggestRecipes",
		trace.WithAttributes(attribute.Int("pantry.items", len(items))))
	defer span.End()

	start := time.Now()
	var resolvedCount, candidateCount int
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if s.metrics != nil {
			s.metrics.RecordSuggestion(resolvedCount, candidateCount, len(result), time.Since(start), err)
		}
		s.logger.Info("Suggested recipes",
			zap.Int("items", len(items)),
			zap.Int("resolved", resolvedCount),
			zap.Int("candidates", candidateCount),
			zap.Int("returned", len(result)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
	}()

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.defaultMax
	}

	resolved, err := s.normalize(ctx, items)
	if err != nil {
		return nil, err
	}
	resolvedCount = len(resolved)
	if resolvedCount == 0 {
		return []pantry.Suggestion{}, nil
	}

	ids := make([]string, len(resolved))
	for i, r := range resolved {
		ids[i] = r.IngredientID
	}

	candidates, err := s.retrieve(ctx, ids)
	if err != nil {
		return nil, err
	}
	candidateCount = len(candidates)
	if candidateCount == 0 {
		return []pantry.Suggestion{}, nil
	}

	_, rankSpan := s.tracer.Start(ctx, "RankCandidates")
	result = pantry.Rank(resolved, candidates, maxResults)
	rankSpan.SetAttributes(attribute.Int("suggestions.returned", len(result)))
	rankSpan.End()

	return result, nil
}

func (s *Service) normalize(ctx context.Context, items []pantry.Item) ([]pantry.ResolvedIngredient, error) {
	ctx, span := s.tracer.Start(ctx, "NormalizePantry")
	defer span.End()

	resolved, err := s.normalizer.Normalize(ctx, items)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("pantry.resolved", len(resolved)))
	return resolved, nil
}

func (s *Service) retrieve(ctx context.Context, ingredientIDs []string) ([]*pantry.Recipe, error) {
	ctx, span := s.tracer.Start(ctx, "RetrieveCandidates",
		trace.WithAttributes(attribute.Int("candidates.limit", s.retriever.Limit())))
	defer span.End()

	candidates, err := s.retriever.FindCandidates(ctx, ingredientIDs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("candidates.found", len(candidates)))
	return candidates, nil
}

// GetRecipe returns an active recipe by id
func (s *Service) GetRecipe(ctx context.Context, id string) (*pantry.Recipe, error) {
	if id == "" {
		return nil, errors.NewValidationError("recipe id is required")
	}

	recipe, err := s.recipes.FindActiveByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("find recipe", err)
	}
	if recipe == nil {
		return nil, errors.NewRecipeNotFoundError(id)
	}
	return recipe, nil
}

// ListIngredients returns the ingredient catalogue
func (s *Service) ListIngredients(ctx context.Context) ([]pantry.Ingredient, error) {
	ingredients, err := s.ingredients.List(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list ingredients", err)
	}
	return ingredients, nil
}
