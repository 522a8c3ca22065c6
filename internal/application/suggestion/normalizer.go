package suggestion

import (
	"context"

	"go.uber.org/zap"

	"github.com/pantrymatch/server/internal/domain/pantry"
	"github.com/pantrymatch/server/internal/ports/outbound"
	"github.com/pantrymatch/server/pkg/errors"
)

// PantryNormalizer maps raw pantry items onto canonical ingredients
type PantryNormalizer struct {
	aliases outbound.AliasRepository
	logger  *zap.Logger
}

// NewPantryNormalizer creates a new pantry normalizer
func NewPantryNormalizer(aliases outbound.AliasRepository, logger *zap.Logger) *PantryNormalizer {
	return &PantryNormalizer{
		aliases: aliases,
		logger:  logger.Named("pantry-normalizer"),
	}
}

// Normalize resolves items to distinct ingredients in first-seen order.
// Items whose key is empty or matches no alias are dropped. The alias store is
// queried once, and not at all when no usable name is left.
func (n *PantryNormalizer) Normalize(ctx context.Context, items []pantry.Item) ([]pantry.ResolvedIngredient, error) {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = pantry.NormalizeKey(item.Name)
	}

	names := pantry.NormalizeKeys(keys)
	if len(names) == 0 {
		return []pantry.ResolvedIngredient{}, nil
	}

	matches, err := n.aliases.FindByNames(ctx, names)
	if err != nil {
		return nil, errors.NewDatabaseError("find ingredient aliases", err)
	}

	byAlias := make(map[string]pantry.Ingredient, len(matches))
	for _, m := range matches {
		byAlias[pantry.NormalizeKey(m.Alias)] = m.Ingredient
	}

	seen := make(map[string]struct{}, len(byAlias))
	resolved := make([]pantry.ResolvedIngredient, 0, len(byAlias))
	dropped := 0
	for _, key := range keys {
		ing, ok := byAlias[key]
		if !ok {
			dropped++
			continue
		}
		if _, dup := seen[ing.ID]; dup {
			continue
		}
		seen[ing.ID] = struct{}{}
		resolved = append(resolved, pantry.ResolvedIngredient{
			IngredientID: ing.ID,
			Name:         ing.CanonicalName,
		})
	}

	if dropped > 0 {
		n.logger.Debug("Dropped unresolved pantry items",
			zap.Int("dropped", dropped),
			zap.Int("resolved", len(resolved)),
		)
	}

	return resolved, nil
}
