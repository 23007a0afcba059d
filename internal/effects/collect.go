package effects

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	applog "switchmarket/internal/log"
	"switchmarket/models"
)

const collectConcurrency = 4

// Searcher looks up the effect records for an ingredient name.
type Searcher interface {
	SearchEffects(ctx context.Context, query string) ([]models.EffectRecord, error)
}

// Collect queries the effect records of every ingredient and returns them in
// ingredient order. Lookups that fail are logged and skipped; only context
// cancellation aborts the whole collection.
func Collect(ctx context.Context, searcher Searcher, ingredients []models.Ingredient) ([]models.EffectRecord, error) {
	slots := make([][]models.EffectRecord, len(ingredients))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(collectConcurrency)

	for i, ingredient := range ingredients {
		name := strings.TrimSpace(ingredient.Text)
		if name == "" {
			continue
		}
		group.Go(func() error {
			records, err := searcher.SearchEffects(groupCtx, name)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				applog.Warn(groupCtx, "effect lookup failed", "ingredient", name, "error", err)
				return nil
			}
			filled := make([]models.EffectRecord, len(records))
			for j, record := range records {
				if record.Ingredient == "" {
					record.Ingredient = name
				}
				if record.Percent == 0 {
					record.Percent = ingredient.Percent
				}
				filled[j] = record
			}
			slots[i] = filled
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var out []models.EffectRecord
	for _, records := range slots {
		out = append(out, records...)
	}
	if out == nil {
		out = []models.EffectRecord{}
	}
	return out, nil
}
