package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"switchmarket/models"
)

// OptionSource serves the reference lists behind the filter sidebar.
type OptionSource interface {
	ListLabels(ctx context.Context) ([]models.Label, error)
	ListAdditives(ctx context.Context) ([]models.AdditiveInfo, error)
}

// Options are the selectable values of the filter sidebar.
type Options struct {
	Labels    []models.Label
	Additives []models.AdditiveInfo
}

// LoadFilterOptions fetches labels and additives concurrently. Cancelling ctx
// aborts both requests.
func LoadFilterOptions(ctx context.Context, source OptionSource) (Options, error) {
	var opts Options
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		labels, err := source.ListLabels(gctx)
		if err != nil {
			return fmt.Errorf("load labels: %w", err)
		}
		opts.Labels = labels
		return nil
	})
	g.Go(func() error {
		additives, err := source.ListAdditives(gctx)
		if err != nil {
			return fmt.Errorf("load additives: %w", err)
		}
		opts.Additives = additives
		return nil
	})

	if err := g.Wait(); err != nil {
		return Options{}, err
	}
	if opts.Labels == nil {
		opts.Labels = []models.Label{}
	}
	if opts.Additives == nil {
		opts.Additives = []models.AdditiveInfo{}
	}
	return opts, nil
}
