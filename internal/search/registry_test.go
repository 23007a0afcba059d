package search

import (
	"context"
	"testing"
	"time"

	"switchmarket/internal/api"
	"switchmarket/models"
)

func TestRegistryReusesAndExpires(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created := 0
	r := NewRegistry(time.Minute, func() *Fetcher {
		created++
		return NewFetcher(pagedSource(1), testConfig())
	})
	r.now = func() time.Time { return now }

	id := NewSessionID()
	first := r.Fetcher(id)
	if r.Fetcher(id) != first {
		t.Fatal("expected the same fetcher for the same session")
	}
	if created != 1 {
		t.Fatalf("expected one fetcher, got %d", created)
	}

	now = now.Add(2 * time.Minute)
	if removed := r.Sweep(); removed != 1 {
		t.Fatalf("expected one expired session, got %d", removed)
	}
	if r.Fetcher(id) == first {
		t.Fatal("expired session must get a new fetcher")
	}

	r.Drop(id)
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

type fakeOptions struct {
	labelsErr error
}

func (f fakeOptions) ListLabels(ctx context.Context) ([]models.Label, error) {
	if f.labelsErr != nil {
		return nil, f.labelsErr
	}
	return []models.Label{{Tag: "vegan", Name: "Vegan"}}, nil
}

func (f fakeOptions) ListAdditives(ctx context.Context) ([]models.AdditiveInfo, error) {
	return nil, nil
}

func TestLoadFilterOptions(t *testing.T) {
	t.Parallel()

	opts, err := LoadFilterOptions(context.Background(), fakeOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(opts.Labels) != 1 || opts.Labels[0].Tag != "vegan" {
		t.Fatalf("unexpected labels %+v", opts.Labels)
	}
	if opts.Additives == nil {
		t.Fatal("additives should default to an empty slice")
	}

	_, err = LoadFilterOptions(context.Background(), fakeOptions{labelsErr: &api.Error{Status: 500}})
	if !api.IsStatus(err, 500) {
		t.Fatalf("expected wrapped API error, got %v", err)
	}
}
