package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"switchmarket/internal/api"
	"switchmarket/internal/backendmock"
	"switchmarket/models"
)

const sampleCSV = `Name,Brand,EAN,Ingredients,Labels,Natural %,Chemical %,Completion %
Gentle  Shampoo,Aqualis,3600523614455,"Aqua (68%), Sodium Laureth Sulfate, Glycerin",cruelty-free,40,60,95
Rose Toner,Lavo,5901234123457,"Aqua (90%), Rosa Damascena Flower Water","vegan, organic",97 %,N/A,80
,Nameless,,,,,,
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestBuildProduct(t *testing.T) {
	t.Parallel()

	product, ok := buildProduct(map[string]string{
		"Name":        " Rose   Toner ",
		"Brand":       "Lavo",
		"EAN":         "N/A",
		"Ingredients": "Aqua (90%), Rose Water",
		"Labels":      "vegan, , organic",
		"Natural %":   "97,5 %",
		"Chemical %":  "140",
	})
	if !ok {
		t.Fatal("expected a product")
	}

	want := models.Product{
		Name:              "Rose Toner",
		Brand:             "Lavo",
		Ingredients:       []models.Ingredient{{Text: "Aqua", Percent: 90}, {Text: "Rose Water"}},
		Additives:         []models.Additive{},
		LabelTags:         []string{"vegan", "organic"},
		NaturalPercentage: models.Percent(97.5),
		Effects:           []models.EffectRecord{},
	}
	if diff := cmp.Diff(want, product); diff != "" {
		t.Fatalf("product mismatch (-want +got):\n%s", diff)
	}

	if _, ok := buildProduct(map[string]string{"Brand": "Lavo"}); ok {
		t.Fatal("expected rows without a name to be rejected")
	}
}

func TestReadCSVRejectsEmptyFile(t *testing.T) {
	t.Parallel()

	if _, err := readCSV(writeCSV(t, "")); err == nil {
		t.Fatal("expected an error for an empty csv")
	}
}

func TestImportRecordsUpsertsByEAN(t *testing.T) {
	t.Parallel()

	backend, err := backendmock.New(backendmock.Config{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("start api mock: %v", err)
	}
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("build api client: %v", err)
	}

	records, err := readCSV(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	ctx := context.Background()
	creds := api.Credentials{Email: backendmock.AdminEmail, Password: backendmock.DefaultPassword}
	result, err := importRecords(ctx, client, creds, records)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if diff := cmp.Diff(importResult{Created: 1, Updated: 1, Skipped: 1}, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	updated, err := client.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if updated.Name != "Gentle Shampoo" || updated.Natural() != 40 || len(updated.Ingredients) != 3 {
		t.Fatalf("unexpected updated product %+v", updated)
	}
	if len(updated.Additives) != 1 {
		t.Fatalf("expected additives to be kept, got %+v", updated.Additives)
	}

	page, err := client.ListProducts(ctx, api.ProductQuery{All: "5901234123457"})
	if err != nil || len(page.Products) != 1 {
		t.Fatalf("expected the created product, got %v (err %v)", page.Products, err)
	}

	member := api.Credentials{Email: backendmock.UserEmail, Password: backendmock.DefaultPassword}
	if _, err := importRecords(ctx, client, member, records); err == nil {
		t.Fatal("expected a non-admin import to fail")
	}
	if _, err := importRecords(ctx, client, api.Credentials{}, records); err == nil {
		t.Fatal("expected missing credentials to fail")
	}
}
