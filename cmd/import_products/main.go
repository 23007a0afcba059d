// Command import_products loads a CSV catalogue export into the SwitchMarket API.
// Rows whose EAN already exists update that product; the others are created.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"switchmarket/internal/api"
	"switchmarket/internal/config"
	"switchmarket/internal/inci"
	applog "switchmarket/internal/log"
	"switchmarket/models"
)

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*[.,]?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

// catalogue is the part of the API client the importer needs.
type catalogue interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	ListProducts(ctx context.Context, q api.ProductQuery) (api.ProductPage, error)
	CreateProduct(ctx context.Context, token string, product models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, token string, product models.Product) (models.Product, error)
}

type importResult struct {
	Created int
	Updated int
	Skipped int
}

func main() {
	csvPath := "products.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(context.Background(), csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}
	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	client, err := api.NewClient(api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout})
	if err != nil {
		return fmt.Errorf("build api client: %w", err)
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	creds := api.Credentials{
		Email:    strings.TrimSpace(os.Getenv("SWITCHMARKET_IMPORT_EMAIL")),
		Password: os.Getenv("SWITCHMARKET_IMPORT_PASSWORD"),
	}
	result, err := importRecords(ctx, client, creds, records)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %s: %d created, %d updated, %d skipped\n",
		filepath.Base(csvPath), result.Created, result.Updated, result.Skipped)
	return nil
}

// importRecords signs in as an administrator and upserts every record.
func importRecords(ctx context.Context, cat catalogue, creds api.Credentials, records []map[string]string) (importResult, error) {
	var result importResult
	if creds.Email == "" || creds.Password == "" {
		return result, fmt.Errorf("administrator credentials are required")
	}
	token, err := cat.Login(ctx, creds)
	if err != nil {
		return result, fmt.Errorf("sign in: %w", err)
	}

	for idx, record := range records {
		product, ok := buildProduct(record)
		if !ok {
			applog.Warn(ctx, "skipping row without a product name", "row", idx+2)
			result.Skipped++
			continue
		}

		existing, found, err := findByEAN(ctx, cat, product.EAN)
		if err != nil {
			return result, fmt.Errorf("record %d (%s): %w", idx+1, product.Name, err)
		}
		if found {
			product.ID = existing.ID
			product.Additives = existing.Additives
			if _, err := cat.UpdateProduct(ctx, token, product); err != nil {
				return result, fmt.Errorf("update %q: %w", product.Name, err)
			}
			result.Updated++
			continue
		}
		if _, err := cat.CreateProduct(ctx, token, product); err != nil {
			return result, fmt.Errorf("create %q: %w", product.Name, err)
		}
		result.Created++
	}
	return result, nil
}

func findByEAN(ctx context.Context, cat catalogue, ean string) (models.Product, bool, error) {
	if ean == "" {
		return models.Product{}, false, nil
	}
	page, err := cat.ListProducts(ctx, api.ProductQuery{All: ean, Page: 1})
	if err != nil {
		return models.Product{}, false, fmt.Errorf("find product by ean %q: %w", ean, err)
	}
	for _, product := range page.Products {
		if product.EAN == ean {
			return product, true, nil
		}
	}
	return models.Product{}, false, nil
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[strings.TrimSpace(key)] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

func buildProduct(row map[string]string) (models.Product, bool) {
	name := normalizeText(row["Name"])
	if name == "" {
		return models.Product{}, false
	}

	labels := make([]string, 0)
	for _, label := range strings.Split(normalizeValue(row["Labels"]), ",") {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}

	return models.Product{
		Name:                 name,
		Brand:                normalizeText(row["Brand"]),
		EAN:                  normalizeValue(row["EAN"]),
		Ingredients:          inci.Parse(normalizeValue(row["Ingredients"])),
		Additives:            []models.Additive{},
		LabelTags:            labels,
		NaturalPercentage:    parseShare(row["Natural %"]),
		ChemicalPercentage:   parseShare(row["Chemical %"]),
		CompletionPercentage: parseShare(row["Completion %"]),
		Effects:              []models.EffectRecord{},
	}, true
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	value = normalizeValue(value)
	if value == "" {
		return value
	}
	value = cleanWhitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// parseShare reads the first number of value as a percentage. Missing or out of
// range values are unknown.
func parseShare(value string) *float64 {
	value = normalizeValue(value)
	if value == "" {
		return nil
	}

	match := numberPattern.FindString(value)
	if match == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil || parsed < 0 || parsed > 100 {
		return nil
	}
	return &parsed
}
