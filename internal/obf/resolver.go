// Package obf resolves product images through OpenBeautyFacts.
package obf

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	applog "switchmarket/internal/log"
	"switchmarket/models"
)

// Placeholder is served when no image could be found.
const Placeholder = "/assets/img/placeholder.svg"

const (
	defaultBaseURL      = "https://world.openbeautyfacts.org"
	defaultImageBaseURL = "https://images.openbeautyfacts.org"
	defaultTimeout      = 5 * time.Second
	defaultCacheTTL     = 24 * time.Hour
)

// Cache stores resolved images by barcode.
type Cache interface {
	Get(ctx context.Context, ean string) (models.ImageLookup, bool, error)
	Put(ctx context.Context, lookup models.ImageLookup) error
}

// Config configures a Resolver.
type Config struct {
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration
	CacheTTL     time.Duration
	HTTPClient   *http.Client
}

// Resolver finds the front image of a product: first through the product API,
// then through the deterministic image path (probed with HEAD), then the placeholder.
type Resolver struct {
	baseURL      string
	imageBaseURL string
	ttl          time.Duration
	httpClient   *http.Client
	cache        Cache
	group        singleflight.Group
	now          func() time.Time
}

// NewResolver builds a Resolver. cache may be nil.
func NewResolver(cfg Config, cache Cache) *Resolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Resolver{
		baseURL:      strings.TrimRight(firstNonEmpty(cfg.BaseURL, defaultBaseURL), "/"),
		imageBaseURL: strings.TrimRight(firstNonEmpty(cfg.ImageBaseURL, defaultImageBaseURL), "/"),
		ttl:          ttl,
		httpClient:   httpClient,
		cache:        cache,
		now:          time.Now,
	}
}

// Resolve returns an image URL for ean. It never fails; the placeholder is the
// last resort.
func (r *Resolver) Resolve(ctx context.Context, ean string) string {
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return Placeholder
	}

	if r.cache != nil {
		lookup, ok, err := r.cache.Get(ctx, ean)
		if err != nil {
			applog.Warn(ctx, "image cache read failed", "ean", ean, "error", err)
		} else if ok && r.now().Sub(lookup.CheckedAt) < r.ttl {
			return lookup.URL
		}
	}

	v, _, _ := r.group.Do(ean, func() (any, error) {
		return r.lookup(ctx, ean), nil
	})
	res := v.(lookupResult)

	if r.cache != nil && res.definitive {
		if err := r.cache.Put(ctx, res.ImageLookup); err != nil {
			applog.Warn(ctx, "image cache write failed", "ean", ean, "error", err)
		}
	}
	return res.URL
}

// lookupResult is definitive when every source consulted gave a real answer;
// only definitive results are cached.
type lookupResult struct {
	models.ImageLookup
	definitive bool
}

func (r *Resolver) lookup(ctx context.Context, ean string) lookupResult {
	res := lookupResult{ImageLookup: models.ImageLookup{EAN: ean, CheckedAt: r.now()}, definitive: true}

	image, err := r.productImage(ctx, ean)
	if err != nil {
		applog.Debug(ctx, "openbeautyfacts lookup failed", "ean", ean, "error", err)
		res.definitive = false
	} else if image != "" {
		res.URL, res.Source = image, models.ImageSourceOBF
		return res
	}

	if pattern, ok := PatternURL(r.imageBaseURL, ean); ok {
		found, err := r.exists(ctx, pattern)
		if err != nil {
			applog.Debug(ctx, "image probe failed", "url", pattern, "error", err)
			res.definitive = false
		} else if found {
			res.URL, res.Source = pattern, models.ImageSourcePattern
			return res
		}
	}

	res.URL, res.Source = Placeholder, models.ImageSourcePlaceholder
	if ctx.Err() != nil {
		res.definitive = false
	}
	return res
}

type productResponse struct {
	Status  int `json:"status"`
	Product struct {
		ImageFrontURL string `json:"image_front_url"`
		ImageURL      string `json:"image_url"`
	} `json:"product"`
}

func (r *Resolver) productImage(ctx context.Context, ean string) (string, error) {
	target := fmt.Sprintf("%s/api/v0/product/%s.json", r.baseURL, url.PathEscape(ean))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("obf: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("obf: get product %s: %w", ean, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("obf: get product %s: status %d", ean, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	var body productResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("obf: decode product %s: %w", ean, err)
	}
	if body.Status != 1 {
		return "", nil
	}
	return firstNonEmpty(body.Product.ImageFrontURL, body.Product.ImageURL), nil
}

// exists reports whether target answers a HEAD with 200. Transport failures and
// server errors are returned as errors.
func (r *Resolver) exists(ctx context.Context, target string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false, fmt.Errorf("obf: build probe: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("obf: probe %s: %w", target, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return false, fmt.Errorf("obf: probe %s: status %d", target, resp.StatusCode)
	}
	return resp.StatusCode == http.StatusOK, nil
}

// PatternURL builds the conventional front image path of ean: barcodes longer
// than nine digits are split as 3/3/3/rest.
func PatternURL(imageBaseURL, ean string) (string, bool) {
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return "", false
	}
	for _, r := range ean {
		if r < '0' || r > '9' {
			return "", false
		}
	}

	folder := ean
	if len(ean) > 9 {
		folder = ean[0:3] + "/" + ean[3:6] + "/" + ean[6:9] + "/" + ean[9:]
	}
	return strings.TrimRight(imageBaseURL, "/") + "/images/products/" + folder + "/front_fr.3.400.jpg", true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
