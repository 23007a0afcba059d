package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"switchmarket/models"
)

// ProductQuery selects a page of the product listing.
type ProductQuery struct {
	All   string
	Page  int
	Limit int
}

// Values encodes the query the way the listing endpoint expects it.
func (q ProductQuery) Values() url.Values {
	values := url.Values{}
	values.Set("all", q.All)
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

// ProductPage is one page of normalised products plus the server paging metadata, if any.
type ProductPage struct {
	Products   []models.Product
	Pagination *models.Pagination
}

// rawProduct accepts the loosely shaped product records served by the API.
type rawProduct struct {
	ID          string              `json:"id"`
	ObjectID    string              `json:"_id"`
	Name        string              `json:"name"`
	Brand       string              `json:"brand"`
	EAN         string              `json:"ean"`
	Barcode     string              `json:"barcode"`
	Ingredients []models.Ingredient `json:"ingredients"`
	Additives   []models.Additive   `json:"additives"`
	LabelTags   []string            `json:"labeltags"`
	Completion  *float64            `json:"completionPercentage"`
	Natural     *float64            `json:"naturalPercentage"`
	Chemical    *float64            `json:"chemicalPercentage"`
}

type productListResponse struct {
	envelope
	Products   []rawProduct       `json:"products"`
	Pagination *models.Pagination `json:"pagination"`
}

type productResponse struct {
	envelope
	Product *rawProduct `json:"product"`
}

// normalizeProduct is the single place where optional API fields receive their defaults.
func normalizeProduct(raw rawProduct) models.Product {
	product := models.Product{
		ID:                   firstNonEmpty(raw.ID, raw.ObjectID),
		Name:                 strings.TrimSpace(raw.Name),
		Brand:                strings.TrimSpace(raw.Brand),
		EAN:                  firstNonEmpty(raw.EAN, raw.Barcode),
		Ingredients:          make([]models.Ingredient, 0, len(raw.Ingredients)),
		Additives:            make([]models.Additive, 0, len(raw.Additives)),
		LabelTags:            make([]string, 0, len(raw.LabelTags)),
		CompletionPercentage: raw.Completion,
		NaturalPercentage:    raw.Natural,
		ChemicalPercentage:   raw.Chemical,
		Effects:              []models.EffectRecord{},
	}
	for _, ingredient := range raw.Ingredients {
		text := strings.TrimSpace(ingredient.Text)
		if text == "" {
			continue
		}
		product.Ingredients = append(product.Ingredients, models.Ingredient{Text: text, Percent: ingredient.Percent})
	}
	for _, additive := range raw.Additives {
		if strings.TrimSpace(additive.Tag) == "" {
			continue
		}
		additive.Tag = strings.TrimSpace(additive.Tag)
		product.Additives = append(product.Additives, additive)
	}
	for _, tag := range raw.LabelTags {
		if tag = strings.TrimSpace(tag); tag != "" {
			product.LabelTags = append(product.LabelTags, tag)
		}
	}
	return product
}

func normalizeProducts(raw []rawProduct) []models.Product {
	products := make([]models.Product, 0, len(raw))
	for _, item := range raw {
		products = append(products, normalizeProduct(item))
	}
	return products
}

// ListProducts fetches one page of the product listing.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (ProductPage, error) {
	var resp productListResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products", query: q.Values()}, &resp); err != nil {
		return ProductPage{}, err
	}
	if !resp.Result || resp.Products == nil {
		return ProductPage{Products: []models.Product{}, Pagination: resp.Pagination}, nil
	}
	return ProductPage{Products: normalizeProducts(resp.Products), Pagination: resp.Pagination}, nil
}

// GetProduct loads a single product by identifier.
func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var resp productResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products/" + url.PathEscape(id)}, &resp); err != nil {
		return models.Product{}, err
	}
	if !resp.Result || resp.Product == nil {
		return models.Product{}, &Error{Status: http.StatusNotFound, Message: firstNonEmpty(resp.Message, "product not found")}
	}
	return normalizeProduct(*resp.Product), nil
}

// RandomProducts returns n products picked by the API.
func (c *Client) RandomProducts(ctx context.Context, n int) ([]models.Product, error) {
	var resp productListResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products/random/" + strconv.Itoa(n)}, &resp); err != nil {
		return nil, err
	}
	if !resp.Result || resp.Products == nil {
		return []models.Product{}, nil
	}
	return normalizeProducts(resp.Products), nil
}

// CreateProduct submits a new product. Requires an administrator token.
func (c *Client) CreateProduct(ctx context.Context, token string, product models.Product) (models.Product, error) {
	var resp productResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/products", token: token, body: product}, &resp); err != nil {
		return models.Product{}, err
	}
	return productOrInput(resp, product)
}

// UpdateProduct replaces a product wholesale. Requires an administrator token.
func (c *Client) UpdateProduct(ctx context.Context, token string, product models.Product) (models.Product, error) {
	if strings.TrimSpace(product.ID) == "" {
		return models.Product{}, errors.New("api: product id must not be empty")
	}
	var resp productResponse
	path := "/products/" + url.PathEscape(product.ID)
	if err := c.do(ctx, request{method: http.MethodPut, path: path, token: token, body: product}, &resp); err != nil {
		return models.Product{}, err
	}
	return productOrInput(resp, product)
}

// DeleteProduct removes a product. Requires an administrator token.
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("api: product id must not be empty")
	}
	var resp envelope
	return c.do(ctx, request{method: http.MethodDelete, path: "/products/" + url.PathEscape(id), token: token}, &resp)
}

func productOrInput(resp productResponse, input models.Product) (models.Product, error) {
	if resp.Product != nil {
		return normalizeProduct(*resp.Product), nil
	}
	if !resp.Result {
		return models.Product{}, &Error{Status: http.StatusUnprocessableEntity, Message: firstNonEmpty(resp.Message, "product was not saved")}
	}
	return input, nil
}
