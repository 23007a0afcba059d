package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"switchmarket/models"
)

type additiveListResponse struct {
	envelope
	Additives []models.AdditiveInfo `json:"additives"`
}

type labelListResponse struct {
	envelope
	Labels []models.Label `json:"labels"`
}

type effectListResponse struct {
	envelope
	Effects []models.EffectRecord `json:"effects"`
}

type newsListResponse struct {
	envelope
	News []models.News `json:"news"`
}

// ListAdditives returns the additive reference catalogue.
func (c *Client) ListAdditives(ctx context.Context) ([]models.AdditiveInfo, error) {
	return c.additives(ctx, "/additives")
}

// SearchAdditivesByTag returns additives whose tag matches q.
func (c *Client) SearchAdditivesByTag(ctx context.Context, q string) ([]models.AdditiveInfo, error) {
	return c.additives(ctx, "/additives/tag/"+url.PathEscape(q))
}

// RandomAdditives returns n additives picked by the API.
func (c *Client) RandomAdditives(ctx context.Context, n int) ([]models.AdditiveInfo, error) {
	return c.additives(ctx, "/additives/random/"+strconv.Itoa(n))
}

func (c *Client) additives(ctx context.Context, path string) ([]models.AdditiveInfo, error) {
	var resp additiveListResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &resp); err != nil {
		return nil, err
	}
	if !resp.Result || resp.Additives == nil {
		return []models.AdditiveInfo{}, nil
	}
	return resp.Additives, nil
}

// ListLabels returns every label known to the API.
func (c *Client) ListLabels(ctx context.Context) ([]models.Label, error) {
	var resp labelListResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/labels"}, &resp); err != nil {
		return nil, err
	}
	if !resp.Result || resp.Labels == nil {
		return []models.Label{}, nil
	}
	return resp.Labels, nil
}

// SearchEffects returns the effect records the API associates with an ingredient query.
func (c *Client) SearchEffects(ctx context.Context, query string) ([]models.EffectRecord, error) {
	var resp effectListResponse
	values := url.Values{}
	values.Set("query", query)
	if err := c.do(ctx, request{method: http.MethodGet, path: "/effects/search", query: values}, &resp); err != nil {
		return nil, err
	}
	if !resp.Result || resp.Effects == nil {
		return []models.EffectRecord{}, nil
	}
	return resp.Effects, nil
}

// ListNews returns the editorial feed.
func (c *Client) ListNews(ctx context.Context) ([]models.News, error) {
	var resp newsListResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/news"}, &resp); err != nil {
		return nil, err
	}
	if !resp.Result || resp.News == nil {
		return []models.News{}, nil
	}
	return resp.News, nil
}
