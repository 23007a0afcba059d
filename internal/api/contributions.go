package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"switchmarket/models"
)

// ContributionInput is a user submission for moderation.
type ContributionInput struct {
	ProductID string         `json:"productId,omitempty"`
	Type      string         `json:"type"`
	Product   models.Product `json:"product"`
	Comment   string         `json:"comment,omitempty"`
}

// ContributionReview is the moderation decision for a contribution.
type ContributionReview struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

type contributionListResponse struct {
	envelope
	Contributions []models.Contribution `json:"contributions"`
}

type contributionResponse struct {
	envelope
	Contribution *models.Contribution `json:"contribution"`
}

// ListContributions returns contributions, optionally filtered by status.
func (c *Client) ListContributions(ctx context.Context, token, status string) ([]models.Contribution, error) {
	var query url.Values
	if status = strings.TrimSpace(status); status != "" {
		query = url.Values{"status": []string{status}}
	}
	var resp contributionListResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/contributions", query: query, token: token}, &resp); err != nil {
		return nil, err
	}
	if !resp.Result || resp.Contributions == nil {
		return []models.Contribution{}, nil
	}
	return resp.Contributions, nil
}

// SubmitContribution files a contribution on behalf of the token owner.
func (c *Client) SubmitContribution(ctx context.Context, token string, input ContributionInput) (models.Contribution, error) {
	var resp contributionResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/contributions", token: token, body: input}, &resp); err != nil {
		return models.Contribution{}, err
	}
	if !resp.Result || resp.Contribution == nil {
		return models.Contribution{}, &Error{Status: http.StatusBadRequest, Message: firstNonEmpty(resp.Message, "contribution was not saved")}
	}
	return *resp.Contribution, nil
}

// ReviewContribution approves or rejects a contribution. Requires an administrator token.
func (c *Client) ReviewContribution(ctx context.Context, token, id string, review ContributionReview) (models.Contribution, error) {
	if strings.TrimSpace(id) == "" {
		return models.Contribution{}, errors.New("api: contribution id must not be empty")
	}
	switch review.Status {
	case models.ContributionApproved, models.ContributionRejected, models.ContributionPending:
	default:
		return models.Contribution{}, errors.New("api: unknown contribution status " + review.Status)
	}
	var resp contributionResponse
	path := "/contributions/" + url.PathEscape(id)
	if err := c.do(ctx, request{method: http.MethodPut, path: path, token: token, body: review}, &resp); err != nil {
		return models.Contribution{}, err
	}
	if !resp.Result || resp.Contribution == nil {
		return models.Contribution{}, &Error{Status: http.StatusBadRequest, Message: firstNonEmpty(resp.Message, "contribution was not updated")}
	}
	return *resp.Contribution, nil
}
