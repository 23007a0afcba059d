package models

import "time"

// Label is a certification or claim tag that products may carry.
type Label struct {
	ID          string `json:"id"`
	Tag         string `json:"tag"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// News is an editorial entry shown on the home page.
type News struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Pagination mirrors the paging metadata attached to list responses.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}
