package models

import "time"

// Contribution statuses.
const (
	ContributionPending  = "pending"
	ContributionApproved = "approved"
	ContributionRejected = "rejected"
)

// Contribution is a user-submitted correction or new product awaiting moderation.
type Contribution struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId,omitempty"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Product   Product   `json:"product"`
	Comment   string    `json:"comment,omitempty"`
	Author    *User     `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
