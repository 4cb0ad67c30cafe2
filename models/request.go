package models

// CauseRequest is the payload for creating or replacing a cause. Updates
// deliberately require the full payload, same as creation.
type CauseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	ImageURL    string `json:"image_url" binding:"required"`
}

// ContributionRequest is the payload for recording a contribution. Amount is
// a pointer so that an explicit 0 passes while a missing key is rejected.
type ContributionRequest struct {
	Name   string   `json:"name" binding:"required"`
	Email  string   `json:"email" binding:"required,email"`
	Amount *float64 `json:"amount" binding:"required,gte=0"`
}

// ContributionSummary aggregates all contributions recorded for a cause.
type ContributionSummary struct {
	ContributionCount int            `json:"contribution_count"`
	TotalAmount       float64        `json:"total_amount"`
	Contributions     []Contribution `json:"contributions"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
