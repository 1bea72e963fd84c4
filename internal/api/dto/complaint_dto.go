package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Text          string `json:"text"`
}

// ConfidenceResponse carries the classifier's per-axis scores.
type ConfidenceResponse struct {
	Category  float64 `json:"category"`
	Sentiment float64 `json:"sentiment"`
}

// ComplaintResponse is the full complaint record including read-time fields.
type ComplaintResponse struct {
	ID              int64                    `json:"id"`
	CustomerName    string                   `json:"customer_name"`
	CustomerEmail   string                   `json:"customer_email"`
	Text            string                   `json:"text"`
	Category        domain.ComplaintCategory `json:"category"`
	Sentiment       domain.Sentiment         `json:"sentiment"`
	Priority        domain.ComplaintPriority `json:"priority"`
	Status          domain.ComplaintStatus   `json:"status"`
	SuggestedAction string                   `json:"suggested_action"`
	Confidence      ConfidenceResponse       `json:"confidence"`
	CreatedAt       time.Time                `json:"created_at"`
	ResponseDueAt   time.Time                `json:"response_due_at"`
	ResolvedAt      *time.Time               `json:"resolved_at"`
	HoursRemaining  *float64                 `json:"hours_remaining"`
	IsOverdue       bool                     `json:"is_overdue"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
