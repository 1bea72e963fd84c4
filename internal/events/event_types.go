package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintDeleted       EventType = "complaint_deleted"
	EventComplaintOverdue       EventType = "complaint_overdue"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ComplaintID int64     `json:"complaint_id"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, complaintID int64, at time.Time, payload any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ComplaintID: complaintID,
		Timestamp:   at,
		Payload:     payload,
	}
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Category      domain.ComplaintCategory `json:"category"`
	Sentiment     domain.Sentiment         `json:"sentiment"`
	Priority      domain.ComplaintPriority `json:"priority"`
	ResponseDueAt time.Time                `json:"response_due_at"`
	CustomerEmail string                   `json:"customer_email"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintDeletedPayload payload.
type ComplaintDeletedPayload struct {
	Status domain.ComplaintStatus `json:"status"`
}

// ComplaintOverduePayload payload.
type ComplaintOverduePayload struct {
	Priority      domain.ComplaintPriority `json:"priority"`
	ResponseDueAt time.Time                `json:"response_due_at"`
	OverdueHours  float64                  `json:"overdue_hours"`
}
