package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ComplaintCategory enumerates the classifier's category labels.
type ComplaintCategory string

const (
	CategoryBilling          ComplaintCategory = "Billing Issues"
	CategoryDelivery         ComplaintCategory = "Delivery Issues"
	CategoryTechnicalSupport ComplaintCategory = "Technical Support"
	CategoryProductQuality   ComplaintCategory = "Product Quality"
	CategoryServiceQuality   ComplaintCategory = "Service Quality"
	CategoryRefund           ComplaintCategory = "Refund Requests"
	CategoryAccount          ComplaintCategory = "Account Issues"
)

// Categories lists every category in display order.
var Categories = []ComplaintCategory{
	CategoryBilling,
	CategoryDelivery,
	CategoryTechnicalSupport,
	CategoryProductQuality,
	CategoryServiceQuality,
	CategoryRefund,
	CategoryAccount,
}

// Valid reports whether c is a known category.
func (c ComplaintCategory) Valid() bool {
	for _, candidate := range Categories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Sentiment enumerates the classifier's sentiment labels.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments lists every sentiment.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// Valid reports whether s is a known sentiment.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// ComplaintPriority enumerates SLA urgency tiers.
type ComplaintPriority string

const (
	PriorityHigh   ComplaintPriority = "high"
	PriorityMedium ComplaintPriority = "medium"
	PriorityLow    ComplaintPriority = "low"
)

// Priorities lists every priority, most urgent first.
var Priorities = []ComplaintPriority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is a known priority.
func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ComplaintStatus enumerates lifecycle states.
type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "open"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
)

// Statuses lists every status in lifecycle order.
var Statuses = []ComplaintStatus{StatusOpen, StatusInProgress, StatusResolved}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// ErrInvalidTransition is returned when a status change skips or reverses the lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

var allowedTransitions = map[ComplaintStatus]ComplaintStatus{
	StatusOpen:       StatusInProgress,
	StatusInProgress: StatusResolved,
}

// CanTransition reports whether next is the single forward step from current.
func CanTransition(current, next ComplaintStatus) bool {
	allowed, ok := allowedTransitions[current]
	return ok && allowed == next
}

// TransitionError records a rejected status change. It matches ErrInvalidTransition.
type TransitionError struct {
	From ComplaintStatus
	To   ComplaintStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ValidateTransition returns a *TransitionError unless the move is allowed.
func ValidateTransition(current, next ComplaintStatus) error {
	if !CanTransition(current, next) {
		return &TransitionError{From: current, To: next}
	}
	return nil
}

// Confidence holds the classifier's per-axis probabilities.
type Confidence struct {
	Category  float64
	Sentiment float64
}

// Valid reports whether both scores lie in [0, 1].
func (c Confidence) Valid() bool {
	return inUnitRange(c.Category) && inUnitRange(c.Sentiment)
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Complaint is the aggregate for a customer-submitted issue.
type Complaint struct {
	ID            int64
	CustomerName  string
	CustomerEmail string
	Text          string
	Category      ComplaintCategory
	Sentiment     Sentiment
	Confidence    Confidence
	Priority      ComplaintPriority
	Status        ComplaintStatus
	CreatedAt     time.Time
	ResponseDueAt time.Time
	ResolvedAt    *time.Time
}

// IsResolved reports whether the complaint reached the terminal status.
func (c *Complaint) IsResolved() bool {
	return c.Status == StatusResolved
}

// IsOverdue reports whether the SLA deadline passed without resolution.
func (c *Complaint) IsOverdue(now time.Time) bool {
	return !c.IsResolved() && now.After(c.ResponseDueAt)
}

// HoursRemaining returns hours left until the deadline, floored at zero; nil once resolved.
func (c *Complaint) HoursRemaining(now time.Time) *float64 {
	if c.IsResolved() {
		return nil
	}
	remaining := c.ResponseDueAt.Sub(now).Hours()
	if remaining < 0 {
		remaining = 0
	}
	remaining = math.Round(remaining*100) / 100
	return &remaining
}

// ResponseTime returns created-to-resolved duration for resolved complaints.
func (c *Complaint) ResponseTime() (time.Duration, bool) {
	if !c.IsResolved() || c.ResolvedAt == nil {
		return 0, false
	}
	return c.ResolvedAt.Sub(c.CreatedAt), true
}

// MetSLA reports whether the complaint was resolved at or before its deadline.
func (c *Complaint) MetSLA() (bool, bool) {
	if !c.IsResolved() || c.ResolvedAt == nil {
		return false, false
	}
	return !c.ResolvedAt.After(c.ResponseDueAt), true
}

// Clone returns a deep copy safe to hand across goroutines.
func (c *Complaint) Clone() *Complaint {
	cp := *c
	if c.ResolvedAt != nil {
		resolved := *c.ResolvedAt
		cp.ResolvedAt = &resolved
	}
	return &cp
}
