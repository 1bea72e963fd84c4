// Package triage derives priority, response deadline, and a recommended
// action from a classifier verdict. Everything here is a pure function of
// its inputs.
package triage

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// SLAPolicy maps priorities to response windows in hours.
type SLAPolicy struct {
	HighHours   int
	MediumHours int
	LowHours    int
}

// DefaultSLAPolicy is 4h / 24h / 72h.
func DefaultSLAPolicy() SLAPolicy {
	return SLAPolicy{HighHours: 4, MediumHours: 24, LowHours: 72}
}

// Hours returns the window for p; unknown priorities get the low window.
func (p SLAPolicy) Hours(priority domain.ComplaintPriority) int {
	switch priority {
	case domain.PriorityHigh:
		return p.HighHours
	case domain.PriorityMedium:
		return p.MediumHours
	default:
		return p.LowHours
	}
}

// Assessment is the engine's output for one complaint.
type Assessment struct {
	Priority domain.ComplaintPriority
	SLAHours int
}

// DueAt returns created + SLA window.
func (a Assessment) DueAt(created time.Time) time.Time {
	return created.Add(time.Duration(a.SLAHours) * time.Hour)
}

// Engine applies the priority table and SLA policy.
type Engine struct {
	policy SLAPolicy
}

// NewEngine builds an engine; zero or negative windows take the defaults.
func NewEngine(policy SLAPolicy) *Engine {
	def := DefaultSLAPolicy()
	if policy.HighHours <= 0 {
		policy.HighHours = def.HighHours
	}
	if policy.MediumHours <= 0 {
		policy.MediumHours = def.MediumHours
	}
	if policy.LowHours <= 0 {
		policy.LowHours = def.LowHours
	}
	return &Engine{policy: policy}
}

// Policy returns the effective SLA policy.
func (e *Engine) Policy() SLAPolicy {
	return e.policy
}

var mediumWhenNeutral = map[domain.ComplaintCategory]bool{
	domain.CategoryBilling:          true,
	domain.CategoryTechnicalSupport: true,
	domain.CategoryRefund:           true,
}

// PriorityFor applies the fixed table. Confidence does not affect the tier.
func PriorityFor(category domain.ComplaintCategory, sentiment domain.Sentiment, _ domain.Confidence) domain.ComplaintPriority {
	switch {
	case sentiment == domain.SentimentNegative:
		return domain.PriorityHigh
	case sentiment == domain.SentimentNeutral && mediumWhenNeutral[category]:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// Assess returns priority and SLA hours.
func (e *Engine) Assess(category domain.ComplaintCategory, sentiment domain.Sentiment, confidence domain.Confidence) Assessment {
	priority := PriorityFor(category, sentiment, confidence)
	return Assessment{Priority: priority, SLAHours: e.policy.Hours(priority)}
}
