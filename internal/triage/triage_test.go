package triage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestPriorityFor(t *testing.T) {
	conf := domain.Confidence{Category: 0.9, Sentiment: 0.9}

	for _, category := range domain.Categories {
		assert.Equal(t, domain.PriorityHigh, PriorityFor(category, domain.SentimentNegative, conf), category)
		assert.Equal(t, domain.PriorityLow, PriorityFor(category, domain.SentimentPositive, conf), category)
	}

	neutralMedium := map[domain.ComplaintCategory]bool{
		domain.CategoryBilling:          true,
		domain.CategoryTechnicalSupport: true,
		domain.CategoryRefund:           true,
	}
	for _, category := range domain.Categories {
		want := domain.PriorityLow
		if neutralMedium[category] {
			want = domain.PriorityMedium
		}
		assert.Equal(t, want, PriorityFor(category, domain.SentimentNeutral, conf), category)
	}
}

func TestPriorityFor_IgnoresConfidence(t *testing.T) {
	low := domain.Confidence{Category: 0.01, Sentiment: 0.01}
	high := domain.Confidence{Category: 1, Sentiment: 1}
	assert.Equal(t,
		PriorityFor(domain.CategoryBilling, domain.SentimentNeutral, low),
		PriorityFor(domain.CategoryBilling, domain.SentimentNeutral, high))
}

func TestEngine_Assess(t *testing.T) {
	engine := NewEngine(SLAPolicy{})
	created := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		category  domain.ComplaintCategory
		sentiment domain.Sentiment
		priority  domain.ComplaintPriority
		hours     int
	}{
		{domain.CategoryProductQuality, domain.SentimentNegative, domain.PriorityHigh, 4},
		{domain.CategoryRefund, domain.SentimentNeutral, domain.PriorityMedium, 24},
		{domain.CategoryDelivery, domain.SentimentNeutral, domain.PriorityLow, 72},
	}
	for _, tt := range tests {
		a := engine.Assess(tt.category, tt.sentiment, domain.Confidence{Category: 0.9, Sentiment: 0.85})
		assert.Equal(t, tt.priority, a.Priority)
		assert.Equal(t, tt.hours, a.SLAHours)
		assert.Equal(t, created.Add(time.Duration(tt.hours)*time.Hour), a.DueAt(created))
		assert.False(t, a.DueAt(created).Before(created))
	}
}

func TestEngine_CustomPolicy(t *testing.T) {
	engine := NewEngine(SLAPolicy{HighHours: 1, MediumHours: 8})
	assert.Equal(t, SLAPolicy{HighHours: 1, MediumHours: 8, LowHours: 72}, engine.Policy())

	a := engine.Assess(domain.CategoryAccount, domain.SentimentNegative, domain.Confidence{})
	assert.Equal(t, 1, a.SLAHours)
	assert.Contains(t, engine.SuggestedAction(domain.CategoryAccount, domain.PriorityHigh), "within 1 hour.")
}

func TestSuggestedAction_IsTotal(t *testing.T) {
	engine := NewEngine(DefaultSLAPolicy())
	for _, category := range domain.Categories {
		for _, priority := range domain.Priorities {
			_, ok := actions[actionKey{category, priority}]
			assert.True(t, ok, "missing action for %s/%s", category, priority)
			assert.NotEmpty(t, engine.SuggestedAction(category, priority))
		}
	}

	assert.Equal(t,
		"Escalate to billing specialist within 4 hours. Review billing records and prepare a refund or credit authorization.",
		engine.SuggestedAction(domain.CategoryBilling, domain.PriorityHigh))

	fallback := engine.SuggestedAction("Warranty Claims", domain.PriorityMedium)
	assert.True(t, strings.HasPrefix(fallback, "Email customer and assign to senior specialist within 24 hours."))

	unknown := engine.SuggestedAction("Warranty Claims", "urgent")
	assert.True(t, strings.HasPrefix(unknown, "Route to standard queue within 72 hours."))
}
