package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		current ComplaintStatus
		next    ComplaintStatus
		want    bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusInProgress, StatusResolved, true},
		{StatusOpen, StatusResolved, false},
		{StatusOpen, StatusOpen, false},
		{StatusInProgress, StatusOpen, false},
		{StatusInProgress, StatusInProgress, false},
		{StatusResolved, StatusOpen, false},
		{StatusResolved, StatusInProgress, false},
		{StatusResolved, StatusResolved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.current)+"->"+string(tt.next), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.current, tt.next))
			if tt.want {
				assert.NoError(t, ValidateTransition(tt.current, tt.next))
			} else {
				err := ValidateTransition(tt.current, tt.next)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				var te *TransitionError
				if assert.ErrorAs(t, err, &te) {
					assert.Equal(t, tt.current, te.From)
					assert.Equal(t, tt.next, te.To)
				}
			}
		})
	}
}

func TestComplaint_DerivedFields(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	c := &Complaint{
		Status:        StatusOpen,
		CreatedAt:     created,
		ResponseDueAt: created.Add(4 * time.Hour),
	}

	t.Run("before deadline", func(t *testing.T) {
		now := created.Add(90 * time.Minute)
		assert.False(t, c.IsOverdue(now))
		remaining := c.HoursRemaining(now)
		require.NotNil(t, remaining)
		assert.InDelta(t, 2.5, *remaining, 0.001)
	})

	t.Run("exactly at deadline is not overdue", func(t *testing.T) {
		assert.False(t, c.IsOverdue(c.ResponseDueAt))
	})

	t.Run("after deadline", func(t *testing.T) {
		now := created.Add(5 * time.Hour)
		assert.True(t, c.IsOverdue(now))
		remaining := c.HoursRemaining(now)
		require.NotNil(t, remaining)
		assert.Zero(t, *remaining)
	})

	t.Run("resolved is never overdue", func(t *testing.T) {
		resolvedAt := created.Add(10 * time.Hour)
		resolved := c.Clone()
		resolved.Status = StatusResolved
		resolved.ResolvedAt = &resolvedAt

		assert.False(t, resolved.IsOverdue(created.Add(1000*time.Hour)))
		assert.Nil(t, resolved.HoursRemaining(created.Add(time.Hour)))

		met, ok := resolved.MetSLA()
		assert.True(t, ok)
		assert.False(t, met)

		took, ok := resolved.ResponseTime()
		assert.True(t, ok)
		assert.Equal(t, 10*time.Hour, took)
	})
}

func TestComplaint_CloneIsDeep(t *testing.T) {
	at := time.Now()
	c := &Complaint{ID: 1, Status: StatusResolved, ResolvedAt: &at}
	cp := c.Clone()
	later := at.Add(time.Hour)
	*cp.ResolvedAt = later

	assert.True(t, c.ResolvedAt.Equal(at))
}

func TestEnumValidity(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid())
	}
	assert.False(t, ComplaintCategory("Shipping").Valid())
	assert.False(t, Sentiment("angry").Valid())
	assert.False(t, ComplaintPriority("urgent").Valid())
	assert.False(t, ComplaintStatus("closed").Valid())

	assert.True(t, Confidence{Category: 0, Sentiment: 1}.Valid())
	assert.False(t, Confidence{Category: 1.01, Sentiment: 0.5}.Valid())
	assert.False(t, Confidence{Category: 0.5, Sentiment: -0.1}.Valid())
}
