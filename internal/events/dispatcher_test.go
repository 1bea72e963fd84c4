package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_PublishInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string

	d.Subscribe(EventComplaintCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventComplaintCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventComplaintDeleted, func(_ context.Context, e Event) error {
		got = append(got, "deleted")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventComplaintCreated, 1, time.Now(), nil)))
	assert.Equal(t, []string{"first:complaint_created", "second:complaint_created"}, got)
}

func TestDispatcher_ReportsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("webhook down")
	called := false

	d.Subscribe(EventComplaintOverdue, func(context.Context, Event) error { return boom })
	d.Subscribe(EventComplaintOverdue, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), New(EventComplaintOverdue, 9, time.Now(), ComplaintOverduePayload{}))
	assert.ErrorIs(t, err, boom)
	assert.True(t, called)
}

func TestNew(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := New(EventComplaintStatusChanged, 42, at, ComplaintStatusChangedPayload{OldStatus: "open", NewStatus: "in_progress"})

	_, err := uuid.Parse(e.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), e.ComplaintID)
	assert.Equal(t, at, e.Timestamp)
	assert.NotEqual(t, e.ID, New(EventComplaintStatusChanged, 42, at, nil).ID)
}

func TestDispatcher_WildcardAndPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []EventType

	d.Subscribe(EventComplaintDeleted, func(context.Context, Event) error {
		panic("nil payload")
	})
	d.SubscribeAll(func(_ context.Context, e Event) error {
		seen = append(seen, e.Type)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventComplaintCreated, 1, time.Now(), nil)))
	err := d.Publish(context.Background(), New(EventComplaintDeleted, 1, time.Now(), nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: nil payload")
	assert.Equal(t, []EventType{EventComplaintCreated, EventComplaintDeleted}, seen)
}
