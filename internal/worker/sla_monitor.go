package worker

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// SLAMonitor periodically publishes complaint_overdue once for every
// unresolved complaint past its response deadline.
type SLAMonitor struct {
	complaints repository.ComplaintRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	schedule   cron.Schedule
	spec       string
	now        func() time.Time

	mu       sync.Mutex
	notified map[int64]struct{}
}

// NewSLAMonitor parses a standard 5-field cron expression. An empty
// expression disables the monitor and returns nil.
func NewSLAMonitor(spec string, complaints repository.ComplaintRepository, dispatcher events.Dispatcher, logger *zap.Logger) (*SLAMonitor, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid SLA monitor schedule %q: %w", spec, err)
	}
	return &SLAMonitor{
		complaints: complaints,
		dispatcher: dispatcher,
		logger:     logger,
		schedule:   schedule,
		spec:       spec,
		now:        func() time.Time { return time.Now().UTC() },
		notified:   make(map[int64]struct{}),
	}, nil
}

// Scan publishes events for newly overdue complaints and returns how many
// were published.
func (m *SLAMonitor) Scan(ctx context.Context) (int, error) {
	snapshot, _, err := m.complaints.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	live := make(map[int64]struct{}, len(snapshot))
	published := 0
	for i := range snapshot {
		c := &snapshot[i]
		if !c.IsOverdue(now) {
			continue
		}
		live[c.ID] = struct{}{}
		if _, seen := m.notified[c.ID]; seen {
			continue
		}
		overdue := math.Round(now.Sub(c.ResponseDueAt).Hours()*100) / 100
		event := events.New(events.EventComplaintOverdue, c.ID, now, events.ComplaintOverduePayload{
			Priority:      c.Priority,
			ResponseDueAt: c.ResponseDueAt,
			OverdueHours:  overdue,
		})
		if err := m.dispatcher.Publish(ctx, event); err != nil {
			m.logger.Warn("overdue notification failed", zap.Int64("complaint_id", c.ID), zap.Error(err))
		}
		m.notified[c.ID] = struct{}{}
		published++
	}
	// Forget complaints that were resolved or deleted since the last scan.
	for id := range m.notified {
		if _, ok := live[id]; !ok {
			delete(m.notified, id)
		}
	}
	return published, nil
}

// Run scans on every schedule tick until ctx is done.
func (m *SLAMonitor) Run(ctx context.Context) {
	m.logger.Info("SLA monitor scheduled", zap.String("cron", m.spec))
	for {
		now := m.now()
		next := m.schedule.Next(now)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			m.logger.Info("SLA monitor stopped")
			return
		case <-timer.C:
		}

		count, err := m.Scan(ctx)
		if err != nil {
			m.logger.Error("SLA scan failed", zap.Error(err))
			continue
		}
		if count > 0 {
			m.logger.Info("SLA scan complete", zap.Int("newly_overdue", count))
		}
	}
}
