package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

type memoryComplaintRepository struct {
	mu      sync.RWMutex
	nextID  int64
	version int64
	records map[int64]*domain.Complaint
}

// NewMemoryComplaintRepository returns a process-local store guarded by a
// single RWMutex. Callers always receive copies.
func NewMemoryComplaintRepository() ComplaintRepository {
	return &memoryComplaintRepository{records: make(map[int64]*domain.Complaint)}
}

func (r *memoryComplaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	complaint.ID = r.nextID
	r.records[complaint.ID] = detach(complaint)
	r.version++
	return nil
}

func (r *memoryComplaintRepository) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (r *memoryComplaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	result := make([]domain.Complaint, 0, len(r.records))
	for _, c := range r.records {
		if filter.Matches(c) {
			result = append(result, *c.Clone())
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(result)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *memoryComplaintRepository) Transition(ctx context.Context, id int64, next domain.ComplaintStatus, at time.Time) (*domain.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := domain.ValidateTransition(c.Status, next); err != nil {
		return nil, err
	}
	updated := c.Clone()
	updated.Status = domain.ComplaintStatus(strings.Clone(string(next)))
	if next == domain.StatusResolved {
		resolvedAt := at
		updated.ResolvedAt = &resolvedAt
	}
	r.records[id] = updated
	r.version++
	return updated.Clone(), nil
}

func (r *memoryComplaintRepository) Delete(ctx context.Context, id int64) (*domain.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	removed, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.records, id)
	r.version++
	return removed, nil
}

func (r *memoryComplaintRepository) Snapshot(ctx context.Context) ([]domain.Complaint, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	result := make([]domain.Complaint, 0, len(r.records))
	for _, c := range r.records {
		result = append(result, *c.Clone())
	}
	version := r.version
	r.mu.RUnlock()

	sortNewestFirst(result)
	return result, version, nil
}

func (r *memoryComplaintRepository) Version(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version, nil
}

func (r *memoryComplaintRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func sortNewestFirst(items []domain.Complaint) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}

// detach copies every string field so the stored record shares no memory
// with caller-owned buffers.
func detach(c *domain.Complaint) *domain.Complaint {
	cp := c.Clone()
	cp.CustomerName = strings.Clone(c.CustomerName)
	cp.CustomerEmail = strings.Clone(c.CustomerEmail)
	cp.Text = strings.Clone(c.Text)
	cp.Category = domain.ComplaintCategory(strings.Clone(string(c.Category)))
	cp.Sentiment = domain.Sentiment(strings.Clone(string(c.Sentiment)))
	cp.Priority = domain.ComplaintPriority(strings.Clone(string(c.Priority)))
	cp.Status = domain.ComplaintStatus(strings.Clone(string(c.Status)))
	return cp
}
