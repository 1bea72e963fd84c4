package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ErrNotFound is returned when no complaint has the requested id.
var ErrNotFound = errors.New("complaint not found")

// ComplaintFilter holds optional exact-match predicates, ANDed together.
// Nil fields do not constrain. Limit caps the newest-first listing; zero
// means no cap.
type ComplaintFilter struct {
	Category  *domain.ComplaintCategory
	Sentiment *domain.Sentiment
	Priority  *domain.ComplaintPriority
	Status    *domain.ComplaintStatus
	Limit     int
}

// Matches reports whether c satisfies every set predicate.
func (f ComplaintFilter) Matches(c *domain.Complaint) bool {
	if f.Category != nil && c.Category != *f.Category {
		return false
	}
	if f.Sentiment != nil && c.Sentiment != *f.Sentiment {
		return false
	}
	if f.Priority != nil && c.Priority != *f.Priority {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	return true
}

// ComplaintRepository encapsulates complaint persistence. Listings are
// ordered newest first (created_at DESC, id DESC) on every backend.
type ComplaintRepository interface {
	// Create assigns ID and stores the complaint in one step.
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id int64) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	// Transition moves the complaint to next if the lifecycle allows it,
	// stamping ResolvedAt with at when resolving.
	Transition(ctx context.Context, id int64, next domain.ComplaintStatus, at time.Time) (*domain.Complaint, error)
	// Delete removes the complaint and returns the record as it was at removal.
	Delete(ctx context.Context, id int64) (*domain.Complaint, error)
	// Snapshot returns every record along with the store version it was read at.
	Snapshot(ctx context.Context) ([]domain.Complaint, int64, error)
	// Version increases on every successful write.
	Version(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
