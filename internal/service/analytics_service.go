package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/analytics"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// AnalyticsService computes the dashboard report from the current store.
type AnalyticsService struct {
	complaints repository.ComplaintRepository
	cache      analytics.Cache
	topIssues  int
	logger     *zap.Logger
	now        func() time.Time
}

// NewAnalyticsService constructs the service. cache may be nil.
func NewAnalyticsService(complaints repository.ComplaintRepository, cache analytics.Cache, topIssues int, logger *zap.Logger, clock func() time.Time) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &AnalyticsService{
		complaints: complaints,
		cache:      cache,
		topIssues:  topIssues,
		logger:     logger,
		now:        clock,
	}
}

// Report returns analytics for the latest store state. A cached report is
// only reused when it was computed from the same store version.
func (s *AnalyticsService) Report(ctx context.Context) (*analytics.Report, error) {
	if s.cache != nil {
		version, err := s.complaints.Version(ctx)
		if err != nil {
			return nil, errorutil.NewInternalError(err)
		}
		cached, ok, err := s.cache.Get(ctx, version)
		if err != nil {
			s.logger.Warn("analytics cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	snapshot, version, err := s.complaints.Snapshot(ctx)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	report := analytics.Compute(snapshot, s.now(), s.topIssues)

	if s.cache != nil {
		if err := s.cache.Set(ctx, version, report); err != nil {
			s.logger.Warn("analytics cache write failed", zap.Error(err))
		}
	}
	return &report, nil
}
