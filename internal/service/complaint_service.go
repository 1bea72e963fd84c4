package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/triage"
	"github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ComplaintService coordinates complaint workflows.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	classifier classifier.Classifier
	engine     *triage.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Classifier    classifier.Classifier
	Engine        *triage.Engine
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Clock         func() time.Time
}

// SubmitComplaintInput is the intake payload.
type SubmitComplaintInput struct {
	CustomerName  string `json:"customer_name" validate:"required,max=100"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	Text          string `json:"text" validate:"required,min=15,max=2000"`
}

// List page size bounds. An empty limit means DefaultListLimit.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ComplaintListFilter holds raw filter values; empty strings are ignored.
type ComplaintListFilter struct {
	Category  string
	Sentiment string
	Priority  string
	Status    string
	Limit     string
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	engine := deps.Engine
	if engine == nil {
		engine = triage.NewEngine(triage.DefaultSLAPolicy())
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		classifier: deps.Classifier,
		engine:     engine,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// Engine exposes the triage engine used for derived fields.
func (s *ComplaintService) Engine() *triage.Engine {
	return s.engine
}

// Now returns the service clock reading.
func (s *ComplaintService) Now() time.Time {
	return s.now()
}

// Submit validates, classifies, triages, and stores a complaint. Nothing is
// stored unless every step succeeds.
func (s *ComplaintService) Submit(ctx context.Context, input SubmitComplaintInput) (*domain.Complaint, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.CustomerEmail = strings.TrimSpace(input.CustomerEmail)
	input.Text = strings.TrimSpace(input.Text)

	if fields := validateStruct("body", input); len(fields) > 0 {
		return nil, errorutil.NewValidationError("invalid complaint", fields)
	}

	result, err := s.classifier.Classify(ctx, input.Text)
	if err == nil {
		err = result.Validate()
	}
	if err != nil {
		s.logger.Warn("classification failed", zap.Error(err))
		return nil, errorutil.NewClassificationUnavailable(err)
	}

	created := s.now()
	assessment := s.engine.Assess(result.Category, result.Sentiment, result.Confidence)
	complaint := &domain.Complaint{
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		Text:          input.Text,
		Category:      result.Category,
		Sentiment:     result.Sentiment,
		Confidence:    result.Confidence,
		Priority:      assessment.Priority,
		Status:        domain.StatusOpen,
		CreatedAt:     created,
		ResponseDueAt: assessment.DueAt(created),
	}

	// The caller may have given up while the classifier was running.
	if err := ctx.Err(); err != nil {
		return nil, errorutil.NewClassificationUnavailable(err)
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, s.storeError(err)
	}

	s.logger.Info("complaint created",
		zap.Int64("complaint_id", complaint.ID),
		zap.String("category", string(complaint.Category)),
		zap.String("sentiment", string(complaint.Sentiment)),
		zap.String("priority", string(complaint.Priority)))
	s.publishEvent(ctx, events.New(events.EventComplaintCreated, complaint.ID, created, events.ComplaintCreatedPayload{
		Category:      complaint.Category,
		Sentiment:     complaint.Sentiment,
		Priority:      complaint.Priority,
		ResponseDueAt: complaint.ResponseDueAt,
		CustomerEmail: complaint.CustomerEmail,
	}))
	return complaint, nil
}

// List returns complaints matching every non-empty filter, newest first.
func (s *ComplaintService) List(ctx context.Context, raw ComplaintListFilter) ([]domain.Complaint, error) {
	filter, err := parseFilter(raw)
	if err != nil {
		return nil, err
	}
	items, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, s.storeError(err)
	}
	return items, nil
}

// Get fetches one complaint.
func (s *ComplaintService) Get(ctx context.Context, id int64) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err, id)
	}
	return complaint, nil
}

// UpdateStatus moves a complaint one step forward in its lifecycle.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id int64, rawStatus string) (*domain.Complaint, error) {
	next := domain.ComplaintStatus(strings.TrimSpace(rawStatus))
	if !next.Valid() {
		return nil, errorutil.NewBadRequest("invalid status", []errorutil.FieldError{
			enumError("query", "status", rawStatus, enumNames(domain.Statuses)),
		})
	}

	at := s.now()
	updated, err := s.complaints.Transition(ctx, id, next, at)
	if err != nil {
		return nil, s.storeError(err, id)
	}

	s.logger.Info("complaint status changed",
		zap.Int64("complaint_id", id),
		zap.String("status", string(updated.Status)))
	s.publishEvent(ctx, events.New(events.EventComplaintStatusChanged, id, at, events.ComplaintStatusChangedPayload{
		OldStatus: previousStatus(updated.Status),
		NewStatus: updated.Status,
	}))
	return updated, nil
}

// Delete removes a complaint. The event carries the status the record had
// when it was removed.
func (s *ComplaintService) Delete(ctx context.Context, id int64) error {
	removed, err := s.complaints.Delete(ctx, id)
	if err != nil {
		return s.storeError(err, id)
	}

	s.logger.Info("complaint deleted", zap.Int64("complaint_id", id))
	s.publishEvent(ctx, events.New(events.EventComplaintDeleted, id, s.now(), events.ComplaintDeletedPayload{
		Status: removed.Status,
	}))
	return nil
}

// storeError maps repository and lifecycle failures onto the error taxonomy.
func (s *ComplaintService) storeError(err error, id ...int64) error {
	var transition *domain.TransitionError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		details := map[string]any{}
		if len(id) > 0 {
			details["id"] = id[0]
		}
		return errorutil.NewNotFound("complaint", details)
	case errors.As(err, &transition):
		return errorutil.NewInvalidTransition(string(transition.From), string(transition.To))
	case errors.Is(err, domain.ErrInvalidTransition):
		return errorutil.NewInvalidTransition("unknown", "unknown")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errorutil.ToDomainError(err)
	default:
		s.logger.Error("complaint store failure", zap.Error(err))
		return errorutil.NewInternalError(err)
	}
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
}

func parseFilter(raw ComplaintListFilter) (repository.ComplaintFilter, error) {
	var (
		filter repository.ComplaintFilter
		fields []errorutil.FieldError
	)
	if v := strings.TrimSpace(raw.Category); v != "" {
		c := domain.ComplaintCategory(v)
		if c.Valid() {
			filter.Category = &c
		} else {
			fields = append(fields, enumError("query", "category", v, enumNames(domain.Categories)))
		}
	}
	if v := strings.TrimSpace(raw.Sentiment); v != "" {
		sent := domain.Sentiment(v)
		if sent.Valid() {
			filter.Sentiment = &sent
		} else {
			fields = append(fields, enumError("query", "sentiment", v, enumNames(domain.Sentiments)))
		}
	}
	if v := strings.TrimSpace(raw.Priority); v != "" {
		p := domain.ComplaintPriority(v)
		if p.Valid() {
			filter.Priority = &p
		} else {
			fields = append(fields, enumError("query", "priority", v, enumNames(domain.Priorities)))
		}
	}
	if v := strings.TrimSpace(raw.Status); v != "" {
		st := domain.ComplaintStatus(v)
		if st.Valid() {
			filter.Status = &st
		} else {
			fields = append(fields, enumError("query", "status", v, enumNames(domain.Statuses)))
		}
	}
	filter.Limit = DefaultListLimit
	if v := strings.TrimSpace(raw.Limit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxListLimit {
			fields = append(fields, errorutil.FieldError{
				Loc: []string{"query", "limit"},
				Msg: fmt.Sprintf("value %q must be an integer between 1 and %d", v, MaxListLimit),
			})
		} else {
			filter.Limit = n
		}
	}
	if len(fields) > 0 {
		return filter, errorutil.NewValidationError("invalid filter", fields)
	}
	return filter, nil
}

// previousStatus is the only status a successful move to next can come from.
func previousStatus(next domain.ComplaintStatus) domain.ComplaintStatus {
	for _, from := range domain.Statuses {
		if domain.CanTransition(from, next) {
			return from
		}
	}
	return ""
}
