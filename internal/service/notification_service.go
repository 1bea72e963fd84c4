package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
)

// NotificationService handles emitting notifications for complaint events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintCreated, n.handleComplaintCreated)
	n.dispatcher.Subscribe(events.EventComplaintStatusChanged, n.handleComplaintStatusChanged)
	n.dispatcher.Subscribe(events.EventComplaintDeleted, n.handleComplaintDeleted)
	n.dispatcher.Subscribe(events.EventComplaintOverdue, n.handleComplaintOverdue)
	n.dispatcher.SubscribeAll(n.audit)
}

func (n *NotificationService) audit(_ context.Context, event events.Event) error {
	n.logger.Debug("complaint event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("complaint_id", event.ComplaintID),
		zap.Time("at", event.Timestamp))
	return nil
}

func (n *NotificationService) handleComplaintCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintCreated", zap.Int64("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.ComplaintCreatedPayload); ok && payload.Priority == domain.PriorityHigh {
		n.logger.Warn("high priority complaint escalated",
			zap.Int64("complaint_id", event.ComplaintID),
			zap.String("category", string(payload.Category)),
			zap.Time("response_due_at", payload.ResponseDueAt))
	}
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleComplaintStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintStatusChanged", zap.Int64("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleComplaintDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintDeleted", zap.Int64("complaint_id", event.ComplaintID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleComplaintOverdue(ctx context.Context, event events.Event) error {
	n.logger.Warn("ComplaintOverdue", zap.Int64("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}
