package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RigelNana/gazotheque/pkg/events"
	"github.com/RigelNana/gazotheque/pkg/metrics"
	"github.com/RigelNana/gazotheque/services/notification-service/models"
	"github.com/RigelNana/gazotheque/services/notification-service/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	departureTitle = "Material Ready for Departure"
)

type NotificationService interface {
	HandleMaterialConsigned(ctx context.Context, ev events.MaterialConsigned) error
	List(ctx context.Context, userID int64, unreadOnly bool, page, pageSize int) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type NotificationServiceImpl struct {
	repo   repository.NotificationRepository
	logger *logrus.Logger
}

func NewNotificationService(repo repository.NotificationRepository, logger *logrus.Logger) NotificationService {
	return &NotificationServiceImpl{repo: repo, logger: logger}
}

// HandleMaterialConsigned stores the departure notification for the owner.
// Redelivered events are ignored.
func (s *NotificationServiceImpl) HandleMaterialConsigned(ctx context.Context, ev events.MaterialConsigned) error {
	log := s.logger.WithFields(logrus.Fields{"material_id": ev.MaterialID, "event_id": ev.EventID})
	if ev.OwnerUserID == 0 {
		log.Warn("consigned material has no owner, nothing to notify")
		return nil
	}

	exists, err := s.repo.ExistsByEventID(ctx, ev.EventID)
	if err != nil {
		return fmt.Errorf("check event %s: %w", ev.EventID, err)
	}
	if exists {
		log.Debug("event already handled")
		return nil
	}

	meta, err := json.Marshal(map[string]any{
		"lab_destination": ev.LabDestination,
		"date_depart":     ev.DateDepart,
		"consigned_by":    ev.ConsignedBy,
	})
	if err != nil {
		return err
	}
	n := &models.Notification{
		UserID:      ev.OwnerUserID,
		MaterialID:  ev.MaterialID,
		EventID:     ev.EventID,
		Type:        models.TypeEvent,
		Title:       departureTitle,
		Priority:    models.PriorityMedium,
		Description: fmt.Sprintf("The material '%s' is marked ready for departure.", ev.MaterialTitle),
		Metadata:    datatypes.JSON(meta),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	metrics.NotificationsStored.WithLabelValues(n.Type).Inc()
	log.WithField("user_id", n.UserID).Info("departure notification stored")
	return nil
}

func (s *NotificationServiceImpl) List(ctx context.Context, userID int64, unreadOnly bool, page, pageSize int) ([]*models.Notification, int64, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly, page, pageSize)
}

func (s *NotificationServiceImpl) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id uuid.UUID, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
