package repository

import (
	"context"
	"errors"
	"time"

	"github.com/RigelNana/gazotheque/services/notification-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("notification not found")

type NotificationRepository interface {
	BaseRepository[models.Notification]
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, page, pageSize int) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	ExistsByEventID(ctx context.Context, eventID string) (bool, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type NotificationRepositoryImpl struct {
	*BaseRepositoryImpl[models.Notification]
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Notification](db),
	}
}

// ListByUser returns one page of a user's notifications, newest first.
// page starts at 1.
func (r *NotificationRepositoryImpl) ListByUser(ctx context.Context, userID int64, unreadOnly bool, page, pageSize int) ([]*models.Notification, int64, error) {
	var (
		notifications []*models.Notification
		total         int64
	)
	if page < 1 {
		page = 1
	}

	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *NotificationRepositoryImpl) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) ExistsByEventID(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("event_id = ?", eventID).Count(&count).Error
	return count > 0, err
}

// MarkRead only touches notifications of userID, so users cannot mark each
// other's messages. Marking a read notification again keeps its read_at.
func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, id uuid.UUID, userID int64) error {
	n, err := r.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrNotFound
	}
	if n.Read {
		return nil
	}
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	return r.Update(ctx, n)
}

func (r *NotificationRepositoryImpl) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": time.Now()})
	return res.RowsAffected, res.Error
}
