package repositories

import (
	"context"
	"time"

	"membership-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// notificationBatchSize bounds a single INSERT during fan-out
const notificationBatchSize = 200

// notificationRepository implements NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create appends one notification
func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// CreateBatch appends many notifications
func (r *notificationRepository) CreateBatch(ctx context.Context, list []*models.Notification) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(list, notificationBatchSize).Error
}

// ListByMember lists a member's notifications, newest first
func (r *notificationRepository) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Notification, int64, error) {
	var list []*models.Notification
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("member_id = ?", memberID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// CountUnread counts unread notifications of a member
func (r *notificationRepository) CountUnread(ctx context.Context, memberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("member_id = ? AND is_read = ?", memberID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one notification of the member as read
func (r *notificationRepository) MarkRead(ctx context.Context, memberID, id uint) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND member_id = ?", id, memberID).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	return result.RowsAffected > 0, result.Error
}

// MarkAllRead marks every unread notification of the member as read
func (r *notificationRepository) MarkAllRead(ctx context.Context, memberID uint) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("member_id = ? AND is_read = ?", memberID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	return result.RowsAffected, result.Error
}
