package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/models"
)

// NotificationRepository 通知仓储
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create 创建通知
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// GetByID 根据 ID 获取通知
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// List 获取通知列表（最新在前）
func (r *NotificationRepository) List(ctx context.Context, propertyID int64, offset, limit int, isRead *bool) ([]*models.Notification, int64, error) {
	var notifications []*models.Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("property_id = ?", propertyID)
	if isRead != nil {
		query = query.Where("is_read = ?", *isRead)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkAsRead 标记为已读
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}

// MarkAllAsRead 全部标记为已读
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, propertyID int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("property_id = ? AND is_read = ?", propertyID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}

// CountUnread 未读数量
func (r *NotificationRepository) CountUnread(ctx context.Context, propertyID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("property_id = ? AND is_read = ?", propertyID, false).
		Count(&count).Error
	return count, err
}

// TrimToCap 仅保留最新的 keep 条，返回删除数量
func (r *NotificationRepository) TrimToCap(ctx context.Context, propertyID int64, keep int) (int64, error) {
	return trimToCap(r.db.WithContext(ctx), &models.Notification{}, propertyID, keep)
}
