package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/models"
)

// AuditLogRepository 审计日志仓储
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository 创建审计日志仓储
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// WithTx 返回绑定事务的仓储
func (r *AuditLogRepository) WithTx(tx *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: tx}
}

// Create 写入审计日志
func (r *AuditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List 获取审计日志列表（最新在前）
func (r *AuditLogRepository) List(ctx context.Context, propertyID int64, offset, limit int, filters map[string]interface{}) ([]*models.AuditLog, int64, error) {
	var logs []*models.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AuditLog{}).Where("property_id = ?", propertyID)

	if action, ok := filters["action"].(string); ok && action != "" {
		query = query.Where("action = ?", action)
	}
	if targetType, ok := filters["target_type"].(string); ok && targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}
	if targetID, ok := filters["target_id"].(int64); ok && targetID > 0 {
		query = query.Where("target_id = ?", targetID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// TrimToCap 仅保留最新的 keep 条，返回删除数量
func (r *AuditLogRepository) TrimToCap(ctx context.Context, propertyID int64, keep int) (int64, error) {
	return trimToCap(r.db.WithContext(ctx), &models.AuditLog{}, propertyID, keep)
}

// trimToCap 按自增 ID 删除超出上限的旧记录
func trimToCap(db *gorm.DB, model interface{}, propertyID int64, keep int) (int64, error) {
	var ids []int64
	err := db.Model(model).
		Where("property_id = ?", propertyID).
		Order("id DESC").
		Offset(keep).Limit(1).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}

	result := db.Where("property_id = ? AND id <= ?", propertyID, ids[0]).Delete(model)
	return result.RowsAffected, result.Error
}
