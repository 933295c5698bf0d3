package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/models"
)

// CashUpRepository 收银对账仓储
type CashUpRepository struct {
	db *gorm.DB
}

// NewCashUpRepository 创建收银对账仓储
func NewCashUpRepository(db *gorm.DB) *CashUpRepository {
	return &CashUpRepository{db: db}
}

// WithTx 返回绑定事务的仓储
func (r *CashUpRepository) WithTx(tx *gorm.DB) *CashUpRepository {
	return &CashUpRepository{db: tx}
}

// Create 创建对账记录
func (r *CashUpRepository) Create(ctx context.Context, record *models.CashUp) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID 根据 ID 获取对账记录
func (r *CashUpRepository) GetByID(ctx context.Context, id int64) (*models.CashUp, error) {
	var record models.CashUp
	err := r.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List 获取对账记录列表（按日期倒序）
func (r *CashUpRepository) List(ctx context.Context, propertyID int64, offset, limit int) ([]*models.CashUp, int64, error) {
	var records []*models.CashUp
	var total int64

	query := r.db.WithContext(ctx).Model(&models.CashUp{}).Where("property_id = ?", propertyID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("date DESC, id DESC").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
