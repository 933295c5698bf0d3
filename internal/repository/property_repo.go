package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/models"
)

// PropertyRepository 物业仓储
type PropertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository 创建物业仓储
func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// WithTx 返回绑定事务的仓储
func (r *PropertyRepository) WithTx(tx *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: tx}
}

// Create 创建物业
func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

// GetByID 根据 ID 获取物业
func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).First(&property, id).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// GetByIDWithRates 根据 ID 获取物业（包含季节价格，按优先顺序）
func (r *PropertyRepository) GetByIDWithRates(ctx context.Context, id int64) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).
		Preload("SeasonalRates", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort ASC, id ASC")
		}).
		First(&property, id).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// GetDefault 获取当前部署的物业
func (r *PropertyRepository) GetDefault(ctx context.Context) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).Order("id ASC").First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// Count 物业数量
func (r *PropertyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Property{}).Count(&count).Error
	return count, err
}

// Update 更新物业（不含关联）
func (r *PropertyRepository) Update(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Omit("SeasonalRates").Save(property).Error
}

// CompareAndSetRefNumber 仅当流水号仍为 expected 时更新为 next，返回是否成功
func (r *PropertyRepository) CompareAndSetRefNumber(ctx context.Context, id int64, expected, next int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ? AND last_ref_number = ?", id, expected).
		Update("last_ref_number", next)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListIDs 全部物业 ID
func (r *PropertyRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.Property{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}
