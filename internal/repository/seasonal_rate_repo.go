package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/models"
)

// SeasonalRateRepository 季节价格仓储
type SeasonalRateRepository struct {
	db *gorm.DB
}

// NewSeasonalRateRepository 创建季节价格仓储
func NewSeasonalRateRepository(db *gorm.DB) *SeasonalRateRepository {
	return &SeasonalRateRepository{db: db}
}

// WithTx 返回绑定事务的仓储
func (r *SeasonalRateRepository) WithTx(tx *gorm.DB) *SeasonalRateRepository {
	return &SeasonalRateRepository{db: tx}
}

// Create 创建季节价格
func (r *SeasonalRateRepository) Create(ctx context.Context, rate *models.SeasonalRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

// GetByID 根据 ID 获取季节价格
func (r *SeasonalRateRepository) GetByID(ctx context.Context, id int64) (*models.SeasonalRate, error) {
	var rate models.SeasonalRate
	err := r.db.WithContext(ctx).First(&rate, id).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// Update 更新季节价格
func (r *SeasonalRateRepository) Update(ctx context.Context, rate *models.SeasonalRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

// Delete 删除季节价格
func (r *SeasonalRateRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.SeasonalRate{}, id).Error
}

// ListByProperty 按优先顺序获取物业的季节价格
func (r *SeasonalRateRepository) ListByProperty(ctx context.Context, propertyID int64) ([]models.SeasonalRate, error) {
	var rates []models.SeasonalRate
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("sort ASC, id ASC").
		Find(&rates).Error
	return rates, err
}

// MaxSort 当前最大排序值，无记录时为 -1
func (r *SeasonalRateRepository) MaxSort(ctx context.Context, propertyID int64) (int, error) {
	var maxSort *int
	err := r.db.WithContext(ctx).Model(&models.SeasonalRate{}).
		Where("property_id = ?", propertyID).
		Select("MAX(sort)").
		Scan(&maxSort).Error
	if err != nil {
		return 0, err
	}
	if maxSort == nil {
		return -1, nil
	}
	return *maxSort, nil
}

// UpdateSort 更新排序值
func (r *SeasonalRateRepository) UpdateSort(ctx context.Context, id int64, sort int) error {
	return r.db.WithContext(ctx).Model(&models.SeasonalRate{}).Where("id = ?", id).Update("sort", sort).Error
}
