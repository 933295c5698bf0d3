package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/models"
)

// RoomRepository 客房仓储
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建客房仓储
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// WithTx 返回绑定事务的仓储
func (r *RoomRepository) WithTx(tx *gorm.DB) *RoomRepository {
	return &RoomRepository{db: tx}
}

// Create 创建客房
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetByID 根据 ID 获取客房
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Update 更新客房
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// UpdateStatus 更新客房状态
func (r *RoomRepository) UpdateStatus(ctx context.Context, id int64, status models.RoomStatus) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Update("status", status).Error
}

// Delete 删除客房（不级联预订）
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Room{}, id).Error
}

// List 获取客房列表
func (r *RoomRepository) List(ctx context.Context, propertyID int64, filters map[string]interface{}) ([]*models.Room, error) {
	var rooms []*models.Room

	query := r.db.WithContext(ctx).Where("property_id = ?", propertyID)

	if status, ok := filters["status"].(models.RoomStatus); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if roomType, ok := filters["room_type"].(string); ok && roomType != "" {
		query = query.Where("room_type = ?", roomType)
	}
	if minCapacity, ok := filters["min_capacity"].(int); ok && minCapacity > 0 {
		query = query.Where("capacity >= ?", minCapacity)
	}

	err := query.Order("room_number ASC").Find(&rooms).Error
	return rooms, err
}

// Count 统计物业客房数
func (r *RoomRepository) Count(ctx context.Context, propertyID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).Where("property_id = ?", propertyID).Count(&count).Error
	return count, err
}

// ExistsByNumber 房号是否已存在
func (r *RoomRepository) ExistsByNumber(ctx context.Context, propertyID int64, number string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("property_id = ? AND room_number = ?", propertyID, number)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
