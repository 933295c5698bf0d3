// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/database"
	"github.com/dumeirei/innflow-backend/internal/models"
)

// BookingRepository 预订仓储
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预订仓储
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// WithTx 返回绑定事务的仓储
func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

// Create 创建预订
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// GetByID 根据 ID 获取预订
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByReference 根据预订号获取预订
func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Update 更新预订
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// UpdateFields 更新指定字段
func (r *BookingRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateFieldsIf 仅当 column 仍为 expected 时更新，返回是否命中
func (r *BookingRepository) UpdateFieldsIf(ctx context.Context, id int64, column string, expected interface{}, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND "+column+" = ?", id, expected).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListReferencesWithPrefix 以 prefix 开头的全部预订号
func (r *BookingRepository) ListReferencesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("reference LIKE ?", prefix+"%").
		Pluck("reference", &refs).Error
	return refs, err
}

// Delete 物理删除预订
func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Booking{}, id).Error
}

// List 获取预订列表
func (r *BookingRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{})

	// 应用过滤条件
	if propertyID, ok := filters["property_id"].(int64); ok && propertyID > 0 {
		query = query.Where("property_id = ?", propertyID)
	}
	if roomID, ok := filters["room_id"].(int64); ok && roomID > 0 {
		query = query.Where("room_id = ?", roomID)
	}
	if status, ok := filters["status"].(models.BookingStatus); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus, ok := filters["payment_status"].(models.PaymentStatus); ok && paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("reference LIKE ? OR guest_name LIKE ? OR guest_email LIKE ?", like, like, like)
	}
	if from, ok := filters["check_in_from"].(models.Date); ok && !from.IsZero() {
		query = query.Where("check_in_date >= ?", from)
	}
	if to, ok := filters["check_in_to"].(models.Date); ok && !to.IsZero() {
		query = query.Where("check_in_date <= ?", to)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.
		Scopes(database.OrderByCreatedDesc).
		Offset(offset).Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListAll 获取物业全部预订（按创建时间倒序）
func (r *BookingRepository) ListAll(ctx context.Context, propertyID int64) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Scopes(database.OrderByCreatedDesc).
		Find(&bookings).Error
	return bookings, err
}

// ListActiveByRoom 获取客房未取消的预订
func (r *BookingRepository) ListActiveByRoom(ctx context.Context, roomID int64) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status <> ?", roomID, models.BookingStatusCancelled).
		Order("check_in_date ASC").
		Find(&bookings).Error
	return bookings, err
}

// ListOverlapping 获取与 [from, to) 有交集的未取消预订
func (r *BookingRepository) ListOverlapping(ctx context.Context, propertyID int64, from, to models.Date) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND status <> ?", propertyID, models.BookingStatusCancelled).
		Where("check_in_date < ? AND check_out_date > ?", to, from).
		Order("room_id ASC, check_in_date ASC").
		Find(&bookings).Error
	return bookings, err
}

// ListCreatedSince 获取指定时间后创建的预订
func (r *BookingRepository) ListCreatedSince(ctx context.Context, propertyID int64, since time.Time) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND created_at >= ?", propertyID, since).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

// CountByStatus 按状态统计预订数
func (r *BookingRepository) CountByStatus(ctx context.Context, propertyID int64, status models.BookingStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("property_id = ? AND status = ?", propertyID, status).
		Count(&count).Error
	return count, err
}

// CountCheckIns 统计某日入住的未取消预订
func (r *BookingRepository) CountCheckIns(ctx context.Context, propertyID int64, date models.Date) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("property_id = ? AND check_in_date = ? AND status <> ?", propertyID, date, models.BookingStatusCancelled).
		Count(&count).Error
	return count, err
}

// CountCheckOuts 统计某日退房的未取消预订
func (r *BookingRepository) CountCheckOuts(ctx context.Context, propertyID int64, date models.Date) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("property_id = ? AND check_out_date = ? AND status <> ?", propertyID, date, models.BookingStatusCancelled).
		Count(&count).Error
	return count, err
}

// SumRevenue 未取消预订的总金额
func (r *BookingRepository) SumRevenue(ctx context.Context, propertyID int64) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("property_id = ? AND status <> ?", propertyID, models.BookingStatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}
