// Package room 提供客房管理服务
package room

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
)

// RoomService 客房服务
type RoomService struct {
	db           *gorm.DB
	roomRepo     *repository.RoomRepository
	auditService *audit.AuditService
}

// NewRoomService 创建客房服务
func NewRoomService(db *gorm.DB, roomRepo *repository.RoomRepository, auditService *audit.AuditService) *RoomService {
	return &RoomService{
		db:           db,
		roomRepo:     roomRepo,
		auditService: auditService,
	}
}

// RoomRequest 创建/更新客房请求
type RoomRequest struct {
	RoomNumber    string            `json:"room_number" binding:"required,max=20"`
	RoomType      string            `json:"room_type" binding:"required,max=50"`
	Capacity      int               `json:"capacity" binding:"required,min=1,max=20"`
	PricePerNight float64           `json:"price_per_night" binding:"gte=0"`
	Status        models.RoomStatus `json:"status"`
	Description   string            `json:"description"`
	Images        []string          `json:"images"`
}

// ListRequest 客房列表请求
type ListRequest struct {
	Status      models.RoomStatus `form:"status"`
	RoomType    string            `form:"room_type"`
	MinCapacity int               `form:"min_capacity"`
}

// List 客房列表
func (s *RoomService) List(ctx context.Context, propertyID int64, req *ListRequest) ([]*models.Room, error) {
	rooms, err := s.roomRepo.List(ctx, propertyID, map[string]interface{}{
		"status":       req.Status,
		"room_type":    req.RoomType,
		"min_capacity": req.MinCapacity,
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return rooms, nil
}

// ListBookable 客人可见的客房：在售且容量满足人数
func (s *RoomService) ListBookable(ctx context.Context, propertyID int64, guests int) ([]*models.Room, error) {
	return s.List(ctx, propertyID, &ListRequest{Status: models.RoomStatusActive, MinCapacity: guests})
}

// Get 客房详情
func (s *RoomService) Get(ctx context.Context, propertyID, id int64) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if room.PropertyID != propertyID {
		return nil, errors.ErrRoomNotFound
	}
	return room, nil
}

// Create 创建客房
func (s *RoomService) Create(ctx context.Context, propertyID int64, req *RoomRequest, actor models.Actor) (*models.Room, error) {
	if err := s.validate(ctx, propertyID, 0, req); err != nil {
		return nil, err
	}

	room := &models.Room{PropertyID: propertyID}
	apply(room, req)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.roomRepo.WithTx(tx).Create(ctx, room); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionRoomCreated,
			Details:    fmt.Sprintf("Room %s (%s) created", room.RoomNumber, room.RoomType),
			TargetType: models.AuditTargetRoom,
			TargetID:   room.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// Update 更新客房
func (s *RoomService) Update(ctx context.Context, propertyID, id int64, req *RoomRequest, actor models.Actor) (*models.Room, error) {
	room, err := s.Get(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, propertyID, id, req); err != nil {
		return nil, err
	}

	before := room.Status
	apply(room, req)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.roomRepo.WithTx(tx).Update(ctx, room); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		entry := audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionRoomUpdated,
			Details:    fmt.Sprintf("Room %s updated", room.RoomNumber),
			TargetType: models.AuditTargetRoom,
			TargetID:   room.ID,
		}
		if before != room.Status {
			entry.Field, entry.Before, entry.After = "status", string(before), string(room.Status)
		}
		_, err := s.auditService.RecordTx(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateStatus 更新客房状态
func (s *RoomService) UpdateStatus(ctx context.Context, propertyID, id int64, status models.RoomStatus, actor models.Actor) (*models.Room, error) {
	if !status.Valid() {
		return nil, errors.ErrRoomStatusInvalid
	}
	room, err := s.Get(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	if room.Status == status {
		return room, nil
	}

	before := room.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.roomRepo.WithTx(tx).UpdateStatus(ctx, id, status); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionRoomUpdated,
			Details:    fmt.Sprintf("Room %s set to %s", room.RoomNumber, status.Label()),
			Field:      "status",
			Before:     string(before),
			After:      string(status),
			TargetType: models.AuditTargetRoom,
			TargetID:   room.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	room.Status = status
	return room, nil
}

// Delete 删除客房，已有预订保留
func (s *RoomService) Delete(ctx context.Context, propertyID, id int64, actor models.Actor) error {
	room, err := s.Get(ctx, propertyID, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.roomRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionRoomDeleted,
			Details:    fmt.Sprintf("Room %s deleted", room.RoomNumber),
			TargetType: models.AuditTargetRoom,
			TargetID:   room.ID,
			Snapshot: map[string]interface{}{
				"room_number":     room.RoomNumber,
				"room_type":       room.RoomType,
				"price_per_night": room.PricePerNight,
			},
		})
		return err
	})
}

func (s *RoomService) validate(ctx context.Context, propertyID, excludeID int64, req *RoomRequest) error {
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	if req.RoomNumber == "" {
		return errors.ErrInvalidParams.WithMessage("房间号不能为空")
	}
	if req.Status == "" {
		req.Status = models.RoomStatusActive
	}
	if !req.Status.Valid() {
		return errors.ErrRoomStatusInvalid
	}
	if req.PricePerNight < 0 || req.Capacity < 1 {
		return errors.ErrInvalidParams.WithMessage("价格或容量无效")
	}

	exists, err := s.roomRepo.ExistsByNumber(ctx, propertyID, req.RoomNumber, excludeID)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return errors.ErrRoomExists
	}
	return nil
}

func apply(room *models.Room, req *RoomRequest) {
	room.RoomNumber = req.RoomNumber
	room.RoomType = strings.TrimSpace(req.RoomType)
	room.Capacity = req.Capacity
	room.PricePerNight = req.PricePerNight
	room.Status = req.Status
	room.Description = req.Description
	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	room.Images = images
}
