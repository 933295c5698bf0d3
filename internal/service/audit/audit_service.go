// Package audit 提供操作审计服务
package audit

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/common/logger"
	"github.com/dumeirei/innflow-backend/internal/common/utils"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
)

// DefaultCap 每个物业保留的审计条数
const DefaultCap = 100

// AuditService 审计服务
type AuditService struct {
	auditRepo *repository.AuditLogRepository
	cap       int
}

// NewAuditService 创建审计服务
func NewAuditService(auditRepo *repository.AuditLogRepository, capacity int) *AuditService {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &AuditService{auditRepo: auditRepo, cap: capacity}
}

// Entry 审计条目
type Entry struct {
	PropertyID int64
	Actor      models.Actor
	Action     string
	Details    string
	Field      string
	Before     string
	After      string
	TargetType string
	TargetID   int64
	Snapshot   map[string]interface{}
}

// Record 写入审计条目并淘汰超出上限的旧记录
func (s *AuditService) Record(ctx context.Context, e Entry) (*models.AuditLog, error) {
	return s.record(ctx, s.auditRepo, e)
}

// RecordTx 在事务内写入审计条目
func (s *AuditService) RecordTx(ctx context.Context, tx *gorm.DB, e Entry) (*models.AuditLog, error) {
	return s.record(ctx, s.auditRepo.WithTx(tx), e)
}

func (s *AuditService) record(ctx context.Context, repo *repository.AuditLogRepository, e Entry) (*models.AuditLog, error) {
	log := &models.AuditLog{
		PropertyID: e.PropertyID,
		ActorID:    e.Actor.ID,
		ActorName:  e.Actor.Name,
		Action:     e.Action,
		Details:    e.Details,
		Field:      e.Field,
		Before:     e.Before,
		After:      e.After,
		TargetType: e.TargetType,
	}
	if log.ActorName == "" {
		log.ActorName = "System"
	}
	if e.TargetID > 0 {
		log.TargetID = utils.Ptr(e.TargetID)
	}
	if len(e.Snapshot) > 0 {
		log.Snapshot = datatypes.JSONMap(e.Snapshot)
	}

	if err := repo.Create(ctx, log); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if removed, err := repo.TrimToCap(ctx, e.PropertyID, s.cap); err != nil {
		logger.Warn("审计日志淘汰失败", logger.PropertyID(e.PropertyID), logger.Err(err))
	} else if removed > 0 {
		logger.Debug("审计日志已淘汰", logger.PropertyID(e.PropertyID), logger.Int64("removed", removed))
	}

	return log, nil
}

// ListRequest 审计日志查询
type ListRequest struct {
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   int64  `form:"target_id"`
	utils.Pagination
}

// List 审计日志列表（最新在前）
func (s *AuditService) List(ctx context.Context, propertyID int64, req *ListRequest) ([]*models.AuditLog, int64, error) {
	req.Pagination.Normalize()

	filters := map[string]interface{}{
		"action":      req.Action,
		"target_type": req.TargetType,
		"target_id":   req.TargetID,
	}
	logs, total, err := s.auditRepo.List(ctx, propertyID, req.GetOffset(), req.GetLimit(), filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return logs, total, nil
}

// EnforceCap 按上限清理旧记录
func (s *AuditService) EnforceCap(ctx context.Context, propertyID int64) (int64, error) {
	removed, err := s.auditRepo.TrimToCap(ctx, propertyID, s.cap)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}
	return removed, nil
}

// Cap 上限
func (s *AuditService) Cap() int {
	return s.cap
}

// StatusChangeDetails 预订状态变更描述
func StatusChangeDetails(ref string, status models.BookingStatus) string {
	return fmt.Sprintf("Booking %s changed status to %s", ref, status)
}

// PaymentChangeDetails 支付状态变更描述
func PaymentChangeDetails(ref string, status models.PaymentStatus) string {
	return fmt.Sprintf("Booking %s payment status changed to %s", ref, status)
}

// BookingCreatedDetails 新建预订描述
func BookingCreatedDetails(ref, guest string) string {
	return fmt.Sprintf("Confirmed stay %s for %s", ref, guest)
}

// CashUpDetails 收银对账描述
func CashUpDetails(date models.Date, total float64) string {
	return fmt.Sprintf("Closed register for %s. Reconciled R%s", date, strconv.FormatFloat(total, 'f', -1, 64))
}

// DispatchDetails 通知发送描述
func DispatchDetails(ref, phone string) string {
	return fmt.Sprintf("Notification sent for %s to %s", ref, phone)
}
