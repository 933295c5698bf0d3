package admin

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/common/utils"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
)

// TenantService 平台租户服务
type TenantService struct {
	db           *gorm.DB
	tenantRepo   *repository.TenantRepository
	auditService *audit.AuditService
}

// NewTenantService 创建租户服务
func NewTenantService(db *gorm.DB, tenantRepo *repository.TenantRepository, auditService *audit.AuditService) *TenantService {
	return &TenantService{db: db, tenantRepo: tenantRepo, auditService: auditService}
}

// TenantListRequest 租户列表请求
type TenantListRequest struct {
	Status models.TenantStatus `form:"status"`
	utils.Pagination
}

// List 租户列表
func (s *TenantService) List(ctx context.Context, req *TenantListRequest) ([]*models.Tenant, int64, error) {
	req.Normalize()
	tenants, total, err := s.tenantRepo.List(ctx, req.GetOffset(), req.GetLimit(), req.Status)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return tenants, total, nil
}

// CreateTenantRequest 新增租户请求
type CreateTenantRequest struct {
	Name   string              `json:"name" binding:"required,max=100"`
	Domain string              `json:"domain" binding:"max=100"`
	Plan   models.TenantPlan   `json:"plan"`
	Status models.TenantStatus `json:"status"`
	Users  int                 `json:"users" binding:"min=0"`
}

// Create 登记租户，未指定时为试用中的 Starter 套餐
func (s *TenantService) Create(ctx context.Context, propertyID int64, req *CreateTenantRequest, actor models.Actor) (*models.Tenant, error) {
	if req.Plan == "" {
		req.Plan = models.TenantPlanStarter
	}
	if req.Status == "" {
		req.Status = models.TenantStatusTrialing
	}
	if !req.Plan.Valid() || !req.Status.Valid() {
		return nil, errors.ErrTenantInvalid
	}

	tenant := &models.Tenant{
		Name:   strings.TrimSpace(req.Name),
		Domain: strings.ToLower(strings.TrimSpace(req.Domain)),
		Plan:   req.Plan,
		Status: req.Status,
		Users:  req.Users,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.WithTx(tx).Create(ctx, tenant); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionTenantCreated,
			Details:    fmt.Sprintf("Registered tenant %s on %s plan", tenant.Name, tenant.Plan),
			TargetType: models.AuditTargetTenant,
			TargetID:   tenant.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// UpdateStatus 更新租户状态
func (s *TenantService) UpdateStatus(ctx context.Context, propertyID, id int64, status models.TenantStatus, actor models.Actor) (*models.Tenant, error) {
	if !status.Valid() {
		return nil, errors.ErrTenantInvalid
	}
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrTenantNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if tenant.Status == status {
		return tenant, nil
	}

	before := tenant.Status
	tenant.Status = status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.WithTx(tx).Update(ctx, tenant); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionTenantUpdated,
			Details:    fmt.Sprintf("Tenant %s moved to %s", tenant.Name, status),
			Field:      "status",
			Before:     string(before),
			After:      string(status),
			TargetType: models.AuditTargetTenant,
			TargetID:   tenant.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}
