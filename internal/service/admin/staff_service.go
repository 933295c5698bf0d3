// Package admin 提供员工认证、员工管理与平台租户服务
package admin

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/crypto"
	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/common/jwt"
	"github.com/dumeirei/innflow-backend/internal/common/logger"
	"github.com/dumeirei/innflow-backend/internal/common/utils"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
)

// StaffService 员工服务
type StaffService struct {
	db           *gorm.DB
	staffRepo    *repository.StaffRepository
	auditService *audit.AuditService
	jwtManager   *jwt.Manager
	bcryptCost   int
}

// NewStaffService 创建员工服务
func NewStaffService(
	db *gorm.DB,
	staffRepo *repository.StaffRepository,
	auditService *audit.AuditService,
	jwtManager *jwt.Manager,
	bcryptCost int,
) *StaffService {
	return &StaffService{
		db:           db,
		staffRepo:    staffRepo,
		auditService: auditService,
		jwtManager:   jwtManager,
		bcryptCost:   bcryptCost,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Staff *StaffInfo     `json:"staff"`
	Token *jwt.TokenPair `json:"token"`
}

// StaffInfo 员工信息（不含密码）
type StaffInfo struct {
	*models.Staff
	RoleLabel string `json:"role_label"`
}

func toInfo(s *models.Staff) *StaffInfo {
	return &StaffInfo{Staff: s, RoleLabel: s.Role.Label()}
}

// Login 邮箱密码登录
func (s *StaffService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	staff, err := s.staffRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPasswordError
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if !crypto.VerifyPassword(req.Password, staff.PasswordHash) {
		return nil, errors.ErrPasswordError
	}
	if staff.Status != models.StaffStatusActive {
		return nil, errors.ErrAccountDisabled
	}

	token, err := s.jwtManager.GenerateTokenPair(jwt.Subject{
		StaffID:    staff.ID,
		PropertyID: staff.PropertyID,
		Role:       string(staff.Role),
		Name:       staff.Name,
	})
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	if err := s.staffRepo.UpdateLastLogin(ctx, staff.ID, req.IP); err != nil {
		logger.Warn("更新登录信息失败", logger.StaffID(staff.ID), logger.Err(err))
	}

	logger.Info("员工登录", logger.StaffID(staff.ID), logger.String("role", string(staff.Role)), logger.IP(req.IP))
	return &LoginResponse{Staff: toInfo(staff), Token: token}, nil
}

// RefreshToken 用刷新令牌换取新的令牌对
func (s *StaffService) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	pair, err := s.jwtManager.RefreshToken(refreshToken)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrTokenRefreshFail
	}
	return pair, nil
}

// Profile 当前员工信息
func (s *StaffService) Profile(ctx context.Context, staffID int64) (*StaffInfo, error) {
	staff, err := s.load(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return toInfo(staff), nil
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=64"`
}

// ChangePassword 修改本人密码
func (s *StaffService) ChangePassword(ctx context.Context, staffID int64, req *ChangePasswordRequest) error {
	staff, err := s.load(ctx, staffID)
	if err != nil {
		return err
	}
	if !crypto.VerifyPassword(req.OldPassword, staff.PasswordHash) {
		return errors.ErrPasswordError.WithMessage("原密码错误")
	}
	hash, err := crypto.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return errors.ErrInternalError.WithError(err)
	}
	staff.PasswordHash = hash
	if err := s.staffRepo.Update(ctx, staff); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// List 物业员工列表
func (s *StaffService) List(ctx context.Context, propertyID int64) ([]*StaffInfo, error) {
	staff, err := s.staffRepo.List(ctx, propertyID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	out := make([]*StaffInfo, 0, len(staff))
	for _, m := range staff {
		out = append(out, toInfo(m))
	}
	return out, nil
}

// CreateStaffRequest 新增员工请求
type CreateStaffRequest struct {
	Name     string           `json:"name" binding:"required,max=100"`
	Email    string           `json:"email" binding:"required"`
	Password string           `json:"password" binding:"required,min=6,max=64"`
	Role     models.StaffRole `json:"role" binding:"required"`
	Access   []string         `json:"access"`
}

// Create 新增员工
func (s *StaffService) Create(ctx context.Context, propertyID int64, req *CreateStaffRequest, actor models.Actor) (*StaffInfo, error) {
	email := normalizeEmail(req.Email)
	if !utils.ValidateEmail(email) {
		return nil, errors.ErrInvalidParams.WithMessage("邮箱格式错误")
	}
	if !req.Role.Valid() {
		return nil, errors.ErrInvalidParams.WithMessage("无效的角色")
	}
	exists, err := s.staffRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrStaffExists
	}

	hash, err := crypto.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	staff := &models.Staff{
		PropertyID:   propertyID,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Access:       req.Access,
		Status:       models.StaffStatusActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.staffRepo.WithTx(tx).Create(ctx, staff); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionStaffCreated,
			Details:    fmt.Sprintf("Added %s as %s", staff.Name, staff.Role.Label()),
			TargetType: models.AuditTargetStaff,
			TargetID:   staff.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return toInfo(staff), nil
}

// UpdateStaffRequest 更新员工请求，仅提交的字段生效
type UpdateStaffRequest struct {
	Name     *string           `json:"name" binding:"omitempty,min=1,max=100"`
	Role     *models.StaffRole `json:"role"`
	Access   []string          `json:"access"`
	Status   *int8             `json:"status"`
	Password *string           `json:"password" binding:"omitempty,min=6,max=64"`
}

// Update 更新员工
func (s *StaffService) Update(ctx context.Context, propertyID, id int64, req *UpdateStaffRequest, actor models.Actor) (*StaffInfo, error) {
	staff, err := s.loadInProperty(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}

	before := string(staff.Role)
	if req.Name != nil {
		staff.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, errors.ErrInvalidParams.WithMessage("无效的角色")
		}
		staff.Role = *req.Role
	}
	if req.Access != nil {
		staff.Access = req.Access
	}
	if req.Status != nil {
		if *req.Status != models.StaffStatusActive && *req.Status != models.StaffStatusDisabled {
			return nil, errors.ErrInvalidParams.WithMessage("无效的账号状态")
		}
		if actor.ID != nil && *actor.ID == id && *req.Status == models.StaffStatusDisabled {
			return nil, errors.ErrStaffSelf
		}
		staff.Status = *req.Status
	}
	if req.Password != nil {
		hash, err := crypto.HashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, errors.ErrInternalError.WithError(err)
		}
		staff.PasswordHash = hash
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.staffRepo.WithTx(tx).Update(ctx, staff); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		entry := audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionStaffUpdated,
			Details:    "Updated staff member " + staff.Name,
			TargetType: models.AuditTargetStaff,
			TargetID:   staff.ID,
		}
		if before != string(staff.Role) {
			entry.Field, entry.Before, entry.After = "role", before, string(staff.Role)
		}
		_, err := s.auditService.RecordTx(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toInfo(staff), nil
}

// Delete 移除员工，不能移除自己
func (s *StaffService) Delete(ctx context.Context, propertyID, id int64, actor models.Actor) error {
	if actor.ID != nil && *actor.ID == id {
		return errors.ErrStaffSelf
	}
	staff, err := s.loadInProperty(ctx, propertyID, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.staffRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionStaffRemoved,
			Details:    fmt.Sprintf("Removed %s (%s)", staff.Name, staff.Email),
			TargetType: models.AuditTargetStaff,
			TargetID:   staff.ID,
		})
		return err
	})
}

func (s *StaffService) load(ctx context.Context, id int64) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrStaffNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return staff, nil
}

func (s *StaffService) loadInProperty(ctx context.Context, propertyID, id int64) (*models.Staff, error) {
	staff, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if staff.PropertyID != propertyID {
		return nil, errors.ErrStaffNotFound
	}
	return staff, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
