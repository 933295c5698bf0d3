// Package property 提供物业设置、季节价格及初始数据服务
package property

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

// PropertyService 物业服务
type PropertyService struct {
	db           *gorm.DB
	propertyRepo *repository.PropertyRepository
	rateRepo     *repository.SeasonalRateRepository
	roomRepo     *repository.RoomRepository
	auditService *audit.AuditService
}

// NewPropertyService 创建物业服务
func NewPropertyService(
	db *gorm.DB,
	propertyRepo *repository.PropertyRepository,
	rateRepo *repository.SeasonalRateRepository,
	roomRepo *repository.RoomRepository,
	auditService *audit.AuditService,
) *PropertyService {
	return &PropertyService{
		db:           db,
		propertyRepo: propertyRepo,
		rateRepo:     rateRepo,
		roomRepo:     roomRepo,
		auditService: auditService,
	}
}

// PublicInfo 客人端可见的物业信息
type PublicInfo struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	CheckInTime    string `json:"check_in_time"`
	CheckOutTime   string `json:"check_out_time"`
	LogoURL        string `json:"logo_url,omitempty"`
	HeaderImageURL string `json:"header_image_url,omitempty"`
	PrimaryColor   string `json:"primary_color"`
}

// Default 当前部署的物业
func (s *PropertyService) Default(ctx context.Context) (*models.Property, error) {
	property, err := s.propertyRepo.GetDefault(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPropertyNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return property, nil
}

// PublicInfo 客人端物业信息
func (s *PropertyService) PublicInfo(ctx context.Context) (*PublicInfo, error) {
	p, err := s.Default(ctx)
	if err != nil {
		return nil, err
	}
	return &PublicInfo{
		ID:             p.ID,
		Name:           p.Name,
		Address:        p.Address,
		ContactEmail:   p.ContactEmail,
		ContactPhone:   p.ContactPhone,
		CheckInTime:    p.CheckInTime,
		CheckOutTime:   p.CheckOutTime,
		LogoURL:        p.LogoURL,
		HeaderImageURL: p.HeaderImageURL,
		PrimaryColor:   p.PrimaryColor,
	}, nil
}

// GetSettings 物业设置（含季节价格）
func (s *PropertyService) GetSettings(ctx context.Context, propertyID int64) (*models.Property, error) {
	property, err := s.propertyRepo.GetByIDWithRates(ctx, propertyID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPropertyNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return property, nil
}

// UpdateSettingsRequest 更新物业设置，仅提交的字段生效
type UpdateSettingsRequest struct {
	Name             *string `json:"name" binding:"omitempty,min=1,max=100"`
	Address          *string `json:"address" binding:"omitempty,max=255"`
	ContactEmail     *string `json:"contact_email"`
	ContactPhone     *string `json:"contact_phone"`
	StaffWhatsapp    *string `json:"staff_whatsapp"`
	CheckInTime      *string `json:"check_in_time"`
	CheckOutTime     *string `json:"check_out_time"`
	LogoURL          *string `json:"logo_url" binding:"omitempty,max=255"`
	HeaderImageURL   *string `json:"header_image_url" binding:"omitempty,max=255"`
	PrimaryColor     *string `json:"primary_color"`
	WhatsappTemplate *string `json:"whatsapp_template"`
	WebhookURL       *string `json:"webhook_url" binding:"omitempty,max=255"`
	RefPrefix        *string `json:"ref_prefix" binding:"omitempty,min=1,max=10,alphanum"`
}

// UpdateSettings 更新物业设置
func (s *PropertyService) UpdateSettings(ctx context.Context, propertyID int64, req *UpdateSettingsRequest, actor models.Actor) (*models.Property, error) {
	if err := validateSettings(req); err != nil {
		return nil, err
	}
	property, err := s.GetSettings(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	changed := applySettings(property, req)
	if len(changed) == 0 {
		return property, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.propertyRepo.WithTx(tx).Update(ctx, property); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionSettingsUpdated,
			Details:    "Updated property settings: " + strings.Join(changed, ", "),
			TargetType: models.AuditTargetProperty,
			TargetID:   propertyID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

func validateSettings(req *UpdateSettingsRequest) error {
	switch {
	case req.ContactEmail != nil && *req.ContactEmail != "" && !utils.ValidateEmail(*req.ContactEmail):
		return errors.ErrInvalidParams.WithMessage("联系邮箱格式错误")
	case req.ContactPhone != nil && *req.ContactPhone != "" && !utils.ValidatePhone(*req.ContactPhone):
		return errors.ErrInvalidParams.WithMessage("联系电话格式错误")
	case req.StaffWhatsapp != nil && *req.StaffWhatsapp != "" && !utils.ValidatePhone(*req.StaffWhatsapp):
		return errors.ErrInvalidParams.WithMessage("WhatsApp 号码格式错误")
	case req.CheckInTime != nil && !utils.ValidateClock(*req.CheckInTime):
		return errors.ErrInvalidParams.WithMessage("入住时间格式应为 HH:MM")
	case req.CheckOutTime != nil && !utils.ValidateClock(*req.CheckOutTime):
		return errors.ErrInvalidParams.WithMessage("退房时间格式应为 HH:MM")
	case req.PrimaryColor != nil && !utils.ValidateHexColor(*req.PrimaryColor):
		return errors.ErrInvalidParams.WithMessage("主题色格式应为 #RRGGBB")
	}
	return nil
}

// applySettings 写入变更字段，返回变更字段名
func applySettings(p *models.Property, req *UpdateSettingsRequest) []string {
	var changed []string
	set := func(name string, dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = append(changed, name)
		}
	}
	set("name", &p.Name, req.Name)
	set("address", &p.Address, req.Address)
	set("contact_email", &p.ContactEmail, req.ContactEmail)
	set("contact_phone", &p.ContactPhone, req.ContactPhone)
	set("staff_whatsapp", &p.StaffWhatsapp, req.StaffWhatsapp)
	set("check_in_time", &p.CheckInTime, req.CheckInTime)
	set("check_out_time", &p.CheckOutTime, req.CheckOutTime)
	set("logo_url", &p.LogoURL, req.LogoURL)
	set("header_image_url", &p.HeaderImageURL, req.HeaderImageURL)
	set("primary_color", &p.PrimaryColor, req.PrimaryColor)
	set("whatsapp_template", &p.WhatsappTemplate, req.WhatsappTemplate)
	set("webhook_url", &p.WebhookURL, req.WebhookURL)
	if req.RefPrefix != nil {
		prefix := strings.ToUpper(*req.RefPrefix)
		set("ref_prefix", &p.RefPrefix, &prefix)
	}
	return changed
}

// UpdateLayout 更新房态图布局
func (s *PropertyService) UpdateLayout(ctx context.Context, propertyID int64, layout []models.RoomPosition, actor models.Actor) (*models.Property, error) {
	property, err := s.GetSettings(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	rooms, err := s.roomRepo.List(ctx, propertyID, nil)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	known := make(map[int64]bool, len(rooms))
	for _, r := range rooms {
		known[r.ID] = true
	}
	seen := make(map[int64]bool, len(layout))
	for _, pos := range layout {
		if !known[pos.RoomID] || seen[pos.RoomID] {
			return nil, errors.ErrLayoutInvalid.WithMessage(fmt.Sprintf("房间 %d 不存在或重复", pos.RoomID))
		}
		if pos.X < 0 || pos.Y < 0 || pos.W <= 0 || pos.H <= 0 {
			return nil, errors.ErrLayoutInvalid
		}
		seen[pos.RoomID] = true
	}

	property.LayoutGrid = layout
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.propertyRepo.WithTx(tx).Update(ctx, property); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionSettingsUpdated,
			Details:    fmt.Sprintf("Updated floor layout (%d rooms)", len(layout)),
			Field:      "layout_grid",
			TargetType: models.AuditTargetProperty,
			TargetID:   propertyID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}
