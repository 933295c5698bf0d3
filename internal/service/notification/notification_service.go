// Package notification 提供预订通知发送与消息中心服务
package notification

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/common/logger"
	"github.com/dumeirei/innflow-backend/internal/common/metrics"
	"github.com/dumeirei/innflow-backend/internal/common/tracing"
	"github.com/dumeirei/innflow-backend/internal/common/utils"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
	"github.com/dumeirei/innflow-backend/pkg/whatsapp"
)

// DefaultCap 每个物业保留的通知条数
const DefaultCap = 50

// Config 通知服务配置
type Config struct {
	PaymentLinkBase string
	Timeout         time.Duration
	Cap             int
}

// NotificationService 通知服务
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	auditService     *audit.AuditService
	sender           whatsapp.Sender
	cfg              Config
	wg               sync.WaitGroup
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	auditService *audit.AuditService,
	sender whatsapp.Sender,
	cfg Config,
) *NotificationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Cap <= 0 {
		cfg.Cap = DefaultCap
	}
	if cfg.PaymentLinkBase == "" {
		cfg.PaymentLinkBase = DefaultPaymentLinkBase
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		auditService:     auditService,
		sender:           sender,
		cfg:              cfg,
	}
}

// PaymentLink 预订支付链接
func (s *NotificationService) PaymentLink(ref string) string {
	return PaymentLink(s.cfg.PaymentLinkBase, ref)
}

// Render 渲染预订确认消息
func (s *NotificationService) Render(property *models.Property, booking *models.Booking) string {
	return RenderTemplate(property.WhatsappTemplate, TemplateVars{
		Guest:    booking.GuestName,
		Ref:      booking.Reference,
		Property: property.Name,
		Date:     booking.CheckInDate.String(),
		Link:     s.PaymentLink(booking.Reference),
	})
}

// DispatchAsync 异步发送预订确认，不影响调用方
func (s *NotificationService) DispatchAsync(property *models.Property, booking *models.Booking) {
	p, b := *property, *booking
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("通知发送异常", logger.Reference(b.Reference), logger.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		_, _ = s.Dispatch(ctx, &p, &b)
	}()
}

// Wait 等待所有异步发送完成
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

// Dispatch 发送预订确认并记录结果，发送失败不返回错误
func (s *NotificationService) Dispatch(ctx context.Context, property *models.Property, booking *models.Booking) (*models.Notification, error) {
	ctx, span := tracing.Start(ctx, "notification.Dispatch",
		tracing.WithBookingID(booking.ID),
		tracing.WithReference(booking.Reference),
	)
	defer span.End()

	link := s.PaymentLink(booking.Reference)
	record := &models.Notification{
		PropertyID: property.ID,
		BookingID:  utils.Ptr(booking.ID),
		Channel:    models.NotificationChannelWhatsapp,
		Recipient:  booking.GuestPhone,
		Title:      "Booking " + booking.Reference,
		Content:    s.Render(property, booking),
		Status:     models.NotificationStatusSimulated,
	}

	if property.WebhookURL != "" && booking.GuestPhone != "" {
		res, err := s.sender.Send(ctx, property.WebhookURL, whatsapp.Message{
			To:          booking.GuestPhone,
			GuestName:   booking.GuestName,
			Reference:   booking.Reference,
			PaymentLink: link,
		})
		switch {
		case err != nil:
			record.Error = truncate(err.Error(), 255)
			logger.Warn("WhatsApp 发送失败，按模拟处理", logger.Reference(booking.Reference), logger.Err(err))
		case res.OK():
			record.Status = models.NotificationStatusDelivered
			record.HTTPStatus = res.StatusCode
		default:
			record.Status = models.NotificationStatusFailed
			record.HTTPStatus = res.StatusCode
			record.Error = truncate(res.Body, 255)
		}
	}

	metrics.GetMetrics().RecordNotification(record.Channel, record.Status)
	tracing.SetAttributes(ctx, attribute.String("notification.status", record.Status))

	if err := s.notificationRepo.Create(ctx, record); err != nil {
		logger.Error("保存通知记录失败", logger.Reference(booking.Reference), logger.Err(err))
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if _, err := s.notificationRepo.TrimToCap(ctx, property.ID, s.cfg.Cap); err != nil {
		logger.Warn("通知记录淘汰失败", logger.PropertyID(property.ID), logger.Err(err))
	}

	if record.Status != models.NotificationStatusSimulated {
		_, err := s.auditService.Record(ctx, audit.Entry{
			PropertyID: property.ID,
			Actor:      models.SystemActor("WhatsApp Dispatcher"),
			Action:     models.AuditActionWhatsappDispatch,
			Details:    audit.DispatchDetails(booking.Reference, booking.GuestPhone),
			Field:      "notification",
			After:      record.Status,
			TargetType: models.AuditTargetBooking,
			TargetID:   booking.ID,
		})
		if err != nil {
			logger.Warn("写入通知审计失败", logger.Reference(booking.Reference), logger.Err(err))
		}
	}

	logger.Info("预订通知已处理",
		logger.Reference(booking.Reference),
		logger.String("status", record.Status),
		logger.Int("http_status", record.HTTPStatus),
	)
	return record, nil
}

// ListRequest 通知列表请求
type ListRequest struct {
	IsRead *bool `form:"is_read"`
	utils.Pagination
}

// List 通知列表（最新在前）
func (s *NotificationService) List(ctx context.Context, propertyID int64, req *ListRequest) ([]*models.Notification, int64, error) {
	req.Pagination.Normalize()
	list, total, err := s.notificationRepo.List(ctx, propertyID, req.GetOffset(), req.GetLimit(), req.IsRead)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// MarkRead 标记已读
func (s *NotificationService) MarkRead(ctx context.Context, propertyID, id int64) error {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrNotificationNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	if n.PropertyID != propertyID {
		return errors.ErrNotificationNotFound
	}
	if n.IsRead {
		return nil
	}
	if err := s.notificationRepo.MarkAsRead(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// MarkAllRead 全部已读
func (s *NotificationService) MarkAllRead(ctx context.Context, propertyID int64) error {
	if err := s.notificationRepo.MarkAllAsRead(ctx, propertyID); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// UnreadCount 未读数量
func (s *NotificationService) UnreadCount(ctx context.Context, propertyID int64) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, propertyID)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}
	return count, nil
}

// EnforceCap 按上限清理旧通知
func (s *NotificationService) EnforceCap(ctx context.Context, propertyID int64) (int64, error) {
	removed, err := s.notificationRepo.TrimToCap(ctx, propertyID, s.cfg.Cap)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}
	return removed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
