package booking

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/cache"
	"github.com/dumeirei/innflow-backend/internal/common/crypto"
	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/common/logger"
	"github.com/dumeirei/innflow-backend/internal/common/metrics"
	"github.com/dumeirei/innflow-backend/internal/common/qrcode"
	"github.com/dumeirei/innflow-backend/internal/common/tracing"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
	"github.com/dumeirei/innflow-backend/internal/service/notification"
	"github.com/dumeirei/innflow-backend/pkg/mqtt"
)

// DefaultReferenceRetries 预订号冲突时的最大尝试次数
const DefaultReferenceRetries = 3

// DefaultMaxNights 单次预订最多晚数
const DefaultMaxNights = 365

// Notifier 预订确认通知
type Notifier interface {
	DispatchAsync(property *models.Property, booking *models.Booking)
	PaymentLink(ref string) string
}

// AccessPublisher 门禁事件发布
type AccessPublisher interface {
	Publish(ctx context.Context, ev mqtt.AccessEvent) (string, error)
}

// Options 可选依赖
type Options struct {
	ReferenceRetries int
	MaxNights        int
	LockTTL          time.Duration
	Policy           *PaymentPolicy
	Locker           *cache.Locker
	Cipher           *crypto.Cipher
	QRCode           *qrcode.Generator
	Access           AccessPublisher
	Notifier         Notifier
	Location         *time.Location // 预订号年份所用时区
	Now              func() time.Time
}

// BookingService 预订服务
type BookingService struct {
	db           *gorm.DB
	bookingRepo  *repository.BookingRepository
	roomRepo     *repository.RoomRepository
	propertyRepo *repository.PropertyRepository
	auditService *audit.AuditService
	opts         Options
}

// NewBookingService 创建预订服务
func NewBookingService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	roomRepo *repository.RoomRepository,
	propertyRepo *repository.PropertyRepository,
	auditService *audit.AuditService,
	opts Options,
) *BookingService {
	if opts.ReferenceRetries <= 0 {
		opts.ReferenceRetries = DefaultReferenceRetries
	}
	if opts.MaxNights <= 0 {
		opts.MaxNights = DefaultMaxNights
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	if opts.Policy == nil {
		opts.Policy = DefaultPaymentPolicy()
	}
	if opts.QRCode == nil {
		opts.QRCode = qrcode.NewGenerator()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &BookingService{
		db:           db,
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		propertyRepo: propertyRepo,
		auditService: auditService,
		opts:         opts,
	}
}

// CreateRequest 创建预订请求
type CreateRequest struct {
	RoomID        int64                 `json:"room_id" binding:"required"`
	GuestName     string                `json:"guest_name" binding:"required,max=100"`
	GuestEmail    string                `json:"guest_email" binding:"omitempty,email"`
	GuestPhone    string                `json:"guest_phone" binding:"max=30"`
	GuestCount    int                   `json:"guest_count" binding:"omitempty,min=1"`
	GuestIDNumber string                `json:"guest_id_number" binding:"max=50"`
	CheckInDate   models.Date           `json:"check_in_date"`
	CheckOutDate  models.Date           `json:"check_out_date"`
	PaymentMethod *models.PaymentMethod `json:"payment_method"`
	Remark        string                `json:"remark" binding:"max=255"`
}

// BookingInfo 预订展示信息
type BookingInfo struct {
	*models.Booking
	RoomNumber         string `json:"room_number"`
	RoomType           string `json:"room_type,omitempty"`
	Nights             int    `json:"nights"`
	StatusLabel        string `json:"status_label"`
	StatusColor        string `json:"status_color"`
	PaymentStatusLabel string `json:"payment_status_label"`
	PaymentMethodLabel string `json:"payment_method_label"`
}

// NotApplicable 关联缺失时的展示值
const NotApplicable = "N/A"

// Create 创建预订
// 事务内完成可用性检查、计价、预订号分配和写入，提交后异步发送确认通知
func (s *BookingService) Create(ctx context.Context, req *CreateRequest, actor models.Actor, source string) (*BookingInfo, error) {
	ctx, span := tracing.Start(ctx, "booking.Create", tracing.WithRoomID(req.RoomID))
	defer span.End()

	if err := s.validateCreate(req); err != nil {
		return nil, err
	}
	if req.GuestCount == 0 {
		req.GuestCount = 1
	}
	if source == "" {
		source = models.BookingSourceAdmin
	}

	if s.opts.Locker != nil {
		unlock, err := s.opts.Locker.Lock(ctx, roomLockKey(req.RoomID), s.opts.LockTTL)
		if err != nil {
			if stderrors.Is(err, cache.ErrLockNotAcquired) {
				return nil, errors.ErrBookingLocked
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// Redis 不可用时退化为仅依赖数据库事务
			logger.Warn("获取预订锁失败", logger.RoomID(req.RoomID), logger.Err(err))
		} else {
			defer unlock()
		}
	}

	guestIDCipher, err := s.encryptGuestID(req.GuestIDNumber)
	if err != nil {
		return nil, err
	}

	var (
		booking  *models.Booking
		room     *models.Room
		property *models.Property
	)
	for attempt := 1; attempt <= s.opts.ReferenceRetries; attempt++ {
		booking, room, property, err = s.createOnce(ctx, req, actor, source, guestIDCipher)
		if err == nil || !stderrors.Is(err, errors.ErrReferenceConflict) {
			break
		}
		metrics.GetMetrics().RecordReferenceConflict()
		logger.Warn("预订号冲突，重试", logger.RoomID(req.RoomID), logger.Int("attempt", attempt))
	}
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}

	tracing.SetAttributes(ctx, tracing.WithBookingID(booking.ID), tracing.WithReference(booking.Reference))
	metrics.GetMetrics().RecordBooking(source, string(booking.Status))
	logger.Info("预订已创建",
		logger.Reference(booking.Reference),
		logger.BookingID(booking.ID),
		logger.RoomID(room.ID),
		logger.Actor(actor.Name),
		logger.Float64("total", booking.TotalAmount),
	)

	if s.opts.Notifier != nil {
		s.opts.Notifier.DispatchAsync(property, booking)
	}

	return toInfo(booking, room), nil
}

// createOnce 单次事务尝试
func (s *BookingService) createOnce(ctx context.Context, req *CreateRequest, actor models.Actor, source, guestIDCipher string) (*models.Booking, *models.Room, *models.Property, error) {
	var (
		booking  *models.Booking
		room     *models.Room
		property *models.Property
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = s.roomRepo.WithTx(tx).GetByID(ctx, req.RoomID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrRoomNotFound
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		if room.Status != models.RoomStatusActive {
			return errors.ErrRoomNotAvailable.WithMessage(fmt.Sprintf("房间当前状态为 %s", room.Status.Label()))
		}
		if req.GuestCount > room.Capacity {
			return errors.ErrCapacityExceeded
		}

		existing, err := s.bookingRepo.WithTx(tx).ListActiveByRoom(ctx, room.ID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if !IsRoomAvailable(room.ID, req.CheckInDate, req.CheckOutDate, existing) {
			return errors.ErrBookingConflict
		}

		property, err = s.propertyRepo.WithTx(tx).GetByIDWithRates(ctx, room.PropertyID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrPropertyNotFound
			}
			return errors.ErrDatabaseError.WithError(err)
		}

		total := ComputeStayTotal(room, req.CheckInDate, req.CheckOutDate, property.SeasonalRates)

		ref, next := NextReference(*property, s.localNow())
		ok, err := s.propertyRepo.WithTx(tx).CompareAndSetRefNumber(ctx, property.ID, property.LastRefNumber, next.LastRefNumber)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if !ok {
			return errors.ErrReferenceConflict
		}
		property.LastRefNumber = next.LastRefNumber

		status, paymentStatus := s.opts.Policy.InitialState(req.PaymentMethod)
		booking = &models.Booking{
			PropertyID:    property.ID,
			Reference:     ref,
			RoomID:        room.ID,
			GuestName:     strings.TrimSpace(req.GuestName),
			GuestEmail:    req.GuestEmail,
			GuestPhone:    strings.TrimSpace(req.GuestPhone),
			GuestCount:    req.GuestCount,
			GuestIDCipher: guestIDCipher,
			CheckInDate:   req.CheckInDate,
			CheckOutDate:  req.CheckOutDate,
			TotalAmount:   total,
			Status:        status,
			PaymentStatus: paymentStatus,
			PaymentMethod: req.PaymentMethod,
			Source:        source,
			Remark:        req.Remark,
			CreatedBy:     actor.Name,
		}
		if err := s.bookingRepo.WithTx(tx).Create(ctx, booking); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}

		_, err = s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: property.ID,
			Actor:      actor,
			Action:     models.AuditActionBookingCreated,
			Details:    audit.BookingCreatedDetails(booking.Reference, booking.GuestName),
			Field:      "status",
			After:      string(booking.Status),
			TargetType: models.AuditTargetBooking,
			TargetID:   booking.ID,
		})
		return err
	})
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, nil, nil, appErr
		}
		return nil, nil, nil, errors.ErrDatabaseError.WithError(err)
	}
	return booking, room, property, nil
}

func (s *BookingService) validateCreate(req *CreateRequest) error {
	if strings.TrimSpace(req.GuestName) == "" {
		return errors.ErrInvalidParams.WithMessage("客人姓名不能为空")
	}
	if err := s.validateStay(req.CheckInDate, req.CheckOutDate); err != nil {
		return err
	}
	if req.PaymentMethod != nil && !req.PaymentMethod.Valid() {
		return errors.ErrPaymentMethodInvalid
	}
	return nil
}

func (s *BookingService) localNow() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

// validateStay 入住区间非空、退房晚于入住且不超过最大晚数
func (s *BookingService) validateStay(checkIn, checkOut models.Date) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return errors.ErrInvalidParams.WithMessage("入住和退房日期不能为空")
	}
	if !checkOut.After(checkIn) {
		return errors.ErrInvalidDateRange
	}
	if checkIn.AddDays(s.opts.MaxNights).Before(checkOut) {
		return errors.ErrInvalidDateRange.WithMessage(fmt.Sprintf("单次预订最多 %d 晚", s.opts.MaxNights))
	}
	return nil
}

func roomLockKey(roomID int64) string {
	return cache.BuildKey("booking", "room", strconv.FormatInt(roomID, 10))
}

func (s *BookingService) encryptGuestID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || s.opts.Cipher == nil {
		return "", nil
	}
	out, err := s.opts.Cipher.Encrypt(id)
	if err != nil {
		return "", errors.ErrInternalError.WithError(err)
	}
	return out, nil
}

func (s *BookingService) decryptGuestID(b *models.Booking) {
	if b.GuestIDCipher == "" || s.opts.Cipher == nil {
		return
	}
	plain, err := s.opts.Cipher.Decrypt(b.GuestIDCipher)
	if err != nil {
		logger.Warn("证件号解密失败", logger.BookingID(b.ID), logger.Err(err))
		return
	}
	b.GuestIDNumber = plain
}

// ListRequest 预订列表请求
type ListRequest struct {
	Status        models.BookingStatus `form:"status"`
	PaymentStatus models.PaymentStatus `form:"payment_status"`
	RoomID        int64                `form:"room_id"`
	Keyword       string               `form:"keyword"`
	CheckInFrom   models.Date          `form:"check_in_from"`
	CheckInTo     models.Date          `form:"check_in_to"`
	Page          int                  `form:"page"`
	PageSize      int                  `form:"page_size"`
}

// List 预订列表
func (s *BookingService) List(ctx context.Context, propertyID int64, req *ListRequest) ([]*BookingInfo, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	filters := map[string]interface{}{
		"property_id":    propertyID,
		"room_id":        req.RoomID,
		"status":         req.Status,
		"payment_status": req.PaymentStatus,
		"keyword":        strings.TrimSpace(req.Keyword),
		"check_in_from":  req.CheckInFrom,
		"check_in_to":    req.CheckInTo,
	}
	bookings, total, err := s.bookingRepo.List(ctx, (req.Page-1)*req.PageSize, req.PageSize, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	rooms, err := s.roomIndex(ctx, propertyID)
	if err != nil {
		return nil, 0, err
	}

	list := make([]*BookingInfo, 0, len(bookings))
	for _, b := range bookings {
		list = append(list, toInfo(b, rooms[b.RoomID]))
	}
	return list, total, nil
}

// Get 预订详情（含证件号）
func (s *BookingService) Get(ctx context.Context, propertyID, id int64) (*BookingInfo, error) {
	booking, err := s.load(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	s.decryptGuestID(booking)
	return toInfo(booking, s.roomOrNil(ctx, booking.RoomID)), nil
}

// GetByReference 按预订号查询（客人自助），联系方式与证件号脱敏
func (s *BookingService) GetByReference(ctx context.Context, reference string) (*BookingInfo, error) {
	booking, err := s.bookingRepo.GetByReference(ctx, NormalizeReference(reference))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	booking.GuestPhone = crypto.MaskPhone(booking.GuestPhone)
	booking.GuestEmail = crypto.MaskEmail(booking.GuestEmail)
	s.decryptGuestID(booking)
	booking.GuestIDNumber = crypto.MaskTail(booking.GuestIDNumber, 4)
	return toInfo(booking, s.roomOrNil(ctx, booking.RoomID)), nil
}

// UpdateGuestRequest 更新客人信息
type UpdateGuestRequest struct {
	GuestName     *string `json:"guest_name" binding:"omitempty,min=1,max=100"`
	GuestEmail    *string `json:"guest_email" binding:"omitempty,email"`
	GuestPhone    *string `json:"guest_phone" binding:"omitempty,max=30"`
	GuestCount    *int    `json:"guest_count" binding:"omitempty,min=1"`
	GuestIDNumber *string `json:"guest_id_number" binding:"omitempty,max=50"`
	Remark        *string `json:"remark" binding:"omitempty,max=255"`
}

// UpdateGuest 更新客人信息
func (s *BookingService) UpdateGuest(ctx context.Context, propertyID, id int64, req *UpdateGuestRequest, actor models.Actor) (*BookingInfo, error) {
	booking, err := s.load(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	changed := make([]string, 0, 6)
	if req.GuestName != nil && strings.TrimSpace(*req.GuestName) != booking.GuestName {
		booking.GuestName = strings.TrimSpace(*req.GuestName)
		fields["guest_name"] = booking.GuestName
		changed = append(changed, "guest_name")
	}
	if req.GuestEmail != nil && *req.GuestEmail != booking.GuestEmail {
		booking.GuestEmail = *req.GuestEmail
		fields["guest_email"] = booking.GuestEmail
		changed = append(changed, "guest_email")
	}
	if req.GuestPhone != nil && *req.GuestPhone != booking.GuestPhone {
		booking.GuestPhone = *req.GuestPhone
		fields["guest_phone"] = booking.GuestPhone
		changed = append(changed, "guest_phone")
	}
	if req.GuestCount != nil && *req.GuestCount != booking.GuestCount {
		room := s.roomOrNil(ctx, booking.RoomID)
		if room != nil && *req.GuestCount > room.Capacity {
			return nil, errors.ErrCapacityExceeded
		}
		booking.GuestCount = *req.GuestCount
		fields["guest_count"] = booking.GuestCount
		changed = append(changed, "guest_count")
	}
	if req.GuestIDNumber != nil {
		cipher, err := s.encryptGuestID(*req.GuestIDNumber)
		if err != nil {
			return nil, err
		}
		booking.GuestIDCipher = cipher
		fields["guest_id_cipher"] = cipher
		changed = append(changed, "guest_id_number")
	}
	if req.Remark != nil && *req.Remark != booking.Remark {
		booking.Remark = *req.Remark
		fields["remark"] = booking.Remark
		changed = append(changed, "remark")
	}

	if len(fields) > 0 {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.bookingRepo.WithTx(tx).UpdateFields(ctx, booking.ID, fields); err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
			_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
				PropertyID: booking.PropertyID,
				Actor:      actor,
				Action:     models.AuditActionBookingUpdated,
				Details:    fmt.Sprintf("Booking %s guest details updated: %s", booking.Reference, strings.Join(changed, ", ")),
				TargetType: models.AuditTargetBooking,
				TargetID:   booking.ID,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	s.decryptGuestID(booking)
	return toInfo(booking, s.roomOrNil(ctx, booking.RoomID)), nil
}

// ChangeStatus 变更预订状态，入住/退房时推送门禁事件
func (s *BookingService) ChangeStatus(ctx context.Context, propertyID, id int64, to models.BookingStatus, actor models.Actor) (*BookingInfo, error) {
	ctx, span := tracing.Start(ctx, "booking.ChangeStatus", tracing.WithBookingID(id), tracing.WithOperation(string(to)))
	defer span.End()

	booking, err := s.load(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	from := booking.Status
	if err := ValidateTransition(from, to); err != nil {
		return nil, err
	}

	now := s.opts.Now()
	fields := map[string]interface{}{"status": to}
	switch to {
	case models.BookingStatusCheckedIn:
		booking.CheckedInAt = &now
		fields["checked_in_at"] = now
	case models.BookingStatusCheckedOut:
		booking.CheckedOutAt = &now
		fields["checked_out_at"] = now
	case models.BookingStatusCancelled:
		booking.CancelledAt = &now
		fields["cancelled_at"] = now
	}
	booking.Status = to

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.bookingRepo.WithTx(tx).UpdateFieldsIf(ctx, booking.ID, "status", from, fields)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if !ok {
			return errors.ErrBookingStatusError.WithMessage("预订状态已被他人修改，请刷新后重试")
		}
		_, err = s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: booking.PropertyID,
			Actor:      actor,
			Action:     models.AuditActionBookingStatusChange,
			Details:    audit.StatusChangeDetails(booking.Reference, to),
			Field:      "status",
			Before:     string(from),
			After:      string(to),
			TargetType: models.AuditTargetBooking,
			TargetID:   booking.ID,
		})
		return err
	})
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}

	metrics.GetMetrics().RecordTransition("status", string(to))
	logger.Info("预订状态已变更",
		logger.Reference(booking.Reference),
		logger.String("from", string(from)),
		logger.String("to", string(to)),
		logger.Actor(actor.Name),
	)

	room := s.roomOrNil(ctx, booking.RoomID)
	s.publishAccess(ctx, booking, room)
	return toInfo(booking, room), nil
}

// publishAccess 推送门禁事件，失败仅记录日志
func (s *BookingService) publishAccess(ctx context.Context, booking *models.Booking, room *models.Room) {
	if s.opts.Access == nil || room == nil {
		return
	}

	ev := mqtt.AccessEvent{
		RoomNumber: room.RoomNumber,
		Reference:  booking.Reference,
		GuestName:  booking.GuestName,
	}
	switch booking.Status {
	case models.BookingStatusCheckedIn:
		ev.Type = mqtt.EventCheckIn
		ev.ValidFrom = booking.CheckInDate.String()
		ev.ValidUntil = booking.CheckOutDate.String()
	case models.BookingStatusCheckedOut:
		ev.Type = mqtt.EventCheckOut
	default:
		return
	}

	topic, err := s.opts.Access.Publish(ctx, ev)
	if err != nil {
		logger.Warn("门禁事件推送失败", logger.Reference(booking.Reference), logger.Err(err))
		return
	}
	metrics.GetMetrics().RecordMQTTMessage(topic, "out")
}

// ChangePaymentRequest 变更支付状态请求
type ChangePaymentRequest struct {
	PaymentStatus models.PaymentStatus  `json:"payment_status" binding:"required"`
	PaymentMethod *models.PaymentMethod `json:"payment_method"`
}

// ChangePayment 变更支付状态，不影响预订状态
func (s *BookingService) ChangePayment(ctx context.Context, propertyID, id int64, req *ChangePaymentRequest, actor models.Actor) (*BookingInfo, error) {
	booking, err := s.load(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	from := booking.PaymentStatus
	if err := ValidatePaymentTransition(from, req.PaymentStatus); err != nil {
		return nil, err
	}
	if req.PaymentMethod != nil && !req.PaymentMethod.Valid() {
		return nil, errors.ErrPaymentMethodInvalid
	}

	fields := map[string]interface{}{"payment_status": req.PaymentStatus}
	booking.PaymentStatus = req.PaymentStatus
	if req.PaymentMethod != nil {
		booking.PaymentMethod = req.PaymentMethod
		fields["payment_method"] = *req.PaymentMethod
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.bookingRepo.WithTx(tx).UpdateFieldsIf(ctx, booking.ID, "payment_status", from, fields)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if !ok {
			return errors.ErrPaymentStatusError.WithMessage("支付状态已被他人修改，请刷新后重试")
		}
		_, err = s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: booking.PropertyID,
			Actor:      actor,
			Action:     models.AuditActionPaymentStatusChange,
			Details:    audit.PaymentChangeDetails(booking.Reference, req.PaymentStatus),
			Field:      "payment_status",
			Before:     string(from),
			After:      string(req.PaymentStatus),
			TargetType: models.AuditTargetBooking,
			TargetID:   booking.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.GetMetrics().RecordTransition("payment_status", string(req.PaymentStatus))
	return toInfo(booking, s.roomOrNil(ctx, booking.RoomID)), nil
}

// Delete 删除预订，需显式确认
func (s *BookingService) Delete(ctx context.Context, propertyID, id int64, confirm bool, actor models.Actor) error {
	if !confirm {
		return errors.ErrBookingDeleteUnconfirmed
	}
	booking, err := s.load(ctx, propertyID, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.bookingRepo.WithTx(tx).Delete(ctx, booking.ID); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: booking.PropertyID,
			Actor:      actor,
			Action:     models.AuditActionBookingDeleted,
			Details:    fmt.Sprintf("Booking %s deleted", booking.Reference),
			Before:     string(booking.Status),
			TargetType: models.AuditTargetBooking,
			TargetID:   booking.ID,
			Snapshot: map[string]interface{}{
				"reference":      booking.Reference,
				"guest_name":     booking.GuestName,
				"room_id":        booking.RoomID,
				"check_in_date":  booking.CheckInDate.String(),
				"check_out_date": booking.CheckOutDate.String(),
				"total_amount":   booking.TotalAmount,
				"payment_status": string(booking.PaymentStatus),
			},
		})
		return err
	})
}

// PaymentLink 预订支付链接
func (s *BookingService) PaymentLink(ctx context.Context, reference string) (string, error) {
	booking, err := s.bookingRepo.GetByReference(ctx, NormalizeReference(reference))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", errors.ErrBookingNotFound
		}
		return "", errors.ErrDatabaseError.WithError(err)
	}
	if s.opts.Notifier != nil {
		return s.opts.Notifier.PaymentLink(booking.Reference), nil
	}
	return notification.PaymentLink("", booking.Reference), nil
}

// PaymentQRCode 支付链接二维码 PNG
func (s *BookingService) PaymentQRCode(ctx context.Context, reference string) ([]byte, error) {
	link, err := s.PaymentLink(ctx, reference)
	if err != nil {
		return nil, err
	}
	png, err := s.opts.QRCode.PNG(link)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return png, nil
}

// load 加载物业下的预订
func (s *BookingService) load(ctx context.Context, propertyID, id int64) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if propertyID > 0 && booking.PropertyID != propertyID {
		return nil, errors.ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) roomOrNil(ctx context.Context, roomID int64) *models.Room {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil
	}
	return room
}

func (s *BookingService) roomIndex(ctx context.Context, propertyID int64) (map[int64]*models.Room, error) {
	rooms, err := s.roomRepo.List(ctx, propertyID, nil)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	index := make(map[int64]*models.Room, len(rooms))
	for _, r := range rooms {
		index[r.ID] = r
	}
	return index, nil
}

func toInfo(b *models.Booking, room *models.Room) *BookingInfo {
	info := &BookingInfo{
		Booking:            b,
		RoomNumber:         NotApplicable,
		Nights:             b.Nights(),
		StatusLabel:        b.Status.Label(),
		StatusColor:        b.Status.Color(),
		PaymentStatusLabel: b.PaymentStatus.Label(),
		PaymentMethodLabel: NotApplicable,
	}
	if room != nil {
		info.RoomNumber = room.RoomNumber
		info.RoomType = room.RoomType
	}
	if b.PaymentMethod != nil {
		info.PaymentMethodLabel = b.PaymentMethod.Label()
	}
	return info
}
