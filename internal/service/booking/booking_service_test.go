package booking

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/cache"
	"github.com/dumeirei/innflow-backend/internal/common/crypto"
	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
	"github.com/dumeirei/innflow-backend/internal/service/notification"
	"github.com/dumeirei/innflow-backend/internal/testutil"
	"github.com/dumeirei/innflow-backend/pkg/mqtt"
	"github.com/dumeirei/innflow-backend/pkg/whatsapp"
)

type serviceFixture struct {
	db       *gorm.DB
	svc      *BookingService
	audits   *audit.AuditService
	notifier *notification.NotificationService
	sender   *whatsapp.MockSender
	access   *mqtt.MockPublisher
	property *models.Property
	rooms    []*models.Room
}

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func setupService(t *testing.T, mutate func(*Options)) *serviceFixture {
	db := testutil.NewTestDB(t)
	property, rooms := testutil.SeedProperty(t, db, 1200, 850)
	property.WebhookURL = "https://graph.example.com/messages"
	require.NoError(t, db.Save(property).Error)
	require.NoError(t, db.Create(&models.SeasonalRate{
		PropertyID: property.ID,
		Name:       "Easter Special",
		StartDate:  models.MustParseDate("2024-04-10"),
		EndDate:    models.MustParseDate("2024-04-20"),
		Multiplier: 1.25,
	}).Error)

	audits := audit.NewAuditService(repository.NewAuditLogRepository(db), 0)
	sender := whatsapp.NewMockSender()
	notifier := notification.NewNotificationService(repository.NewNotificationRepository(db), audits, sender, notification.Config{})
	access := &mqtt.MockPublisher{}
	cipher, err := crypto.NewCipher("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	opts := Options{
		Cipher:   cipher,
		Access:   mqtt.NewAccessPublisher(access, "innflow/"),
		Notifier: notifier,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	}
	if mutate != nil {
		mutate(&opts)
	}

	svc := NewBookingService(db,
		repository.NewBookingRepository(db),
		repository.NewRoomRepository(db),
		repository.NewPropertyRepository(db),
		audits,
		opts,
	)
	return &serviceFixture{
		db: db, svc: svc, audits: audits, notifier: notifier, sender: sender,
		access: access, property: property, rooms: rooms,
	}
}

func (f *serviceFixture) createRequest(roomIdx int, in, out string) *CreateRequest {
	return &CreateRequest{
		RoomID:       f.rooms[roomIdx].ID,
		GuestName:    "Alice Smith",
		GuestEmail:   "alice@example.com",
		GuestPhone:   "+27 82 555 0101",
		GuestCount:   2,
		CheckInDate:  models.MustParseDate(in),
		CheckOutDate: models.MustParseDate(out),
	}
}

var staff = models.Actor{Name: "Sarah Miller"}

func TestCreate(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	info, err := f.svc.Create(ctx, f.createRequest(0, "2024-04-08", "2024-04-12"), staff, models.BookingSourceAdmin)
	require.NoError(t, err)
	f.notifier.Wait()

	t.Run("计价与预订号", func(t *testing.T) {
		// 04-08、04-09 原价，04-10、04-11 ×1.25
		assert.Equal(t, float64(1200*2+1500*2), info.TotalAmount)
		assert.Equal(t, "INF-2024-0013", info.Reference)
		assert.Equal(t, "101", info.RoomNumber)
		assert.Equal(t, 4, info.Nights)

		var property models.Property
		require.NoError(t, f.db.First(&property, f.property.ID).Error)
		assert.Equal(t, 13, property.LastRefNumber)
	})

	t.Run("无支付方式为待确认", func(t *testing.T) {
		assert.Equal(t, models.BookingStatusProvisional, info.Status)
		assert.Equal(t, models.PaymentStatusPending, info.PaymentStatus)
		assert.Equal(t, NotApplicable, info.PaymentMethodLabel)
	})

	t.Run("审计与通知", func(t *testing.T) {
		logs, _, err := f.audits.List(ctx, f.property.ID, &audit.ListRequest{Action: models.AuditActionBookingCreated})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "Confirmed stay INF-2024-0013 for Alice Smith", logs[0].Details)
		assert.Equal(t, "Sarah Miller", logs[0].ActorName)

		assert.Equal(t, 1, f.sender.Count())
		assert.Equal(t, "INF-2024-0013", f.sender.Last().Message.Reference)
	})
}

func TestCreate_InstantPayment(t *testing.T) {
	f := setupService(t, nil)
	req := f.createRequest(1, "2024-05-01", "2024-05-02")
	method := models.PaymentMethodIKhokha
	req.PaymentMethod = &method

	info, err := f.svc.Create(context.Background(), req, models.SystemActor("Guest Portal"), models.BookingSourcePortal)
	require.NoError(t, err)
	f.notifier.Wait()

	assert.Equal(t, models.BookingStatusConfirmed, info.Status)
	assert.Equal(t, models.PaymentStatusPaid, info.PaymentStatus)
	assert.Equal(t, models.BookingSourcePortal, info.Source)
	assert.Equal(t, float64(850), info.TotalAmount)
}

func TestCreate_Validation(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
		want   error
	}{
		{"退房不晚于入住", func(r *CreateRequest) { r.CheckOutDate = r.CheckInDate }, errors.ErrInvalidDateRange},
		{"超过最大晚数", func(r *CreateRequest) { r.CheckOutDate = models.MustParseDate("9999-12-31") }, errors.ErrInvalidDateRange},
		{"缺少日期", func(r *CreateRequest) { r.CheckInDate = models.Date{} }, errors.ErrInvalidParams},
		{"客人姓名为空", func(r *CreateRequest) { r.GuestName = "  " }, errors.ErrInvalidParams},
		{"未知支付方式", func(r *CreateRequest) { m := models.PaymentMethod("BITCOIN"); r.PaymentMethod = &m }, errors.ErrPaymentMethodInvalid},
		{"客房不存在", func(r *CreateRequest) { r.RoomID = 9999 }, errors.ErrRoomNotFound},
		{"超出容量", func(r *CreateRequest) { r.GuestCount = 5 }, errors.ErrCapacityExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.createRequest(0, "2024-06-01", "2024-06-03")
			tt.mutate(req)
			_, err := f.svc.Create(ctx, req, staff, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStayLengthLimit(t *testing.T) {
	f := setupService(t, func(o *Options) { o.MaxNights = 30 })
	ctx := context.Background()
	in := models.MustParseDate("2024-06-01")

	t.Run("恰好上限可以报价", func(t *testing.T) {
		quote, err := f.svc.Quote(ctx, &QuoteRequest{RoomID: f.rooms[0].ID, CheckInDate: in, CheckOutDate: in.AddDays(30)})
		require.NoError(t, err)
		assert.Equal(t, 30, quote.Nights)
	})

	t.Run("报价超过上限", func(t *testing.T) {
		_, err := f.svc.Quote(ctx, &QuoteRequest{RoomID: f.rooms[0].ID, CheckInDate: in, CheckOutDate: models.MustParseDate("9999-12-31")})
		assert.ErrorIs(t, err, errors.ErrInvalidDateRange)
	})

	t.Run("可订客房查询超过上限", func(t *testing.T) {
		_, err := f.svc.AvailableRooms(ctx, f.property.ID, &AvailabilityRequest{CheckInDate: in, CheckOutDate: in.AddDays(31)})
		assert.ErrorIs(t, err, errors.ErrInvalidDateRange)
	})

	t.Run("创建超过上限", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-07-02"), staff, models.BookingSourcePortal)
		assert.ErrorIs(t, err, errors.ErrInvalidDateRange)
	})
}

func TestCreate_ReferenceYearInPropertyTimezone(t *testing.T) {
	f := setupService(t, func(o *Options) {
		o.Location = time.FixedZone("SAST", 2*60*60)
		o.Now = func() time.Time { return time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC) }
	})

	info, err := f.svc.Create(context.Background(), f.createRequest(0, "2025-01-10", "2025-01-11"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()
	assert.Equal(t, "INF-2025-0013", info.Reference)
}

func TestResetReferenceCounter(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()
	developer := models.Actor{Name: "Platform Developer"}

	for _, in := range []string{"2024-06-01", "2024-06-05"} {
		_, err := f.svc.Create(ctx, f.createRequest(0, in, models.MustParseDate(in).AddDays(1).String()), staff, "")
		require.NoError(t, err)
	}
	f.notifier.Wait()

	lastRef := func() int {
		var p models.Property
		require.NoError(t, f.db.First(&p, f.property.ID).Error)
		return p.LastRefNumber
	}

	t.Run("不能低于当年已使用的流水号", func(t *testing.T) {
		_, err := f.svc.ResetReferenceCounter(ctx, f.property.ID, 0, developer)
		assert.ErrorIs(t, err, errors.ErrReferenceInUse)
		assert.Equal(t, 14, lastRef())
	})

	t.Run("重置到当年最大流水号", func(t *testing.T) {
		counter, err := f.svc.ResetReferenceCounter(ctx, f.property.ID, 14, developer)
		require.NoError(t, err)
		assert.Equal(t, "INF-2024-0015", counter.NextReference)
	})

	t.Run("往年预订号不占用当年流水号", func(t *testing.T) {
		require.NoError(t, f.db.Exec("UPDATE bookings SET reference = REPLACE(reference, '-2024-', '-2023-')").Error)

		counter, err := f.svc.ResetReferenceCounter(ctx, f.property.ID, 0, developer)
		require.NoError(t, err)
		assert.Equal(t, 0, counter.LastRefNumber)
		assert.Equal(t, "INF-2024-0001", counter.NextReference)
		assert.Equal(t, 0, lastRef())

		info, err := f.svc.Create(ctx, f.createRequest(0, "2024-07-01", "2024-07-02"), staff, "")
		require.NoError(t, err)
		f.notifier.Wait()
		assert.Equal(t, "INF-2024-0001", info.Reference)
	})

	t.Run("负数被拒绝", func(t *testing.T) {
		_, err := f.svc.ResetReferenceCounter(ctx, f.property.ID, -1, developer)
		assert.ErrorIs(t, err, errors.ErrInvalidParams)
	})

	logs, _, err := f.audits.List(ctx, f.property.ID, &audit.ListRequest{Action: models.AuditActionReferenceReset})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Reference counter reset from 14 to 0", logs[0].Details)
	assert.Equal(t, "Platform Developer", logs[0].ActorName)
}

func TestCreate_Availability(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-05"), staff, "")
	require.NoError(t, err)

	t.Run("重叠被拒绝", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-04", "2024-06-06"), staff, "")
		assert.ErrorIs(t, err, errors.ErrBookingConflict)
		assert.NotErrorIs(t, err, errors.ErrRoomNotAvailable)
	})

	t.Run("首尾相接允许", func(t *testing.T) {
		info, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-05", "2024-06-07"), staff, "")
		require.NoError(t, err)
		assert.Equal(t, "INF-2024-0014", info.Reference)
	})

	t.Run("其他客房不受影响", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.createRequest(1, "2024-06-02", "2024-06-04"), staff, "")
		require.NoError(t, err)
	})

	t.Run("维修中的客房不可订", func(t *testing.T) {
		require.NoError(t, f.db.Model(f.rooms[1]).Update("status", models.RoomStatusMaintenance).Error)
		_, err := f.svc.Create(ctx, f.createRequest(1, "2024-07-01", "2024-07-02"), staff, "")
		assert.ErrorIs(t, err, errors.ErrRoomNotAvailable)
	})
	f.notifier.Wait()
}

func TestCreate_CancelledDoesNotBlock(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	info, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-05"), staff, "")
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, f.property.ID, info.ID, models.BookingStatusCancelled, staff)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.createRequest(0, "2024-06-02", "2024-06-04"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()
}

func TestCreate_ReferenceConflictRetries(t *testing.T) {
	f := setupService(t, func(o *Options) { o.ReferenceRetries = 3 })

	// 首次写入流水号前另一请求抢先推进，本次事务回滚后重试
	var (
		once     sync.Once
		attempts int
	)
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:bump_ref", func(tx *gorm.DB) {
		if tx.Statement.Table != "properties" {
			return
		}
		attempts++
		once.Do(func() {
			tx.Session(&gorm.Session{NewDB: true}).
				Exec("UPDATE properties SET last_ref_number = last_ref_number + 1 WHERE id = ?", f.property.ID)
		})
	}))

	info, err := f.svc.Create(context.Background(), f.createRequest(0, "2024-06-01", "2024-06-02"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "INF-2024-0013", info.Reference)

	_, err = f.svc.Create(context.Background(), f.createRequest(0, "2024-06-02", "2024-06-03"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()
	assert.Equal(t, 3, attempts)
}

func TestCreate_Locked(t *testing.T) {
	_, client := testutil.NewTestRedis(t)
	locker := cache.NewLocker(client, 0)
	f := setupService(t, func(o *Options) { o.Locker = locker })
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, roomLockKey(f.rooms[0].ID), time.Minute)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-02"), staff, "")
	assert.ErrorIs(t, err, errors.ErrBookingLocked)

	unlock()
	_, err = f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-02"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()
}

func TestCreate_CancelledWhileWaitingForLock(t *testing.T) {
	_, client := testutil.NewTestRedis(t)
	locker := cache.NewLocker(client, 5*time.Second)
	f := setupService(t, func(o *Options) { o.Locker = locker })

	unlock, err := locker.Lock(context.Background(), roomLockKey(f.rooms[0].ID), time.Minute)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-02"), staff, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var count int64
	require.NoError(t, f.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreate_ConcurrentSameRoom(t *testing.T) {
	_, client := testutil.NewTestRedis(t)
	f := setupService(t, func(o *Options) { o.Locker = cache.NewLocker(client, 2*time.Second) })
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Create(ctx, f.createRequest(0, "2024-08-01", "2024-08-03"), staff, ""); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	f.notifier.Wait()
	assert.Equal(t, 1, success)
}

func TestGuestIDEncryption(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	req := f.createRequest(0, "2024-06-01", "2024-06-02")
	req.GuestIDNumber = "8001015009087"
	info, err := f.svc.Create(ctx, req, staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	var stored models.Booking
	require.NoError(t, f.db.First(&stored, info.ID).Error)
	assert.NotEmpty(t, stored.GuestIDCipher)
	assert.NotContains(t, stored.GuestIDCipher, "8001015009087")

	detail, err := f.svc.Get(ctx, f.property.ID, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "8001015009087", detail.GuestIDNumber)

	portal, err := f.svc.GetByReference(ctx, info.Reference)
	require.NoError(t, err)
	assert.Equal(t, "*********9087", portal.GuestIDNumber)

	raw, err := json.Marshal(detail)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "guest_id_cipher")
}

func TestGetByReference(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-02"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	info, err := f.svc.GetByReference(ctx, " inf-2024-0013 ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, info.ID)
	assert.NotEqual(t, "+27 82 555 0101", info.GuestPhone)
	assert.NotEqual(t, "alice@example.com", info.GuestEmail)

	_, err = f.svc.GetByReference(ctx, "INF-1999-0001")
	assert.ErrorIs(t, err, errors.ErrBookingNotFound)
}

func TestChangeStatus(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-03"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	t.Run("入住推送门禁事件", func(t *testing.T) {
		info, err := f.svc.ChangeStatus(ctx, f.property.ID, created.ID, models.BookingStatusCheckedIn, staff)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCheckedIn, info.Status)
		require.NotNil(t, info.CheckedInAt)

		msg := f.access.Last()
		require.NotNil(t, msg)
		assert.Equal(t, "innflow/rooms/101/access", msg.Topic)
		var ev mqtt.AccessEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, mqtt.EventCheckIn, ev.Type)
		assert.Equal(t, "2024-06-03", ev.ValidUntil)
	})

	t.Run("非法流转", func(t *testing.T) {
		_, err := f.svc.ChangeStatus(ctx, f.property.ID, created.ID, models.BookingStatusCancelled, staff)
		assert.ErrorIs(t, err, errors.ErrBookingStatusError)
		_, err = f.svc.ChangeStatus(ctx, f.property.ID, created.ID, models.BookingStatusCheckedIn, staff)
		assert.ErrorIs(t, err, errors.ErrBookingStatusError)
	})

	t.Run("退房", func(t *testing.T) {
		_, err := f.svc.ChangeStatus(ctx, f.property.ID, created.ID, models.BookingStatusCheckedOut, staff)
		require.NoError(t, err)
		assert.Equal(t, 2, f.access.Count())
	})

	t.Run("审计记录前后状态", func(t *testing.T) {
		logs, _, err := f.audits.List(ctx, f.property.ID, &audit.ListRequest{Action: models.AuditActionBookingStatusChange})
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, "CHECKED_IN", logs[0].Before)
		assert.Equal(t, "CHECKED_OUT", logs[0].After)
		assert.Equal(t, "Booking INF-2024-0013 changed status to CHECKED_OUT", logs[0].Details)
	})

	t.Run("其他物业不可见", func(t *testing.T) {
		_, err := f.svc.ChangeStatus(ctx, f.property.ID+1, created.ID, models.BookingStatusCheckedOut, staff)
		assert.ErrorIs(t, err, errors.ErrBookingNotFound)
	})
}

func TestChangePayment(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-03"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	method := models.PaymentMethodEFT
	info, err := f.svc.ChangePayment(ctx, f.property.ID, created.ID, &ChangePaymentRequest{
		PaymentStatus: models.PaymentStatusPartiallyPaid,
		PaymentMethod: &method,
	}, staff)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, info.PaymentStatus)
	assert.Equal(t, models.BookingStatusProvisional, info.Status)
	assert.Equal(t, "EFT", info.PaymentMethodLabel)

	_, err = f.svc.ChangePayment(ctx, f.property.ID, created.ID, &ChangePaymentRequest{PaymentStatus: models.PaymentStatusPending}, staff)
	assert.ErrorIs(t, err, errors.ErrPaymentStatusError)

	_, err = f.svc.ChangePayment(ctx, f.property.ID, created.ID, &ChangePaymentRequest{PaymentStatus: models.PaymentStatusRefunded}, staff)
	require.NoError(t, err)
	_, err = f.svc.ChangePayment(ctx, f.property.ID, created.ID, &ChangePaymentRequest{PaymentStatus: models.PaymentStatusPaid}, staff)
	assert.ErrorIs(t, err, errors.ErrPaymentStatusError)

	logs, _, err := f.audits.List(ctx, f.property.ID, &audit.ListRequest{Action: models.AuditActionPaymentStatusChange})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Booking INF-2024-0013 payment status changed to REFUNDED", logs[0].Details)
}

// raceBookingUpdate 在下一次预订 UPDATE 执行前，模拟另一位员工抢先写入 column
func raceBookingUpdate(t *testing.T, db *gorm.DB, column, value string) {
	t.Helper()
	var once sync.Once
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:race_"+column, func(tx *gorm.DB) {
		if tx.Statement.Table != "bookings" {
			return
		}
		once.Do(func() {
			tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE bookings SET "+column+" = ?", value)
		})
	}))
}

func TestChangeStatus_LostRace(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-03"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	raceBookingUpdate(t, f.db, "status", string(models.BookingStatusCancelled))
	_, err = f.svc.ChangeStatus(ctx, f.property.ID, created.ID, models.BookingStatusCheckedIn, staff)
	assert.ErrorIs(t, err, errors.ErrBookingStatusError)
	assert.Zero(t, f.access.Count())

	logs, _, err := f.audits.List(ctx, f.property.ID, &audit.ListRequest{Action: models.AuditActionBookingStatusChange})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestChangePayment_LostRace(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-03"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	raceBookingUpdate(t, f.db, "payment_status", string(models.PaymentStatusRefunded))
	_, err = f.svc.ChangePayment(ctx, f.property.ID, created.ID, &ChangePaymentRequest{PaymentStatus: models.PaymentStatusPaid}, staff)
	assert.ErrorIs(t, err, errors.ErrPaymentStatusError)

	logs, _, err := f.audits.List(ctx, f.property.ID, &audit.ListRequest{Action: models.AuditActionPaymentStatusChange})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestUpdateGuest(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-03"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	name, count := "Alice Jones", 1
	info, err := f.svc.UpdateGuest(ctx, f.property.ID, created.ID, &UpdateGuestRequest{GuestName: &name, GuestCount: &count}, staff)
	require.NoError(t, err)
	assert.Equal(t, "Alice Jones", info.GuestName)
	assert.Equal(t, 1, info.GuestCount)

	tooMany := 3
	_, err = f.svc.UpdateGuest(ctx, f.property.ID, created.ID, &UpdateGuestRequest{GuestCount: &tooMany}, staff)
	assert.ErrorIs(t, err, errors.ErrCapacityExceeded)

	logs, _, err := f.audits.List(ctx, f.property.ID, &audit.ListRequest{Action: models.AuditActionBookingUpdated})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Details, "guest_name, guest_count")
}

func TestDelete(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-03"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	err = f.svc.Delete(ctx, f.property.ID, created.ID, false, staff)
	assert.ErrorIs(t, err, errors.ErrBookingDeleteUnconfirmed)

	require.NoError(t, f.svc.Delete(ctx, f.property.ID, created.ID, true, staff))
	_, err = f.svc.Get(ctx, f.property.ID, created.ID)
	assert.ErrorIs(t, err, errors.ErrBookingNotFound)

	logs, _, err := f.audits.List(ctx, f.property.ID, &audit.ListRequest{Action: models.AuditActionBookingDeleted})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "INF-2024-0013", logs[0].Snapshot["reference"])
}

func TestList(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	for i, dates := range [][2]string{{"2024-06-01", "2024-06-02"}, {"2024-06-03", "2024-06-04"}, {"2024-06-05", "2024-06-06"}} {
		_, err := f.svc.Create(ctx, f.createRequest(i%2, dates[0], dates[1]), staff, "")
		require.NoError(t, err)
	}
	f.notifier.Wait()

	// 删除客房后列表展示 N/A
	require.NoError(t, f.db.Delete(&models.Room{}, f.rooms[1].ID).Error)

	list, total, err := f.svc.List(ctx, f.property.ID, &ListRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 2)

	list, _, err = f.svc.List(ctx, f.property.ID, &ListRequest{RoomID: f.rooms[1].ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, NotApplicable, list[0].RoomNumber)

	list, total, err = f.svc.List(ctx, f.property.ID, &ListRequest{Keyword: "0015"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "INF-2024-0015", list[0].Reference)
}

func TestCalendar(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.createRequest(0, "2024-05-30", "2024-06-02"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	cal, err := f.svc.Calendar(ctx, f.property.ID, 2024, time.June)
	require.NoError(t, err)
	assert.Len(t, cal.Days, 30)
	require.Len(t, cal.Rows, 2)

	row := cal.Rows[0]
	assert.Equal(t, "101", row.RoomNumber)
	assert.Equal(t, created.ID, row.Cells[0].BookingID)
	assert.Zero(t, row.Cells[1].BookingID, "退房日不占用")
	assert.Equal(t, "amber", row.Cells[0].Color)
	assert.Zero(t, cal.Rows[1].Cells[0].BookingID)

	_, err = f.svc.Calendar(ctx, f.property.ID, 2024, 13)
	assert.ErrorIs(t, err, errors.ErrInvalidParams)
}

func TestQuoteAndAvailableRooms(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.createRequest(0, "2024-04-10", "2024-04-12"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	quote, err := f.svc.Quote(ctx, &QuoteRequest{
		RoomID:       f.rooms[0].ID,
		CheckInDate:  models.MustParseDate("2024-04-09"),
		CheckOutDate: models.MustParseDate("2024-04-11"),
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1200+1500), quote.Total)
	assert.False(t, quote.Available)
	assert.Len(t, quote.Breakdown, 2)

	_, err = f.svc.Quote(ctx, &QuoteRequest{
		RoomID:       f.rooms[0].ID,
		CheckInDate:  models.MustParseDate("2024-04-11"),
		CheckOutDate: models.MustParseDate("2024-04-11"),
	})
	assert.ErrorIs(t, err, errors.ErrInvalidDateRange)

	rooms, err := f.svc.AvailableRooms(ctx, f.property.ID, &AvailabilityRequest{
		CheckInDate:  models.MustParseDate("2024-04-11"),
		CheckOutDate: models.MustParseDate("2024-04-13"),
		Guests:       2,
	})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, f.rooms[1].ID, rooms[0].ID)

	rooms, err = f.svc.AvailableRooms(ctx, f.property.ID, &AvailabilityRequest{
		CheckInDate:  models.MustParseDate("2024-04-12"),
		CheckOutDate: models.MustParseDate("2024-04-13"),
		Guests:       3,
	})
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestPaymentQRCode(t *testing.T) {
	f := setupService(t, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.createRequest(0, "2024-06-01", "2024-06-02"), staff, "")
	require.NoError(t, err)
	f.notifier.Wait()

	link, err := f.svc.PaymentLink(ctx, "INF-2024-0013")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.innflow.com/INF-2024-0013", link)

	link, err = f.svc.PaymentLink(ctx, " inf-2024-0013 ")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.innflow.com/INF-2024-0013", link)

	png, err := f.svc.PaymentQRCode(ctx, "inf-2024-0013")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

	_, err = f.svc.PaymentQRCode(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrBookingNotFound)
}
