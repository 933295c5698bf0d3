// Package main 是应用程序入口
package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/cache"
	"github.com/dumeirei/innflow-backend/internal/common/config"
	"github.com/dumeirei/innflow-backend/internal/common/crypto"
	"github.com/dumeirei/innflow-backend/internal/common/jwt"
	"github.com/dumeirei/innflow-backend/internal/common/metrics"
	commonMiddleware "github.com/dumeirei/innflow-backend/internal/common/middleware"
	"github.com/dumeirei/innflow-backend/internal/common/qrcode"
	adminHandler "github.com/dumeirei/innflow-backend/internal/handler/admin"
	portalHandler "github.com/dumeirei/innflow-backend/internal/handler/portal"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
	"github.com/dumeirei/innflow-backend/internal/scheduler"
	adminService "github.com/dumeirei/innflow-backend/internal/service/admin"
	auditService "github.com/dumeirei/innflow-backend/internal/service/audit"
	bookingService "github.com/dumeirei/innflow-backend/internal/service/booking"
	financeService "github.com/dumeirei/innflow-backend/internal/service/finance"
	notificationService "github.com/dumeirei/innflow-backend/internal/service/notification"
	propertyService "github.com/dumeirei/innflow-backend/internal/service/property"
	roomService "github.com/dumeirei/innflow-backend/internal/service/room"
	"github.com/dumeirei/innflow-backend/pkg/mqtt"
	"github.com/dumeirei/innflow-backend/pkg/whatsapp"
)

// application 需要在退出时关闭的组件
type application struct {
	scheduler     *scheduler.Scheduler
	notifications *notificationService.NotificationService
}

// setupRouter 组装服务并设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	mqttClient *mqtt.Client,
) *application {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	// 初始化仓储
	propertyRepo := repository.NewPropertyRepository(db)
	rateRepo := repository.NewSeasonalRateRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cashUpRepo := repository.NewCashUpRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	tenantRepo := repository.NewTenantRepository(db)

	// 初始化外部服务客户端
	sender := whatsapp.NewClient(whatsapp.Config{
		Token:        cfg.Business.Notification.APIToken,
		TemplateName: cfg.Business.Notification.TemplateName,
		LanguageCode: cfg.Business.Notification.LanguageCode,
		Timeout:      cfg.Business.Notification.TimeoutDuration(),
	})

	cipher, err := crypto.NewCipher(cfg.Crypto.AESKey)
	if err != nil {
		logger.Warn("Guest ID encryption disabled", zap.Error(err))
		cipher = nil
	}

	policy, err := bookingService.NewPaymentPolicy(cfg.Business.Booking.InstantPaymentMethods)
	if err != nil {
		logger.Fatal("Invalid instant payment methods", zap.Error(err))
	}

	location, err := time.LoadLocation(cfg.Business.Booking.Timezone)
	if err != nil {
		logger.Warn("Invalid booking timezone, using local time", zap.String("timezone", cfg.Business.Booking.Timezone), zap.Error(err))
		location = time.Local
	}

	var locker *cache.Locker
	if redisClient != nil {
		locker = cache.NewLocker(redisClient, 3*time.Second)
	}

	var access bookingService.AccessPublisher
	if mqttClient != nil {
		access = mqtt.NewAccessPublisher(mqttClient, cfg.MQTT.TopicPrefix)
	}

	// 初始化服务
	auditSvc := auditService.NewAuditService(auditRepo, cfg.Business.Booking.AuditLogCap)
	notificationSvc := notificationService.NewNotificationService(notificationRepo, auditSvc, sender, notificationService.Config{
		PaymentLinkBase: cfg.Business.Booking.PaymentLinkBase,
		Timeout:         cfg.Business.Notification.TimeoutDuration(),
		Cap:             cfg.Business.Notification.HistoryCap,
	})
	bookingSvc := bookingService.NewBookingService(db, bookingRepo, roomRepo, propertyRepo, auditSvc, bookingService.Options{
		ReferenceRetries: cfg.Business.Booking.ReferenceRetries,
		MaxNights:        cfg.Business.Booking.MaxNights,
		LockTTL:          cfg.Business.Booking.LockDuration(),
		Policy:           policy,
		Locker:           locker,
		Cipher:           cipher,
		QRCode:           qrcode.NewGenerator(qrcode.WithSize(320), qrcode.WithRecoveryLevel(qrcode.High)),
		Access:           access,
		Notifier:         notificationSvc,
		Location:         location,
	})
	roomSvc := roomService.NewRoomService(db, roomRepo, auditSvc)
	propertySvc := propertyService.NewPropertyService(db, propertyRepo, rateRepo, roomRepo, auditSvc)
	financeSvc := financeService.NewFinanceService(db, bookingRepo, roomRepo, cashUpRepo, auditSvc, redisClient, financeService.Config{
		DashboardTTL: time.Duration(cfg.Business.Booking.DashboardCacheTTL) * time.Second,
	})
	staffSvc := adminService.NewStaffService(db, staffRepo, auditSvc, jwtManager, cfg.Crypto.BcryptCost)
	tenantSvc := adminService.NewTenantService(db, tenantRepo, auditSvc)

	// 定时任务
	sched := scheduler.NewScheduler(logger)
	scheduler.SetupTasks(sched, scheduler.NewTaskHandler(propertyRepo, auditSvc, notificationSvc, financeSvc, logger), cfg.Business.Scheduler)

	// 初始化处理器
	authH := adminHandler.NewAuthHandler(staffSvc)
	bookingH := adminHandler.NewBookingHandler(bookingSvc)
	roomH := adminHandler.NewRoomHandler(roomSvc)
	propertyH := adminHandler.NewPropertyHandler(propertySvc)
	financeH := adminHandler.NewFinanceHandler(financeSvc)
	auditH := adminHandler.NewAuditHandler(auditSvc)
	notificationH := adminHandler.NewNotificationHandler(notificationSvc)
	staffH := adminHandler.NewStaffHandler(staffSvc, tenantSvc)
	portalH := portalHandler.NewHandler(propertySvc, roomSvc, bookingSvc)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.RequestSizeLimiter(2 << 20))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.AccessLog(logger))
	if cfg.Metrics.Enabled {
		r.Use(metrics.GetMetrics().Middleware())
	}
	if cfg.Tracing.Enabled {
		r.Use(commonMiddleware.Tracing(&commonMiddleware.TracingConfig{
			ServiceName: cfg.Tracing.ServiceName,
			SkipPaths:   []string{"/health", "/ping", "/ready", cfg.Metrics.Path},
		}))
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 客人门户（无需认证，按 IP 限流）
		portal := v1.Group("/portal")
		if cfg.RateLimit.Enabled {
			portal.Use(middleware.PortalRateLimit(redisClient, cfg.RateLimit.RequestsPerMinute))
		}
		{
			portal.GET("/property", portalH.GetProperty)
			portal.GET("/rooms", portalH.GetRooms)
			portal.GET("/availability", portalH.GetAvailability)
			portal.GET("/quote", portalH.GetQuote)
			portal.POST("/bookings", portalH.CreateBooking)
			portal.GET("/bookings/:reference", portalH.GetBooking)
			portal.GET("/bookings/:reference/payment-link", portalH.GetPaymentLink)
			portal.GET("/bookings/:reference/payment-qr", portalH.GetPaymentQRCode)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/auth/login", middleware.LoginRateLimit(redisClient), authH.Login)
			admin.POST("/auth/refresh", authH.RefreshToken)
		}

		// 需要员工登录
		staff := admin.Group("")
		staff.Use(middleware.StaffAuth(jwtManager))
		{
			staff.GET("/auth/profile", authH.Profile)
			staff.PUT("/auth/password", authH.ChangePassword)

			staff.GET("/notifications", notificationH.List)
			staff.GET("/notifications/unread-count", notificationH.UnreadCount)
			staff.PUT("/notifications/read-all", notificationH.MarkAllRead)
			staff.PUT("/notifications/:id/read", notificationH.MarkRead)
		}

		// 前台：店铺管理员与前台员工
		desk := staff.Group("")
		desk.Use(middleware.RequireRoles(models.RoleBusinessAdmin, models.RoleStaff))
		{
			desk.GET("/dashboard", financeH.Dashboard)
			desk.GET("/calendar", bookingH.Calendar)

			desk.GET("/bookings", bookingH.List)
			desk.POST("/bookings", bookingH.Create)
			desk.GET("/bookings/quote", bookingH.Quote)
			desk.GET("/bookings/:id", bookingH.Get)
			desk.PUT("/bookings/:id", bookingH.UpdateGuest)
			desk.PATCH("/bookings/:id/status", bookingH.ChangeStatus)
			desk.PATCH("/bookings/:id/payment", bookingH.ChangePayment)
			desk.DELETE("/bookings/:id", bookingH.Delete)
			desk.GET("/bookings/:id/payment-qr", bookingH.PaymentQRCode)
		}

		// 店铺管理员
		owner := staff.Group("")
		owner.Use(middleware.RequireRoles(models.RoleBusinessAdmin))
		{
			owner.GET("/rooms", roomH.List)
			owner.POST("/rooms", roomH.Create)
			owner.GET("/rooms/:id", roomH.Get)
			owner.PUT("/rooms/:id", roomH.Update)
			owner.PATCH("/rooms/:id/status", roomH.UpdateStatus)
			owner.DELETE("/rooms/:id", roomH.Delete)

			owner.GET("/settings", propertyH.GetSettings)
			owner.PUT("/settings", propertyH.UpdateSettings)
			owner.PUT("/settings/layout", propertyH.UpdateLayout)

			owner.GET("/rates", propertyH.ListRates)
			owner.POST("/rates", propertyH.CreateRate)
			owner.PUT("/rates/order", propertyH.ReorderRates)
			owner.PUT("/rates/:id", propertyH.UpdateRate)
			owner.DELETE("/rates/:id", propertyH.DeleteRate)

			owner.GET("/finance/overview", financeH.Overview)
			owner.GET("/finance/cash-ups", financeH.ListCashUps)
			owner.POST("/finance/cash-ups", financeH.CashUp)
			owner.GET("/finance/cash-ups/:id", financeH.GetCashUp)
			owner.GET("/finance/export", financeH.Export)

			owner.GET("/audit-logs", auditH.List)

			owner.GET("/staff", staffH.List)
			owner.POST("/staff", staffH.Create)
			owner.PUT("/staff/:id", staffH.Update)
			owner.DELETE("/staff/:id", staffH.Delete)
		}

		// 平台开发者
		developer := staff.Group("")
		developer.Use(middleware.RequireRoles(models.RoleDeveloper))
		{
			developer.GET("/tenants", staffH.ListTenants)
			developer.POST("/tenants", staffH.CreateTenant)
			developer.PATCH("/tenants/:id/status", staffH.UpdateTenantStatus)
			developer.POST("/reference-counter/reset", bookingH.ResetReferenceCounter)
		}
	}

	return &application{scheduler: sched, notifications: notificationSvc}
}
