package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/common/jwt"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
	adminService "github.com/dumeirei/innflow-backend/internal/service/admin"
	auditService "github.com/dumeirei/innflow-backend/internal/service/audit"
	bookingService "github.com/dumeirei/innflow-backend/internal/service/booking"
	financeService "github.com/dumeirei/innflow-backend/internal/service/finance"
	propertyService "github.com/dumeirei/innflow-backend/internal/service/property"
	roomService "github.com/dumeirei/innflow-backend/internal/service/room"
	"github.com/dumeirei/innflow-backend/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type adminFixture struct {
	router   *gin.Engine
	property *models.Property
	rooms    []*models.Room
	manager  *jwt.Manager
	staff    *adminService.StaffService
}

func setupAdminRouter(t *testing.T) *adminFixture {
	db := testutil.NewTestDB(t)
	property, rooms := testutil.SeedProperty(t, db, 1200, 850)

	manager := jwt.NewManager(&jwt.Config{
		Secret:            "admin-handler-test",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "innflow",
	})

	bookingRepo := repository.NewBookingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	audits := auditService.NewAuditService(repository.NewAuditLogRepository(db), 0)
	staffSvc := adminService.NewStaffService(db, repository.NewStaffRepository(db), audits, manager, 4)
	tenantSvc := adminService.NewTenantService(db, repository.NewTenantRepository(db), audits)
	bookingSvc := bookingService.NewBookingService(db, bookingRepo, roomRepo, repository.NewPropertyRepository(db), audits, bookingService.Options{})
	roomSvc := roomService.NewRoomService(db, roomRepo, audits)
	propertySvc := propertyService.NewPropertyService(db, repository.NewPropertyRepository(db),
		repository.NewSeasonalRateRepository(db), roomRepo, audits)
	financeSvc := financeService.NewFinanceService(db, bookingRepo, roomRepo, repository.NewCashUpRepository(db), audits, nil, financeService.Config{})

	for _, s := range []adminService.CreateStaffRequest{
		{Name: "Sarah Miller", Email: "sarah@oceanwhisper.com", Password: "innflow@2024", Role: models.RoleBusinessAdmin},
		{Name: "John Doe", Email: "john@oceanwhisper.com", Password: "innflow@2024", Role: models.RoleStaff},
		{Name: "Platform Developer", Email: "dev@innflow.com", Password: "innflow@2024", Role: models.RoleDeveloper},
	} {
		req := s
		_, err := staffSvc.Create(context.Background(), property.ID, &req, models.SystemActor("System"))
		require.NoError(t, err)
	}

	authH := NewAuthHandler(staffSvc)
	bookingH := NewBookingHandler(bookingSvc)
	roomH := NewRoomHandler(roomSvc)
	propertyH := NewPropertyHandler(propertySvc)
	financeH := NewFinanceHandler(financeSvc)
	auditH := NewAuditHandler(audits)
	staffH := NewStaffHandler(staffSvc, tenantSvc)

	r := gin.New()
	api := r.Group("/api/v1/admin")
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/refresh", authH.RefreshToken)

	authed := api.Group("", middleware.StaffAuth(manager))
	authed.GET("/auth/profile", authH.Profile)

	desk := authed.Group("", middleware.RequireRoles(models.RoleBusinessAdmin, models.RoleStaff))
	desk.GET("/bookings", bookingH.List)
	desk.POST("/bookings", bookingH.Create)
	desk.GET("/bookings/quote", bookingH.Quote)
	desk.GET("/bookings/:id", bookingH.Get)
	desk.PATCH("/bookings/:id/status", bookingH.ChangeStatus)
	desk.PATCH("/bookings/:id/payment", bookingH.ChangePayment)
	desk.DELETE("/bookings/:id", bookingH.Delete)
	desk.GET("/bookings/:id/payment-qr", bookingH.PaymentQRCode)
	desk.GET("/calendar", bookingH.Calendar)

	owner := authed.Group("", middleware.RequireRoles(models.RoleBusinessAdmin))
	owner.GET("/rooms", roomH.List)
	owner.POST("/rooms", roomH.Create)
	owner.PATCH("/rooms/:id/status", roomH.UpdateStatus)
	owner.GET("/settings", propertyH.GetSettings)
	owner.PUT("/settings", propertyH.UpdateSettings)
	owner.POST("/rates", propertyH.CreateRate)
	owner.GET("/finance/overview", financeH.Overview)
	owner.POST("/finance/cash-ups", financeH.CashUp)
	owner.GET("/finance/export", financeH.Export)
	owner.GET("/dashboard", financeH.Dashboard)
	owner.GET("/audit-logs", auditH.List)
	owner.GET("/staff", staffH.List)

	developer := authed.Group("", middleware.RequireRoles(models.RoleDeveloper))
	developer.POST("/reference-counter/reset", bookingH.ResetReferenceCounter)

	return &adminFixture{router: r, property: property, rooms: rooms, manager: manager, staff: staffSvc}
}

func (f *adminFixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (f *adminFixture) login(t *testing.T, email string) string {
	t.Helper()
	_, resp := f.do(t, http.MethodPost, "/api/v1/admin/auth/login", "", gin.H{
		"email": email, "password": "innflow@2024",
	})
	require.Equal(t, 0, resp.Code, resp.Message)

	var data struct {
		Token struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.Token.AccessToken
}

func TestAuthHandler(t *testing.T) {
	f := setupAdminRouter(t)

	t.Run("登录成功并获取个人信息", func(t *testing.T) {
		token := f.login(t, "sarah@oceanwhisper.com")
		w, resp := f.do(t, http.MethodGet, "/api/v1/admin/auth/profile", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, resp.Code)
		assert.Contains(t, string(resp.Data), "Sarah Miller")
	})

	t.Run("密码错误返回业务错误码", func(t *testing.T) {
		w, resp := f.do(t, http.MethodPost, "/api/v1/admin/auth/login", "", gin.H{
			"email": "sarah@oceanwhisper.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, errors.ErrPasswordError.Code, resp.Code)
	})

	t.Run("缺少参数", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPost, "/api/v1/admin/auth/login", "", gin.H{"email": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("刷新令牌", func(t *testing.T) {
		pair, err := f.manager.GenerateTokenPair(jwt.Subject{StaffID: 1, PropertyID: f.property.ID, Role: string(models.RoleBusinessAdmin), Name: "Sarah Miller"})
		require.NoError(t, err)
		_, resp := f.do(t, http.MethodPost, "/api/v1/admin/auth/refresh", "", gin.H{"refresh_token": pair.RefreshToken})
		assert.Equal(t, 0, resp.Code)
	})

	t.Run("未登录访问受保护接口", func(t *testing.T) {
		w, _ := f.do(t, http.MethodGet, "/api/v1/admin/auth/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBookingHandler(t *testing.T) {
	f := setupAdminRouter(t)
	token := f.login(t, "john@oceanwhisper.com")

	var created struct {
		ID          int64   `json:"id"`
		Reference   string  `json:"reference"`
		TotalAmount float64 `json:"total_amount"`
		Status      string  `json:"status"`
		Source      string  `json:"source"`
	}

	t.Run("前台录入预订", func(t *testing.T) {
		_, resp := f.do(t, http.MethodPost, "/api/v1/admin/bookings", token, gin.H{
			"room_id":        f.rooms[0].ID,
			"guest_name":     "Alice Walker",
			"guest_email":    "alice@example.com",
			"guest_count":    2,
			"check_in_date":  "2030-06-10",
			"check_out_date": "2030-06-12",
			"payment_method": "EFT",
		})
		require.Equal(t, 0, resp.Code, resp.Message)
		require.NoError(t, json.Unmarshal(resp.Data, &created))
		assert.Equal(t, 2400.0, created.TotalAmount)
		assert.Equal(t, "PROVISIONAL", created.Status)
		assert.Equal(t, models.BookingSourceAdmin, created.Source)
		assert.True(t, strings.HasPrefix(created.Reference, "INF-"))
	})

	t.Run("重叠日期被拒绝", func(t *testing.T) {
		_, resp := f.do(t, http.MethodPost, "/api/v1/admin/bookings", token, gin.H{
			"room_id":        f.rooms[0].ID,
			"guest_name":     "Bob",
			"check_in_date":  "2030-06-11",
			"check_out_date": "2030-06-13",
		})
		assert.Equal(t, errors.ErrBookingConflict.Code, resp.Code)
	})

	t.Run("列表与详情", func(t *testing.T) {
		_, resp := f.do(t, http.MethodGet, "/api/v1/admin/bookings?keyword=Alice", token, nil)
		require.Equal(t, 0, resp.Code)
		var page struct {
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Equal(t, int64(1), page.Total)

		_, resp = f.do(t, http.MethodGet, "/api/v1/admin/bookings/"+itoa(created.ID), token, nil)
		assert.Equal(t, 0, resp.Code)
		assert.Contains(t, string(resp.Data), created.Reference)
	})

	t.Run("无效ID", func(t *testing.T) {
		w, _ := f.do(t, http.MethodGet, "/api/v1/admin/bookings/abc", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("状态流转", func(t *testing.T) {
		_, resp := f.do(t, http.MethodPatch, "/api/v1/admin/bookings/"+itoa(created.ID)+"/status", token, gin.H{"status": "CONFIRMED"})
		require.Equal(t, 0, resp.Code, resp.Message)
		assert.Contains(t, string(resp.Data), `"status":"CONFIRMED"`)

		_, resp = f.do(t, http.MethodPatch, "/api/v1/admin/bookings/"+itoa(created.ID)+"/status", token, gin.H{"status": "PROVISIONAL"})
		assert.Equal(t, errors.ErrBookingStatusError.Code, resp.Code)
	})

	t.Run("变更支付状态", func(t *testing.T) {
		_, resp := f.do(t, http.MethodPatch, "/api/v1/admin/bookings/"+itoa(created.ID)+"/payment", token, gin.H{"payment_status": "PAID"})
		require.Equal(t, 0, resp.Code, resp.Message)
		assert.Contains(t, string(resp.Data), `"payment_status":"PAID"`)
	})

	t.Run("支付二维码", func(t *testing.T) {
		w, _ := f.do(t, http.MethodGet, "/api/v1/admin/bookings/"+itoa(created.ID)+"/payment-qr", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
	})

	t.Run("报价与房态", func(t *testing.T) {
		_, resp := f.do(t, http.MethodGet, "/api/v1/admin/bookings/quote?room_id="+itoa(f.rooms[1].ID)+"&check_in_date=2030-06-10&check_out_date=2030-06-13", token, nil)
		require.Equal(t, 0, resp.Code, resp.Message)
		assert.Contains(t, string(resp.Data), `"available":true`)

		_, resp = f.do(t, http.MethodGet, "/api/v1/admin/calendar?month=2030-06", token, nil)
		assert.Equal(t, 0, resp.Code)

		w, _ := f.do(t, http.MethodGet, "/api/v1/admin/calendar?month=June", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("删除需确认", func(t *testing.T) {
		_, resp := f.do(t, http.MethodDelete, "/api/v1/admin/bookings/"+itoa(created.ID), token, nil)
		assert.Equal(t, errors.ErrBookingDeleteUnconfirmed.Code, resp.Code)

		_, resp = f.do(t, http.MethodDelete, "/api/v1/admin/bookings/"+itoa(created.ID)+"?confirm=true", token, nil)
		assert.Equal(t, 0, resp.Code)

		_, resp = f.do(t, http.MethodGet, "/api/v1/admin/bookings/"+itoa(created.ID), token, nil)
		assert.Equal(t, errors.ErrBookingNotFound.Code, resp.Code)
	})
}

func TestOwnerOnlyRoutes(t *testing.T) {
	f := setupAdminRouter(t)
	staffToken := f.login(t, "john@oceanwhisper.com")
	ownerToken := f.login(t, "sarah@oceanwhisper.com")

	t.Run("前台员工无权访问财务", func(t *testing.T) {
		w, _ := f.do(t, http.MethodGet, "/api/v1/admin/finance/overview", staffToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("客房管理", func(t *testing.T) {
		_, resp := f.do(t, http.MethodPost, "/api/v1/admin/rooms", ownerToken, gin.H{
			"room_number": "301", "room_type": "Family Suite", "capacity": 4, "price_per_night": 1800,
		})
		require.Equal(t, 0, resp.Code, resp.Message)
		var room models.Room
		require.NoError(t, json.Unmarshal(resp.Data, &room))

		_, resp = f.do(t, http.MethodPatch, "/api/v1/admin/rooms/"+itoa(room.ID)+"/status", ownerToken, gin.H{"status": "MAINTENANCE"})
		assert.Equal(t, 0, resp.Code)

		_, resp = f.do(t, http.MethodGet, "/api/v1/admin/rooms?status=MAINTENANCE", ownerToken, nil)
		assert.Contains(t, string(resp.Data), `"room_number":"301"`)
	})

	t.Run("物业设置", func(t *testing.T) {
		_, resp := f.do(t, http.MethodPut, "/api/v1/admin/settings", ownerToken, gin.H{"name": "Ocean Whisper Lodge and Spa"})
		require.Equal(t, 0, resp.Code, resp.Message)

		_, resp = f.do(t, http.MethodGet, "/api/v1/admin/settings", ownerToken, nil)
		assert.Contains(t, string(resp.Data), "Ocean Whisper Lodge and Spa")

		_, resp = f.do(t, http.MethodPost, "/api/v1/admin/rates", ownerToken, gin.H{
			"name": "Winter", "start_date": "2030-07-01", "end_date": "2030-07-31", "multiplier": 0.8,
		})
		assert.Equal(t, 0, resp.Code, resp.Message)
	})

	t.Run("日结与导出", func(t *testing.T) {
		_, resp := f.do(t, http.MethodPost, "/api/v1/admin/finance/cash-ups", ownerToken, gin.H{"cash": 500, "card": 1200.5, "eft": 0})
		require.Equal(t, 0, resp.Code, resp.Message)
		assert.Contains(t, string(resp.Data), `"total":1700.5`)

		_, resp = f.do(t, http.MethodPost, "/api/v1/admin/finance/cash-ups", ownerToken, gin.H{"cash": -1})
		assert.Equal(t, errors.ErrCashUpInvalid.Code, resp.Code)

		w, _ := f.do(t, http.MethodGet, "/api/v1/admin/finance/export", ownerToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "innflow_report_")
		assert.True(t, strings.HasPrefix(w.Body.String(), "Reference,"))

		_, resp = f.do(t, http.MethodGet, "/api/v1/admin/dashboard?refresh=true", ownerToken, nil)
		require.Equal(t, 0, resp.Code, resp.Message)
		assert.Contains(t, string(resp.Data), `"revenue_series"`)
	})

	t.Run("审计日志与员工列表", func(t *testing.T) {
		_, resp := f.do(t, http.MethodGet, "/api/v1/admin/audit-logs?action=FINANCIAL_EXPORT", ownerToken, nil)
		require.Equal(t, 0, resp.Code)
		var page struct {
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Equal(t, int64(1), page.Total)

		_, resp = f.do(t, http.MethodGet, "/api/v1/admin/staff", ownerToken, nil)
		assert.Contains(t, string(resp.Data), "john@oceanwhisper.com")
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestDeveloperReferenceReset(t *testing.T) {
	f := setupAdminRouter(t)
	ownerToken := f.login(t, "sarah@oceanwhisper.com")
	devToken := f.login(t, "dev@innflow.com")

	t.Run("业务管理员无权重置", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPost, "/api/v1/admin/reference-counter/reset", ownerToken, gin.H{"value": 0})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("无预订时可重置为 0", func(t *testing.T) {
		_, resp := f.do(t, http.MethodPost, "/api/v1/admin/reference-counter/reset", devToken, gin.H{"value": 0})
		require.Equal(t, 0, resp.Code, resp.Message)
		assert.Contains(t, string(resp.Data), `"last_ref_number":0`)
		assert.Contains(t, string(resp.Data), `-0001"`)
	})

	t.Run("已使用的预订号不可再次生成", func(t *testing.T) {
		_, resp := f.do(t, http.MethodPost, "/api/v1/admin/bookings", ownerToken, gin.H{
			"room_id":        f.rooms[0].ID,
			"guest_name":     "Carol",
			"check_in_date":  "2030-08-01",
			"check_out_date": "2030-08-02",
		})
		require.Equal(t, 0, resp.Code, resp.Message)

		_, resp = f.do(t, http.MethodPost, "/api/v1/admin/reference-counter/reset", devToken, gin.H{"value": 0})
		assert.Equal(t, errors.ErrReferenceInUse.Code, resp.Code)

		_, resp = f.do(t, http.MethodPost, "/api/v1/admin/reference-counter/reset", devToken, gin.H{"value": -3})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}
