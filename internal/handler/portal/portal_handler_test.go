package portal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
	auditService "github.com/dumeirei/innflow-backend/internal/service/audit"
	bookingService "github.com/dumeirei/innflow-backend/internal/service/booking"
	propertyService "github.com/dumeirei/innflow-backend/internal/service/property"
	roomService "github.com/dumeirei/innflow-backend/internal/service/room"
	"github.com/dumeirei/innflow-backend/internal/testutil"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupPortal(t *testing.T) (*gin.Engine, *gorm.DB, []*models.Room) {
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	_, rooms := testutil.SeedProperty(t, db, 1200, 850)

	roomRepo := repository.NewRoomRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	audits := auditService.NewAuditService(repository.NewAuditLogRepository(db), 0)

	h := NewHandler(
		propertyService.NewPropertyService(db, propertyRepo, repository.NewSeasonalRateRepository(db), roomRepo, audits),
		roomService.NewRoomService(db, roomRepo, audits),
		bookingService.NewBookingService(db, repository.NewBookingRepository(db), roomRepo, propertyRepo, audits, bookingService.Options{}),
	)

	r := gin.New()
	api := r.Group("/api/v1/portal")
	api.GET("/property", h.GetProperty)
	api.GET("/rooms", h.GetRooms)
	api.GET("/availability", h.GetAvailability)
	api.GET("/quote", h.GetQuote)
	api.POST("/bookings", h.CreateBooking)
	api.GET("/bookings/:reference", h.GetBooking)
	api.GET("/bookings/:reference/payment-link", h.GetPaymentLink)
	api.GET("/bookings/:reference/payment-qr", h.GetPaymentQRCode)
	return r, db, rooms
}

func call(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestPortal_PropertyAndRooms(t *testing.T) {
	r, db, rooms := setupPortal(t)

	t.Run("公开信息不含内部配置", func(t *testing.T) {
		_, resp := call(t, r, http.MethodGet, "/api/v1/portal/property", nil)
		require.Equal(t, 0, resp.Code)
		assert.Contains(t, string(resp.Data), "Ocean Whisper Lodge")
		assert.NotContains(t, string(resp.Data), "whatsapp_template")
		assert.NotContains(t, string(resp.Data), "+27 82 111 2222")
	})

	t.Run("维修中的客房不可见", func(t *testing.T) {
		require.NoError(t, db.Model(rooms[1]).Update("status", models.RoomStatusMaintenance).Error)

		_, resp := call(t, r, http.MethodGet, "/api/v1/portal/rooms", nil)
		require.Equal(t, 0, resp.Code)
		var list []models.Room
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		require.Len(t, list, 1)
		assert.Equal(t, rooms[0].ID, list[0].ID)
	})

	t.Run("按人数过滤", func(t *testing.T) {
		_, resp := call(t, r, http.MethodGet, "/api/v1/portal/rooms?guests=3", nil)
		require.Equal(t, 0, resp.Code)
		var list []models.Room
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		assert.Empty(t, list)
	})
}

func TestPortal_BookingFlow(t *testing.T) {
	r, _, rooms := setupPortal(t)

	var created struct {
		Reference   string  `json:"reference"`
		Source      string  `json:"source"`
		Status      string  `json:"status"`
		TotalAmount float64 `json:"total_amount"`
	}

	t.Run("报价", func(t *testing.T) {
		_, resp := call(t, r, http.MethodGet, "/api/v1/portal/quote?room_id="+itoa(rooms[1].ID)+"&check_in_date=2030-03-01&check_out_date=2030-03-04", nil)
		require.Equal(t, 0, resp.Code, resp.Message)
		assert.Contains(t, string(resp.Data), `"total":2550`)
	})

	t.Run("区间可订", func(t *testing.T) {
		_, resp := call(t, r, http.MethodGet, "/api/v1/portal/availability?check_in_date=2030-03-01&check_out_date=2030-03-04&guests=2", nil)
		require.Equal(t, 0, resp.Code, resp.Message)
		var list []models.Room
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		assert.Len(t, list, 2)
	})

	t.Run("即时支付的自助预订直接确认", func(t *testing.T) {
		_, resp := call(t, r, http.MethodPost, "/api/v1/portal/bookings", gin.H{
			"room_id":        rooms[0].ID,
			"guest_name":     "Thandi Nkosi",
			"guest_email":    "thandi@example.com",
			"guest_phone":    "+27 82 555 0101",
			"check_in_date":  "2030-03-01",
			"check_out_date": "2030-03-04",
			"payment_method": "IKHOKHA",
		})
		require.Equal(t, 0, resp.Code, resp.Message)
		require.NoError(t, json.Unmarshal(resp.Data, &created))
		assert.Equal(t, models.BookingSourcePortal, created.Source)
		assert.Equal(t, "CONFIRMED", created.Status)
		assert.Equal(t, 3600.0, created.TotalAmount)
	})

	t.Run("已占用客房不再可订", func(t *testing.T) {
		_, resp := call(t, r, http.MethodGet, "/api/v1/portal/availability?check_in_date=2030-03-02&check_out_date=2030-03-03", nil)
		var list []models.Room
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		require.Len(t, list, 1)
		assert.Equal(t, rooms[1].ID, list[0].ID)

		_, resp = call(t, r, http.MethodPost, "/api/v1/portal/bookings", gin.H{
			"room_id":        rooms[0].ID,
			"guest_name":     "Late Guest",
			"check_in_date":  "2030-03-03",
			"check_out_date": "2030-03-05",
		})
		assert.Equal(t, errors.ErrBookingConflict.Code, resp.Code)
	})

	t.Run("按预订号查询时邮箱脱敏", func(t *testing.T) {
		_, resp := call(t, r, http.MethodGet, "/api/v1/portal/bookings/"+created.Reference, nil)
		require.Equal(t, 0, resp.Code, resp.Message)
		assert.Contains(t, string(resp.Data), created.Reference)
		assert.NotContains(t, string(resp.Data), "thandi@example.com")
	})

	t.Run("支付链接与二维码", func(t *testing.T) {
		_, resp := call(t, r, http.MethodGet, "/api/v1/portal/bookings/"+created.Reference+"/payment-link", nil)
		require.Equal(t, 0, resp.Code)
		assert.Contains(t, string(resp.Data), created.Reference)

		w, _ := call(t, r, http.MethodGet, "/api/v1/portal/bookings/"+created.Reference+"/payment-qr", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	})

	t.Run("预订号不存在", func(t *testing.T) {
		_, resp := call(t, r, http.MethodGet, "/api/v1/portal/bookings/INF-2030-9999", nil)
		assert.Equal(t, errors.ErrBookingNotFound.Code, resp.Code)
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
