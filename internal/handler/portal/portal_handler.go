// Package portal 提供客人自助预订的 HTTP Handler
package portal

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/innflow-backend/internal/common/handler"
	"github.com/dumeirei/innflow-backend/internal/common/response"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	"github.com/dumeirei/innflow-backend/internal/models"
	bookingService "github.com/dumeirei/innflow-backend/internal/service/booking"
	propertyService "github.com/dumeirei/innflow-backend/internal/service/property"
	roomService "github.com/dumeirei/innflow-backend/internal/service/room"
)

// Handler 客人门户处理器
type Handler struct {
	propertyService *propertyService.PropertyService
	roomService     *roomService.RoomService
	bookingService  *bookingService.BookingService
}

// NewHandler 创建客人门户处理器
func NewHandler(
	propertySvc *propertyService.PropertyService,
	roomSvc *roomService.RoomService,
	bookingSvc *bookingService.BookingService,
) *Handler {
	return &Handler{
		propertyService: propertySvc,
		roomService:     roomSvc,
		bookingService:  bookingSvc,
	}
}

// GetProperty 物业公开信息
// @Summary 物业公开信息
// @Tags 客人门户
// @Produce json
// @Success 200 {object} response.Response{data=propertyService.PublicInfo}
// @Router /api/v1/portal/property [get]
func (h *Handler) GetProperty(c *gin.Context) {
	info, err := h.propertyService.PublicInfo(c.Request.Context())
	handler.MustSucceed(c, err, info)
}

// GetRooms 可预订客房
// @Summary 可预订客房
// @Tags 客人门户
// @Produce json
// @Param guests query int false "入住人数"
// @Success 200 {object} response.Response{data=[]models.Room}
// @Router /api/v1/portal/rooms [get]
func (h *Handler) GetRooms(c *gin.Context) {
	guests, _ := strconv.Atoi(c.DefaultQuery("guests", "0"))

	property, err := h.propertyService.Default(c.Request.Context())
	if handler.HandleError(c, err) {
		return
	}
	rooms, err := h.roomService.ListBookable(c.Request.Context(), property.ID, guests)
	handler.MustSucceed(c, err, rooms)
}

// GetAvailability 区间可订客房
// @Summary 区间可订客房
// @Tags 客人门户
// @Produce json
// @Param check_in_date query string true "入住日期"
// @Param check_out_date query string true "退房日期"
// @Param guests query int false "入住人数"
// @Success 200 {object} response.Response{data=[]models.Room}
// @Router /api/v1/portal/availability [get]
func (h *Handler) GetAvailability(c *gin.Context) {
	var req bookingService.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	property, err := h.propertyService.Default(c.Request.Context())
	if handler.HandleError(c, err) {
		return
	}
	rooms, err := h.bookingService.AvailableRooms(c.Request.Context(), property.ID, &req)
	handler.MustSucceed(c, err, rooms)
}

// GetQuote 报价
// @Summary 报价
// @Tags 客人门户
// @Produce json
// @Param room_id query int true "房间ID"
// @Param check_in_date query string true "入住日期"
// @Param check_out_date query string true "退房日期"
// @Success 200 {object} response.Response{data=bookingService.QuoteInfo}
// @Router /api/v1/portal/quote [get]
func (h *Handler) GetQuote(c *gin.Context) {
	var req bookingService.QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	quote, err := h.bookingService.Quote(c.Request.Context(), &req)
	handler.MustSucceed(c, err, quote)
}

// CreateBooking 客人自助预订
// @Summary 客人自助预订
// @Tags 客人门户
// @Accept json
// @Produce json
// @Param request body bookingService.CreateRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/portal/bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req bookingService.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	info, err := h.bookingService.Create(c.Request.Context(), &req, middleware.GetActor(c), models.BookingSourcePortal)
	handler.MustSucceed(c, err, info)
}

// GetBooking 按预订号查询
// @Summary 按预订号查询
// @Tags 客人门户
// @Produce json
// @Param reference path string true "预订号"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/portal/bookings/{reference} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	info, err := h.bookingService.GetByReference(c.Request.Context(), c.Param("reference"))
	handler.MustSucceed(c, err, info)
}

// GetPaymentLink 支付链接
// @Summary 支付链接
// @Tags 客人门户
// @Produce json
// @Param reference path string true "预订号"
// @Success 200 {object} response.Response{data=map[string]string}
// @Router /api/v1/portal/bookings/{reference}/payment-link [get]
func (h *Handler) GetPaymentLink(c *gin.Context) {
	link, err := h.bookingService.PaymentLink(c.Request.Context(), c.Param("reference"))
	if handler.HandleError(c, err) {
		return
	}
	response.Success(c, gin.H{"url": link})
}

// GetPaymentQRCode 支付二维码
// @Summary 支付二维码
// @Tags 客人门户
// @Produce png
// @Param reference path string true "预订号"
// @Success 200 {file} file
// @Router /api/v1/portal/bookings/{reference}/payment-qr [get]
func (h *Handler) GetPaymentQRCode(c *gin.Context) {
	png, err := h.bookingService.PaymentQRCode(c.Request.Context(), c.Param("reference"))
	if handler.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
