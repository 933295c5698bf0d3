package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/innflow-backend/internal/common/handler"
	"github.com/dumeirei/innflow-backend/internal/common/response"
	"github.com/dumeirei/innflow-backend/internal/common/utils"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	"github.com/dumeirei/innflow-backend/internal/models"
	bookingService "github.com/dumeirei/innflow-backend/internal/service/booking"
)

// BookingHandler 预订管理处理器
type BookingHandler struct {
	bookingService *bookingService.BookingService
}

// NewBookingHandler 创建预订管理处理器
func NewBookingHandler(bookingSvc *bookingService.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingSvc}
}

// List 预订列表
// @Summary 预订列表
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param status query string false "预订状态"
// @Param payment_status query string false "支付状态"
// @Param room_id query int false "房间ID"
// @Param keyword query string false "预订号/客人姓名/邮箱"
// @Param check_in_from query string false "入住日期起 YYYY-MM-DD"
// @Param check_in_to query string false "入住日期止 YYYY-MM-DD"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]bookingService.BookingInfo}}
// @Router /api/v1/admin/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var req bookingService.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	p := utils.Pagination{Page: req.Page, PageSize: req.PageSize}
	p.Normalize()
	req.Page, req.PageSize = p.Page, p.PageSize

	list, total, err := h.bookingService.List(c.Request.Context(), middleware.GetPropertyID(c), &req)
	handler.MustSucceedPage(c, err, list, total, p)
}

// Get 预订详情
// @Summary 预订详情
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/admin/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}
	info, err := h.bookingService.Get(c.Request.Context(), middleware.GetPropertyID(c), id)
	handler.MustSucceed(c, err, info)
}

// Create 前台录入预订
// @Summary 前台录入预订
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body bookingService.CreateRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/admin/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	var req bookingService.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	info, err := h.bookingService.Create(c.Request.Context(), &req, actor, models.BookingSourceAdmin)
	handler.MustSucceed(c, err, info)
}

// UpdateGuest 更新客人信息
// @Summary 更新客人信息
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body bookingService.UpdateGuestRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/admin/bookings/{id} [put]
func (h *BookingHandler) UpdateGuest(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}
	var req bookingService.UpdateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	info, err := h.bookingService.UpdateGuest(c.Request.Context(), middleware.GetPropertyID(c), id, &req, actor)
	handler.MustSucceed(c, err, info)
}

// ChangeStatusRequest 变更预订状态请求
type ChangeStatusRequest struct {
	Status models.BookingStatus `json:"status" binding:"required"`
}

// ChangeStatus 变更预订状态
// @Summary 变更预订状态
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body ChangeStatusRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/admin/bookings/{id}/status [patch]
func (h *BookingHandler) ChangeStatus(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	info, err := h.bookingService.ChangeStatus(c.Request.Context(), middleware.GetPropertyID(c), id, req.Status, actor)
	handler.MustSucceed(c, err, info)
}

// ChangePayment 变更支付状态
// @Summary 变更支付状态
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body bookingService.ChangePaymentRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/admin/bookings/{id}/payment [patch]
func (h *BookingHandler) ChangePayment(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}
	var req bookingService.ChangePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	info, err := h.bookingService.ChangePayment(c.Request.Context(), middleware.GetPropertyID(c), id, &req, actor)
	handler.MustSucceed(c, err, info)
}

// ResetReferenceCounter 重置预订号计数器（平台开发者）
// @Summary 重置预订号计数器
// @Tags 平台管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body bookingService.ResetReferenceRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.ReferenceCounter}
// @Router /api/v1/admin/reference-counter/reset [post]
func (h *BookingHandler) ResetReferenceCounter(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	var req bookingService.ResetReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	counter, err := h.bookingService.ResetReferenceCounter(c.Request.Context(), middleware.GetPropertyID(c), req.Value, actor)
	handler.MustSucceed(c, err, counter)
}

// Delete 删除预订，需携带 confirm=true
// @Summary 删除预订
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param confirm query bool true "确认删除"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}
	confirm, _ := strconv.ParseBool(c.Query("confirm"))

	err := h.bookingService.Delete(c.Request.Context(), middleware.GetPropertyID(c), id, confirm, actor)
	handler.MustSucceed(c, err, nil)
}

// Calendar 月度房态
// @Summary 月度房态
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param month query string false "月份 YYYY-MM，默认当月"
// @Success 200 {object} response.Response{data=bookingService.Calendar}
// @Router /api/v1/admin/calendar [get]
func (h *BookingHandler) Calendar(c *gin.Context) {
	month := time.Now()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			response.BadRequest(c, "月份格式应为 YYYY-MM")
			return
		}
		month = parsed
	}

	cal, err := h.bookingService.Calendar(c.Request.Context(), middleware.GetPropertyID(c), month.Year(), month.Month())
	handler.MustSucceed(c, err, cal)
}

// Quote 报价
// @Summary 报价
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param room_id query int true "房间ID"
// @Param check_in_date query string true "入住日期"
// @Param check_out_date query string true "退房日期"
// @Success 200 {object} response.Response{data=bookingService.QuoteInfo}
// @Router /api/v1/admin/bookings/quote [get]
func (h *BookingHandler) Quote(c *gin.Context) {
	var req bookingService.QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	quote, err := h.bookingService.Quote(c.Request.Context(), &req)
	handler.MustSucceed(c, err, quote)
}

// PaymentQRCode 支付链接二维码
// @Summary 支付链接二维码
// @Tags 预订管理
// @Produce png
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {file} file
// @Router /api/v1/admin/bookings/{id}/payment-qr [get]
func (h *BookingHandler) PaymentQRCode(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}
	info, err := h.bookingService.Get(c.Request.Context(), middleware.GetPropertyID(c), id)
	if handler.HandleError(c, err) {
		return
	}
	png, err := h.bookingService.PaymentQRCode(c.Request.Context(), info.Reference)
	if handler.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
