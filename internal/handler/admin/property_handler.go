package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/innflow-backend/internal/common/handler"
	"github.com/dumeirei/innflow-backend/internal/common/response"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	"github.com/dumeirei/innflow-backend/internal/models"
	propertyService "github.com/dumeirei/innflow-backend/internal/service/property"
)

// PropertyHandler 物业设置处理器
type PropertyHandler struct {
	propertyService *propertyService.PropertyService
}

// NewPropertyHandler 创建物业设置处理器
func NewPropertyHandler(propertySvc *propertyService.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertySvc}
}

// GetSettings 物业设置
// @Summary 物业设置
// @Tags 物业设置
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=models.Property}
// @Router /api/v1/admin/settings [get]
func (h *PropertyHandler) GetSettings(c *gin.Context) {
	property, err := h.propertyService.GetSettings(c.Request.Context(), middleware.GetPropertyID(c))
	handler.MustSucceed(c, err, property)
}

// UpdateSettings 更新物业设置
// @Summary 更新物业设置
// @Tags 物业设置
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body propertyService.UpdateSettingsRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Property}
// @Router /api/v1/admin/settings [put]
func (h *PropertyHandler) UpdateSettings(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	var req propertyService.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	property, err := h.propertyService.UpdateSettings(c.Request.Context(), middleware.GetPropertyID(c), &req, actor)
	handler.MustSucceed(c, err, property)
}

// UpdateLayoutRequest 房态图布局请求
type UpdateLayoutRequest struct {
	Layout []models.RoomPosition `json:"layout" binding:"required"`
}

// UpdateLayout 保存房态图布局
// @Summary 保存房态图布局
// @Tags 物业设置
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body UpdateLayoutRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Property}
// @Router /api/v1/admin/settings/layout [put]
func (h *PropertyHandler) UpdateLayout(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	var req UpdateLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	property, err := h.propertyService.UpdateLayout(c.Request.Context(), middleware.GetPropertyID(c), req.Layout, actor)
	handler.MustSucceed(c, err, property)
}

// ListRates 季节性价格列表
// @Summary 季节性价格列表
// @Tags 物业设置
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]models.SeasonalRate}
// @Router /api/v1/admin/rates [get]
func (h *PropertyHandler) ListRates(c *gin.Context) {
	rates, err := h.propertyService.ListRates(c.Request.Context(), middleware.GetPropertyID(c))
	handler.MustSucceed(c, err, rates)
}

// CreateRate 新增季节性价格
// @Summary 新增季节性价格
// @Tags 物业设置
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body propertyService.RateRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.SeasonalRate}
// @Router /api/v1/admin/rates [post]
func (h *PropertyHandler) CreateRate(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	var req propertyService.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	rate, err := h.propertyService.CreateRate(c.Request.Context(), middleware.GetPropertyID(c), &req, actor)
	handler.MustSucceed(c, err, rate)
}

// UpdateRate 更新季节性价格
// @Summary 更新季节性价格
// @Tags 物业设置
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "价格ID"
// @Param request body propertyService.RateRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.SeasonalRate}
// @Router /api/v1/admin/rates/{id} [put]
func (h *PropertyHandler) UpdateRate(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "价格")
	if !ok {
		return
	}
	var req propertyService.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	rate, err := h.propertyService.UpdateRate(c.Request.Context(), middleware.GetPropertyID(c), id, &req, actor)
	handler.MustSucceed(c, err, rate)
}

// DeleteRate 删除季节性价格
// @Summary 删除季节性价格
// @Tags 物业设置
// @Produce json
// @Security Bearer
// @Param id path int true "价格ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/rates/{id} [delete]
func (h *PropertyHandler) DeleteRate(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "价格")
	if !ok {
		return
	}
	err := h.propertyService.DeleteRate(c.Request.Context(), middleware.GetPropertyID(c), id, actor)
	handler.MustSucceed(c, err, nil)
}

// ReorderRatesRequest 调整季节性价格优先级请求
type ReorderRatesRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

// ReorderRates 调整季节性价格优先级
// @Summary 调整季节性价格优先级
// @Tags 物业设置
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ReorderRatesRequest true "按优先级排列的ID"
// @Success 200 {object} response.Response{data=[]models.SeasonalRate}
// @Router /api/v1/admin/rates/order [put]
func (h *PropertyHandler) ReorderRates(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	var req ReorderRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	rates, err := h.propertyService.ReorderRates(c.Request.Context(), middleware.GetPropertyID(c), req.IDs, actor)
	handler.MustSucceed(c, err, rates)
}
