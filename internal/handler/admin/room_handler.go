package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/innflow-backend/internal/common/handler"
	"github.com/dumeirei/innflow-backend/internal/common/response"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	"github.com/dumeirei/innflow-backend/internal/models"
	roomService "github.com/dumeirei/innflow-backend/internal/service/room"
)

// RoomHandler 客房管理处理器
type RoomHandler struct {
	roomService *roomService.RoomService
}

// NewRoomHandler 创建客房管理处理器
func NewRoomHandler(roomSvc *roomService.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomSvc}
}

// List 客房列表
// @Summary 客房列表
// @Tags 客房管理
// @Produce json
// @Security Bearer
// @Param status query string false "客房状态"
// @Param room_type query string false "房型"
// @Param min_capacity query int false "最少可住人数"
// @Success 200 {object} response.Response{data=[]models.Room}
// @Router /api/v1/admin/rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	var req roomService.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	rooms, err := h.roomService.List(c.Request.Context(), middleware.GetPropertyID(c), &req)
	handler.MustSucceed(c, err, rooms)
}

// Get 客房详情
// @Summary 客房详情
// @Tags 客房管理
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/admin/rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	room, err := h.roomService.Get(c.Request.Context(), middleware.GetPropertyID(c), id)
	handler.MustSucceed(c, err, room)
}

// Create 新增客房
// @Summary 新增客房
// @Tags 客房管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body roomService.RoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/admin/rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	var req roomService.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	room, err := h.roomService.Create(c.Request.Context(), middleware.GetPropertyID(c), &req, actor)
	handler.MustSucceed(c, err, room)
}

// Update 更新客房
// @Summary 更新客房
// @Tags 客房管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Param request body roomService.RoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/admin/rooms/{id} [put]
func (h *RoomHandler) Update(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	var req roomService.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	room, err := h.roomService.Update(c.Request.Context(), middleware.GetPropertyID(c), id, &req, actor)
	handler.MustSucceed(c, err, room)
}

// UpdateStatusRequest 更新客房状态请求
type UpdateStatusRequest struct {
	Status models.RoomStatus `json:"status" binding:"required"`
}

// UpdateStatus 更新客房状态
// @Summary 更新客房状态
// @Tags 客房管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Param request body UpdateStatusRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/admin/rooms/{id}/status [patch]
func (h *RoomHandler) UpdateStatus(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	room, err := h.roomService.UpdateStatus(c.Request.Context(), middleware.GetPropertyID(c), id, req.Status, actor)
	handler.MustSucceed(c, err, room)
}

// Delete 删除客房
// @Summary 删除客房
// @Tags 客房管理
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	err := h.roomService.Delete(c.Request.Context(), middleware.GetPropertyID(c), id, actor)
	handler.MustSucceed(c, err, nil)
}
