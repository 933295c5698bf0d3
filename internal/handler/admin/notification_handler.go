package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/innflow-backend/internal/common/handler"
	"github.com/dumeirei/innflow-backend/internal/common/response"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	notificationService "github.com/dumeirei/innflow-backend/internal/service/notification"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	notificationService *notificationService.NotificationService
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(notificationSvc *notificationService.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationSvc}
}

// List 通知列表
// @Summary 通知列表
// @Tags 通知
// @Produce json
// @Security Bearer
// @Param is_read query bool false "是否已读"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Notification}}
// @Router /api/v1/admin/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var req notificationService.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	req.Pagination.Normalize()

	list, total, err := h.notificationService.List(c.Request.Context(), middleware.GetPropertyID(c), &req)
	handler.MustSucceedPage(c, err, list, total, req.Pagination)
}

// UnreadCount 未读数
// @Summary 未读通知数
// @Tags 通知
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /api/v1/admin/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(c.Request.Context(), middleware.GetPropertyID(c))
	handler.MustSucceed(c, err, gin.H{"count": count})
}

// MarkRead 标记已读
// @Summary 标记通知已读
// @Tags 通知
// @Produce json
// @Security Bearer
// @Param id path int true "通知ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := handler.ParseID(c, "通知")
	if !ok {
		return
	}
	err := h.notificationService.MarkRead(c.Request.Context(), middleware.GetPropertyID(c), id)
	handler.MustSucceed(c, err, nil)
}

// MarkAllRead 全部标记已读
// @Summary 全部通知标记已读
// @Tags 通知
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response
// @Router /api/v1/admin/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.GetPropertyID(c))
	handler.MustSucceed(c, err, nil)
}
