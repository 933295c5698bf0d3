package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/innflow-backend/internal/common/handler"
	"github.com/dumeirei/innflow-backend/internal/common/response"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	auditService "github.com/dumeirei/innflow-backend/internal/service/audit"
)

// AuditHandler 审计日志处理器
type AuditHandler struct {
	auditService *auditService.AuditService
}

// NewAuditHandler 创建审计日志处理器
func NewAuditHandler(auditSvc *auditService.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditSvc}
}

// List 审计日志
// @Summary 审计日志
// @Tags 审计日志
// @Produce json
// @Security Bearer
// @Param action query string false "动作"
// @Param target_type query string false "对象类型"
// @Param target_id query int false "对象ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.AuditLog}}
// @Router /api/v1/admin/audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	var req auditService.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	req.Pagination.Normalize()

	list, total, err := h.auditService.List(c.Request.Context(), middleware.GetPropertyID(c), &req)
	handler.MustSucceedPage(c, err, list, total, req.Pagination)
}
