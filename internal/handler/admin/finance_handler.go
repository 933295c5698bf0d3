package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/innflow-backend/internal/common/handler"
	"github.com/dumeirei/innflow-backend/internal/common/response"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	financeService "github.com/dumeirei/innflow-backend/internal/service/finance"
)

// FinanceHandler 财务处理器
type FinanceHandler struct {
	financeService *financeService.FinanceService
}

// NewFinanceHandler 创建财务处理器
func NewFinanceHandler(financeSvc *financeService.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeSvc}
}

// Overview 财务概览
// @Summary 财务概览
// @Tags 财务管理
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=financeService.Overview}
// @Router /api/v1/admin/finance/overview [get]
func (h *FinanceHandler) Overview(c *gin.Context) {
	overview, err := h.financeService.Overview(c.Request.Context(), middleware.GetPropertyID(c))
	handler.MustSucceed(c, err, overview)
}

// Dashboard 运营看板
// @Summary 运营看板
// @Tags 财务管理
// @Produce json
// @Security Bearer
// @Param refresh query bool false "跳过缓存重新计算"
// @Success 200 {object} response.Response{data=financeService.Dashboard}
// @Router /api/v1/admin/dashboard [get]
func (h *FinanceHandler) Dashboard(c *gin.Context) {
	propertyID := middleware.GetPropertyID(c)
	if c.Query("refresh") == "true" {
		h.financeService.InvalidateDashboard(c.Request.Context(), propertyID)
	}
	dashboard, err := h.financeService.Dashboard(c.Request.Context(), propertyID)
	handler.MustSucceed(c, err, dashboard)
}

// ListCashUps 日结记录
// @Summary 日结记录
// @Tags 财务管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.CashUp}}
// @Router /api/v1/admin/finance/cash-ups [get]
func (h *FinanceHandler) ListCashUps(c *gin.Context) {
	p := handler.BindPagination(c)
	list, total, err := h.financeService.ListCashUps(c.Request.Context(), middleware.GetPropertyID(c), &p)
	handler.MustSucceedPage(c, err, list, total, p)
}

// GetCashUp 日结详情
// @Summary 日结详情
// @Tags 财务管理
// @Produce json
// @Security Bearer
// @Param id path int true "日结ID"
// @Success 200 {object} response.Response{data=models.CashUp}
// @Router /api/v1/admin/finance/cash-ups/{id} [get]
func (h *FinanceHandler) GetCashUp(c *gin.Context) {
	id, ok := handler.ParseID(c, "日结")
	if !ok {
		return
	}
	cashUp, err := h.financeService.GetCashUp(c.Request.Context(), middleware.GetPropertyID(c), id)
	handler.MustSucceed(c, err, cashUp)
}

// CashUp 提交日结
// @Summary 提交日结
// @Tags 财务管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body financeService.CashUpRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.CashUp}
// @Router /api/v1/admin/finance/cash-ups [post]
func (h *FinanceHandler) CashUp(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	var req financeService.CashUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	cashUp, err := h.financeService.CashUp(c.Request.Context(), middleware.GetPropertyID(c), &req, actor)
	handler.MustSucceed(c, err, cashUp)
}

// Export 导出账目 CSV
// @Summary 导出账目 CSV
// @Tags 财务管理
// @Produce text/csv
// @Security Bearer
// @Success 200 {file} file
// @Router /api/v1/admin/finance/export [get]
func (h *FinanceHandler) Export(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	export, err := h.financeService.ExportCSV(c.Request.Context(), middleware.GetPropertyID(c), actor)
	if handler.HandleError(c, err) {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", export.Content)
}
