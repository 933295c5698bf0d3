package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/innflow-backend/internal/common/handler"
	"github.com/dumeirei/innflow-backend/internal/common/response"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	"github.com/dumeirei/innflow-backend/internal/models"
	adminService "github.com/dumeirei/innflow-backend/internal/service/admin"
)

// StaffHandler 员工与租户管理处理器
type StaffHandler struct {
	staffService  *adminService.StaffService
	tenantService *adminService.TenantService
}

// NewStaffHandler 创建员工与租户管理处理器
func NewStaffHandler(staffSvc *adminService.StaffService, tenantSvc *adminService.TenantService) *StaffHandler {
	return &StaffHandler{staffService: staffSvc, tenantService: tenantSvc}
}

// List 员工列表
// @Summary 员工列表
// @Tags 员工管理
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]adminService.StaffInfo}
// @Router /api/v1/admin/staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	list, err := h.staffService.List(c.Request.Context(), middleware.GetPropertyID(c))
	handler.MustSucceed(c, err, list)
}

// Create 新增员工
// @Summary 新增员工
// @Tags 员工管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body adminService.CreateStaffRequest true "请求参数"
// @Success 200 {object} response.Response{data=adminService.StaffInfo}
// @Router /api/v1/admin/staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	var req adminService.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	info, err := h.staffService.Create(c.Request.Context(), middleware.GetPropertyID(c), &req, actor)
	handler.MustSucceed(c, err, info)
}

// Update 更新员工
// @Summary 更新员工
// @Tags 员工管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Param request body adminService.UpdateStaffRequest true "请求参数"
// @Success 200 {object} response.Response{data=adminService.StaffInfo}
// @Router /api/v1/admin/staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "员工")
	if !ok {
		return
	}
	var req adminService.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	info, err := h.staffService.Update(c.Request.Context(), middleware.GetPropertyID(c), id, &req, actor)
	handler.MustSucceed(c, err, info)
}

// Delete 删除员工
// @Summary 删除员工
// @Tags 员工管理
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/staff/{id} [delete]
func (h *StaffHandler) Delete(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "员工")
	if !ok {
		return
	}
	err := h.staffService.Delete(c.Request.Context(), middleware.GetPropertyID(c), id, actor)
	handler.MustSucceed(c, err, nil)
}

// ListTenants 租户列表
// @Summary 租户列表
// @Tags 租户管理
// @Produce json
// @Security Bearer
// @Param status query string false "租户状态"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Tenant}}
// @Router /api/v1/admin/tenants [get]
func (h *StaffHandler) ListTenants(c *gin.Context) {
	var req adminService.TenantListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	req.Pagination.Normalize()

	list, total, err := h.tenantService.List(c.Request.Context(), &req)
	handler.MustSucceedPage(c, err, list, total, req.Pagination)
}

// CreateTenant 登记租户
// @Summary 登记租户
// @Tags 租户管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body adminService.CreateTenantRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Tenant}
// @Router /api/v1/admin/tenants [post]
func (h *StaffHandler) CreateTenant(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	var req adminService.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	tenant, err := h.tenantService.Create(c.Request.Context(), middleware.GetPropertyID(c), &req, actor)
	handler.MustSucceed(c, err, tenant)
}

// UpdateTenantStatusRequest 更新租户状态请求
type UpdateTenantStatusRequest struct {
	Status models.TenantStatus `json:"status" binding:"required"`
}

// UpdateTenantStatus 更新租户状态
// @Summary 更新租户状态
// @Tags 租户管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "租户ID"
// @Param request body UpdateTenantStatusRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Tenant}
// @Router /api/v1/admin/tenants/{id}/status [patch]
func (h *StaffHandler) UpdateTenantStatus(c *gin.Context) {
	actor, ok := handler.RequireStaff(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "租户")
	if !ok {
		return
	}
	var req UpdateTenantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	tenant, err := h.tenantService.UpdateStatus(c.Request.Context(), middleware.GetPropertyID(c), id, req.Status, actor)
	handler.MustSucceed(c, err, tenant)
}
