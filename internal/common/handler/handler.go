// Package handler 提供 API Handler 的通用辅助函数
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/common/logger"
	"github.com/dumeirei/innflow-backend/internal/common/response"
	"github.com/dumeirei/innflow-backend/internal/common/utils"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	"github.com/dumeirei/innflow-backend/internal/models"
)

// HandleError 处理错误并发送响应，返回 true 表示调用方应当 return
//
//	booking, err := svc.Get(ctx, id)
//	if handler.HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.IsAppError(err) {
		appErr := errors.GetAppError(err)
		if appErr.Err != nil {
			logger.Warn("业务错误",
				logger.RequestID(middleware.GetRequestID(c)),
				logger.Path(c.FullPath()),
				logger.Int("error_code", appErr.Code),
				logger.Err(appErr.Err),
			)
		}
		response.Error(c, appErr.Code, appErr.Message)
		return true
	}
	logger.Error("未处理的错误", logger.Path(c.FullPath()), logger.Err(err))
	response.InternalError(c, "")
	return true
}

// MustSucceed 出错时返回错误响应，否则返回成功响应
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustSucceedPage 分页响应版本
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, p utils.Pagination) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, p.Page, p.PageSize)
}

// ParseID 解析路径参数 "id"
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	return ParseParamID(c, "id", resourceName)
}

// ParseParamID 解析指定路径参数为 int64，失败时已发送 400
func ParseParamID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// BindPagination 从查询参数绑定并规范化分页参数
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	p.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	p.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p.Normalize()
	return p
}

// RequireStaff 获取当前员工，未登录时已发送 401
func RequireStaff(c *gin.Context) (models.Actor, bool) {
	if middleware.GetStaffID(c) == 0 {
		response.Unauthorized(c, "请先登录")
		return models.Actor{}, false
	}
	return middleware.GetActor(c), true
}
