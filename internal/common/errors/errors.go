// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，WithMessage/WithError 派生出的错误仍与原错误相等
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrExternalService = New(1007, "外部服务错误")
	ErrRateLimitExceed = New(1008, "请求过于频繁")
	ErrOperationFailed = New(1009, "操作失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrTokenRefreshFail = New(2003, "刷新令牌失败")
	ErrPermissionDenied = New(2004, "权限不足")
	ErrAccountDisabled  = New(2005, "账号已禁用")
	ErrPasswordError    = New(2007, "账号或密码错误")
)

// 员工与租户错误码 (3000-3999)
var (
	ErrStaffNotFound  = New(3000, "员工不存在")
	ErrStaffExists    = New(3001, "员工邮箱已存在")
	ErrStaffSelf      = New(3002, "不能移除当前登录账号")
	ErrTenantNotFound = New(3010, "租户不存在")
	ErrTenantInvalid  = New(3011, "租户状态或套餐无效")
)

// 房间与物业错误码 (4000-4999)
var (
	ErrRoomNotFound         = New(4000, "房间不存在")
	ErrRoomExists           = New(4001, "房间号已存在")
	ErrRoomStatusInvalid    = New(4002, "无效的房间状态")
	ErrPropertyNotFound     = New(4010, "物业不存在")
	ErrSeasonalRateNotFound = New(4011, "季节价格不存在")
	ErrSeasonalRateInvalid  = New(4012, "季节价格区间或倍率无效")
	ErrLayoutInvalid        = New(4013, "房间布局无效")
)

// 通知错误码 (6000-6999)
var (
	ErrNotificationNotFound = New(6000, "通知不存在")
)

// 预订错误码 (8000-8999)
var (
	ErrBookingNotFound          = New(8000, "预订不存在")
	ErrBookingStatusError       = New(8001, "预订状态不允许该操作")
	ErrBookingConflict          = New(8002, "该房间在所选日期已被预订")
	ErrInvalidDateRange         = New(8003, "退房日期必须晚于入住日期")
	ErrRoomNotAvailable         = New(8004, "房间不可预订")
	ErrPaymentStatusError       = New(8005, "支付状态不允许该操作")
	ErrPaymentMethodInvalid     = New(8006, "无效的支付方式")
	ErrReferenceConflict        = New(8007, "预订编号生成冲突，请重试")
	ErrBookingDeleteUnconfirmed = New(8008, "删除预订需要确认")
	ErrBookingLocked            = New(8009, "该房间正在处理其他预订，请稍后重试")
	ErrCapacityExceeded         = New(8010, "入住人数超过房间容量")
	ErrReferenceInUse           = New(8011, "重置后的预订编号已被使用")
)

// 财务错误码 (9000-9999)
var (
	ErrCashUpInvalid  = New(9000, "对账金额无效")
	ErrCashUpNotFound = New(9001, "对账记录不存在")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}
