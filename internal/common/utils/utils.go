// Package utils 提供通用工具函数
package utils

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// ValidateEmail 验证邮箱
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone 验证国际电话号码，允许空格分隔
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(StripSpaces(phone))
}

// ValidateHexColor 验证 #RRGGBB 颜色
func ValidateHexColor(color string) bool {
	return colorPattern.MatchString(color)
}

// ValidateClock 验证 HH:MM 时间
func ValidateClock(clock string) bool {
	return clockPattern.MatchString(clock)
}

// StripSpaces 去除所有空白字符
func StripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Ptr 返回值的指针
func Ptr[T any](v T) *T {
	return &v
}

// Deref 安全解引用，nil 时返回零值
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Contains 判断切片是否包含元素
func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// Pagination 分页参数
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// GetOffset 获取偏移量
func (p *Pagination) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

// GetLimit 获取限制数
func (p *Pagination) GetLimit() int {
	return p.PageSize
}

// Normalize 规范化分页参数
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}
