package models

import (
	"time"

	"gorm.io/datatypes"
)

// Staff 员工账号
type Staff struct {
	ID           int64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID   int64                      `gorm:"index;not null" json:"property_id"`
	Name         string                     `gorm:"type:varchar(100);not null" json:"name"`
	Email        string                     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string                     `gorm:"type:varchar(255);not null" json:"-"`
	Role         StaffRole                  `gorm:"type:varchar(20);not null" json:"role"`
	Access       datatypes.JSONSlice[string] `json:"access"`
	Status       int8                       `gorm:"type:smallint;not null;default:1" json:"status"`
	LastLoginAt  *time.Time                 `json:"last_login_at,omitempty"`
	LastLoginIP  string                     `gorm:"type:varchar(45)" json:"last_login_ip,omitempty"`
	CreatedAt    time.Time                  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Staff) TableName() string {
	return "staff"
}

// StaffStatus 员工状态
const (
	StaffStatusDisabled = 0 // 禁用
	StaffStatusActive   = 1 // 正常
)

// StaffRole 员工角色
type StaffRole string

const (
	RoleBusinessAdmin StaffRole = "BUSINESS_ADMIN" // 店铺管理员
	RoleStaff         StaffRole = "STAFF"          // 前台
	RoleDeveloper     StaffRole = "DEVELOPER"      // 平台开发者
)

// Valid 是否为合法角色
func (r StaffRole) Valid() bool {
	switch r {
	case RoleBusinessAdmin, RoleStaff, RoleDeveloper:
		return true
	}
	return false
}

// Label 展示名称
func (r StaffRole) Label() string {
	switch r {
	case RoleBusinessAdmin:
		return "Business Admin"
	case RoleStaff:
		return "Staff"
	case RoleDeveloper:
		return "Developer"
	}
	return "Unknown"
}
