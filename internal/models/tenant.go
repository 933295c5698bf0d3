package models

import (
	"time"
)

// Tenant 平台租户（仅登记，不做隔离）
type Tenant struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string       `gorm:"type:varchar(100);not null" json:"name"`
	Domain    string       `gorm:"type:varchar(100);uniqueIndex" json:"domain"`
	Plan      TenantPlan   `gorm:"type:varchar(20);not null" json:"plan"`
	Status    TenantStatus `gorm:"type:varchar(20);not null" json:"status"`
	Users     int          `gorm:"not null;default:0" json:"users"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Tenant) TableName() string {
	return "tenants"
}

// TenantStatus 租户状态
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "Active"
	TenantStatusTrialing  TenantStatus = "Trialing"
	TenantStatusSuspended TenantStatus = "Suspended"
)

// Valid 是否为合法状态
func (s TenantStatus) Valid() bool {
	switch s {
	case TenantStatusActive, TenantStatusTrialing, TenantStatusSuspended:
		return true
	}
	return false
}

// TenantPlan 订阅套餐
type TenantPlan string

const (
	TenantPlanStarter      TenantPlan = "Starter"
	TenantPlanProfessional TenantPlan = "Professional"
	TenantPlanEnterprise   TenantPlan = "Enterprise"
)

// Valid 是否为合法套餐
func (p TenantPlan) Valid() bool {
	switch p {
	case TenantPlanStarter, TenantPlanProfessional, TenantPlanEnterprise:
		return true
	}
	return false
}
