// Package models 定义数据模型
package models

import (
	"gorm.io/gorm"
)

// All 全部需要迁移的模型
func All() []interface{} {
	return []interface{}{
		&Property{},
		&SeasonalRate{},
		&Room{},
		&Booking{},
		&AuditLog{},
		&CashUp{},
		&Notification{},
		&Staff{},
		&Tenant{},
	}
}

// AutoMigrate 自动迁移表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
