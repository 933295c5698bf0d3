package models

import (
	"time"
)

// CashUp 收银对账记录
type CashUp struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID     int64     `gorm:"index;not null" json:"property_id"`
	Date           Date      `gorm:"not null;index" json:"date"`
	Cash           float64   `gorm:"type:decimal(10,2);not null;default:0" json:"cash"`
	Card           float64   `gorm:"type:decimal(10,2);not null;default:0" json:"card"`
	EFT            float64   `gorm:"column:eft;type:decimal(10,2);not null;default:0" json:"eft"`
	Total          float64   `gorm:"type:decimal(10,2);not null" json:"total"`
	Notes          string    `gorm:"type:varchar(500)" json:"notes,omitempty"`
	ReconciledByID *int64    `json:"reconciled_by_id,omitempty"`
	ReconciledBy   string    `gorm:"type:varchar(100);not null" json:"reconciled_by"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (CashUp) TableName() string {
	return "cash_ups"
}
