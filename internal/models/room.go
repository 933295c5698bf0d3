package models

import (
	"time"

	"gorm.io/datatypes"
)

// Room 客房
type Room struct {
	ID            int64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID    int64                      `gorm:"uniqueIndex:idx_room_property_number;not null" json:"property_id"`
	RoomNumber    string                     `gorm:"type:varchar(20);uniqueIndex:idx_room_property_number;not null" json:"room_number"`
	RoomType      string                     `gorm:"type:varchar(50);not null" json:"room_type"`
	Capacity      int                        `gorm:"not null;default:2" json:"capacity"`
	PricePerNight float64                    `gorm:"type:decimal(10,2);not null" json:"price_per_night"`
	Status        RoomStatus                 `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	Description   string                     `gorm:"type:text" json:"description,omitempty"`
	Images        datatypes.JSONSlice[string] `json:"images"`
	CreatedAt     time.Time                  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}

// RoomStatus 客房状态
type RoomStatus string

const (
	RoomStatusActive      RoomStatus = "ACTIVE"      // 可售
	RoomStatusMaintenance RoomStatus = "MAINTENANCE" // 维修中
	RoomStatusBlocked     RoomStatus = "BLOCKED"     // 锁定
)

// Valid 是否为合法状态
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomStatusActive, RoomStatusMaintenance, RoomStatusBlocked:
		return true
	}
	return false
}

// Label 展示名称
func (s RoomStatus) Label() string {
	switch s {
	case RoomStatusActive:
		return "Active"
	case RoomStatusMaintenance:
		return "Maintenance"
	case RoomStatusBlocked:
		return "Blocked"
	}
	return "Unknown"
}
