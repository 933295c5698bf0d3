package models

import (
	"time"
)

// Notification 消息通知记录
type Notification struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID int64      `gorm:"index;not null" json:"property_id"`
	BookingID  *int64     `gorm:"index" json:"booking_id,omitempty"`
	Channel    string     `gorm:"type:varchar(20);not null" json:"channel"`
	Recipient  string     `gorm:"type:varchar(50)" json:"recipient"`
	Title      string     `gorm:"type:varchar(100);not null" json:"title"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Status     string     `gorm:"type:varchar(20);not null" json:"status"`
	HTTPStatus int        `gorm:"column:http_status;not null;default:0" json:"http_status,omitempty"`
	Error      string     `gorm:"type:varchar(255)" json:"error,omitempty"`
	IsRead     bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 表名
func (Notification) TableName() string {
	return "notifications"
}

// NotificationChannel 通知渠道
const (
	NotificationChannelWhatsapp = "WHATSAPP"
)

// NotificationStatus 投递结果
const (
	NotificationStatusDelivered = "DELIVERED" // 网关返回 2xx
	NotificationStatusFailed    = "FAILED"    // 网关返回非 2xx
	NotificationStatusSimulated = "SIMULATED" // 未配置网关或网络错误
)
