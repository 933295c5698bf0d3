package models

import (
	"time"

	"gorm.io/datatypes"
)

// Property 物业（每个部署一个）
type Property struct {
	ID               int64                            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string                           `gorm:"type:varchar(100);not null" json:"name"`
	Address          string                           `gorm:"type:varchar(255)" json:"address"`
	ContactEmail     string                           `gorm:"type:varchar(100)" json:"contact_email"`
	ContactPhone     string                           `gorm:"type:varchar(30)" json:"contact_phone"`
	StaffWhatsapp    string                           `gorm:"type:varchar(30)" json:"staff_whatsapp"`
	CheckInTime      string                           `gorm:"type:varchar(5);not null;default:'14:00'" json:"check_in_time"`
	CheckOutTime     string                           `gorm:"type:varchar(5);not null;default:'10:00'" json:"check_out_time"`
	LogoURL          string                           `gorm:"type:varchar(255)" json:"logo_url,omitempty"`
	HeaderImageURL   string                           `gorm:"type:varchar(255)" json:"header_image_url,omitempty"`
	PrimaryColor     string                           `gorm:"type:varchar(7);not null;default:'#3B82F6'" json:"primary_color"`
	WhatsappTemplate string                           `gorm:"type:text" json:"whatsapp_template"`
	WebhookURL       string                           `gorm:"type:varchar(255)" json:"webhook_url,omitempty"`
	RefPrefix        string                           `gorm:"type:varchar(10);not null;default:'INF'" json:"ref_prefix"`
	LastRefNumber    int                              `gorm:"not null;default:0" json:"last_ref_number"`
	LayoutGrid       datatypes.JSONSlice[RoomPosition] `json:"layout_grid"`
	CreatedAt        time.Time                        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                        `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联，按 Sort 升序即为定价时的优先顺序
	SeasonalRates []SeasonalRate `gorm:"foreignKey:PropertyID" json:"seasonal_rates,omitempty"`
}

// TableName 表名
func (Property) TableName() string {
	return "properties"
}

// RoomPosition 房态图中房间的位置
type RoomPosition struct {
	RoomID int64 `json:"room_id"`
	X      int   `json:"x"`
	Y      int   `json:"y"`
	W      int   `json:"w"`
	H      int   `json:"h"`
}

// SeasonalRate 季节价格
type SeasonalRate struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID int64     `gorm:"index;not null" json:"property_id"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	StartDate  Date      `gorm:"not null" json:"start_date"`
	EndDate    Date      `gorm:"not null" json:"end_date"`
	Multiplier float64   `gorm:"type:decimal(6,3);not null;default:1" json:"multiplier"`
	Sort       int       `gorm:"not null;default:0" json:"sort"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (SeasonalRate) TableName() string {
	return "seasonal_rates"
}

// Contains 日期是否落在闭区间 [StartDate, EndDate] 内
func (r SeasonalRate) Contains(d Date) bool {
	return !d.Before(r.StartDate) && !d.After(r.EndDate)
}
