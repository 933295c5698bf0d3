package models

import (
	"time"
)

// Booking 预订
type Booking struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID    int64          `gorm:"index;not null" json:"property_id"`
	Reference     string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"reference"`
	RoomID        int64          `gorm:"index:idx_booking_room_status;not null" json:"room_id"`
	GuestName     string         `gorm:"type:varchar(100);not null" json:"guest_name"`
	GuestEmail    string         `gorm:"type:varchar(100)" json:"guest_email"`
	GuestPhone    string         `gorm:"type:varchar(30)" json:"guest_phone"`
	GuestCount    int            `gorm:"not null;default:1" json:"guest_count"`
	GuestIDCipher string         `gorm:"type:varchar(255);column:guest_id_cipher" json:"-"`
	CheckInDate   Date           `gorm:"not null;index" json:"check_in_date"`
	CheckOutDate  Date           `gorm:"not null;index" json:"check_out_date"`
	TotalAmount   float64        `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status        BookingStatus  `gorm:"type:varchar(20);index:idx_booking_room_status;not null" json:"status"`
	PaymentStatus PaymentStatus  `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentMethod *PaymentMethod `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	Source        string         `gorm:"type:varchar(20);not null;default:'ADMIN'" json:"source"`
	Remark        string         `gorm:"type:varchar(255)" json:"remark,omitempty"`
	CreatedBy     string         `gorm:"type:varchar(100)" json:"created_by,omitempty"`
	CheckedInAt   *time.Time     `json:"checked_in_at,omitempty"`
	CheckedOutAt  *time.Time     `json:"checked_out_at,omitempty"`
	CancelledAt   *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	// 解密后的证件号，仅在详情中返回
	GuestIDNumber string `gorm:"-" json:"guest_id_number,omitempty"`
}

// TableName 表名
func (Booking) TableName() string {
	return "bookings"
}

// Nights 入住晚数
func (b *Booking) Nights() int {
	return b.CheckInDate.DaysUntil(b.CheckOutDate)
}

// IsCancelled 是否已取消
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BookingSource 预订来源
const (
	BookingSourceAdmin  = "ADMIN"  // 前台录入
	BookingSourcePortal = "PORTAL" // 客人自助
)

// BookingStatus 预订状态
type BookingStatus string

const (
	BookingStatusProvisional BookingStatus = "PROVISIONAL" // 待确认
	BookingStatusConfirmed   BookingStatus = "CONFIRMED"   // 已确认
	BookingStatusCheckedIn   BookingStatus = "CHECKED_IN"  // 已入住
	BookingStatusCheckedOut  BookingStatus = "CHECKED_OUT" // 已退房
	BookingStatusCancelled   BookingStatus = "CANCELLED"   // 已取消
)

// BookingStatuses 全部预订状态
func BookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusProvisional,
		BookingStatusConfirmed,
		BookingStatusCheckedIn,
		BookingStatusCheckedOut,
		BookingStatusCancelled,
	}
}

// Valid 是否为合法状态
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusProvisional, BookingStatusConfirmed, BookingStatusCheckedIn,
		BookingStatusCheckedOut, BookingStatusCancelled:
		return true
	}
	return false
}

// Label 展示名称
func (s BookingStatus) Label() string {
	switch s {
	case BookingStatusProvisional:
		return "Provisional"
	case BookingStatusConfirmed:
		return "Confirmed"
	case BookingStatusCheckedIn:
		return "Checked In"
	case BookingStatusCheckedOut:
		return "Checked Out"
	case BookingStatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// Color 状态色
func (s BookingStatus) Color() string {
	switch s {
	case BookingStatusProvisional:
		return "amber"
	case BookingStatusConfirmed:
		return "emerald"
	case BookingStatusCheckedIn:
		return "blue"
	case BookingStatusCheckedOut:
		return "slate"
	case BookingStatusCancelled:
		return "red"
	}
	return "gray"
}

// IsTerminal 是否为终态
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCheckedOut || s == BookingStatusCancelled
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"        // 待支付
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID" // 部分支付
	PaymentStatusPaid          PaymentStatus = "PAID"           // 已支付
	PaymentStatusRefunded      PaymentStatus = "REFUNDED"       // 已退款
)

// PaymentStatuses 全部支付状态
func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusPartiallyPaid,
		PaymentStatusPaid,
		PaymentStatusRefunded,
	}
}

// Valid 是否为合法状态
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartiallyPaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// Label 展示名称
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentStatusPending:
		return "Pending"
	case PaymentStatusPartiallyPaid:
		return "Partially Paid"
	case PaymentStatusPaid:
		return "Paid"
	case PaymentStatusRefunded:
		return "Refunded"
	}
	return "Unknown"
}

// Color 状态色
func (s PaymentStatus) Color() string {
	switch s {
	case PaymentStatusPending:
		return "red"
	case PaymentStatusPartiallyPaid:
		return "amber"
	case PaymentStatusPaid:
		return "emerald"
	case PaymentStatusRefunded:
		return "slate"
	}
	return "gray"
}

// rank 支付推进顺序，退款不参与排序
func (s PaymentStatus) rank() int {
	switch s {
	case PaymentStatusPending:
		return 0
	case PaymentStatusPartiallyPaid:
		return 1
	case PaymentStatusPaid:
		return 2
	}
	return -1
}

// Precedes 是否在 o 之前（仅用于 PENDING → PARTIALLY_PAID → PAID）
func (s PaymentStatus) Precedes(o PaymentStatus) bool {
	a, b := s.rank(), o.rank()
	return a >= 0 && b >= 0 && a < b
}

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentMethodIKhokha       PaymentMethod = "IKHOKHA"         // 在线支付（即时到账）
	PaymentMethodEFT           PaymentMethod = "EFT"             // 银行转账
	PaymentMethodCashOnArrival PaymentMethod = "CASH_ON_ARRIVAL" // 到店现金
	PaymentMethodCardOnArrival PaymentMethod = "CARD_ON_ARRIVAL" // 到店刷卡
)

// PaymentMethods 全部支付方式
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodIKhokha,
		PaymentMethodEFT,
		PaymentMethodCashOnArrival,
		PaymentMethodCardOnArrival,
	}
}

// Valid 是否为合法支付方式
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodIKhokha, PaymentMethodEFT, PaymentMethodCashOnArrival, PaymentMethodCardOnArrival:
		return true
	}
	return false
}

// Label 展示名称
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodIKhokha:
		return "iKhokha"
	case PaymentMethodEFT:
		return "EFT"
	case PaymentMethodCashOnArrival:
		return "Cash on Arrival"
	case PaymentMethodCardOnArrival:
		return "Card on Arrival"
	}
	return "Unknown"
}

// Color 展示色
func (m PaymentMethod) Color() string {
	switch m {
	case PaymentMethodIKhokha:
		return "blue"
	case PaymentMethodEFT:
		return "indigo"
	case PaymentMethodCashOnArrival:
		return "emerald"
	case PaymentMethodCardOnArrival:
		return "violet"
	}
	return "gray"
}

// IsInstantVerified 是否即时到账
func (m PaymentMethod) IsInstantVerified() bool {
	switch m {
	case PaymentMethodIKhokha:
		return true
	case PaymentMethodEFT, PaymentMethodCashOnArrival, PaymentMethodCardOnArrival:
		return false
	}
	return false
}
