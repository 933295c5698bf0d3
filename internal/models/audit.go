package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog 审计日志
type AuditLog struct {
	ID         int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID int64             `gorm:"index;not null" json:"property_id"`
	ActorID    *int64            `json:"actor_id,omitempty"`
	ActorName  string            `gorm:"type:varchar(100);not null" json:"actor_name"`
	Action     string            `gorm:"type:varchar(50);not null;index" json:"action"`
	Details    string            `gorm:"type:text" json:"details"`
	Field      string            `gorm:"type:varchar(50)" json:"field,omitempty"`
	Before     string            `gorm:"type:varchar(100)" json:"before,omitempty"`
	After      string            `gorm:"type:varchar(100)" json:"after,omitempty"`
	TargetType string            `gorm:"type:varchar(50)" json:"target_type,omitempty"`
	TargetID   *int64            `json:"target_id,omitempty"`
	Snapshot   datatypes.JSONMap `json:"snapshot,omitempty"`
	CreatedAt  time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 表名
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditAction 审计动作
const (
	AuditActionBookingCreated      = "BOOKING_CREATED"
	AuditActionBookingUpdated      = "BOOKING_UPDATED"
	AuditActionBookingStatusChange = "BOOKING_STATUS_CHANGE"
	AuditActionPaymentStatusChange = "PAYMENT_STATUS_CHANGE"
	AuditActionBookingDeleted      = "BOOKING_DELETED"
	AuditActionRoomCreated         = "ROOM_CREATED"
	AuditActionRoomUpdated         = "ROOM_UPDATED"
	AuditActionRoomDeleted         = "ROOM_DELETED"
	AuditActionSettingsUpdated     = "SETTINGS_UPDATED"
	AuditActionReferenceReset      = "REFERENCE_RESET"
	AuditActionRateCreated         = "RATE_CREATED"
	AuditActionRateUpdated         = "RATE_UPDATED"
	AuditActionRateDeleted         = "RATE_DELETED"
	AuditActionRateReordered       = "RATE_REORDERED"
	AuditActionFinancialExport     = "FINANCIAL_EXPORT"
	AuditActionFinancialCashUp     = "FINANCIAL_CASH_UP"
	AuditActionStaffCreated        = "STAFF_CREATED"
	AuditActionStaffUpdated        = "STAFF_UPDATED"
	AuditActionStaffRemoved        = "STAFF_REMOVED"
	AuditActionTenantCreated       = "TENANT_CREATED"
	AuditActionTenantUpdated       = "TENANT_UPDATED"
	AuditActionWhatsappDispatch    = "WHATSAPP_DISPATCH"
)

// AuditTarget 审计对象类型
const (
	AuditTargetBooking  = "booking"
	AuditTargetRoom     = "room"
	AuditTargetProperty = "property"
	AuditTargetRate     = "seasonal_rate"
	AuditTargetCashUp   = "cash_up"
	AuditTargetStaff    = "staff"
	AuditTargetTenant   = "tenant"
)

// Actor 操作人
type Actor struct {
	ID   *int64
	Name string
}

// SystemActor 系统操作人（定时任务、客人自助预订）
func SystemActor(name string) Actor {
	return Actor{Name: name}
}
