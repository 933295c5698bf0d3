package booking

import (
	"fmt"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/models"
)

// bookingTransitions 允许的预订状态流转
var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingStatusProvisional: {
		models.BookingStatusConfirmed,
		models.BookingStatusCheckedIn,
		models.BookingStatusCancelled,
	},
	models.BookingStatusConfirmed: {
		models.BookingStatusCheckedIn,
		models.BookingStatusCancelled,
	},
	models.BookingStatusCheckedIn: {
		models.BookingStatusCheckedOut,
	},
	models.BookingStatusCheckedOut: {},
	models.BookingStatusCancelled:  {},
}

// PaymentPolicy 支付方式策略
type PaymentPolicy struct {
	instant map[models.PaymentMethod]bool
}

// NewPaymentPolicy 根据即时到账的支付方式创建策略，为空时使用默认规则
func NewPaymentPolicy(instantMethods []string) (*PaymentPolicy, error) {
	p := &PaymentPolicy{instant: make(map[models.PaymentMethod]bool)}
	if len(instantMethods) == 0 {
		for _, m := range models.PaymentMethods() {
			if m.IsInstantVerified() {
				p.instant[m] = true
			}
		}
		return p, nil
	}
	for _, raw := range instantMethods {
		m := models.PaymentMethod(raw)
		if !m.Valid() {
			return nil, fmt.Errorf("unknown payment method %q", raw)
		}
		p.instant[m] = true
	}
	return p, nil
}

// DefaultPaymentPolicy 默认策略（仅 IKHOKHA 即时到账）
func DefaultPaymentPolicy() *PaymentPolicy {
	p, _ := NewPaymentPolicy(nil)
	return p
}

// IsInstant 是否即时到账
func (p *PaymentPolicy) IsInstant(method models.PaymentMethod) bool {
	return p.instant[method]
}

// InitialState 新预订的初始状态
func (p *PaymentPolicy) InitialState(method *models.PaymentMethod) (models.BookingStatus, models.PaymentStatus) {
	if method != nil && p.IsInstant(*method) {
		return models.BookingStatusConfirmed, models.PaymentStatusPaid
	}
	return models.BookingStatusProvisional, models.PaymentStatusPending
}

// InitialState 按默认策略返回初始状态
func InitialState(method *models.PaymentMethod) (models.BookingStatus, models.PaymentStatus) {
	return DefaultPaymentPolicy().InitialState(method)
}

// CanTransition 预订状态是否可流转
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition 校验预订状态流转
func ValidateTransition(from, to models.BookingStatus) error {
	if !to.Valid() {
		return errors.ErrBookingStatusError.WithMessage(fmt.Sprintf("未知的预订状态: %s", to))
	}
	if !CanTransition(from, to) {
		return errors.ErrBookingStatusError.WithMessage(fmt.Sprintf("预订状态不能从 %s 变更为 %s", from, to))
	}
	return nil
}

// CanTransitionPayment 支付状态是否可流转
// 沿 PENDING → PARTIALLY_PAID → PAID 前进，任意未退款状态可退款
func CanTransitionPayment(from, to models.PaymentStatus) bool {
	if from == models.PaymentStatusRefunded {
		return false
	}
	if to == models.PaymentStatusRefunded {
		return true
	}
	return from.Precedes(to)
}

// ValidatePaymentTransition 校验支付状态流转
func ValidatePaymentTransition(from, to models.PaymentStatus) error {
	if !to.Valid() {
		return errors.ErrPaymentStatusError.WithMessage(fmt.Sprintf("未知的支付状态: %s", to))
	}
	if !CanTransitionPayment(from, to) {
		return errors.ErrPaymentStatusError.WithMessage(fmt.Sprintf("支付状态不能从 %s 变更为 %s", from, to))
	}
	return nil
}
