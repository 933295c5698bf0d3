package booking

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/common/logger"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
)

// ReferenceCounter 预订号计数器状态
type ReferenceCounter struct {
	LastRefNumber int    `json:"last_ref_number"`
	NextReference string `json:"next_reference"`
}

// ResetReferenceRequest 重置预订号计数器请求
type ResetReferenceRequest struct {
	Value int `json:"value" binding:"min=0"`
}

// ResetReferenceCounter 将物业的预订号计数器重置为 value
// 当年已存在流水号大于 value 的预订时拒绝
func (s *BookingService) ResetReferenceCounter(ctx context.Context, propertyID int64, value int, actor models.Actor) (*ReferenceCounter, error) {
	if value < 0 {
		return nil, errors.ErrInvalidParams.WithMessage("计数器不能为负数")
	}
	year := s.localNow().Year()

	var (
		prefix string
		before int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := s.propertyRepo.WithTx(tx).GetByID(ctx, propertyID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrPropertyNotFound
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		prefix = referencePrefix(*property)
		before = property.LastRefNumber

		refs, err := s.bookingRepo.WithTx(tx).ListReferencesWithPrefix(ctx, fmt.Sprintf("%s-%d-", prefix, year))
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		highest := 0
		for _, ref := range refs {
			if seq, ok := ParseReferenceSeq(ref, prefix, year); ok && seq > highest {
				highest = seq
			}
		}
		if value < highest {
			return errors.ErrReferenceInUse.WithMessage(fmt.Sprintf("%s 已存在，计数器不能小于 %d", FormatReference(prefix, year, highest), highest))
		}

		if value != before {
			ok, err := s.propertyRepo.WithTx(tx).CompareAndSetRefNumber(ctx, propertyID, before, value)
			if err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
			if !ok {
				return errors.ErrReferenceConflict
			}
		}

		_, err = s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionReferenceReset,
			Details:    fmt.Sprintf("Reference counter reset from %d to %d", before, value),
			Field:      "last_ref_number",
			Before:     strconv.Itoa(before),
			After:      strconv.Itoa(value),
			TargetType: models.AuditTargetProperty,
			TargetID:   propertyID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Warn("预订号计数器已重置",
		logger.PropertyID(propertyID),
		logger.Int("from", before),
		logger.Int("to", value),
		logger.Actor(actor.Name),
	)
	return &ReferenceCounter{
		LastRefNumber: value,
		NextReference: FormatReference(prefix, year, value+1),
	}, nil
}
