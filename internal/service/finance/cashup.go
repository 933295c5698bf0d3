package finance

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/common/utils"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
)

// CashUpRequest 收银对账请求
type CashUpRequest struct {
	Cash  float64 `json:"cash"`
	Card  float64 `json:"card"`
	EFT   float64 `json:"eft"`
	Notes string  `json:"notes" binding:"max=500"`
}

// CashUp 记录当日收银对账，合计为现金、刷卡与转账之和
func (s *FinanceService) CashUp(ctx context.Context, propertyID int64, req *CashUpRequest, actor models.Actor) (*models.CashUp, error) {
	if req.Cash < 0 || req.Card < 0 || req.EFT < 0 {
		return nil, errors.ErrCashUpInvalid
	}

	record := &models.CashUp{
		PropertyID:     propertyID,
		Date:           models.DateOf(s.cfg.Now()),
		Cash:           req.Cash,
		Card:           req.Card,
		EFT:            req.EFT,
		Total:          req.Cash + req.Card + req.EFT,
		Notes:          strings.TrimSpace(req.Notes),
		ReconciledByID: actor.ID,
		ReconciledBy:   actor.Name,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.cashUpRepo.WithTx(tx).Create(ctx, record); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionFinancialCashUp,
			Details:    audit.CashUpDetails(record.Date, record.Total),
			TargetType: models.AuditTargetCashUp,
			TargetID:   record.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListCashUps 对账记录列表
func (s *FinanceService) ListCashUps(ctx context.Context, propertyID int64, page *utils.Pagination) ([]*models.CashUp, int64, error) {
	page.Normalize()
	records, total, err := s.cashUpRepo.List(ctx, propertyID, page.GetOffset(), page.GetLimit())
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return records, total, nil
}

// GetCashUp 对账记录详情
func (s *FinanceService) GetCashUp(ctx context.Context, propertyID, id int64) (*models.CashUp, error) {
	record, err := s.cashUpRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCashUpNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if record.PropertyID != propertyID {
		return nil, errors.ErrCashUpNotFound
	}
	return record, nil
}
