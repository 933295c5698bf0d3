package property

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
)

// RateRequest 季节价格请求
type RateRequest struct {
	Name       string      `json:"name" binding:"required,max=100"`
	StartDate  models.Date `json:"start_date"`
	EndDate    models.Date `json:"end_date"`
	Multiplier float64     `json:"multiplier"`
}

func (r *RateRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" || r.StartDate.IsZero() || r.EndDate.IsZero() {
		return errors.ErrSeasonalRateInvalid
	}
	if r.EndDate.Before(r.StartDate) || r.Multiplier < 0 {
		return errors.ErrSeasonalRateInvalid
	}
	return nil
}

// ListRates 季节价格列表，顺序即匹配优先级
func (s *PropertyService) ListRates(ctx context.Context, propertyID int64) ([]models.SeasonalRate, error) {
	rates, err := s.rateRepo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return rates, nil
}

// CreateRate 新增季节价格，追加到末尾
func (s *PropertyService) CreateRate(ctx context.Context, propertyID int64, req *RateRequest, actor models.Actor) (*models.SeasonalRate, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	rate := &models.SeasonalRate{
		PropertyID: propertyID,
		Name:       strings.TrimSpace(req.Name),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Multiplier: req.Multiplier,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.rateRepo.WithTx(tx)
		maxSort, err := repo.MaxSort(ctx, propertyID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		rate.Sort = maxSort + 1
		if err := repo.Create(ctx, rate); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err = s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionRateCreated,
			Details:    rateDetails("Added seasonal rate", rate),
			TargetType: models.AuditTargetRate,
			TargetID:   rate.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// UpdateRate 更新季节价格
func (s *PropertyService) UpdateRate(ctx context.Context, propertyID, id int64, req *RateRequest, actor models.Actor) (*models.SeasonalRate, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	rate, err := s.loadRate(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}

	before := strconv.FormatFloat(rate.Multiplier, 'f', -1, 64)
	rate.Name = strings.TrimSpace(req.Name)
	rate.StartDate = req.StartDate
	rate.EndDate = req.EndDate
	rate.Multiplier = req.Multiplier

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.rateRepo.WithTx(tx).Update(ctx, rate); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionRateUpdated,
			Details:    rateDetails("Updated seasonal rate", rate),
			Field:      "multiplier",
			Before:     before,
			After:      strconv.FormatFloat(rate.Multiplier, 'f', -1, 64),
			TargetType: models.AuditTargetRate,
			TargetID:   rate.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// DeleteRate 删除季节价格
func (s *PropertyService) DeleteRate(ctx context.Context, propertyID, id int64, actor models.Actor) error {
	rate, err := s.loadRate(ctx, propertyID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.rateRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionRateDeleted,
			Details:    rateDetails("Removed seasonal rate", rate),
			TargetType: models.AuditTargetRate,
			TargetID:   rate.ID,
		})
		return err
	})
}

// ReorderRates 按给定 ID 顺序重排，须包含全部季节价格
func (s *PropertyService) ReorderRates(ctx context.Context, propertyID int64, ids []int64, actor models.Actor) ([]models.SeasonalRate, error) {
	rates, err := s.ListRates(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(rates) {
		return nil, errors.ErrSeasonalRateInvalid.WithMessage("排序须包含全部季节价格")
	}
	byID := make(map[int64]bool, len(rates))
	for _, r := range rates {
		byID[r.ID] = true
	}
	for _, id := range ids {
		if !byID[id] {
			return nil, errors.ErrSeasonalRateInvalid.WithMessage(fmt.Sprintf("季节价格 %d 不存在或重复", id))
		}
		delete(byID, id)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.rateRepo.WithTx(tx)
		for i, id := range ids {
			if err := repo.UpdateSort(ctx, id, i); err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
		}
		_, err := s.auditService.RecordTx(ctx, tx, audit.Entry{
			PropertyID: propertyID,
			Actor:      actor,
			Action:     models.AuditActionRateReordered,
			Details:    fmt.Sprintf("Reordered %d seasonal rates", len(ids)),
			TargetType: models.AuditTargetProperty,
			TargetID:   propertyID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.ListRates(ctx, propertyID)
}

func (s *PropertyService) loadRate(ctx context.Context, propertyID, id int64) (*models.SeasonalRate, error) {
	rate, err := s.rateRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrSeasonalRateNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if rate.PropertyID != propertyID {
		return nil, errors.ErrSeasonalRateNotFound
	}
	return rate, nil
}

func rateDetails(verb string, r *models.SeasonalRate) string {
	return fmt.Sprintf("%s %s (%s to %s, x%s)", verb, r.Name, r.StartDate, r.EndDate,
		strconv.FormatFloat(r.Multiplier, 'f', -1, 64))
}
