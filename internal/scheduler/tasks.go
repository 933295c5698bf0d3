package scheduler

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/dumeirei/innflow-backend/internal/common/config"
	"github.com/dumeirei/innflow-backend/internal/repository"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
	"github.com/dumeirei/innflow-backend/internal/service/finance"
	"github.com/dumeirei/innflow-backend/internal/service/notification"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	propertyRepo        *repository.PropertyRepository
	auditService        *audit.AuditService
	notificationService *notification.NotificationService
	financeService      *finance.FinanceService
	logger              *zap.Logger
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(
	propertyRepo *repository.PropertyRepository,
	auditSvc *audit.AuditService,
	notificationSvc *notification.NotificationService,
	financeSvc *finance.FinanceService,
	logger *zap.Logger,
) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{
		propertyRepo:        propertyRepo,
		auditService:        auditSvc,
		notificationService: notificationSvc,
		financeService:      financeSvc,
		logger:              logger.Named("task"),
	}
}

// forEachProperty 对每个物业执行 fn，单个物业失败不影响其他物业
func (h *TaskHandler) forEachProperty(ctx context.Context, fn func(ctx context.Context, propertyID int64) error) error {
	ids, err := h.propertyRepo.ListIDs(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if err := fn(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// EnforceAuditCap 清理超出上限的审计日志
func (h *TaskHandler) EnforceAuditCap(ctx context.Context) error {
	return h.forEachProperty(ctx, func(ctx context.Context, propertyID int64) error {
		removed, err := h.auditService.EnforceCap(ctx, propertyID)
		if err != nil {
			return err
		}
		if removed > 0 {
			h.logger.Info("清理审计日志", zap.Int64("property_id", propertyID), zap.Int64("removed", removed))
		}
		return nil
	})
}

// EnforceNotificationCap 清理超出上限的通知记录
func (h *TaskHandler) EnforceNotificationCap(ctx context.Context) error {
	return h.forEachProperty(ctx, func(ctx context.Context, propertyID int64) error {
		removed, err := h.notificationService.EnforceCap(ctx, propertyID)
		if err != nil {
			return err
		}
		if removed > 0 {
			h.logger.Info("清理通知记录", zap.Int64("property_id", propertyID), zap.Int64("removed", removed))
		}
		return nil
	})
}

// RefreshDashboard 刷新仪表盘缓存和入住率指标
func (h *TaskHandler) RefreshDashboard(ctx context.Context) error {
	return h.forEachProperty(ctx, func(ctx context.Context, propertyID int64) error {
		_, err := h.financeService.RefreshDashboard(ctx, propertyID)
		return err
	})
}

// SetupTasks 设置所有任务
func SetupTasks(scheduler *Scheduler, handler *TaskHandler, cfg config.SchedulerConfig) {
	scheduler.AddTask("EnforceAuditCap", cfg.Every(cfg.AuditCapInterval), handler.EnforceAuditCap)
	scheduler.AddTask("EnforceNotificationCap", cfg.Every(cfg.NotificationInterval), handler.EnforceNotificationCap)
	scheduler.AddTask("RefreshDashboard", cfg.Every(cfg.DashboardInterval), handler.RefreshDashboard)
}
