package services

import (
	"context"
	"errors"
	"time"

	"github.com/denmor86/ya-questpoints/internal/config"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/storage"
	"go.uber.org/zap"
)

type ReconcileService interface {
	ReconcilePending(ctx context.Context, limit int) (models.ReconcileReport, error)
}

// Reconciler перепроверяет в шлюзе зависшие покупки и выплаты
type Reconciler struct {
	Storage     storage.Storage
	Purchases   PurchaseService
	Withdrawals WithdrawalService
	Config      config.ReconcileConfig
	Now         func() time.Time
}

// Создание сервиса сверки
func NewReconciler(storage storage.Storage, purchases PurchaseService, withdrawals WithdrawalService, cfg config.ReconcileConfig) *Reconciler {
	return &Reconciler{
		Storage:     storage,
		Purchases:   purchases,
		Withdrawals: withdrawals,
		Config:      cfg,
		Now:         time.Now,
	}
}

// ReconcilePending - проход сверки. Ошибки недоступности шлюза возвращаются,
// чтобы воркер мог учесть их в автомате защиты.
func (r *Reconciler) ReconcilePending(ctx context.Context, limit int) (models.ReconcileReport, error) {
	var (
		report models.ReconcileReport
		errs   []error
	)
	now := r.Now()

	entries, err := r.Storage.Ledger.ListPendingEntries(ctx, models.EntryBuy, now.Add(-r.Config.MinAge), limit)
	if err != nil {
		logger.Error("Failed to get pending purchases", zap.Error(err))
		return report, err
	}
	for _, entry := range entries {
		report.Processed++
		chargeID := entry.Meta(models.MetaChargeID)
		if chargeID == "" {
			report.Deferred++
			if now.Sub(entry.CreatedAt) < r.Config.AbandonAge {
				continue
			}
			// платёж мог пройти: проводка остаётся в ожидании до события шлюза или возврата пользователя
			if err := r.markStale(ctx, entry.ID, now); err != nil {
				errs = append(errs, err)
				continue
			}
			report.Stale++
			continue
		}

		purchase, err := r.Purchases.HandleChargeEvent(ctx, chargeID)
		switch {
		case errors.Is(err, models.ErrAlreadyProcessed):
		case err != nil:
			report.Deferred++
			errs = append(errs, err)
		default:
			report.Count(purchase.Status)
		}
	}

	awaiting, err := r.Storage.Withdrawals.ListAwaitingTransfer(ctx, limit)
	if err != nil {
		logger.Error("Failed to get payouts in flight", zap.Error(err))
		return report, errors.Join(append(errs, err)...)
	}
	for _, w := range awaiting {
		report.Processed++
		done, err := r.Withdrawals.ConfirmTransfer(ctx, w.TransferID)
		switch {
		case errors.Is(err, models.ErrAlreadyProcessed):
		case err != nil:
			report.Deferred++
			errs = append(errs, err)
		case done.Status == models.WithdrawalPaid:
			report.Completed++
		default:
			report.Deferred++
		}
	}

	if report.Processed > 0 {
		logger.Infow("Reconcile pass finished", "processed", report.Processed, "completed", report.Completed,
			"failed", report.Failed, "deferred", report.Deferred, "stale", report.Stale)
	}
	return report, errors.Join(errs...)
}

// markStale исключает покупку без идентификатора платежа из дальнейших проходов
func (r *Reconciler) markStale(ctx context.Context, entryID string, now time.Time) error {
	_, err := r.Storage.Ledger.Apply(ctx, storage.Scope{EntryID: entryID}, func(b *models.Batch) error {
		return b.Annotate(models.MetaStale, now.UTC().Format(time.RFC3339))
	})
	if errors.Is(err, models.ErrAlreadyProcessed) {
		return nil
	}
	if err != nil {
		logger.Errorw("Failed to flag stale purchase", "entry", entryID, zap.Error(err))
		return err
	}
	logger.Warnw("Purchase has no charge, left pending for operator review", "entry", entryID)
	return nil
}
