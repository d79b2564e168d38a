package services

import (
	"context"

	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/storage"
	"go.uber.org/zap"
)

type AuditService interface {
	VerifyWallets(ctx context.Context, repair bool) ([]models.WalletDrift, error)
}

// Auditor сверяет балансы кошельков с журналом; журнал считается источником истины
type Auditor struct {
	Ledger storage.LedgerStorage
}

// Создание сервиса сверки кошельков
func NewAuditor(ledger storage.LedgerStorage) *Auditor {
	return &Auditor{Ledger: ledger}
}

// VerifyWallets возвращает расхождения и при repair приводит баланс к сумме завершённых проводок
func (a *Auditor) VerifyWallets(ctx context.Context, repair bool) ([]models.WalletDrift, error) {
	drift, err := a.Ledger.ListWalletDrift(ctx)
	if err != nil {
		logger.Error("Failed to verify wallets", zap.Error(err))
		return nil, err
	}
	for i, d := range drift {
		logger.Warnw("Wallet drifted from ledger", "user", d.UserID, "wallet", d.WalletPoints, "ledger", d.LedgerPoints)
		if !repair {
			continue
		}
		repaired, err := a.Ledger.RepairWallet(ctx, d.UserID)
		if err != nil {
			logger.Errorw("Failed to repair wallet", "user", d.UserID, zap.Error(err))
			return drift, err
		}
		drift[i] = *repaired
		logger.Infow("Wallet repaired", "user", d.UserID, "points", repaired.LedgerPoints)
	}
	return drift, nil
}
