package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/denmor86/ya-questpoints/internal/client"
	"github.com/denmor86/ya-questpoints/internal/config"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrChargeMismatch = errors.New("charge does not belong to purchase")

type PurchaseService interface {
	Initiate(ctx context.Context, userID string, points int64) (*models.Purchase, error)
	Verify(ctx context.Context, userID string, entryID string) (*models.Purchase, error)
	Return(ctx context.Context, entryID string) (*models.Purchase, error)
	HandleChargeEvent(ctx context.Context, chargeID string) (*models.Purchase, error)
	Abandon(ctx context.Context, entryID string, reason string) error
}

type Purchases struct {
	Ledger     storage.LedgerStorage
	Gateway    client.Gateway
	Settlement config.SettlementConfig
	Charges    config.GatewayConfig
}

// Создание сервиса
func NewPurchases(ledger storage.LedgerStorage, gateway client.Gateway, settlement config.SettlementConfig, charges config.GatewayConfig) *Purchases {
	return &Purchases{
		Ledger:     ledger,
		Gateway:    gateway,
		Settlement: settlement,
		Charges:    charges,
	}
}

// ReturnURI - адрес возврата после оплаты; содержит идентификатор проводки покупки
func (s *Purchases) ReturnURI(entryID string) string {
	return fmt.Sprintf("%s/purchases/%s/return", strings.TrimRight(s.Charges.ReturnBaseURL, "/"), entryID)
}

// Initiate создаёт ожидающую проводку покупки и платёж в шлюзе.
// Ошибка шлюза оставляет проводку ожидающей до сверки.
func (s *Purchases) Initiate(ctx context.Context, userID string, points int64) (*models.Purchase, error) {
	if points < s.Settlement.MinPurchasePoints {
		return nil, fmt.Errorf("%w: minimum purchase is %d points", models.ErrAmountInvalid, s.Settlement.MinPurchasePoints)
	}
	amount := s.Settlement.PointPrice.Mul(decimal.NewFromInt(points)).Round(2)
	entryID := uuid.New().String()

	batch, err := s.Ledger.Apply(ctx, storage.Scope{UserID: userID}, func(b *models.Batch) error {
		_, err := b.PostPending(models.LedgerEntry{
			ID:       entryID,
			Type:     models.EntryBuy,
			Amount:   points,
			UserID:   userID,
			Related:  &models.EntityRef{Kind: models.EntityPurchase, ID: entryID},
			Metadata: map[string]string{models.MetaAmount: amount.StringFixed(2)},
		})
		return err
	})
	if err != nil {
		logger.Error("Failed to create purchase", zap.Error(err))
		return nil, err
	}
	purchase := models.PurchaseFromEntry(batch.Entries()[0])

	charge, err := s.Gateway.CreateCharge(ctx, client.ChargeRequest{
		Amount:      amount,
		Method:      s.Charges.ChargeMethod,
		ReturnURI:   s.ReturnURI(entryID),
		Description: fmt.Sprintf("%d points", points),
	})
	if err != nil {
		logger.Warnw("Charge creation failed, purchase left pending", "entry", entryID, zap.Error(err))
		if errors.Is(err, client.ErrBadRequest) {
			if ferr := s.Abandon(ctx, entryID, "charge rejected"); ferr != nil {
				logger.Errorw("Failed to mark purchase failed", "entry", entryID, zap.Error(ferr))
			}
		}
		return nil, err
	}

	_, err = s.Ledger.Apply(ctx, storage.Scope{EntryID: entryID}, func(b *models.Batch) error {
		return b.Annotate(models.MetaChargeID, charge.ID)
	})
	if err != nil {
		// платёж найдётся по адресу возврата
		logger.Errorw("Failed to save charge id", "entry", entryID, "charge", charge.ID, zap.Error(err))
	}
	purchase.ChargeID = charge.ID
	purchase.AuthorizeURI = charge.AuthorizeURI
	logger.Infow("Purchase initiated", "entry", entryID, "charge", charge.ID, "points", points)
	return &purchase, nil
}

// Verify - проверка оплаты по запросу пользователя
func (s *Purchases) Verify(ctx context.Context, userID string, entryID string) (*models.Purchase, error) {
	entry, err := s.Ledger.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID || entry.Type != models.EntryBuy {
		return nil, storage.ErrEntryNotFound
	}
	chargeID := entry.Meta(models.MetaChargeID)
	if entry.Status != models.EntryPending || chargeID == "" {
		purchase := models.PurchaseFromEntry(*entry)
		return &purchase, nil
	}

	purchase, err := s.settle(ctx, chargeID, entryID)
	if errors.Is(err, models.ErrAlreadyProcessed) {
		// завершено событием шлюза
		if entry, err = s.Ledger.GetEntry(ctx, entryID); err != nil {
			return nil, err
		}
		done := models.PurchaseFromEntry(*entry)
		return &done, nil
	}
	return purchase, err
}

// Return - проверка оплаты при возврате пользователя со страницы шлюза, без токена пользователя
func (s *Purchases) Return(ctx context.Context, entryID string) (*models.Purchase, error) {
	entry, err := s.Ledger.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Type != models.EntryBuy {
		return nil, storage.ErrEntryNotFound
	}
	return s.Verify(ctx, entry.UserID, entryID)
}

// HandleChargeEvent - обработка события шлюза о платеже
func (s *Purchases) HandleChargeEvent(ctx context.Context, chargeID string) (*models.Purchase, error) {
	return s.settle(ctx, chargeID, "")
}

// Abandon отмечает покупку неуспешной без изменения баланса
func (s *Purchases) Abandon(ctx context.Context, entryID string, reason string) error {
	_, err := s.Ledger.Apply(ctx, storage.Scope{EntryID: entryID}, func(b *models.Batch) error {
		if b.Pending.Type != models.EntryBuy {
			return models.ErrInvalidTransition
		}
		return b.Fail(reason)
	})
	return err
}

// settle - единая идемпотентная процедура завершения покупки для опроса и событий.
// Статус платежа всегда перепроверяется в шлюзе.
func (s *Purchases) settle(ctx context.Context, chargeID string, entryID string) (*models.Purchase, error) {
	charge, err := s.Gateway.GetChargeStatus(ctx, chargeID)
	if err != nil {
		logger.Warnw("Failed to verify charge", "charge", chargeID, zap.Error(err))
		return nil, err
	}

	entry, err := s.Ledger.FindEntryByMeta(ctx, models.MetaChargeID, chargeID)
	switch {
	case err == nil:
		entryID = entry.ID
	case errors.Is(err, storage.ErrEntryNotFound):
		// идентификатор платежа не сохранился: ищем проводку по адресу возврата
		if id, ok := models.PurchaseEntryIDFromReturn(charge.ReturnURI); ok {
			entryID = id
		}
		if entryID == "" {
			logger.Errorw("Purchase for charge not found", "charge", chargeID, "return_uri", charge.ReturnURI)
			return nil, err
		}
		logger.Warnw("Purchase matched by return address", "charge", chargeID, "entry", entryID)
	default:
		return nil, err
	}

	if !charge.Successful() && !charge.Failed() {
		entry, err := s.Ledger.GetEntry(ctx, entryID)
		if err != nil {
			return nil, err
		}
		purchase := models.PurchaseFromEntry(*entry)
		purchase.AuthorizeURI = charge.AuthorizeURI
		return &purchase, nil
	}

	batch, err := s.Ledger.Apply(ctx, storage.Scope{EntryID: entryID, Pool: true}, func(b *models.Batch) error {
		if b.Pending.Type != models.EntryBuy {
			return models.ErrInvalidTransition
		}
		if b.Pending.Status != models.EntryPending {
			return models.ErrAlreadyProcessed
		}
		if known := b.Pending.Meta(models.MetaChargeID); known != "" && known != chargeID {
			return ErrChargeMismatch
		}
		if charge.Successful() {
			return b.Complete(models.PoolOpIssue, map[string]string{
				models.MetaChargeID:     chargeID,
				models.MetaChargeStatus: charge.Status,
			})
		}
		b.Pending.SetMeta(models.MetaChargeStatus, charge.Status)
		return b.Fail("charge " + charge.Status)
	})
	if err != nil {
		if !errors.Is(err, models.ErrAlreadyProcessed) {
			logger.Errorw("Failed to settle purchase", "entry", entryID, "charge", chargeID, zap.Error(err))
		}
		return nil, err
	}
	purchase := models.PurchaseFromEntry(*batch.Pending)
	logger.Infow("Purchase settled", "entry", entryID, "charge", chargeID, "status", purchase.Status)
	return &purchase, nil
}
