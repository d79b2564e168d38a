package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/storage"
	"go.uber.org/zap"
)

var ErrUnsupportedEntryType = errors.New("entry type is not allowed for this operation")

type PoolService interface {
	GetPool(ctx context.Context) (*models.PointPool, error)
	AddPoints(ctx context.Context, amount int64, admin string) (*models.LedgerEntry, error)
	UsePoints(ctx context.Context, userID string, amount int64, entryType models.EntryType, ref *models.EntityRef) (*models.LedgerEntry, error)
	RefundPoints(ctx context.Context, userID string, amount int64, entryType models.EntryType, ref *models.EntityRef) (*models.LedgerEntry, error)
	GrantNewUser(ctx context.Context, userID string) (*models.LedgerEntry, error)
	GrantTouristQuest(ctx context.Context, userID string, questID string) (*models.LedgerEntry, error)
	AdjustUser(ctx context.Context, userID string, delta int64, admin string, reason string) (*models.LedgerEntry, error)
	ChargeFee(ctx context.Context, userID string, entryType models.EntryType, amount int64, ref *models.EntityRef) (*models.LedgerEntry, error)
	UpdateSettings(ctx context.Context, newUserPoints int64, touristQuestPoints int64, admin string) (*models.PointPool, error)
	History(ctx context.Context, userID string, limit int, offset int) ([]models.LedgerEntry, error)
}

type Pool struct {
	Ledger storage.LedgerStorage
}

// Создание сервиса
func NewPool(ledger storage.LedgerStorage) PoolService {
	return &Pool{Ledger: ledger}
}

// GetPool возвращает состояние пула, создавая его при первом обращении
func (s *Pool) GetPool(ctx context.Context) (*models.PointPool, error) {
	pool, err := s.Ledger.GetPool(ctx)
	if err != nil {
		logger.Error("Failed to get pool", zap.Error(err))
		return nil, err
	}
	return pool, nil
}

// AddPoints пополняет резерв пула, проводка не привязана к пользователю
func (s *Pool) AddPoints(ctx context.Context, amount int64, admin string) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, models.ErrAmountInvalid
	}
	return s.post(ctx, storage.Scope{Pool: true}, func(b *models.Batch) (models.LedgerEntry, error) {
		b.Pool.UpdatedBy = admin
		return b.Post(models.LedgerEntry{
			Type:     models.EntryAdminAdjustment,
			Amount:   amount,
			Metadata: map[string]string{models.MetaUpdatedBy: admin},
		}, models.PoolOpAdd)
	})
}

// UsePoints выдаёт пользователю баллы из резерва пула
func (s *Pool) UsePoints(ctx context.Context, userID string, amount int64, entryType models.EntryType, ref *models.EntityRef) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, models.ErrAmountInvalid
	}
	return s.post(ctx, storage.Scope{UserID: userID, Pool: true}, func(b *models.Batch) (models.LedgerEntry, error) {
		return b.Post(models.LedgerEntry{Type: entryType, Amount: amount, UserID: userID, Related: ref}, models.PoolOpUse)
	})
}

// RefundPoints списывает баллы пользователя с возвратом в пул
func (s *Pool) RefundPoints(ctx context.Context, userID string, amount int64, entryType models.EntryType, ref *models.EntityRef) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, models.ErrAmountInvalid
	}
	return s.post(ctx, storage.Scope{UserID: userID, Pool: true}, func(b *models.Batch) (models.LedgerEntry, error) {
		return b.Post(models.LedgerEntry{Type: entryType, Amount: -amount, UserID: userID, Related: ref}, models.PoolOpRefund)
	})
}

// GrantNewUser начисляет приветственные баллы; повторное начисление возвращает ErrAlreadyProcessed
func (s *Pool) GrantNewUser(ctx context.Context, userID string) (*models.LedgerEntry, error) {
	return s.post(ctx, storage.Scope{UserID: userID, Pool: true}, func(b *models.Batch) (models.LedgerEntry, error) {
		return b.Post(models.LedgerEntry{
			Type:   models.EntryNewUser,
			Amount: b.Pool.NewUserPoints,
			UserID: userID,
		}, models.PoolOpUse)
	})
}

// GrantTouristQuest начисляет баллы за туристический квест, один раз на квест
func (s *Pool) GrantTouristQuest(ctx context.Context, userID string, questID string) (*models.LedgerEntry, error) {
	return s.post(ctx, storage.Scope{UserID: userID, Pool: true}, func(b *models.Batch) (models.LedgerEntry, error) {
		return b.Post(models.LedgerEntry{
			Type:    models.EntryTouristQuest,
			Amount:  b.Pool.TouristQuestPoints,
			UserID:  userID,
			Related: &models.EntityRef{Kind: models.EntityQuest, ID: questID},
		}, models.PoolOpUse)
	})
}

// AdjustUser - ручная корректировка баланса администратором.
// Начисление выпускает баллы, списание возвращает их в пул.
func (s *Pool) AdjustUser(ctx context.Context, userID string, delta int64, admin string, reason string) (*models.LedgerEntry, error) {
	if delta == 0 {
		return nil, models.ErrAmountInvalid
	}
	op := models.PoolOpIssue
	if delta < 0 {
		op = models.PoolOpRefund
	}
	entry, err := s.post(ctx, storage.Scope{UserID: userID, Pool: true}, func(b *models.Batch) (models.LedgerEntry, error) {
		return b.Post(models.LedgerEntry{
			Type:   models.EntryAdminAdjustment,
			Amount: delta,
			UserID: userID,
			Metadata: map[string]string{
				models.MetaUpdatedBy: admin,
				models.MetaReason:    reason,
			},
		}, op)
	})
	if err == nil {
		logger.Infow("Wallet adjusted", "user", userID, "delta", delta, "admin", admin, "reason", reason)
	}
	return entry, err
}

var feeTypes = map[models.EntryType]bool{
	models.EntryJobApplicationFee: true,
	models.EntryJobCommissionFee:  true,
	models.EntryOrderDelivery:     true,
	models.EntryDeduction:         true,
}

// ChargeFee списывает с пользователя комиссию или оплату, баллы возвращаются в пул
func (s *Pool) ChargeFee(ctx context.Context, userID string, entryType models.EntryType, amount int64, ref *models.EntityRef) (*models.LedgerEntry, error) {
	if !feeTypes[entryType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEntryType, entryType)
	}
	return s.RefundPoints(ctx, userID, amount, entryType, ref)
}

// UpdateSettings меняет размеры начислений новым пользователям и за туристические квесты
func (s *Pool) UpdateSettings(ctx context.Context, newUserPoints int64, touristQuestPoints int64, admin string) (*models.PointPool, error) {
	if newUserPoints < 0 || touristQuestPoints < 0 {
		return nil, models.ErrAmountInvalid
	}
	batch, err := s.Ledger.Apply(ctx, storage.Scope{Pool: true}, func(b *models.Batch) error {
		b.Pool.NewUserPoints = newUserPoints
		b.Pool.TouristQuestPoints = touristQuestPoints
		b.Pool.UpdatedBy = admin
		b.TouchPool()
		return nil
	})
	if err != nil {
		logger.Error("Failed to update pool settings", zap.Error(err))
		return nil, err
	}
	logger.Infow("Pool settings updated", "admin", admin,
		"new_user_points", newUserPoints, "tourist_quest_points", touristQuestPoints)
	return batch.Pool, nil
}

// History возвращает журнал проводок пользователя, новые первыми
func (s *Pool) History(ctx context.Context, userID string, limit int, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.Ledger.ListUserEntries(ctx, userID, limit, offset)
	if err != nil {
		logger.Error("Failed to get ledger history", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func (s *Pool) post(ctx context.Context, scope storage.Scope, fn func(b *models.Batch) (models.LedgerEntry, error)) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	_, err := s.Ledger.Apply(ctx, scope, func(b *models.Batch) error {
		var err error
		entry, err = fn(b)
		return err
	})
	if err != nil {
		if !errors.Is(err, models.ErrAlreadyProcessed) {
			logger.Warnw("Pool operation rejected", "user", scope.UserID, zap.Error(err))
		}
		return nil, err
	}
	return &entry, nil
}
