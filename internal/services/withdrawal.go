package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/denmor86/ya-questpoints/internal/client"
	"github.com/denmor86/ya-questpoints/internal/config"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrGatewayBalanceLow = errors.New("gateway transferable balance is too low")
	ErrFundingNotAllowed = errors.New("funded withdrawal must be opened by an operator")
)

// WithdrawalRequest - запрос пользователя на вывод баллов
type WithdrawalRequest struct {
	UserID string
	Points int64
	// пользователь, оплачивающий вывод (например, владелец квеста).
	// Задаётся только через RequestFunded.
	FunderID string
	// родительская сущность, общая для связанных заявок
	Parent *models.EntityRef
}

type WithdrawalService interface {
	Request(ctx context.Context, req WithdrawalRequest) (*models.Withdrawal, error)
	RequestFunded(ctx context.Context, req WithdrawalRequest, admin string) (*models.Withdrawal, error)
	Approve(ctx context.Context, id string, admin string, manual bool) (*models.Withdrawal, error)
	Reject(ctx context.Context, id string, admin string, reason string) (*models.Withdrawal, error)
	MarkPaid(ctx context.Context, id string, admin string) (*models.Withdrawal, error)
	ConfirmTransfer(ctx context.Context, transferID string) (*models.Withdrawal, error)
	CancelGroup(ctx context.Context, parent models.EntityRef, cause string) ([]string, error)
	List(ctx context.Context, userID string) ([]models.Withdrawal, error)
}

type Withdrawals struct {
	Storage    storage.Storage
	Gateway    client.Gateway
	Notifier   Notifier
	Settlement config.SettlementConfig
	Now        func() time.Time
}

// Создание сервиса
func NewWithdrawals(storage storage.Storage, gateway client.Gateway, notifier Notifier, settlement config.SettlementConfig) *Withdrawals {
	return &Withdrawals{
		Storage:    storage,
		Gateway:    gateway,
		Notifier:   notifier,
		Settlement: settlement,
		Now:        time.Now,
	}
}

// Request создаёт заявку пользователя на вывод собственных баллов. Баллы не списываются,
// а удерживаются логически: баланс за вычетом других открытых заявок должен покрывать запрос.
func (s *Withdrawals) Request(ctx context.Context, req WithdrawalRequest) (*models.Withdrawal, error) {
	if req.FunderID != "" || req.Parent != nil {
		logger.Warnw("Funded withdrawal requested by user", "user", req.UserID, "funder", req.FunderID)
		return nil, ErrFundingNotAllowed
	}
	return s.open(ctx, req)
}

// RequestFunded открывает заявку, оплачиваемую другим пользователем в рамках родительской сущности.
// Связь получателя, плательщика и сущности подтверждает оператор.
func (s *Withdrawals) RequestFunded(ctx context.Context, req WithdrawalRequest, admin string) (*models.Withdrawal, error) {
	if req.FunderID == "" || req.Parent == nil {
		return nil, fmt.Errorf("%w: funder and parent are required", ErrFundingNotAllowed)
	}
	w, err := s.open(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.Infow("Funded withdrawal opened", "withdrawal", w.ID, "funder", req.FunderID,
		"parent", req.Parent.ID, "admin", admin)
	return w, nil
}

func (s *Withdrawals) open(ctx context.Context, req WithdrawalRequest) (*models.Withdrawal, error) {
	if req.Points <= 0 {
		return nil, models.ErrAmountInvalid
	}
	amount := s.Settlement.PointValue.Mul(decimal.NewFromInt(req.Points)).Round(2)
	if amount.LessThan(s.Settlement.MinWithdrawalAmount) {
		return nil, fmt.Errorf("%w: minimum withdrawal is %s", models.ErrAmountInvalid, s.Settlement.MinWithdrawalAmount)
	}

	account, err := s.Storage.Wallets.GetBankAccount(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrBankAccountNotFound) {
			return nil, models.ErrBankAccountNotVerified
		}
		logger.Error("Failed to get bank account", zap.Error(err))
		return nil, err
	}
	if !account.Verified {
		return nil, models.ErrBankAccountNotVerified
	}
	if req.Parent != nil {
		cancelled, err := s.Storage.Withdrawals.IsParentCancelled(ctx, *req.Parent)
		if err != nil {
			return nil, err
		}
		if cancelled {
			return nil, models.ErrGroupCancelled
		}
	}

	debitor := req.UserID
	if req.FunderID != "" {
		debitor = req.FunderID
	}
	id := uuid.New().String()
	batch, err := s.Storage.Ledger.Apply(ctx, storage.Scope{UserID: debitor, Holds: true}, func(b *models.Batch) error {
		if b.Wallet.Points-b.PendingHolds < req.Points {
			return models.ErrInsufficientWallet
		}
		entry, err := b.PostPending(models.LedgerEntry{
			Type:    models.EntryWithdraw,
			Amount:  -req.Points,
			UserID:  debitor,
			Related: &models.EntityRef{Kind: models.EntityWithdrawal, ID: id},
			Metadata: map[string]string{
				models.MetaAmount: amount.StringFixed(2),
			},
		})
		if err != nil {
			return err
		}
		b.OpenWithdrawal(models.Withdrawal{
			ID:          id,
			UserID:      req.UserID,
			DebitUserID: debitor,
			Parent:      req.Parent,
			Amount:      amount,
			Points:      req.Points,
			Status:      models.WithdrawalPending,
			Settlement:  models.SettlementReserved,
			EntryID:     entry.ID,
			BankAccount: *account,
		})
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrInsufficientWallet) {
			logger.Error("Failed to create withdrawal", zap.Error(err))
		}
		return nil, err
	}
	w := batch.Opened()
	logger.Infow("Withdrawal requested", "withdrawal", w.ID, "user", w.UserID, "points", w.Points)
	return w, nil
}

// Approve - подтверждение заявки администратором.
// Ручной путь списывает баллы сразу, автоматический - после подтверждения выплаты шлюзом.
func (s *Withdrawals) Approve(ctx context.Context, id string, admin string, manual bool) (*models.Withdrawal, error) {
	w, err := s.Storage.Withdrawals.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status != models.WithdrawalPending {
		return nil, models.ErrInvalidTransition
	}
	if err := s.checkFunding(ctx, w); err != nil {
		return nil, err
	}

	if manual {
		return s.commit(ctx, w, admin, models.WithdrawalApproved, nil)
	}
	return s.payout(ctx, w, admin)
}

// checkFunding повторно проверяет баланс плательщика. Нехватка у стороннего плательщика
// отменяет всю группу связанных заявок.
func (s *Withdrawals) checkFunding(ctx context.Context, w *models.Withdrawal) error {
	if w.Parent != nil {
		cancelled, err := s.Storage.Withdrawals.IsParentCancelled(ctx, *w.Parent)
		if err != nil {
			return err
		}
		if cancelled {
			return models.ErrGroupCancelled
		}
	}
	wallet, err := s.Storage.Wallets.GetWallet(ctx, w.Debitor())
	if err != nil {
		return err
	}
	if wallet.Points >= w.Points {
		return nil
	}
	if w.Parent == nil || w.Debitor() == w.UserID {
		return models.ErrInsufficientWallet
	}

	cause := fmt.Sprintf("funder %s has %d points, withdrawal %s needs %d", w.Debitor(), wallet.Points, w.ID, w.Points)
	if _, err := s.CancelGroup(ctx, *w.Parent, cause); err != nil {
		logger.Errorw("Cascade cancellation incomplete", "parent", w.Parent.ID, zap.Error(err))
	}
	return fmt.Errorf("%w: %w", models.ErrInsufficientWallet, models.ErrGroupCancelled)
}

// payout - автоматическая выплата через шлюз. Сетевые вызовы выполняются вне транзакции.
func (s *Withdrawals) payout(ctx context.Context, w *models.Withdrawal, admin string) (*models.Withdrawal, error) {
	balance, err := s.Gateway.GetBalance(ctx)
	if err != nil {
		return nil, err
	}
	if balance.Transferable.LessThan(w.Amount) {
		logger.Warnw("Gateway balance too low for payout", "withdrawal", w.ID,
			"transferable", balance.Transferable.String(), "amount", w.Amount.String())
		return nil, ErrGatewayBalanceLow
	}

	account, err := s.Storage.Wallets.GetBankAccount(ctx, w.UserID)
	if err != nil {
		return nil, err
	}
	recipientID, err := s.Gateway.CreateOrGetRecipient(ctx, client.RecipientRequest{
		RecipientID:   account.RecipientID,
		HolderName:    account.HolderName,
		Email:         account.Email,
		BankCode:      account.BankCode,
		AccountNumber: account.AccountNumber,
	})
	if err != nil {
		return nil, err
	}
	if recipientID != account.RecipientID {
		if err := s.Storage.Wallets.SaveRecipientID(ctx, w.UserID, recipientID); err != nil {
			logger.Errorw("Failed to save recipient", "user", w.UserID, "recipient", recipientID, zap.Error(err))
		}
	}

	recipient, err := s.Gateway.CheckRecipientStatus(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if !recipient.Ready() {
		return s.flagManual(ctx, w, admin, recipientID)
	}

	// идентификатор заявки - ключ идемпотентности: повторное подтверждение не создаст второй перевод
	transfer, err := s.Gateway.CreatePayout(ctx, w.Amount, recipientID, w.ID)
	if err != nil {
		logger.Warnw("Payout creation failed, withdrawal left pending", "withdrawal", w.ID, zap.Error(err))
		return nil, err
	}
	transferMeta := func(b *models.Batch) {
		b.Withdrawal.RecipientID = recipientID
		b.Withdrawal.TransferID = transfer.ID
		b.Withdrawal.TransferStatus = transferStatus(transfer)
	}

	if transfer.Done() {
		done, err := s.commit(ctx, w, admin, models.WithdrawalPaid, transferMeta)
		if err == nil {
			return done, nil
		}
		// деньги ушли, но списать баллы не удалось: фиксируем перевод для сверки
		logger.Errorw("Payout sent but points not committed", "withdrawal", w.ID, "transfer", transfer.ID, zap.Error(err))
		notice := models.OperatorNotice{
			Kind:         models.NoticeUncommitted,
			WithdrawalID: w.ID,
			UserID:       w.Debitor(),
			Amount:       w.Amount.StringFixed(2),
			Reason:       err.Error(),
			Timestamp:    s.Now().UTC(),
		}
		if err := s.Notifier.NotifyOperators(ctx, notice); err != nil {
			logger.Errorw("Failed to notify operators", "withdrawal", w.ID, zap.Error(err))
		}
	}

	batch, err := s.Storage.Ledger.Apply(ctx, storage.Scope{WithdrawalID: w.ID}, func(b *models.Batch) error {
		if err := b.Withdrawal.Advance(models.WithdrawalApproved, models.SettlementSettled); err != nil {
			return err
		}
		transferMeta(b)
		b.Withdrawal.ProcessedBy = admin
		b.TouchWithdrawal()
		return nil
	})
	if err != nil {
		logger.Errorw("Failed to record payout", "withdrawal", w.ID, "transfer", transfer.ID, zap.Error(err))
		return nil, err
	}
	logger.Infow("Payout in flight", "withdrawal", w.ID, "transfer", transfer.ID)
	return batch.Withdrawal, nil
}

// flagManual оставляет заявку ожидающей с признаком ручного перевода и уведомляет операторов
func (s *Withdrawals) flagManual(ctx context.Context, w *models.Withdrawal, admin string, recipientID string) (*models.Withdrawal, error) {
	batch, err := s.Storage.Ledger.Apply(ctx, storage.Scope{WithdrawalID: w.ID}, func(b *models.Batch) error {
		if b.Withdrawal.Status != models.WithdrawalPending {
			return models.ErrInvalidTransition
		}
		b.Withdrawal.RequiresManualTransfer = true
		b.Withdrawal.RecipientID = recipientID
		b.Withdrawal.Reason = models.ErrRecipientNotReady.Error()
		b.Withdrawal.ProcessedBy = admin
		b.TouchWithdrawal()
		return nil
	})
	if err != nil {
		return nil, err
	}
	flagged := batch.Withdrawal

	notice := models.OperatorNotice{
		Kind:         models.NoticeManualTransfer,
		WithdrawalID: flagged.ID,
		UserID:       flagged.UserID,
		Amount:       flagged.Amount.StringFixed(2),
		Reason:       models.ErrRecipientNotReady.Error(),
		Timestamp:    s.Now().UTC(),
	}
	if err := s.Notifier.NotifyOperators(ctx, notice); err != nil {
		logger.Errorw("Failed to notify operators", "withdrawal", flagged.ID, zap.Error(err))
	}
	logger.Warnw("Recipient not ready, manual transfer required", "withdrawal", flagged.ID, "recipient", recipientID)
	return flagged, models.ErrRecipientNotReady
}

// commit списывает баллы и завершает проводку заявки
func (s *Withdrawals) commit(ctx context.Context, w *models.Withdrawal, admin string, status models.WithdrawalStatus, update func(b *models.Batch)) (*models.Withdrawal, error) {
	scope := storage.Scope{WithdrawalID: w.ID, EntryID: w.EntryID, UserID: w.Debitor(), Pool: true}
	batch, err := s.Storage.Ledger.Apply(ctx, scope, func(b *models.Batch) error {
		if b.Withdrawal.Settlement == models.SettlementCommitted {
			return models.ErrAlreadyProcessed
		}
		if err := b.Withdrawal.Advance(status, models.SettlementCommitted); err != nil {
			return err
		}
		meta := map[string]string{models.MetaUpdatedBy: admin}
		if update != nil {
			update(b)
		}
		if b.Withdrawal.TransferID != "" {
			meta[models.MetaTransferID] = b.Withdrawal.TransferID
		} else {
			meta[models.MetaManual] = "true"
		}
		if err := b.Complete(models.PoolOpRefund, meta); err != nil {
			return err
		}
		b.Withdrawal.ProcessedBy = admin
		b.TouchWithdrawal()
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrAlreadyProcessed) {
			logger.Errorw("Failed to commit withdrawal", "withdrawal", w.ID, zap.Error(err))
		}
		return nil, err
	}
	logger.Infow("Withdrawal committed", "withdrawal", w.ID, "status", batch.Withdrawal.Status, "points", w.Points)
	return batch.Withdrawal, nil
}

// Reject отклоняет заявку; допустимо только из pending, баллы не списывались
func (s *Withdrawals) Reject(ctx context.Context, id string, admin string, reason string) (*models.Withdrawal, error) {
	w, err := s.Storage.Withdrawals.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reject(ctx, w, admin, reason)
}

func (s *Withdrawals) reject(ctx context.Context, w *models.Withdrawal, admin string, reason string) (*models.Withdrawal, error) {
	batch, err := s.Storage.Ledger.Apply(ctx, storage.Scope{WithdrawalID: w.ID, EntryID: w.EntryID}, func(b *models.Batch) error {
		if b.Withdrawal.Status != models.WithdrawalPending {
			return models.ErrInvalidTransition
		}
		if err := b.Withdrawal.Advance(models.WithdrawalRejected, models.SettlementReleased); err != nil {
			return err
		}
		if err := b.Fail(reason); err != nil {
			return err
		}
		b.Withdrawal.Reason = reason
		b.Withdrawal.ProcessedBy = admin
		b.TouchWithdrawal()
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("Withdrawal rejected", "withdrawal", w.ID, "admin", admin, "reason", reason)
	return batch.Withdrawal, nil
}

// MarkPaid - подтверждение перевода оператором
func (s *Withdrawals) MarkPaid(ctx context.Context, id string, admin string) (*models.Withdrawal, error) {
	w, err := s.Storage.Withdrawals.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case w.Status == models.WithdrawalPaid:
		return nil, models.ErrAlreadyProcessed
	case w.Settlement == models.SettlementCommitted:
		// ручной путь: баллы уже списаны
		batch, err := s.Storage.Ledger.Apply(ctx, storage.Scope{WithdrawalID: id}, func(b *models.Batch) error {
			if err := b.Withdrawal.Advance(models.WithdrawalPaid, models.SettlementCommitted); err != nil {
				return err
			}
			b.Withdrawal.ProcessedBy = admin
			b.TouchWithdrawal()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return batch.Withdrawal, nil
	case w.Status == models.WithdrawalPending:
		if err := s.checkFunding(ctx, w); err != nil {
			return nil, err
		}
	}
	return s.commit(ctx, w, admin, models.WithdrawalPaid, nil)
}

// ConfirmTransfer - асинхронное подтверждение выплаты. Статус перевода перепроверяется в шлюзе,
// баллы списываются только при первом наблюдении выплаты.
func (s *Withdrawals) ConfirmTransfer(ctx context.Context, transferID string) (*models.Withdrawal, error) {
	transfer, err := s.Gateway.GetTransferStatus(ctx, transferID)
	if err != nil {
		logger.Warnw("Failed to verify transfer", "transfer", transferID, zap.Error(err))
		return nil, err
	}
	w, err := s.Storage.Withdrawals.FindByTransferID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if !transfer.Done() {
		if transfer.FailureCode != "" {
			logger.Warnw("Transfer failed, operator action required", "withdrawal", w.ID,
				"transfer", transferID, "failure", transfer.FailureCode)
		}
		return w, nil
	}
	return s.commit(ctx, w, "gateway", models.WithdrawalPaid, func(b *models.Batch) {
		b.Withdrawal.TransferStatus = transferStatus(transfer)
	})
}

// List возвращает заявки пользователя
func (s *Withdrawals) List(ctx context.Context, userID string) ([]models.Withdrawal, error) {
	list, err := s.Storage.Withdrawals.ListUserWithdrawals(ctx, userID)
	if err != nil {
		logger.Error("Failed to get withdrawals", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func transferStatus(t *client.Transfer) string {
	switch {
	case t.Paid:
		return "paid"
	case t.Sent:
		return "sent"
	case t.FailureCode != "":
		return "failed"
	}
	return "pending"
}
