package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var errNotLocked = errors.New("batch: row is not locked")

// Batch - единица работы над баллами.
// Хранилище загружает и блокирует строки, сервис меняет баланс и пул только через методы Batch,
// после чего хранилище сохраняет все изменения одной транзакцией.
// Баланс кошелька меняется исключительно вместе с завершённой проводкой.
type Batch struct {
	Now          time.Time
	Wallet       *Wallet
	Pool         *PointPool
	Pending      *LedgerEntry
	Withdrawal   *Withdrawal
	PendingHolds int64

	entries           []LedgerEntry
	opened            *Withdrawal
	walletChanged     bool
	poolChanged       bool
	pendingChanged    bool
	withdrawalChanged bool
}

// NewBatch создаёт пустую единицу работы
func NewBatch(now time.Time) *Batch {
	return &Batch{Now: now}
}

// Post создаёт завершённую проводку, применяя операцию над пулом и изменение кошелька.
// Либо применяется всё, либо ничего.
func (b *Batch) Post(entry LedgerEntry, op PoolOp) (LedgerEntry, error) {
	if !entry.Type.Valid() {
		return LedgerEntry{}, fmt.Errorf("unknown entry type %q", entry.Type)
	}
	if entry.Amount == 0 {
		return LedgerEntry{}, ErrAmountInvalid
	}
	if err := b.apply(entry.UserID, entry.Amount, op); err != nil {
		return LedgerEntry{}, err
	}
	entry.Status = EntryCompleted
	b.stamp(&entry)
	b.entries = append(b.entries, entry)
	return entry, nil
}

// PostPending создаёт ожидающую проводку без изменения баланса
func (b *Batch) PostPending(entry LedgerEntry) (LedgerEntry, error) {
	if !entry.Type.Valid() {
		return LedgerEntry{}, fmt.Errorf("unknown entry type %q", entry.Type)
	}
	if entry.Amount == 0 {
		return LedgerEntry{}, ErrAmountInvalid
	}
	entry.Status = EntryPending
	b.stamp(&entry)
	entry.PoolState = nil
	b.entries = append(b.entries, entry)
	return entry, nil
}

// Complete завершает заблокированную ожидающую проводку.
// Повторное завершение возвращает ErrAlreadyProcessed.
func (b *Batch) Complete(op PoolOp, meta map[string]string) error {
	if b.Pending == nil {
		return errNotLocked
	}
	if b.Pending.Status != EntryPending {
		return ErrAlreadyProcessed
	}
	if err := b.apply(b.Pending.UserID, b.Pending.Amount, op); err != nil {
		return err
	}
	for k, v := range meta {
		b.Pending.SetMeta(k, v)
	}
	b.Pending.Status = EntryCompleted
	b.stamp(b.Pending)
	b.pendingChanged = true
	return nil
}

// Fail отмечает ожидающую проводку неуспешной, баланс не меняется
func (b *Batch) Fail(reason string) error {
	if b.Pending == nil {
		return errNotLocked
	}
	if b.Pending.Status != EntryPending {
		return ErrAlreadyProcessed
	}
	b.Pending.Status = EntryFailed
	b.Pending.SetMeta(MetaReason, reason)
	b.Pending.UpdatedAt = b.Now
	b.pendingChanged = true
	return nil
}

// Annotate дополняет метаданные ожидающей проводки (идентификаторы шлюза)
func (b *Batch) Annotate(key, value string) error {
	if b.Pending == nil {
		return errNotLocked
	}
	if b.Pending.Status != EntryPending {
		return ErrAlreadyProcessed
	}
	b.Pending.SetMeta(key, value)
	b.Pending.UpdatedAt = b.Now
	b.pendingChanged = true
	return nil
}

// OpenWithdrawal регистрирует новую заявку на вывод
func (b *Batch) OpenWithdrawal(w Withdrawal) *Withdrawal {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	w.CreatedAt = b.Now
	w.UpdatedAt = b.Now
	b.opened = &w
	return b.opened
}

// TouchWallet отмечает изменение учётных полей кошелька (серия, квесты)
func (b *Batch) TouchWallet() { b.walletChanged = b.Wallet != nil }

// TouchPool отмечает изменение настроек пула
func (b *Batch) TouchPool() {
	if b.Pool != nil {
		b.Pool.LastUpdated = b.Now
		b.poolChanged = true
	}
}

// TouchWithdrawal отмечает изменение заблокированной заявки
func (b *Batch) TouchWithdrawal() {
	if b.Withdrawal != nil {
		b.Withdrawal.UpdatedAt = b.Now
		b.withdrawalChanged = true
	}
}

// Entries возвращает новые проводки в порядке создания
func (b *Batch) Entries() []LedgerEntry { return b.entries }

// Opened возвращает новую заявку на вывод, если она создана
func (b *Batch) Opened() *Withdrawal { return b.opened }

func (b *Batch) WalletChanged() bool { return b.walletChanged }

func (b *Batch) PoolChanged() bool { return b.poolChanged }

func (b *Batch) PendingChanged() bool { return b.pendingChanged }

func (b *Batch) WithdrawalChanged() bool { return b.withdrawalChanged }

func (b *Batch) apply(userID string, amount int64, op PoolOp) error {
	var pool PointPool
	if op != PoolOpNone {
		if b.Pool == nil {
			return errNotLocked
		}
		pool = *b.Pool
		if err := pool.Apply(op, abs(amount)); err != nil {
			return err
		}
	}
	var points int64
	if userID != "" {
		if b.Wallet == nil || b.Wallet.UserID != userID {
			return errNotLocked
		}
		points = b.Wallet.Points + amount
		if points < 0 {
			return ErrInsufficientWallet
		}
	}

	if op != PoolOpNone {
		pool.LastUpdated = b.Now
		*b.Pool = pool
		b.poolChanged = true
	}
	if userID != "" {
		b.Wallet.Points = points
		b.walletChanged = true
	}
	return nil
}

func (b *Batch) stamp(e *LedgerEntry) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = b.Now
	}
	e.UpdatedAt = b.Now
	if e.UserID != "" && b.Wallet != nil && b.Wallet.UserID == e.UserID {
		e.RemainingPoints = b.Wallet.Points
	}
	if b.Pool != nil {
		snapshot := b.Pool.Snapshot()
		e.PoolState = &snapshot
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
