package models

import (
	"regexp"
	"time"
)

// EntryType - тип проводки в журнале баллов
type EntryType string

const (
	EntryClaim             EntryType = "claim"
	EntryRefund            EntryType = "refund"
	EntryAdjustment        EntryType = "adjustment"
	EntryNewUser           EntryType = "new_user"
	EntryTouristQuest      EntryType = "tourist_quest"
	EntryAdminAdjustment   EntryType = "admin_adjustment"
	EntryStreakMilestone   EntryType = "streak_milestone"
	EntryJobApplicationFee EntryType = "job_application_fee"
	EntryJobCommissionFee  EntryType = "job_commission_fee"
	EntryReward            EntryType = "reward"
	EntryDeduction         EntryType = "deduction"
	EntryOrderDelivery     EntryType = "order_delivery"
	EntryBuy               EntryType = "buy"
	EntryWithdraw          EntryType = "withdraw"
)

// Valid проверяет, что тип проводки известен
func (t EntryType) Valid() bool {
	switch t {
	case EntryClaim, EntryRefund, EntryAdjustment, EntryNewUser, EntryTouristQuest,
		EntryAdminAdjustment, EntryStreakMilestone, EntryJobApplicationFee, EntryJobCommissionFee,
		EntryReward, EntryDeduction, EntryOrderDelivery, EntryBuy, EntryWithdraw:
		return true
	}
	return false
}

// EntryStatus - статус проводки
type EntryStatus string

const (
	EntryCompleted EntryStatus = "completed"
	EntryPending   EntryStatus = "pending"
	EntryFailed    EntryStatus = "failed"
	EntryRefunded  EntryStatus = "refunded"
)

// EntityKind - тип связанной сущности
type EntityKind string

const (
	EntityQuest      EntityKind = "quest"
	EntityJob        EntityKind = "job"
	EntityOrder      EntityKind = "order"
	EntityWithdrawal EntityKind = "withdrawal"
	EntityPurchase   EntityKind = "purchase"
)

// EntityRef - ссылка на сущность другого домена (тип + идентификатор)
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

// Ключи метаданных проводки
const (
	MetaChargeID     = "charge_id"
	MetaTransferID   = "transfer_id"
	MetaReason       = "reason"
	MetaAmount       = "amount"
	MetaUpdatedBy    = "updated_by"
	MetaMilestone    = "milestone"
	MetaMultiplier   = "multiplier"
	MetaManual       = "manual"
	MetaChargeStatus = "charge_status"
	MetaStale        = "stale"
)

// LedgerEntry - запись журнала о движении баллов.
// Amount > 0 - пользователь получает баллы, Amount < 0 - платит.
// Пустой UserID означает проводку только по пулу.
type LedgerEntry struct {
	ID              string            `json:"id"`
	Type            EntryType         `json:"type"`
	Amount          int64             `json:"amount"`
	UserID          string            `json:"userId,omitempty"`
	Related         *EntityRef        `json:"relatedEntity,omitempty"`
	RemainingPoints int64             `json:"remainingPoints"`
	PoolState       *PoolSnapshot     `json:"poolStateSnapshot,omitempty"`
	Status          EntryStatus       `json:"status"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// Meta возвращает значение метаданных по ключу
func (e *LedgerEntry) Meta(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}

// SetMeta записывает значение метаданных
func (e *LedgerEntry) SetMeta(key, value string) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
}

// WalletDrift - расхождение баланса кошелька с суммой завершённых проводок
type WalletDrift struct {
	UserID       string `json:"userId"`
	WalletPoints int64  `json:"walletPoints"`
	LedgerPoints int64  `json:"ledgerPoints"`
}

var purchaseReturnPattern = regexp.MustCompile(`/purchases/([0-9a-fA-F-]{36})(?:/|$|\?)`)

// PurchaseEntryIDFromReturn извлекает идентификатор проводки покупки из адреса возврата
func PurchaseEntryIDFromReturn(returnURI string) (string, bool) {
	matches := purchaseReturnPattern.FindStringSubmatch(returnURI)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}
