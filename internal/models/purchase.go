package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase - покупка баллов за деньги (ожидающая проводка типа buy)
type Purchase struct {
	EntryID      string          `json:"id"`
	UserID       string          `json:"userId"`
	Points       int64           `json:"points"`
	Amount       decimal.Decimal `json:"amount"`
	ChargeID     string          `json:"chargeId,omitempty"`
	AuthorizeURI string          `json:"authorizeUri,omitempty"`
	Status       EntryStatus     `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PurchaseFromEntry собирает покупку из проводки журнала
func PurchaseFromEntry(e LedgerEntry) Purchase {
	amount, _ := decimal.NewFromString(e.Meta(MetaAmount))
	return Purchase{
		EntryID:   e.ID,
		UserID:    e.UserID,
		Points:    e.Amount,
		Amount:    amount,
		ChargeID:  e.Meta(MetaChargeID),
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
	}
}

// EventKind - вид события платёжного шлюза
type EventKind string

const (
	EventCharge   EventKind = "charge"
	EventTransfer EventKind = "transfer"
)

// GatewayEvent - входящее событие шлюза. Статус из события не используется без повторной проверки.
type GatewayEvent struct {
	Kind     EventKind `json:"eventKind"`
	ObjectID string    `json:"id"`
	Status   string    `json:"status"`
}

// ReconcileReport - итог прохода сверки ожидающих операций
type ReconcileReport struct {
	Processed int `json:"processed"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Deferred  int `json:"deferred"`
	// покупки без платежа, переданные операторам
	Stale int `json:"stale"`
}

// Count учитывает итоговый статус покупки
func (r *ReconcileReport) Count(status EntryStatus) {
	switch status {
	case EntryCompleted:
		r.Completed++
	case EntryFailed:
		r.Failed++
	default:
		r.Deferred++
	}
}

// Виды уведомлений операторов
const (
	NoticeManualTransfer = "manual_transfer_required"
	NoticeUncommitted    = "payout_not_committed"
)

// OperatorNotice - уведомление операторов о необходимости ручного действия
type OperatorNotice struct {
	Kind         string    `json:"kind"`
	WithdrawalID string    `json:"withdrawalId"`
	UserID       string    `json:"userId"`
	Amount       string    `json:"amount"`
	Reason       string    `json:"reason"`
	Timestamp    time.Time `json:"timestamp"`
}
