package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus - статус заявки на вывод, видимый пользователю
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalPaid     WithdrawalStatus = "paid"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// SettlementState - состояние расчёта по заявке.
// reserved - баллы удерживаются логически, settled - выплата отправлена и ждёт подтверждения,
// committed - баллы списаны и проводка завершена, released - удержание снято.
type SettlementState string

const (
	SettlementReserved  SettlementState = "reserved"
	SettlementSettled   SettlementState = "settled"
	SettlementCommitted SettlementState = "committed"
	SettlementReleased  SettlementState = "released"
)

var withdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalPending:  {WithdrawalApproved, WithdrawalPaid, WithdrawalRejected},
	WithdrawalApproved: {WithdrawalPaid},
}

var settlementTransitions = map[SettlementState][]SettlementState{
	SettlementReserved: {SettlementSettled, SettlementCommitted, SettlementReleased},
	SettlementSettled:  {SettlementCommitted},
}

// BankAccount - банковский счёт пользователя для выплат
type BankAccount struct {
	UserID        string `json:"userId"`
	BankCode      string `json:"bankCode"`
	AccountNumber string `json:"accountNumber"`
	HolderName    string `json:"holderName"`
	Email         string `json:"email"`
	Verified      bool   `json:"verified"`
	RecipientID   string `json:"-"`
}

// Withdrawal - заявка на вывод баллов в деньги
type Withdrawal struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	// пользователь, с кошелька которого списываются баллы (владелец квеста или сам пользователь)
	DebitUserID string           `json:"debitUserId"`
	Parent      *EntityRef       `json:"parent,omitempty"`
	Amount      decimal.Decimal  `json:"amount"`
	Points      int64            `json:"pointsUsed"`
	Status      WithdrawalStatus `json:"status"`
	Settlement  SettlementState  `json:"settlement"`
	EntryID     string           `json:"entryId"`
	BankAccount BankAccount      `json:"bankAccount"`

	RecipientID            string `json:"recipientId,omitempty"`
	TransferID             string `json:"transferId,omitempty"`
	TransferStatus         string `json:"transferStatus,omitempty"`
	RequiresManualTransfer bool   `json:"requiresManualTransfer"`
	Reason                 string `json:"reason,omitempty"`
	ProcessedBy            string `json:"processedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Advance переводит заявку в новые состояния, проверяя допустимость переходов
func (w *Withdrawal) Advance(status WithdrawalStatus, settlement SettlementState) error {
	if status != w.Status && !allowed(withdrawalTransitions[w.Status], status) {
		return ErrInvalidTransition
	}
	if settlement != w.Settlement && !allowed(settlementTransitions[w.Settlement], settlement) {
		return ErrInvalidTransition
	}
	w.Status = status
	w.Settlement = settlement
	return nil
}

// Debitor возвращает владельца кошелька, с которого списываются баллы
func (w *Withdrawal) Debitor() string {
	if w.DebitUserID != "" {
		return w.DebitUserID
	}
	return w.UserID
}

func allowed[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
