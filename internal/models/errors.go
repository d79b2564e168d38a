package models

import "errors"

// Ошибки предметной области экономики баллов
var (
	ErrAmountInvalid          = errors.New("amount must be positive")
	ErrInsufficientPool       = errors.New("insufficient points in pool")
	ErrInsufficientWallet     = errors.New("insufficient points in wallet")
	ErrOverRefund             = errors.New("refund exceeds used pool points")
	ErrAlreadyCompletedToday  = errors.New("quest already completed today")
	ErrAlreadyProcessed       = errors.New("already processed")
	ErrRecipientNotReady      = errors.New("gateway recipient is not ready for transfers")
	ErrGatewayUnavailable     = errors.New("payment gateway unavailable")
	ErrInvalidTransition      = errors.New("invalid state transition")
	ErrBankAccountNotVerified = errors.New("bank account is not verified")
	ErrQuestNotAvailable      = errors.New("quest is not in today's set")
	ErrGroupCancelled         = errors.New("parent entity cancelled")
)
