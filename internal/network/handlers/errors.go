package handlers

import (
	"errors"
	"net/http"

	"github.com/denmor86/ya-questpoints/internal/client"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/services"
	"github.com/denmor86/ya-questpoints/internal/storage"
	"github.com/denmor86/ya-questpoints/internal/validators"
	"go.uber.org/zap"
)

// StatusOf возвращает HTTP-статус для ошибки сервиса
func StatusOf(err error) int {
	var rateLimit *client.RateLimitError
	switch {
	case errors.Is(err, models.ErrAlreadyProcessed):
		return http.StatusOK
	case errors.Is(err, models.ErrRecipientNotReady):
		return http.StatusAccepted
	case errors.Is(err, models.ErrAmountInvalid),
		errors.Is(err, validators.ErrInvalidID),
		errors.Is(err, validators.ErrInvalidPoints),
		errors.Is(err, validators.ErrInvalidReason),
		errors.Is(err, validators.ErrInvalidRef),
		errors.Is(err, services.ErrUnsupportedEntryType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInsufficientWallet),
		errors.Is(err, models.ErrInsufficientPool):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrBankAccountNotVerified),
		errors.Is(err, services.ErrFundingNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, models.ErrAlreadyCompletedToday),
		errors.Is(err, models.ErrOverRefund),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrGroupCancelled),
		errors.Is(err, services.ErrChargeMismatch):
		return http.StatusConflict
	case errors.Is(err, models.ErrQuestNotAvailable),
		errors.Is(err, storage.ErrEntryNotFound),
		errors.Is(err, storage.ErrWithdrawalNotFound),
		errors.Is(err, storage.ErrQuestNotFound),
		errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrBankAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnknownEvent):
		return http.StatusBadRequest
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, models.ErrGatewayUnavailable),
		errors.Is(err, services.ErrGatewayBalanceLow),
		errors.Is(err, client.ErrBadRequest):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError пишет ответ с кодом, соответствующим ошибке
func writeError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed:", zap.Error(err))
		http.Error(w, "Internal Server Error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
