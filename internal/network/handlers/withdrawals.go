package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/denmor86/ya-questpoints/internal/helpers"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/services"
	"github.com/denmor86/ya-questpoints/internal/validators"
	"go.uber.org/zap"
)

// WithdrawRequest - запрос на вывод баллов
type WithdrawRequest struct {
	Points int64 `json:"points"`
}

// WithdrawHandler - заявка на вывод баллов
func WithdrawHandler(s services.WithdrawalService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := helpers.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		var req WithdrawRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("Invalid request format:", zap.Error(err))
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}
		if err := validators.CheckPoints(req.Points); err != nil {
			writeError(w, err)
			return
		}
		withdrawal, err := s.Request(r.Context(), services.WithdrawalRequest{
			UserID: userID,
			Points: req.Points,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusCreated, withdrawal)
	})
}

// GetWithdrawalsHandler - заявки пользователя на вывод
func GetWithdrawalsHandler(s services.WithdrawalService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := helpers.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		withdrawals, err := s.List(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		if len(withdrawals) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, withdrawals)
	})
}
