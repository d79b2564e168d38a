package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/denmor86/ya-questpoints/internal/helpers"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/services"
	"github.com/denmor86/ya-questpoints/internal/validators"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PurchaseRequest - запрос на покупку баллов
type PurchaseRequest struct {
	Points int64 `json:"points"`
}

// GetPoolHandler - состояние пула баллов
func GetPoolHandler(s services.PoolService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pool, err := s.GetPool(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, pool)
	})
}

// HistoryHandler - журнал проводок пользователя
func HistoryHandler(s services.PoolService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := helpers.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		entries, err := s.History(r.Context(), userID, helpers.QueryInt(r, "limit", 50), helpers.QueryInt(r, "offset", 0))
		if err != nil {
			writeError(w, err)
			return
		}
		if len(entries) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, entries)
	})
}

// InitiatePurchaseHandler - создание покупки баллов
func InitiatePurchaseHandler(s services.PurchaseService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := helpers.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		var req PurchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("Invalid request format:", zap.Error(err))
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}
		if err := validators.CheckPoints(req.Points); err != nil {
			writeError(w, err)
			return
		}
		purchase, err := s.Initiate(r.Context(), userID, req.Points)
		if err != nil {
			writeError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusCreated, purchase)
	})
}

// VerifyPurchaseHandler - проверка статуса покупки
func VerifyPurchaseHandler(s services.PurchaseService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := helpers.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		id := chi.URLParam(r, "id")
		if err := validators.CheckID(id); err != nil {
			writeError(w, err)
			return
		}
		purchase, err := s.Verify(r.Context(), userID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, purchase)
	})
}

// PurchaseReturnHandler - возврат пользователя со страницы оплаты.
// Параметрам запроса не доверяем: покупка завершается только после проверки платежа в шлюзе.
func PurchaseReturnHandler(s services.PurchaseService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := validators.CheckID(id); err != nil {
			writeError(w, err)
			return
		}
		purchase, err := s.Return(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, purchase)
	})
}
