package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/denmor86/ya-questpoints/internal/helpers"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/services"
	"github.com/denmor86/ya-questpoints/internal/validators"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type (
	// AddPointsRequest - пополнение пула
	AddPointsRequest struct {
		Amount int64 `json:"amount"`
	}

	// PoolSettingsRequest - настройки разовых начислений
	PoolSettingsRequest struct {
		NewUserPoints      int64 `json:"newUserPoints"`
		TouristQuestPoints int64 `json:"touristQuestPoints"`
	}

	// AdjustRequest - ручная корректировка баланса
	AdjustRequest struct {
		Delta  int64  `json:"delta"`
		Reason string `json:"reason"`
	}

	// PostingRequest - проводка указанного типа (выдача из пула, возврат, комиссия)
	PostingRequest struct {
		Type    models.EntryType  `json:"type"`
		Amount  int64             `json:"amount"`
		Related *models.EntityRef `json:"relatedEntity,omitempty"`
	}

	// ApproveRequest - подтверждение заявки на вывод
	ApproveRequest struct {
		Manual bool `json:"manual"`
	}

	// RejectRequest - отклонение заявки на вывод
	RejectRequest struct {
		Reason string `json:"reason"`
	}

	// FundedWithdrawRequest - вывод, оплачиваемый другим пользователем в рамках родительской сущности
	FundedWithdrawRequest struct {
		UserID   string           `json:"userId"`
		FunderID string           `json:"funderId"`
		Points   int64            `json:"points"`
		Parent   models.EntityRef `json:"parent"`
	}

	// CascadeRequest - отмена родительской сущности со всеми связанными заявками
	CascadeRequest struct {
		Parent models.EntityRef `json:"parent"`
		Cause  string           `json:"cause"`
	}
)

// decode разбирает тело запроса; при ошибке пишет 400
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Warn("Invalid request format:", zap.Error(err))
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return false
	}
	return true
}

// adminID - идентификатор администратора из токена
func adminID(r *http.Request) string {
	id, err := helpers.GetUserID(r.Context())
	if err != nil {
		return "admin"
	}
	return id
}

// respond пишет результат операции; повторная обработка не считается ошибкой
func respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, v)
}

// AddPointsHandler - пополнение пула баллов
func AddPointsHandler(s services.PoolService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req AddPointsRequest
		if !decode(w, r, &req) {
			return
		}
		if err := validators.CheckPoints(req.Amount); err != nil {
			writeError(w, err)
			return
		}
		entry, err := s.AddPoints(r.Context(), req.Amount, adminID(r))
		respond(w, entry, err)
	})
}

// PoolSettingsHandler - изменение настроек пула
func PoolSettingsHandler(s services.PoolService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req PoolSettingsRequest
		if !decode(w, r, &req) {
			return
		}
		pool, err := s.UpdateSettings(r.Context(), req.NewUserPoints, req.TouristQuestPoints, adminID(r))
		respond(w, pool, err)
	})
}

// AdjustUserHandler - ручная корректировка баланса пользователя
func AdjustUserHandler(s services.PoolService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req AdjustRequest
		if !decode(w, r, &req) {
			return
		}
		if err := validators.CheckDelta(req.Delta, req.Reason); err != nil {
			writeError(w, err)
			return
		}
		entry, err := s.AdjustUser(r.Context(), chi.URLParam(r, "userID"), req.Delta, adminID(r), req.Reason)
		respond(w, entry, err)
	})
}

// GrantNewUserHandler - приветственное начисление
func GrantNewUserHandler(s services.PoolService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry, err := s.GrantNewUser(r.Context(), chi.URLParam(r, "userID"))
		respond(w, entry, err)
	})
}

// GrantTouristQuestHandler - начисление за туристический квест
func GrantTouristQuestHandler(s services.PoolService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry, err := s.GrantTouristQuest(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "questID"))
		respond(w, entry, err)
	})
}

// PostingHandler - проводка по пулу: use выдаёт баллы из резерва, refund и fee возвращают их в пул
func PostingHandler(s services.PoolService, kind string) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req PostingRequest
		if !decode(w, r, &req) {
			return
		}
		if err := validators.CheckPoints(req.Amount); err != nil {
			writeError(w, err)
			return
		}
		if err := validators.CheckEntityRef(req.Related); err != nil {
			writeError(w, err)
			return
		}
		if !req.Type.Valid() {
			writeError(w, services.ErrUnsupportedEntryType)
			return
		}
		userID := chi.URLParam(r, "userID")

		var (
			entry *models.LedgerEntry
			err   error
		)
		switch kind {
		case "use":
			entry, err = s.UsePoints(r.Context(), userID, req.Amount, req.Type, req.Related)
		case "refund":
			entry, err = s.RefundPoints(r.Context(), userID, req.Amount, req.Type, req.Related)
		default:
			entry, err = s.ChargeFee(r.Context(), userID, req.Type, req.Amount, req.Related)
		}
		respond(w, entry, err)
	})
}

// ApproveWithdrawalHandler - подтверждение заявки на вывод
func ApproveWithdrawalHandler(s services.WithdrawalService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ApproveRequest
		if r.ContentLength > 0 && !decode(w, r, &req) {
			return
		}
		withdrawal, err := s.Approve(r.Context(), chi.URLParam(r, "id"), adminID(r), req.Manual)
		if withdrawal != nil && err != nil {
			// заявка оставлена для ручного перевода
			helpers.WriteJSON(w, StatusOf(err), withdrawal)
			return
		}
		respond(w, withdrawal, err)
	})
}

// FundedWithdrawHandler - заявка на вывод за счёт плательщика, открываемая оператором
func FundedWithdrawHandler(s services.WithdrawalService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req FundedWithdrawRequest
		if !decode(w, r, &req) {
			return
		}
		if req.UserID == "" || req.FunderID == "" {
			writeError(w, validators.ErrInvalidID)
			return
		}
		if err := validators.CheckPoints(req.Points); err != nil {
			writeError(w, err)
			return
		}
		if err := validators.CheckEntityRef(&req.Parent); err != nil {
			writeError(w, err)
			return
		}
		withdrawal, err := s.RequestFunded(r.Context(), services.WithdrawalRequest{
			UserID:   req.UserID,
			Points:   req.Points,
			FunderID: req.FunderID,
			Parent:   &req.Parent,
		}, adminID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusCreated, withdrawal)
	})
}

// RejectWithdrawalHandler - отклонение заявки на вывод
func RejectWithdrawalHandler(s services.WithdrawalService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RejectRequest
		if !decode(w, r, &req) {
			return
		}
		withdrawal, err := s.Reject(r.Context(), chi.URLParam(r, "id"), adminID(r), req.Reason)
		respond(w, withdrawal, err)
	})
}

// MarkPaidHandler - подтверждение перевода оператором
func MarkPaidHandler(s services.WithdrawalService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		withdrawal, err := s.MarkPaid(r.Context(), chi.URLParam(r, "id"), adminID(r))
		respond(w, withdrawal, err)
	})
}

// CascadeHandler - отмена родительской сущности
func CascadeHandler(s services.WithdrawalService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CascadeRequest
		if !decode(w, r, &req) {
			return
		}
		if err := validators.CheckEntityRef(&req.Parent); err != nil {
			writeError(w, err)
			return
		}
		if req.Cause == "" {
			writeError(w, validators.ErrInvalidReason)
			return
		}
		rejected, err := s.CancelGroup(r.Context(), req.Parent, req.Cause)
		if err != nil && len(rejected) == 0 {
			writeError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, map[string]any{"rejected": rejected})
	})
}

// AuditHandler - сверка кошельков с журналом
func AuditHandler(s services.AuditService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		repair := r.URL.Query().Get("repair") == "true"
		drift, err := s.VerifyWallets(r.Context(), repair)
		respond(w, drift, err)
	})
}
