package handlers

import (
	"net/http"

	"github.com/denmor86/ya-questpoints/internal/helpers"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TodayQuestsHandler - дневной набор квестов пользователя
func TodayQuestsHandler(s services.QuestService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := helpers.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		today, err := s.TodayQuests(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, today)
	})
}

// CompleteQuestHandler - выполнение квеста
func CompleteQuestHandler(s services.QuestService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := helpers.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		questID := chi.URLParam(r, "id")
		result, err := s.CompleteQuest(r.Context(), userID, questID)
		if err != nil {
			logger.Warn("Quest not completed:", questID, zap.Error(err))
			writeError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, result)
	})
}
