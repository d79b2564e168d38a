package handlers

import (
	"io"
	"net/http"

	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/services"
	"go.uber.org/zap"
)

// максимальный размер тела события шлюза
const maxWebhookBody = 1 << 20

// GatewayWebhookHandler - событие платёжного шлюза.
// Тело события служит только подсказкой: статус перепроверяется в шлюзе перед применением.
func GatewayWebhookHandler(d services.EventDispatcher) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil || len(body) == 0 {
			logger.Warn("Invalid body:", zap.Error(err))
			http.Error(w, "Invalid body format", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := r.Body.Close(); err != nil {
				logger.Error("Error to close body:", zap.Error(err))
			}
		}()

		event, err := services.ParseEvent(body)
		if err != nil {
			logger.Warn("Unknown gateway event:", zap.Error(err))
			// неизвестные события подтверждаются, чтобы шлюз не повторял их
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := d.Dispatch(r.Context(), event); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
