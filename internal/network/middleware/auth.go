package middleware

import (
	"net/http"

	"github.com/denmor86/ya-questpoints/internal/helpers"
	"github.com/denmor86/ya-questpoints/internal/logger"
)

// RequireAdmin пропускает только запросы с ролью администратора в токене
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !helpers.IsAdmin(r.Context()) {
			logger.Warnw("Admin access denied", "uri", r.RequestURI)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
