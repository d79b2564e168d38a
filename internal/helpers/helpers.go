package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

// имена утверждений JWT токена
const (
	ClaimUserID = "user_id"
	ClaimRole   = "role"
	RoleAdmin   = "admin"
)

var ErrUndefinedUser = errors.New("undefined user")

// GetUserID - извлекает идентификатор пользователя из контекста JWT токена
func GetUserID(ctx context.Context) (string, error) {
	_, claims, _ := jwtauth.FromContext(ctx)
	userID, ok := claims[ClaimUserID].(string)
	if !ok || userID == "" {
		logger.Warn("Undefined user id from token")
		return "", ErrUndefinedUser
	}
	return userID, nil
}

// IsAdmin - проверяет роль администратора в токене
func IsAdmin(ctx context.Context) bool {
	_, claims, _ := jwtauth.FromContext(ctx)
	role, _ := claims[ClaimRole].(string)
	return role == RoleAdmin
}

// WriteJSON - записывает ответ в формате JSON
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode JSON response:", zap.Error(err))
	}
}

// QueryInt - целочисленный параметр запроса или значение по умолчанию
func QueryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}
