package services

//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks

import (
	"context"

	"github.com/denmor86/ya-questpoints/internal/models"
)

// Notifier доставляет операторам уведомления о заявках, требующих ручного перевода
type Notifier interface {
	NotifyOperators(ctx context.Context, notice models.OperatorNotice) error
}
