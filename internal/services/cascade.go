package services

import (
	"context"
	"errors"

	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"go.uber.org/zap"
)

// автор отклонения при каскадной отмене
const cascadeActor = "cascade"

// CancelGroup - компенсирующий шаг саги: отменяет родительскую сущность и отклоняет
// все ожидающие заявки, привязанные к ней. Причина пишется в каждую заявку.
// Возвращает идентификаторы отклонённых заявок.
func (s *Withdrawals) CancelGroup(ctx context.Context, parent models.EntityRef, cause string) ([]string, error) {
	if err := s.Storage.Withdrawals.CancelParent(ctx, parent, cause); err != nil {
		logger.Error("Failed to cancel parent", zap.Error(err))
		return nil, err
	}
	siblings, err := s.Storage.Withdrawals.ListByParent(ctx, parent, models.WithdrawalPending)
	if err != nil {
		logger.Error("Failed to list dependent withdrawals", zap.Error(err))
		return nil, err
	}

	reason := "cascade: " + cause
	var (
		rejected []string
		errs     []error
	)
	for i := range siblings {
		w := &siblings[i]
		if _, err := s.reject(ctx, w, cascadeActor, reason); err != nil {
			// заявку успели обработать параллельно
			if errors.Is(err, models.ErrInvalidTransition) || errors.Is(err, models.ErrAlreadyProcessed) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		logger.Warnw("Withdrawal rejected by cascade", "withdrawal", w.ID,
			"parent_kind", parent.Kind, "parent", parent.ID, "cause", cause)
		rejected = append(rejected, w.ID)
	}
	return rejected, errors.Join(errs...)
}
