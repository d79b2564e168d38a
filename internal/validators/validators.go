package validators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidID     = errors.New("invalid identifier")
	ErrInvalidPoints = errors.New("points must be positive")
	ErrInvalidReason = errors.New("reason is required")
	ErrInvalidRef    = errors.New("invalid related entity")
)

// максимальное количество баллов в одной операции
const MaxPoints = 1_000_000_000

// CheckID проверяет идентификатор в формате UUID
func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return nil
}

// CheckPoints проверяет количество баллов
func CheckPoints(points int64) error {
	if points <= 0 || points > MaxPoints {
		return ErrInvalidPoints
	}
	return nil
}

// CheckDelta проверяет ручную корректировку: ненулевая, с указанием причины
func CheckDelta(delta int64, reason string) error {
	if delta == 0 || delta > MaxPoints || delta < -MaxPoints {
		return ErrInvalidPoints
	}
	if strings.TrimSpace(reason) == "" {
		return ErrInvalidReason
	}
	return nil
}

// CheckEntityRef проверяет ссылку на связанную сущность
func CheckEntityRef(ref *models.EntityRef) error {
	if ref == nil {
		return nil
	}
	switch ref.Kind {
	case models.EntityQuest, models.EntityJob, models.EntityOrder, models.EntityWithdrawal, models.EntityPurchase:
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidRef, ref.Kind)
	}
	if strings.TrimSpace(ref.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRef)
	}
	return nil
}
