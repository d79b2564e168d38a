package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"go.uber.org/zap"
)

var ErrUnknownEvent = errors.New("unknown gateway event")

type EventDispatcher interface {
	Dispatch(ctx context.Context, event models.GatewayEvent) error
}

// Dispatcher направляет события шлюза (вебхук и брокер) в идемпотентные процедуры завершения
type Dispatcher struct {
	Purchases   PurchaseService
	Withdrawals WithdrawalService
}

// Создание диспетчера
func NewDispatcher(purchases PurchaseService, withdrawals WithdrawalService) *Dispatcher {
	return &Dispatcher{Purchases: purchases, Withdrawals: withdrawals}
}

// Dispatch обрабатывает событие; повторная доставка не является ошибкой
func (d *Dispatcher) Dispatch(ctx context.Context, event models.GatewayEvent) error {
	if event.ObjectID == "" {
		return fmt.Errorf("%w: empty object id", ErrUnknownEvent)
	}
	var err error
	switch event.Kind {
	case models.EventCharge:
		_, err = d.Purchases.HandleChargeEvent(ctx, event.ObjectID)
	case models.EventTransfer:
		_, err = d.Withdrawals.ConfirmTransfer(ctx, event.ObjectID)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event.Kind)
	}
	if errors.Is(err, models.ErrAlreadyProcessed) {
		logger.Debugw("Gateway event already processed", "kind", event.Kind, "id", event.ObjectID)
		return nil
	}
	if err != nil {
		logger.Warnw("Gateway event not applied", "kind", event.Kind, "id", event.ObjectID, zap.Error(err))
	}
	return err
}

type webhookPayload struct {
	Key  string `json:"key"`
	Data struct {
		Object string `json:"object"`
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

// ParseEvent разбирает событие шлюза: объект вебхука ({"key","data":{...}})
// или уже нормализованное событие ({"eventKind","id","status"})
func ParseEvent(body []byte) (models.GatewayEvent, error) {
	var normalized models.GatewayEvent
	if err := json.Unmarshal(body, &normalized); err == nil && normalized.Kind != "" {
		return normalized, nil
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.GatewayEvent{}, fmt.Errorf("%w: %v", ErrUnknownEvent, err)
	}
	kind := payload.Data.Object
	if kind == "" {
		kind, _, _ = strings.Cut(payload.Key, ".")
	}
	event := models.GatewayEvent{
		Kind:     models.EventKind(kind),
		ObjectID: payload.Data.ID,
		Status:   payload.Data.Status,
	}
	if event.Kind != models.EventCharge && event.Kind != models.EventTransfer {
		return models.GatewayEvent{}, fmt.Errorf("%w: %s", ErrUnknownEvent, payload.Key)
	}
	return event, nil
}
