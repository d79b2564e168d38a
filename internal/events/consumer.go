package events

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/denmor86/ya-questpoints/internal/client"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/services"
	"github.com/denmor86/ya-questpoints/internal/storage"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ключи маршрутизации событий шлюза, пересланных в брокер
const (
	RoutingCharge   = "gateway.charge.*"
	RoutingTransfer = "gateway.transfer.*"

	retrySuffix       = ".retry"
	defaultRetryDelay = 30 * time.Second
)

// Consumer читает события платёжного шлюза из RabbitMQ и передаёт их диспетчеру
type Consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	Dispatcher services.EventDispatcher
	// задержка повторной доставки после временной ошибки
	RetryDelay time.Duration
}

func sanitizeURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	parsed, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
		return "", fmt.Errorf("invalid AMQP scheme: %s", parsed.Scheme)
	}
	return clean, nil
}

func NewConsumer(amqpURL string, dispatcher services.EventDispatcher) (*Consumer, error) {
	cleanURL, err := sanitizeURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.Dial(cleanURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, ch: ch, Dispatcher: dispatcher, RetryDelay: defaultRetryDelay}, nil
}

// Consume объявляет очередь, привязывает её к обменнику и запускает обработку в фоне.
// Сообщение подтверждается после применения; после временной ошибки оно уходит в очередь
// отложенной доставки и возвращается в основную очередь по истечении RetryDelay.
func (c *Consumer) Consume(ctx context.Context, exchange, queueName string) error {
	if err := c.ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	q, err := c.ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return err
	}
	for _, key := range []string{RoutingCharge, RoutingTransfer} {
		if err := c.ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return err
		}
	}

	retry, err := c.ch.QueueDeclare(q.Name+retrySuffix, true, false, false, false, amqp.Table{
		"x-message-ttl":             c.RetryDelay.Milliseconds(),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": q.Name,
	})
	if err != nil {
		return err
	}

	msgs, err := c.ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			if c.Handle(ctx, d.Body) {
				d.Ack(false)
				continue
			}
			if err := c.delay(ctx, retry.Name, d); err != nil {
				logger.Warnw("Failed to delay gateway event, requeue", zap.Error(err))
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}()
	return nil
}

// delay перекладывает сообщение в очередь отложенной доставки
func (c *Consumer) delay(ctx context.Context, retryQueue string, d amqp.Delivery) error {
	return c.ch.PublishWithContext(ctx, "", retryQueue, false, false, amqp.Publishing{
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Body:         d.Body,
		Headers:      d.Headers,
	})
}

// Handle применяет одно сообщение. false - сообщение нужно доставить повторно.
func (c *Consumer) Handle(ctx context.Context, body []byte) bool {
	event, err := services.ParseEvent(body)
	if err != nil {
		// повторная доставка не поможет
		logger.Warnw("Dropping malformed gateway event", zap.Error(err))
		return true
	}
	err = c.Dispatcher.Dispatch(ctx, event)
	if err == nil {
		return true
	}
	if isPermanent(err) {
		logger.Warnw("Dropping gateway event", "kind", event.Kind, "id", event.ObjectID, zap.Error(err))
		return true
	}
	return false
}

// isPermanent - ошибки, которые не исправит повторная доставка.
// Недоступность шлюза, ошибки базы и отмена контекста считаются временными.
func isPermanent(err error) bool {
	return errors.Is(err, services.ErrUnknownEvent) ||
		errors.Is(err, services.ErrChargeMismatch) ||
		errors.Is(err, models.ErrInvalidTransition) ||
		errors.Is(err, storage.ErrEntryNotFound) ||
		errors.Is(err, storage.ErrWithdrawalNotFound) ||
		errors.Is(err, client.ErrNotFound) ||
		errors.Is(err, client.ErrBadRequest)
}

func (c *Consumer) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
