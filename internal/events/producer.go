package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/services"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ключ маршрутизации уведомлений операторов
const RoutingOperatorNotice = "operator.notice"

// Producer публикует уведомления операторов в RabbitMQ
type Producer struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// LogNotifier пишет уведомления в журнал, когда брокер недоступен
type LogNotifier struct{}

func (LogNotifier) NotifyOperators(_ context.Context, notice models.OperatorNotice) error {
	logger.Warnw("Operator notice", "kind", notice.Kind, "withdrawal", notice.WithdrawalID,
		"user", notice.UserID, "amount", notice.Amount, "reason", notice.Reason)
	return nil
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewNotifier возвращает публикатор в брокер или, если брокер не настроен или недоступен, LogNotifier
func NewNotifier(amqpURL, exchange string) (services.Notifier, func()) {
	if amqpURL == "" {
		return LogNotifier{}, func() {}
	}
	p, err := NewProducer(amqpURL, exchange)
	if err != nil {
		logger.Warnw("RabbitMQ unavailable, operator notices go to log", "error", err.Error())
		return LogNotifier{}, func() {}
	}
	return p, p.Close
}

func NewProducer(amqpURL, exchange string) (*Producer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}
	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &Producer{conn: conn, channel: ch, exchange: exchange}, nil
}

// NotifyOperators публикует уведомление; при сбое канала открывает его заново и повторяет один раз
func (p *Producer) NotifyOperators(ctx context.Context, notice models.OperatorNotice) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx, p.exchange, RoutingOperatorNotice, false, false, msg)
	if err == nil {
		return nil
	}
	logger.Warnw("Publish failed, reopening channel", "exchange", p.exchange, "error", err.Error())
	ch, chErr := p.conn.Channel()
	if chErr != nil {
		return errors.Join(err, chErr)
	}
	p.channel = ch
	return p.channel.PublishWithContext(ctx, p.exchange, RoutingOperatorNotice, false, false, msg)
}

func (p *Producer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
