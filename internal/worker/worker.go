package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/denmor86/ya-questpoints/internal/client"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/services"
	"github.com/sony/gobreaker"
)

func InitCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second, // через 30 сек пробуем подключиться
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 5 неудачных проходов сверки подряд
			return counts.ConsecutiveFailures >= 5
		},
		// ошибки хранилища и отдельных записей не говорят о состоянии шлюза
		IsSuccessful: func(err error) bool {
			return err == nil || !IsGatewayFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infow("Circuit Breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// IsGatewayFailure - недоступность шлюза или превышение его лимита запросов
func IsGatewayFailure(err error) bool {
	var rateLimit *client.RateLimitError
	return errors.Is(err, models.ErrGatewayUnavailable) || errors.As(err, &rateLimit)
}

// ReconcileWorker - фоновая сверка зависших покупок и выплат
type ReconcileWorker struct {
	Reconciler   services.ReconcileService
	Breaker      *gobreaker.CircuitBreaker
	WaitGroup    sync.WaitGroup
	QuitChan     chan struct{}
	BatchSize    int
	PollInterval time.Duration
}

// NewReconcileWorker - конструктор воркера сверки
func NewReconcileWorker(reconciler services.ReconcileService, batchSize int, interval time.Duration) *ReconcileWorker {
	return &ReconcileWorker{
		Reconciler:   reconciler,
		Breaker:      InitCircuitBreaker(),
		QuitChan:     make(chan struct{}),
		BatchSize:    batchSize,
		PollInterval: interval,
	}
}

// Start - запускает воркер в фоне
func (w *ReconcileWorker) Start(ctx context.Context) {
	w.WaitGroup.Add(1)
	go w.Run(ctx)
}

// Stop - корректно останавливает воркер
func (w *ReconcileWorker) Stop() {
	close(w.QuitChan)
	w.WaitGroup.Wait()
}

// Run - основная рабочая логика
func (w *ReconcileWorker) Run(ctx context.Context) {
	defer w.WaitGroup.Done()

	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.QuitChan:
			logger.Info("ReconcileWorker signal stop")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Reconcile(ctx)
		}
	}
}

// Reconcile - один проход сверки через автомат защиты шлюза
func (w *ReconcileWorker) Reconcile(ctx context.Context) {
	if w.Breaker.State() == gobreaker.StateOpen {
		logger.Warnw("Payment gateway unavailable. Waiting...", "breaker", w.Breaker.Name())
		return
	}

	_, err := w.Breaker.Execute(func() (interface{}, error) {
		return w.Reconciler.ReconcilePending(ctx, w.BatchSize)
	})
	if err != nil {
		logger.Error("Error reconcile pending operations", err)
	}
}
