package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denmor86/ya-questpoints/internal/client"
	"github.com/denmor86/ya-questpoints/internal/config"
	"github.com/denmor86/ya-questpoints/internal/events"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/network/middleware"
	"github.com/denmor86/ya-questpoints/internal/network/router"
	"github.com/denmor86/ya-questpoints/internal/services"
	"github.com/denmor86/ya-questpoints/internal/storage"
	"github.com/denmor86/ya-questpoints/internal/worker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func Run(config config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// хранилище
	db, err := storage.NewDatabase(config.Server.DatabaseDSN)
	if err != nil {
		logger.Panic("error create database", err)
	}
	defer db.Close()
	if err := db.Initialize(ctx); err != nil {
		logger.Panic("error initialize database", err)
	}
	store := storage.NewStorage(db)

	// платёжный шлюз
	gateway := client.NewClient(config.Gateway, &http.Client{})

	// уведомления операторов
	notifier, closeNotifier := events.NewNotifier(config.Events.URL, config.Events.Exchange)
	defer closeNotifier()

	// сервисы
	pool := services.NewPool(store.Ledger)
	quests := services.NewQuests(store, config.Rewards, config.Server.Location())
	purchases := services.NewPurchases(store.Ledger, gateway, config.Settlement, config.Gateway)
	withdrawals := services.NewWithdrawals(store, gateway, notifier, config.Settlement)
	dispatcher := services.NewDispatcher(purchases, withdrawals)
	reconciler := services.NewReconciler(store, purchases, withdrawals, config.Reconcile)
	auditor := services.NewAuditor(store.Ledger)

	// события шлюза из брокера
	if config.Events.URL != "" {
		consumer, err := events.NewConsumer(config.Events.URL, dispatcher)
		if err != nil {
			logger.Warnw("RabbitMQ consumer unavailable, relying on webhook and reconcile", zap.Error(err))
		} else {
			defer consumer.Close()
			consumer.RetryDelay = config.Events.RetryDelay
			if err := consumer.Consume(ctx, config.Events.Exchange, config.Events.Queue); err != nil {
				logger.Error("error start consumer", err)
			}
		}
	}

	// ограничение частоты операций с деньгами
	var limiter middleware.Limiter
	if config.Redis.URL != "" {
		opts, err := redis.ParseURL(config.Redis.URL)
		if err != nil {
			logger.Warnw("Invalid Redis URL, rate limiting disabled", zap.Error(err))
		} else {
			rdb := redis.NewClient(opts)
			defer rdb.Close()
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warnw("Redis unavailable, rate limiter fails open", zap.Error(err))
			}
			limiter = middleware.NewRedisLimiter(rdb, config.Redis.Prefix)
		}
	}

	// фоновые задачи
	reconcileWorker := worker.NewReconcileWorker(reconciler, config.Reconcile.BatchSize, config.Reconcile.Interval)
	reconcileWorker.Start(ctx)

	scheduler := worker.NewAuditScheduler(auditor, config.Reconcile.AuditCron, config.Reconcile.AuditRepair, config.Server.Location())
	if err := scheduler.Start(); err != nil {
		logger.Error("error schedule wallet audit", err)
	}

	router := router.NewRouter(config, limiter, pool, quests, purchases, withdrawals, dispatcher, auditor)
	server := &http.Server{
		Addr:    config.Server.ListenAddr,
		Handler: router.HandleRouter(),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Infow("Starting server", "address", config.Server.ListenAddr, "gateway", config.Gateway.URL,
			"timezone", config.Server.Timezone)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("error listen server", err.Error())
		}
	}()

	<-stop
	logger.Info("Shutdown server")
	reconcileWorker.Stop()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutdown server", err.Error())
	}
	logger.Info("Server stopped")
}
