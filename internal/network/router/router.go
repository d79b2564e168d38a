package router

import (
	"time"

	"github.com/denmor86/ya-questpoints/internal/config"
	"github.com/denmor86/ya-questpoints/internal/network/handlers"
	"github.com/denmor86/ya-questpoints/internal/network/middleware"
	"github.com/denmor86/ya-questpoints/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

// окно ограничения частоты операций с деньгами
const rateWindow = time.Minute

type Router struct {
	Config      config.Config
	TokenAuth   *jwtauth.JWTAuth
	Limiter     middleware.Limiter
	Pool        services.PoolService
	Quests      services.QuestService
	Purchases   services.PurchaseService
	Withdrawals services.WithdrawalService
	Dispatcher  services.EventDispatcher
	Auditor     services.AuditService
}

func NewRouter(config config.Config, limiter middleware.Limiter, pool services.PoolService, quests services.QuestService,
	purchases services.PurchaseService, withdrawals services.WithdrawalService,
	dispatcher services.EventDispatcher, auditor services.AuditService) *Router {
	return &Router{
		Config:      config,
		TokenAuth:   jwtauth.New("HS256", []byte(config.Server.JWTSecret), nil),
		Limiter:     limiter,
		Pool:        pool,
		Quests:      quests,
		Purchases:   purchases,
		Withdrawals: withdrawals,
		Dispatcher:  dispatcher,
		Auditor:     auditor,
	}
}

func (router *Router) HandleRouter() chi.Router {
	ja := router.TokenAuth
	limit := router.Config.Redis.LimitPerMinute

	r := chi.NewRouter()
	r.Use(middleware.LogHandle)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.Config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	// адрес возврата со страницы оплаты открывается браузером без токена
	r.Get("/purchases/{id}/return", handlers.PurchaseReturnHandler(router.Purchases))

	r.Route("/api", func(r chi.Router) {
		r.Post("/gateway/webhook", handlers.GatewayWebhookHandler(router.Dispatcher))
		r.Get("/points/pool", handlers.GetPoolHandler(router.Pool))

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(ja))
			r.Use(jwtauth.Authenticator(ja))

			r.Get("/quests/today", handlers.TodayQuestsHandler(router.Quests))
			r.Post("/quests/{id}/complete", handlers.CompleteQuestHandler(router.Quests))
			r.Get("/points/history", handlers.HistoryHandler(router.Pool))

			r.With(middleware.RateLimit(router.Limiter, "purchase", limit, rateWindow)).
				Post("/purchases", handlers.InitiatePurchaseHandler(router.Purchases))
			r.Get("/purchases/{id}", handlers.VerifyPurchaseHandler(router.Purchases))

			r.With(middleware.RateLimit(router.Limiter, "withdrawal", limit, rateWindow)).
				Post("/withdrawals", handlers.WithdrawHandler(router.Withdrawals))
			r.Get("/withdrawals", handlers.GetWithdrawalsHandler(router.Withdrawals))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/pool/add", handlers.AddPointsHandler(router.Pool))
				r.Put("/pool/settings", handlers.PoolSettingsHandler(router.Pool))
				r.Post("/users/{userID}/adjust", handlers.AdjustUserHandler(router.Pool))
				r.Post("/users/{userID}/new-user", handlers.GrantNewUserHandler(router.Pool))
				r.Post("/users/{userID}/tourist/{questID}", handlers.GrantTouristQuestHandler(router.Pool))
				r.Post("/users/{userID}/use", handlers.PostingHandler(router.Pool, "use"))
				r.Post("/users/{userID}/refund", handlers.PostingHandler(router.Pool, "refund"))
				r.Post("/users/{userID}/fee", handlers.PostingHandler(router.Pool, "fee"))
				r.Post("/withdrawals/funded", handlers.FundedWithdrawHandler(router.Withdrawals))
				r.Post("/withdrawals/{id}/approve", handlers.ApproveWithdrawalHandler(router.Withdrawals))
				r.Post("/withdrawals/{id}/reject", handlers.RejectWithdrawalHandler(router.Withdrawals))
				r.Post("/withdrawals/{id}/paid", handlers.MarkPaidHandler(router.Withdrawals))
				r.Post("/cascade", handlers.CascadeHandler(router.Withdrawals))
				r.Post("/audit", handlers.AuditHandler(router.Auditor))
			})
		})
	})
	return r
}
