package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

type Arguments struct {
	ListenAddr  string `env:"SERVER_ADDRESS" envDefault:"localhost:8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:""`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"secret"`
	Timezone    string `env:"TIMEZONE" envDefault:"UTC"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`

	GatewayURL       string        `env:"GATEWAY_URL" envDefault:"https://api.omise.co"`
	GatewaySecretKey string        `env:"GATEWAY_SECRET_KEY" envDefault:""`
	GatewayTimeout   time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	GatewayRPS       int           `env:"GATEWAY_RPS" envDefault:"10"`
	ReturnBaseURL    string        `env:"RETURN_BASE_URL" envDefault:"http://localhost:8080"`
	ChargeMethod     string        `env:"CHARGE_METHOD" envDefault:"promptpay"`
	Currency         string        `env:"CURRENCY" envDefault:"thb"`

	AMQPURL      string `env:"AMQP_URL" envDefault:""`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"questpoints"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"gateway.events"`

	RedisURL    string `env:"REDIS_URL" envDefault:""`
	RateLimit   int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	AuditCron   string `env:"AUDIT_CRON" envDefault:"0 3 * * *"`
	AuditRepair bool   `env:"AUDIT_REPAIR" envDefault:"false"`

	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"1m"`
}

// ServerConfig модель настроек сервера
type ServerConfig struct {
	ListenAddr  string
	LogLevel    string
	JWTSecret   string
	DatabaseDSN string
	// зона, в которой считаются календарные дни серии
	Timezone string
	// источники, которым разрешены запросы из браузера
	AllowedOrigins []string
}

// GatewayConfig модель настроек платёжного шлюза
type GatewayConfig struct {
	URL       string
	SecretKey string
	Timeout   time.Duration
	// ограничение запросов к шлюзу в секунду
	RPS           int
	ReturnBaseURL string
	ChargeMethod  string
	Currency      string
}

// RewardsConfig модель настроек начислений за квесты
type RewardsConfig struct {
	// разовые бонусы за точную длину серии
	Milestones map[int]int64
	// бонус за выполнение всех квестов дня
	DailyBonus int64
	// количество социальных квестов в дневном наборе
	SocialPerDay int
	// фиксированная награда за чек-ин и социальный квест
	FixedQuestPoints int64
}

// SettlementConfig модель настроек покупки и вывода баллов
type SettlementConfig struct {
	PointPrice          decimal.Decimal
	PointValue          decimal.Decimal
	MinWithdrawalAmount decimal.Decimal
	MinPurchasePoints   int64
}

// EventsConfig модель настроек брокера сообщений
type EventsConfig struct {
	URL      string
	Exchange string
	Queue    string
	// задержка повторной доставки события после временной ошибки
	RetryDelay time.Duration
}

// RedisConfig модель настроек ограничения частоты запросов
type RedisConfig struct {
	URL            string
	Prefix         string
	LimitPerMinute int
}

// ReconcileConfig модель настроек сверки ожидающих операций
type ReconcileConfig struct {
	Interval    time.Duration
	BatchSize   int
	MinAge      time.Duration
	AbandonAge  time.Duration
	AuditCron   string
	AuditRepair bool
}

// Config модель настроек сервиса
type Config struct {
	Server     ServerConfig
	Gateway    GatewayConfig
	Rewards    RewardsConfig
	Settlement SettlementConfig
	Events     EventsConfig
	Redis      RedisConfig
	Reconcile  ReconcileConfig
}

func NewConfig() Config {

	var args Arguments
	if err := env.Parse(&args); err != nil {
		panic(fmt.Sprintf("Failed to parse enviroment var: %s", err.Error()))
	}

	var (
		server    = pflag.StringP("server", "a", args.ListenAddr, "Server listen address in a form host:port.")
		logLevel  = pflag.StringP("log_level", "l", args.LogLevel, "Log level.")
		DSN       = pflag.StringP("dsn", "d", args.DatabaseDSN, "Database DSN")
		secret    = pflag.StringP("secret", "s", args.JWTSecret, "Secret to JWT")
		timezone  = pflag.StringP("timezone", "z", args.Timezone, "Timezone of streak days")
		gateway   = pflag.StringP("gateway", "g", args.GatewayURL, "Payment gateway base URL")
		gwKey     = pflag.StringP("gateway_key", "k", args.GatewaySecretKey, "Payment gateway secret key")
		gwTimeout = pflag.DurationP("gateway_timeout", "t", args.GatewayTimeout, "Payment gateway call timeout")
		returnURL = pflag.StringP("return_url", "u", args.ReturnBaseURL, "Base URL of purchase return address")
		amqpURL   = pflag.StringP("amqp", "m", args.AMQPURL, "AMQP broker URL")
		redisURL  = pflag.StringP("redis", "r", args.RedisURL, "Redis URL for rate limiting")
		interval  = pflag.DurationP("reconcile_interval", "i", args.ReconcileInterval, "Pending operations reconcile interval")
		auditCron = pflag.StringP("audit_cron", "c", args.AuditCron, "Wallet audit cron schedule")
		repair    = pflag.Bool("audit_repair", args.AuditRepair, "Repair wallets drifted from the ledger")
	)
	pflag.Parse()

	cfg := DefaultConfig()
	cfg.Server = ServerConfig{
		ListenAddr:  *server,
		LogLevel:    *logLevel,
		DatabaseDSN: *DSN,
		JWTSecret:   *secret,
		Timezone:    *timezone,
	}
	cfg.Server.AllowedOrigins = splitList(args.CORSOrigins)
	cfg.Gateway = GatewayConfig{
		URL:           *gateway,
		SecretKey:     *gwKey,
		Timeout:       *gwTimeout,
		RPS:           args.GatewayRPS,
		ReturnBaseURL: *returnURL,
		ChargeMethod:  args.ChargeMethod,
		Currency:      args.Currency,
	}
	cfg.Events.URL = *amqpURL
	cfg.Events.Exchange = args.AMQPExchange
	cfg.Events.Queue = args.AMQPQueue
	cfg.Redis.URL = *redisURL
	cfg.Redis.LimitPerMinute = args.RateLimit
	cfg.Reconcile.Interval = *interval
	cfg.Reconcile.AuditCron = *auditCron
	cfg.Reconcile.AuditRepair = *repair
	return cfg
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:  "localhost:8080",
			LogLevel:    "info",
			DatabaseDSN: "",
			JWTSecret:   "secret",
			Timezone:    "UTC",

			AllowedOrigins: []string{"*"},
		},
		Gateway: GatewayConfig{
			URL:           "https://api.omise.co",
			Timeout:       10 * time.Second,
			RPS:           10,
			ReturnBaseURL: "http://localhost:8080",
			ChargeMethod:  "promptpay",
			Currency:      "thb",
		},
		Rewards: RewardsConfig{
			Milestones:       map[int]int64{7: 20, 14: 50, 30: 100},
			DailyBonus:       5,
			SocialPerDay:     2,
			FixedQuestPoints: 1,
		},
		Settlement: SettlementConfig{
			PointPrice:          decimal.RequireFromString("0.10"),
			PointValue:          decimal.RequireFromString("0.10"),
			MinWithdrawalAmount: decimal.NewFromInt(100),
			MinPurchasePoints:   10,
		},
		Events: EventsConfig{
			Exchange:   "questpoints",
			Queue:      "gateway.events",
			RetryDelay: 30 * time.Second,
		},
		Redis: RedisConfig{
			Prefix:         "questpoints:ratelimit",
			LimitPerMinute: 10,
		},
		Reconcile: ReconcileConfig{
			Interval:   time.Minute,
			BatchSize:  50,
			MinAge:     2 * time.Minute,
			AbandonAge: 24 * time.Hour,
			AuditCron:  "0 3 * * *",
		},
	}
}

// Location возвращает зону календарных дней, по умолчанию UTC
func (c ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
