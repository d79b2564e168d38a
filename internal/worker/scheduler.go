package worker

import (
	"context"
	"time"

	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/services"
	"github.com/robfig/cron/v3"
)

// AuditScheduler - периодическая сверка кошельков с журналом по расписанию cron
type AuditScheduler struct {
	cron     *cron.Cron
	Auditor  services.AuditService
	Schedule string
	Repair   bool
	Timeout  time.Duration
}

// NewAuditScheduler - конструктор планировщика сверки
func NewAuditScheduler(auditor services.AuditService, schedule string, repair bool, loc *time.Location) *AuditScheduler {
	return &AuditScheduler{
		cron:     cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		Auditor:  auditor,
		Schedule: schedule,
		Repair:   repair,
		Timeout:  10 * time.Minute,
	}
}

// Start регистрирует задачу и запускает планировщик
func (s *AuditScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.Schedule, s.Audit); err != nil {
		return err
	}
	logger.Infow("Scheduled wallet audit", "schedule", s.Schedule, "repair", s.Repair)
	s.cron.Start()
	return nil
}

// Stop останавливает планировщик и ждёт завершения запущенной задачи
func (s *AuditScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Audit - один проход сверки кошельков
func (s *AuditScheduler) Audit() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	drift, err := s.Auditor.VerifyWallets(ctx, s.Repair)
	if err != nil {
		logger.Error("Wallet audit failed", err)
		return
	}
	logger.Infow("Wallet audit finished", "drifted", len(drift), "repair", s.Repair)
}
