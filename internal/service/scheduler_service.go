package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/webhook-inbox/internal/config"
	"github.com/popeskul/webhook-inbox/internal/scheduler"
)

type schedulerService struct {
	scheduler      *scheduler.Scheduler
	messageService MessageService
	logger         *zap.Logger
}

// NewSchedulerService wires the generic scheduler to the periodic
// stats-cache warm task.
func NewSchedulerService(
	cfg *config.Config,
	messageService MessageService,
	logger *zap.Logger,
) SchedulerService {
	interval := time.Duration(cfg.Stats.WarmIntervalMinutes) * time.Minute

	svc := &schedulerService{
		messageService: messageService,
		logger:         logger,
	}

	svc.scheduler = scheduler.NewScheduler(logger, interval, svc.executeWarmTask)
	return svc
}

func (s *schedulerService) Start() error {
	ctx := context.Background()
	return s.scheduler.Start(ctx)
}

func (s *schedulerService) Stop() error {
	return s.scheduler.Stop()
}

func (s *schedulerService) IsRunning() bool {
	return s.scheduler.IsRunning()
}

func (s *schedulerService) executeWarmTask(ctx context.Context) error {
	return s.messageService.WarmStatsCache(ctx)
}
