package service

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/popeskul/webhook-inbox/internal/config"
	"github.com/popeskul/webhook-inbox/internal/repository"
)

type Service struct {
	Message   MessageService
	Scheduler SchedulerService
	Health    HealthService
}

func NewService(
	cfg *config.Config,
	repo repository.Repository,
	redisClient *redis.Client,
	logger *zap.Logger,
) *Service {
	messageService := NewMessageService(cfg, repo, redisClient, logger)
	schedulerService := NewSchedulerService(cfg, messageService, logger)
	healthService := NewHealthService(repo, redisClient, schedulerService)

	return &Service{
		Message:   messageService,
		Scheduler: schedulerService,
		Health:    healthService,
	}
}
