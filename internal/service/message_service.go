// Package service provides business logic implementation for the application.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/popeskul/webhook-inbox/internal/config"
	"github.com/popeskul/webhook-inbox/internal/models"
	"github.com/popeskul/webhook-inbox/internal/repository"
	"github.com/popeskul/webhook-inbox/internal/signature"
)

const statsCacheKey = "stats:summary"

type messageService struct {
	cfg         *config.Config
	repo        repository.Repository
	verifier    *signature.Verifier
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewMessageService(
	cfg *config.Config,
	repo repository.Repository,
	redisClient *redis.Client,
	logger *zap.Logger,
) MessageService {
	return &messageService{
		cfg:         cfg,
		repo:        repo,
		verifier:    signature.NewVerifier(cfg.Webhook.Secret),
		redisClient: redisClient,
		logger:      logger,
	}
}

// Ingest classifies a single delivery attempt. Error values:
// models.ErrInvalidSignature for authentication failures,
// *models.ValidationError for payload faults, anything else is a storage fault.
func (s *messageService) Ingest(ctx context.Context, body []byte, signatureToken string) (models.InsertOutcome, error) {
	if err := s.verifier.Verify(body, signatureToken); err != nil {
		return "", err
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &models.ValidationError{Field: "body", Reason: "must be a valid JSON object"}
	}

	if err := payload.Validate(); err != nil {
		return "", err
	}

	outcome, err := s.repo.Message().InsertIfAbsent(ctx, payload.ToMessage())
	if err != nil {
		return "", fmt.Errorf("failed to store message: %w", err)
	}

	s.logger.Info("Webhook message ingested",
		zap.String("message_id", payload.MessageID),
		zap.String("from", payload.FromMsisdn),
		zap.String("to", payload.ToMsisdn),
		zap.Bool("dup", outcome == models.OutcomeDuplicate))

	if outcome == models.OutcomeCreated {
		s.invalidateStatsCache(ctx)
	}

	return outcome, nil
}

func (s *messageService) ListMessages(ctx context.Context, filter models.ListFilter) (*models.MessageListResponse, error) {
	filter.Clamp()

	messages, total, err := s.repo.Message().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	views := make([]*models.MessageView, 0, len(messages))
	for _, msg := range messages {
		views = append(views, msg.View())
	}

	return &models.MessageListResponse{
		Data:  views,
		Total: total,
	}, nil
}

// GetStats serves from the redis cache when possible. Cache failures are
// logged and fall through to a direct aggregate query; they never surface.
func (s *messageService) GetStats(ctx context.Context) (*models.Stats, error) {
	if cached, err := s.redisClient.Get(ctx, statsCacheKey).Bytes(); err == nil {
		var stats models.Stats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
		s.logger.Warn("Discarding unreadable stats cache entry")
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("Stats cache read failed", zap.Error(err))
	}

	stats, err := s.repo.Message().Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	s.writeStatsCache(ctx, stats)
	return stats, nil
}

func (s *messageService) WarmStatsCache(ctx context.Context) error {
	stats, err := s.repo.Message().Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	s.writeStatsCache(ctx, stats)
	return nil
}

func (s *messageService) writeStatsCache(ctx context.Context, stats *models.Stats) {
	data, err := json.Marshal(stats)
	if err != nil {
		s.logger.Warn("Failed to marshal stats for cache", zap.Error(err))
		return
	}

	ttl := time.Duration(s.cfg.Stats.CacheTTLSeconds) * time.Second
	if err := s.redisClient.Set(ctx, statsCacheKey, data, ttl).Err(); err != nil {
		s.logger.Warn("Stats cache write failed", zap.Error(err))
	}
}

func (s *messageService) invalidateStatsCache(ctx context.Context) {
	if err := s.redisClient.Del(ctx, statsCacheKey).Err(); err != nil {
		s.logger.Warn("Stats cache invalidation failed", zap.Error(err))
	}
}
