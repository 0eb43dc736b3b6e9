package service

import (
	"context"

	"github.com/popeskul/webhook-inbox/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_service.go -package=mocks

type MessageService interface {
	// Ingest runs the write path for one webhook delivery: signature
	// verification over the raw body, payload validation, then an
	// insert-if-absent against the store. The body is never parsed when
	// verification fails.
	Ingest(ctx context.Context, body []byte, signatureToken string) (models.InsertOutcome, error)

	ListMessages(ctx context.Context, filter models.ListFilter) (*models.MessageListResponse, error)
	GetStats(ctx context.Context) (*models.Stats, error)

	// WarmStatsCache recomputes the aggregate stats and refreshes the cache.
	WarmStatsCache(ctx context.Context) error
}

type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool
}

type HealthService interface {
	GetHealth() *HealthStatus
}
