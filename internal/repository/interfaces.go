package repository

import (
	"context"

	"github.com/popeskul/webhook-inbox/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

// Repository interface defines all repository operations.
type Repository interface {
	// Ping checks database connectivity
	Ping() error

	// Message returns message repository
	Message() MessageRepository
}

// MessageRepository interface defines message operations.
type MessageRepository interface {
	// InsertIfAbsent attempts to persist the message. The unique constraint
	// on message_id is the only duplicate-detection mechanism: a constraint
	// violation reports OutcomeDuplicate without an error, any other failure
	// propagates.
	InsertIfAbsent(ctx context.Context, msg *models.Message) (models.InsertOutcome, error)

	// List returns a page of messages matching the filter, ordered by
	// ts ASC then message_id ASC, plus the total filtered count.
	List(ctx context.Context, filter models.ListFilter) ([]*models.Message, int64, error)

	// Stats computes aggregate statistics over all stored messages.
	Stats(ctx context.Context) (*models.Stats, error)
}
