package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/popeskul/webhook-inbox/internal/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

const topSendersLimit = 10

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// InsertIfAbsent persists the message inside a transaction. There is no
// existence pre-check: the message_id primary key is the serialization point,
// so concurrent submissions of the same id resolve to exactly one Created.
func (r *messageRepository) InsertIfAbsent(ctx context.Context, msg *models.Message) (models.InsertOutcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO messages (message_id, from_msisdn, to_msisdn, ts, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	createdAt := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, query,
		msg.MessageID, msg.FromMsisdn, msg.ToMsisdn, msg.Ts, msg.Text, createdAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.OutcomeDuplicate, nil
		}
		return "", fmt.Errorf("failed to insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	msg.CreatedAt = createdAt
	return models.OutcomeCreated, nil
}

// List retrieves messages matching the filter with deterministic pagination.
// The ts lower bound and ordering are lexical string comparisons.
func (r *messageRepository) List(ctx context.Context, filter models.ListFilter) ([]*models.Message, int64, error) {
	where, args := buildListWhere(filter)

	var total int64
	countQuery := "SELECT COUNT(*) FROM messages" + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT message_id, from_msisdn, to_msisdn, ts, text, created_at
		FROM messages%s
		ORDER BY ts ASC, message_id ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	messages := []*models.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, total, nil
}

func buildListWhere(filter models.ListFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.FromMsisdn != "" {
		args = append(args, filter.FromMsisdn)
		conditions = append(conditions, fmt.Sprintf("from_msisdn = $%d", len(args)))
	}
	if filter.Since != "" {
		args = append(args, filter.Since)
		conditions = append(conditions, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf("text ILIKE $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Stats aggregates the whole table. Timestamp fields stay nil when the
// store is empty; top-sender ties break by from_msisdn so the list is stable.
func (r *messageRepository) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{
		MessagesPerSender: []*models.SenderCount{},
	}

	summaryQuery := `
		SELECT COUNT(*) AS total,
		       COUNT(DISTINCT from_msisdn) AS senders,
		       MIN(ts) AS first_ts,
		       MAX(ts) AS last_ts
		FROM messages
	`

	var summary struct {
		Total   int64   `db:"total"`
		Senders int64   `db:"senders"`
		FirstTs *string `db:"first_ts"`
		LastTs  *string `db:"last_ts"`
	}
	if err := r.db.GetContext(ctx, &summary, summaryQuery); err != nil {
		return nil, fmt.Errorf("failed to aggregate messages: %w", err)
	}

	stats.TotalMessages = summary.Total
	stats.SendersCount = summary.Senders
	stats.FirstMessageTs = summary.FirstTs
	stats.LastMessageTs = summary.LastTs

	sendersQuery := `
		SELECT from_msisdn, COUNT(*) AS count
		FROM messages
		GROUP BY from_msisdn
		ORDER BY count DESC, from_msisdn ASC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &stats.MessagesPerSender, sendersQuery, topSendersLimit); err != nil {
		return nil, fmt.Errorf("failed to aggregate senders: %w", err)
	}

	return stats, nil
}
