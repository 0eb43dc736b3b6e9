package repository_test

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/webhook-inbox/internal/models"
)

func newTestMessage(messageID, from, to, ts string, text *string) *models.Message {
	msg := &models.Message{
		MessageID:  messageID,
		FromMsisdn: from,
		ToMsisdn:   to,
		Ts:         ts,
	}
	if text != nil {
		msg.Text = sql.NullString{String: *text, Valid: true}
	}
	return msg
}

func insertTestMessage(db *sqlx.DB, messageID, from, to, ts string, text *string) error {
	query := `
		INSERT INTO messages (message_id, from_msisdn, to_msisdn, ts, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var textVal sql.NullString
	if text != nil {
		textVal = sql.NullString{String: *text, Valid: true}
	}

	_, err := db.Exec(query, messageID, from, to, ts, textVal, "2025-01-01T00:00:00Z")
	if err != nil {
		return fmt.Errorf("failed to insert test message: %w", err)
	}

	return nil
}

func insertBulkTestMessages(db *sqlx.DB, count int, idPrefix, from string, baseTs string) error {
	for i := 0; i < count; i++ {
		messageID := fmt.Sprintf("%s_%03d", idPrefix, i)
		ts := fmt.Sprintf("%s.%03dZ", baseTs, i)
		text := fmt.Sprintf("message number %d", i)

		if err := insertTestMessage(db, messageID, from, "+19995550000", ts, &text); err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}
	return nil
}

func ptr(s string) *string {
	return &s
}
