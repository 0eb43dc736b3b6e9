// Package models defines data structures used throughout the application.
package models

import (
	"database/sql"
	"regexp"
	"unicode/utf8"
)

// E.164: leading +, first digit 1-9, 2-15 digits total.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

const maxTextLength = 4096

// Message represents a stored webhook message. MessageID is the primary key;
// the database unique constraint on it is what makes ingestion idempotent.
type Message struct {
	MessageID  string         `db:"message_id" json:"message_id"`
	FromMsisdn string         `db:"from_msisdn" json:"from_msisdn"`
	ToMsisdn   string         `db:"to_msisdn" json:"to_msisdn"`
	Ts         string         `db:"ts" json:"ts"`
	Text       sql.NullString `db:"text" json:"-"`
	CreatedAt  string         `db:"created_at" json:"created_at"`
}

// WebhookPayload is the wire shape of POST /webhook. The public field names
// are "from"/"to"; they map to the msisdn columns internally.
type WebhookPayload struct {
	MessageID  string  `json:"message_id"`
	FromMsisdn string  `json:"from"`
	ToMsisdn   string  `json:"to"`
	Ts         string  `json:"ts"`
	Text       *string `json:"text,omitempty"`
}

// Validate checks structural and format constraints on the decoded payload.
// It returns a *ValidationError naming the offending field, never a generic error.
func (p *WebhookPayload) Validate() error {
	if p.MessageID == "" {
		return &ValidationError{Field: "message_id", Reason: "must be present and non-empty"}
	}
	if !e164Pattern.MatchString(p.FromMsisdn) {
		return &ValidationError{Field: "from", Reason: "must be in E.164 format (e.g. +14155552671)"}
	}
	if !e164Pattern.MatchString(p.ToMsisdn) {
		return &ValidationError{Field: "to", Reason: "must be in E.164 format (e.g. +14155552671)"}
	}
	if p.Ts == "" {
		return &ValidationError{Field: "ts", Reason: "must be present and non-empty"}
	}
	if p.Text != nil && utf8.RuneCountInString(*p.Text) > maxTextLength {
		return &ValidationError{Field: "text", Reason: "must be at most 4096 characters"}
	}
	return nil
}

// ToMessage converts a validated payload into the storage model.
// CreatedAt is assigned by the repository at insert time.
func (p *WebhookPayload) ToMessage() *Message {
	msg := &Message{
		MessageID:  p.MessageID,
		FromMsisdn: p.FromMsisdn,
		ToMsisdn:   p.ToMsisdn,
		Ts:         p.Ts,
	}
	if p.Text != nil {
		msg.Text = sql.NullString{String: *p.Text, Valid: true}
	}
	return msg
}

// MessageView is the public representation returned by GET /messages.
type MessageView struct {
	MessageID  string  `json:"message_id"`
	FromMsisdn string  `json:"from_msisdn"`
	ToMsisdn   string  `json:"to_msisdn"`
	Ts         string  `json:"ts"`
	Text       *string `json:"text"`
	CreatedAt  string  `json:"created_at"`
}

// View converts the storage model to its public shape.
func (m *Message) View() *MessageView {
	v := &MessageView{
		MessageID:  m.MessageID,
		FromMsisdn: m.FromMsisdn,
		ToMsisdn:   m.ToMsisdn,
		Ts:         m.Ts,
		CreatedAt:  m.CreatedAt,
	}
	if m.Text.Valid {
		text := m.Text.String
		v.Text = &text
	}
	return v
}

// MessageListResponse is the response body of GET /messages.
type MessageListResponse struct {
	Data  []*MessageView `json:"data"`
	Total int64          `json:"total"`
}

// SenderCount is one entry of the per-sender breakdown in GET /stats.
type SenderCount struct {
	FromMsisdn string `db:"from_msisdn" json:"from_msisdn"`
	Count      int64  `db:"count" json:"count"`
}

// Stats is the response body of GET /stats. The timestamp fields are null
// when the store is empty.
type Stats struct {
	TotalMessages     int64          `json:"total_messages"`
	SendersCount      int64          `json:"senders_count"`
	MessagesPerSender []*SenderCount `json:"messages_per_sender"`
	FirstMessageTs    *string        `json:"first_message_ts"`
	LastMessageTs     *string        `json:"last_message_ts"`
}

// ListFilter carries the query parameters of GET /messages down to the store.
// Ts comparisons are lexical; callers supply comparable timestamp strings.
type ListFilter struct {
	FromMsisdn string
	Since      string
	Query      string
	Limit      int
	Offset     int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Clamp normalizes limit and offset into their allowed ranges.
func (f *ListFilter) Clamp() {
	if f.Limit < 1 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
