package models_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/webhook-inbox/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func validPayload() *models.WebhookPayload {
	return &models.WebhookPayload{
		MessageID:  "msg_123456",
		FromMsisdn: "+14155552671",
		ToMsisdn:   "+14155552672",
		Ts:         "2025-12-07T10:30:00Z",
		Text:       strPtr("Hello, World!"),
	}
}

func TestWebhookPayload_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.WebhookPayload)
		wantField string
	}{
		{
			name:   "valid payload",
			mutate: func(p *models.WebhookPayload) {},
		},
		{
			name:   "valid payload without text",
			mutate: func(p *models.WebhookPayload) { p.Text = nil },
		},
		{
			name:      "empty message_id",
			mutate:    func(p *models.WebhookPayload) { p.MessageID = "" },
			wantField: "message_id",
		},
		{
			name:      "from without plus prefix",
			mutate:    func(p *models.WebhookPayload) { p.FromMsisdn = "14155552671" },
			wantField: "from",
		},
		{
			name:      "from starting with zero",
			mutate:    func(p *models.WebhookPayload) { p.FromMsisdn = "+04155552671" },
			wantField: "from",
		},
		{
			name:      "from with single digit",
			mutate:    func(p *models.WebhookPayload) { p.FromMsisdn = "+1" },
			wantField: "from",
		},
		{
			name:      "from with sixteen digits",
			mutate:    func(p *models.WebhookPayload) { p.FromMsisdn = "+1234567890123456" },
			wantField: "from",
		},
		{
			name:      "from with letters",
			mutate:    func(p *models.WebhookPayload) { p.FromMsisdn = "+1415555abcd" },
			wantField: "from",
		},
		{
			name:      "to without plus prefix",
			mutate:    func(p *models.WebhookPayload) { p.ToMsisdn = "14155552672" },
			wantField: "to",
		},
		{
			name:      "empty ts",
			mutate:    func(p *models.WebhookPayload) { p.Ts = "" },
			wantField: "ts",
		},
		{
			name:      "text over 4096 characters",
			mutate:    func(p *models.WebhookPayload) { p.Text = strPtr(strings.Repeat("a", 4097)) },
			wantField: "text",
		},
		{
			name:   "text at exactly 4096 characters",
			mutate: func(p *models.WebhookPayload) { p.Text = strPtr(strings.Repeat("a", 4096)) },
		},
		{
			name:   "minimal valid msisdn",
			mutate: func(p *models.WebhookPayload) { p.FromMsisdn = "+12" },
		},
		{
			name:   "maximal valid msisdn",
			mutate: func(p *models.WebhookPayload) { p.FromMsisdn = "+123456789012345" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(p)

			err := p.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *models.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.NotEmpty(t, vErr.Reason)
		})
	}
}

func TestWebhookPayload_ToMessage(t *testing.T) {
	p := validPayload()
	msg := p.ToMessage()

	assert.Equal(t, p.MessageID, msg.MessageID)
	assert.Equal(t, p.FromMsisdn, msg.FromMsisdn)
	assert.Equal(t, p.ToMsisdn, msg.ToMsisdn)
	assert.Equal(t, p.Ts, msg.Ts)
	require.True(t, msg.Text.Valid)
	assert.Equal(t, *p.Text, msg.Text.String)
	assert.Empty(t, msg.CreatedAt, "created_at is assigned by the store")

	p.Text = nil
	assert.False(t, p.ToMessage().Text.Valid)
}

func TestMessage_View(t *testing.T) {
	msg := validPayload().ToMessage()
	msg.CreatedAt = "2025-12-07T10:30:05Z"

	v := msg.View()
	assert.Equal(t, msg.MessageID, v.MessageID)
	require.NotNil(t, v.Text)
	assert.Equal(t, "Hello, World!", *v.Text)
	assert.Equal(t, "2025-12-07T10:30:05Z", v.CreatedAt)

	msg.Text.Valid = false
	assert.Nil(t, msg.View().Text)
}

func TestListFilter_Clamp(t *testing.T) {
	tests := []struct {
		name       string
		filter     models.ListFilter
		wantLimit  int
		wantOffset int
	}{
		{"zero limit uses default", models.ListFilter{Limit: 0}, 50, 0},
		{"negative limit uses default", models.ListFilter{Limit: -5}, 50, 0},
		{"limit over max is clamped", models.ListFilter{Limit: 500}, 100, 0},
		{"limit in range kept", models.ListFilter{Limit: 10, Offset: 20}, 10, 20},
		{"negative offset zeroed", models.ListFilter{Limit: 10, Offset: -1}, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Clamp()
			assert.Equal(t, tt.wantLimit, tt.filter.Limit)
			assert.Equal(t, tt.wantOffset, tt.filter.Offset)
		})
	}
}
