package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/popeskul/webhook-inbox/internal/handler"
	"github.com/popeskul/webhook-inbox/internal/models"
	"github.com/popeskul/webhook-inbox/internal/service"
	"github.com/popeskul/webhook-inbox/internal/service/mocks"
)

func newTestHandler(t *testing.T) (*handler.Handler, *mocks.MockMessageService, *mocks.MockHealthService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockMessage := mocks.NewMockMessageService(ctrl)
	mockHealth := mocks.NewMockHealthService(ctrl)

	svc := &service.Service{
		Message: mockMessage,
		Health:  mockHealth,
	}

	return handler.NewHandler(svc, zap.NewNop()), mockMessage, mockHealth
}

func TestHandler_Webhook(t *testing.T) {
	body := []byte(`{"message_id":"m1","from":"+14155552671","to":"+14155552672","ts":"2025-12-07T10:30:00Z","text":"hi"}`)

	tests := []struct {
		name           string
		setupMock      func(*mocks.MockMessageService)
		expectedStatus int
		checkBody      func(*testing.T, []byte)
	}{
		{
			name: "created returns ok",
			setupMock: func(m *mocks.MockMessageService) {
				m.EXPECT().
					Ingest(gomock.Any(), body, "deadbeef").
					Return(models.OutcomeCreated, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, raw []byte) {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(raw, &resp))
				assert.Equal(t, "ok", resp["status"])
			},
		},
		{
			name: "duplicate is indistinguishable from created",
			setupMock: func(m *mocks.MockMessageService) {
				m.EXPECT().
					Ingest(gomock.Any(), body, "deadbeef").
					Return(models.OutcomeDuplicate, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, raw []byte) {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(raw, &resp))
				assert.Equal(t, "ok", resp["status"])
			},
		},
		{
			name: "invalid signature returns 401",
			setupMock: func(m *mocks.MockMessageService) {
				m.EXPECT().
					Ingest(gomock.Any(), body, "deadbeef").
					Return(models.InsertOutcome(""), models.ErrInvalidSignature)
			},
			expectedStatus: http.StatusUnauthorized,
			checkBody: func(t *testing.T, raw []byte) {
				var resp handler.ErrorResponse
				require.NoError(t, json.Unmarshal(raw, &resp))
				assert.Equal(t, "INVALID_SIGNATURE", resp.Error)
			},
		},
		{
			name: "validation failure returns 422 with field",
			setupMock: func(m *mocks.MockMessageService) {
				m.EXPECT().
					Ingest(gomock.Any(), body, "deadbeef").
					Return(models.InsertOutcome(""), &models.ValidationError{
						Field:  "from",
						Reason: "must match E.164 format",
					})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			checkBody: func(t *testing.T, raw []byte) {
				var resp handler.ErrorResponse
				require.NoError(t, json.Unmarshal(raw, &resp))
				assert.Equal(t, "VALIDATION_ERROR", resp.Error)
				assert.Equal(t, "from", resp.Field)
			},
		},
		{
			name: "storage failure returns 500",
			setupMock: func(m *mocks.MockMessageService) {
				m.EXPECT().
					Ingest(gomock.Any(), body, "deadbeef").
					Return(models.InsertOutcome(""), errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, raw []byte) {
				var resp handler.ErrorResponse
				require.NoError(t, json.Unmarshal(raw, &resp))
				assert.Equal(t, "INTERNAL_ERROR", resp.Error)
				// Storage details must not leak to the caller.
				assert.NotContains(t, resp.Message, "connection refused")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mockMessage, _ := newTestHandler(t)
			tt.setupMock(mockMessage)

			req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
			req.Header.Set(handler.SignatureHeader, "deadbeef")
			w := httptest.NewRecorder()

			h.Webhook(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkBody(t, w.Body.Bytes())
		})
	}
}

func TestHandler_GetMessages(t *testing.T) {
	t.Run("passes query parameters through", func(t *testing.T) {
		h, mockMessage, _ := newTestHandler(t)

		text := "hello"
		mockMessage.EXPECT().
			ListMessages(gomock.Any(), models.ListFilter{
				FromMsisdn: "+14155552671",
				Since:      "2025-01-01T00:00:00Z",
				Query:      "hel",
				Limit:      10,
				Offset:     5,
			}).
			Return(&models.MessageListResponse{
				Data: []*models.MessageView{
					{
						MessageID:  "m1",
						FromMsisdn: "+14155552671",
						ToMsisdn:   "+14155552672",
						Ts:         "2025-01-02T00:00:00Z",
						Text:       &text,
					},
				},
				Total: 42,
			}, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/messages?from=%2B14155552671&since=2025-01-01T00:00:00Z&q=hel&limit=10&offset=5", nil)
		w := httptest.NewRecorder()

		h.GetMessages(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp models.MessageListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(42), resp.Total)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "m1", resp.Data[0].MessageID)
	})

	t.Run("defaults when no parameters given", func(t *testing.T) {
		h, mockMessage, _ := newTestHandler(t)

		mockMessage.EXPECT().
			ListMessages(gomock.Any(), models.ListFilter{
				Limit: models.DefaultListLimit,
			}).
			Return(&models.MessageListResponse{Data: []*models.MessageView{}, Total: 0}, nil)

		req := httptest.NewRequest(http.MethodGet, "/messages", nil)
		w := httptest.NewRecorder()

		h.GetMessages(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed limit returns 422 without calling service", func(t *testing.T) {
		h, _, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/messages?limit=abc", nil)
		w := httptest.NewRecorder()

		h.GetMessages(w, req)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp handler.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_QUERY_PARAM", resp.Error)
		assert.Equal(t, "limit", resp.Field)
	})

	t.Run("service failure returns 500", func(t *testing.T) {
		h, mockMessage, _ := newTestHandler(t)

		mockMessage.EXPECT().
			ListMessages(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection refused"))

		req := httptest.NewRequest(http.MethodGet, "/messages", nil)
		w := httptest.NewRecorder()

		h.GetMessages(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandler_GetStats(t *testing.T) {
	t.Run("returns stats", func(t *testing.T) {
		h, mockMessage, _ := newTestHandler(t)

		first := "2025-01-01T00:00:00Z"
		last := "2025-01-02T00:00:00Z"
		mockMessage.EXPECT().
			GetStats(gomock.Any()).
			Return(&models.Stats{
				TotalMessages: 3,
				SendersCount:  2,
				MessagesPerSender: []*models.SenderCount{
					{FromMsisdn: "+14155552671", Count: 2},
					{FromMsisdn: "+14155552672", Count: 1},
				},
				FirstMessageTs: &first,
				LastMessageTs:  &last,
			}, nil)

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		w := httptest.NewRecorder()

		h.GetStats(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp models.Stats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(3), resp.TotalMessages)
		require.Len(t, resp.MessagesPerSender, 2)
		assert.Equal(t, "+14155552671", resp.MessagesPerSender[0].FromMsisdn)
	})

	t.Run("empty store serializes null timestamps", func(t *testing.T) {
		h, mockMessage, _ := newTestHandler(t)

		mockMessage.EXPECT().
			GetStats(gomock.Any()).
			Return(&models.Stats{MessagesPerSender: []*models.SenderCount{}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		w := httptest.NewRecorder()

		h.GetStats(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		assert.Equal(t, "null", string(raw["first_message_ts"]))
		assert.Equal(t, "null", string(raw["last_message_ts"]))
	})

	t.Run("failure returns 500", func(t *testing.T) {
		h, mockMessage, _ := newTestHandler(t)

		mockMessage.EXPECT().
			GetStats(gomock.Any()).
			Return(nil, errors.New("connection refused"))

		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		w := httptest.NewRecorder()

		h.GetStats(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandler_HealthEndpoints(t *testing.T) {
	t.Run("liveness is always alive", func(t *testing.T) {
		h, _, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		w := httptest.NewRecorder()

		h.LivenessCheck(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alive", resp["status"])
	})

	t.Run("readiness ok when healthy", func(t *testing.T) {
		h, _, mockHealth := newTestHandler(t)

		mockHealth.EXPECT().GetHealth().Return(&service.HealthStatus{
			Status:          service.StatusHealthy,
			DatabaseStatus:  service.ComponentConnected,
			RedisStatus:     service.ComponentConnected,
			SchedulerStatus: service.SchedulerRunning,
		})

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		w := httptest.NewRecorder()

		h.ReadinessCheck(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("readiness fails closed when unhealthy", func(t *testing.T) {
		h, _, mockHealth := newTestHandler(t)

		mockHealth.EXPECT().GetHealth().Return(&service.HealthStatus{
			Status:          service.StatusUnhealthy,
			DatabaseStatus:  service.ComponentDisconnected,
			RedisStatus:     service.ComponentConnected,
			SchedulerStatus: service.SchedulerRunning,
		})

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		w := httptest.NewRecorder()

		h.ReadinessCheck(w, req)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp service.HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, service.StatusUnhealthy, resp.Status)
	})
}

func TestHandler_Root(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	h.Root(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "webhook-inbox", resp["name"])
}
